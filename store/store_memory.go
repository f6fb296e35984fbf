package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventra/model"
)

// MemoryTicketStore is an in-process TicketStore used by tests and the CLI dry-run.
type MemoryTicketStore struct {
	mu      sync.Mutex
	nextID  uint
	tickets map[string]*model.Ticket
}

func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{tickets: make(map[string]*model.Ticket)}
}

func (s *MemoryTicketStore) Create(_ context.Context, ticket *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(ticket)
}

func (s *MemoryTicketStore) CreateBatch(_ context.Context, tickets []model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range tickets {
		if _, exists := s.tickets[tickets[i].TicketId]; exists {
			return ErrDuplicate
		}
	}
	for i := range tickets {
		if err := s.insertLocked(&tickets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryTicketStore) insertLocked(ticket *model.Ticket) error {
	if _, exists := s.tickets[ticket.TicketId]; exists {
		return ErrDuplicate
	}
	s.nextID++
	now := time.Now().UTC()
	ticket.ID = s.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	if ticket.Status == "" {
		ticket.Status = model.StatusUnsold
	}
	if ticket.ScanStatus == "" {
		ticket.ScanStatus = model.ScanUnscanned
	}
	stored := *ticket
	s.tickets[ticket.TicketId] = &stored
	return nil
}

func (s *MemoryTicketStore) FindByTicketId(_ context.Context, ticketId string) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketId]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryTicketStore) FirstUnsold(_ context.Context, zone model.Zone) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first *model.Ticket
	for _, t := range s.tickets {
		if t.Zone != zone || t.Status != model.StatusUnsold {
			continue
		}
		if first == nil || t.ID < first.ID {
			first = t
		}
	}
	if first == nil {
		return nil, ErrNotFound
	}
	copied := *first
	return &copied, nil
}

func (s *MemoryTicketStore) MarkSold(_ context.Context, ticketId, customerName string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketId]
	if !ok || t.Status != model.StatusUnsold {
		return false, nil
	}
	t.Status = model.StatusSold
	t.CustomerName = customerName
	t.PurchaseDate = &at
	t.UpdatedAt = at
	return true, nil
}

func (s *MemoryTicketStore) MarkScanned(_ context.Context, ticketId string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketId]
	if !ok || t.Status != model.StatusSold || t.ScanStatus != model.ScanUnscanned {
		return false, nil
	}
	t.ScanStatus = model.ScanScanned
	t.ScanTimestamp = &at
	t.UpdatedAt = at
	return true, nil
}

func (s *MemoryTicketStore) Count(_ context.Context, filter TicketFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tickets {
		if filter.Zone != "" && t.Zone != filter.Zone {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ScanStatus != "" && t.ScanStatus != filter.ScanStatus {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MemoryTicketStore) All(_ context.Context) ([]model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type MemoryUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uint]*model.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	s.nextID++
	now := time.Now().UTC()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) SetResetToken(_ context.Context, id uint, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpires = &expires
	return nil
}

func (s *MemoryUserStore) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetPasswordToken == nil || *u.ResetPasswordToken != tokenHash {
			continue
		}
		if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
			continue
		}
		copied := *u
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) ResetPassword(_ context.Context, id uint, tokenHash, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.ResetPasswordToken == nil || *u.ResetPasswordToken != tokenHash {
		return false, nil
	}
	u.Password = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return true, nil
}

func (s *MemoryUserStore) PurgeExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.ResetPasswordExpires != nil && !u.ResetPasswordExpires.After(now) {
			u.ResetPasswordToken = nil
			u.ResetPasswordExpires = nil
			n++
		}
	}
	return n, nil
}
