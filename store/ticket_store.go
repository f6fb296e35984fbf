package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventra/model"

	"gorm.io/gorm"
)

type GormTicketStore struct {
	db *gorm.DB
}

func NewGormTicketStore(db *gorm.DB) *GormTicketStore {
	return &GormTicketStore{db: db}
}

func (s *GormTicketStore) Create(ctx context.Context, ticket *model.Ticket) error {
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create ticket %s: %w", ticket.TicketId, err)
	}
	return nil
}

func (s *GormTicketStore) CreateBatch(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(tickets, 200).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create %d tickets: %w", len(tickets), err)
	}
	return nil
}

func (s *GormTicketStore) FindByTicketId(ctx context.Context, ticketId string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", ticketId).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find ticket %s: %w", ticketId, err)
	}
	return &ticket, nil
}

func (s *GormTicketStore) FirstUnsold(ctx context.Context, zone model.Zone) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.WithContext(ctx).
		Where("zone = ? AND status = ?", zone, model.StatusUnsold).
		Order("id asc").
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find unsold ticket in zone %s: %w", zone, err)
	}
	return &ticket, nil
}

func (s *GormTicketStore) MarkSold(ctx context.Context, ticketId, customerName string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ? AND status = ?", ticketId, model.StatusUnsold).
		Updates(map[string]any{
			"status":        model.StatusSold,
			"customer_name": customerName,
			"purchase_date": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark ticket %s sold: %w", ticketId, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormTicketStore) MarkScanned(ctx context.Context, ticketId string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ? AND status = ? AND scan_status = ?", ticketId, model.StatusSold, model.ScanUnscanned).
		Updates(map[string]any{
			"scan_status":    model.ScanScanned,
			"scan_timestamp": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark ticket %s scanned: %w", ticketId, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormTicketStore) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Ticket{})
	if filter.Zone != "" {
		q = q.Where("zone = ?", filter.Zone)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ScanStatus != "" {
		q = q.Where("scan_status = ?", filter.ScanStatus)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

func (s *GormTicketStore) All(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := s.db.WithContext(ctx).Order("id asc").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}
