package store

import (
	"context"
	"errors"
	"time"

	"eventra/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// TicketFilter narrows a count; zero-valued fields are ignored.
type TicketFilter struct {
	Zone       model.Zone
	Status     model.TicketStatus
	ScanStatus model.ScanStatus
}

// TicketStore persists tickets. MarkSold and MarkScanned are compare-and-set
// operations: they report false when the ticket was not in the expected state.
type TicketStore interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	CreateBatch(ctx context.Context, tickets []model.Ticket) error
	FindByTicketId(ctx context.Context, ticketId string) (*model.Ticket, error)
	FirstUnsold(ctx context.Context, zone model.Zone) (*model.Ticket, error)
	MarkSold(ctx context.Context, ticketId, customerName string, at time.Time) (bool, error)
	MarkScanned(ctx context.Context, ticketId string, at time.Time) (bool, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
	All(ctx context.Context) ([]model.Ticket, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	SetResetToken(ctx context.Context, id uint, tokenHash string, expires time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	// ResetPassword replaces the password only while tokenHash is still the
	// stored reset token, and clears the reset fields.
	ResetPassword(ctx context.Context, id uint, tokenHash, passwordHash string) (bool, error)
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
