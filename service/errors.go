package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidZone          = errors.New("invalid zone")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrInvalidQuantity      = errors.New("invalid ticket quantity")
	ErrMissingCredentials   = errors.New("email and password are required")
	ErrTicketIdRequired     = errors.New("ticket id is required")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrTicketNotFound = errors.New("ticket not found")
	ErrNoInventory    = errors.New("no tickets available")

	ErrNeverSold             = errors.New("ticket was never sold")
	ErrAlreadyScanned        = errors.New("ticket already used")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailInUse            = errors.New("email already in use")
	ErrBulkInProgress        = errors.New("bulk generation already running")
	ErrInventoryContended    = errors.New("ticket inventory is busy, retry")
)

// AlreadyScannedError carries the timestamp of the scan that consumed the ticket.
type AlreadyScannedError struct {
	TicketId  string
	ScannedAt *time.Time
}

func (e *AlreadyScannedError) Error() string {
	return fmt.Sprintf("ticket %s already used", e.TicketId)
}

func (e *AlreadyScannedError) Unwrap() error {
	return ErrAlreadyScanned
}

// NoInventoryError names the zone that ran out.
type NoInventoryError struct {
	Zone string
}

func (e *NoInventoryError) Error() string {
	return fmt.Sprintf("No tickets available in Zone %s", e.Zone)
}

func (e *NoInventoryError) Unwrap() error {
	return ErrNoInventory
}

// PartialBulkError reports how far a bulk generation got before failing.
type PartialBulkError struct {
	Created int
	Err     error
}

func (e *PartialBulkError) Error() string {
	return fmt.Sprintf("bulk generation stopped after %d tickets: %v", e.Created, e.Err)
}

func (e *PartialBulkError) Unwrap() error {
	return e.Err
}
