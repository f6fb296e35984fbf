package model

import (
	"strings"
	"time"
)

type Zone string

const (
	ZoneB Zone = "B"
	ZoneC Zone = "C"
	ZoneD Zone = "D"
)

// Zones is the closed set of sellable zones, in display order.
var Zones = []Zone{ZoneB, ZoneC, ZoneD}

// MaxBulkPerZone caps one bulk generation run so it finishes well inside the
// bulk lock lease.
const MaxBulkPerZone = 1000

// price in Rupees
var zonePrices = map[Zone]float64{
	ZoneB: 350,
	ZoneC: 200,
	ZoneD: 100,
}

func ParseZone(s string) (Zone, bool) {
	z := Zone(strings.ToUpper(strings.TrimSpace(s)))
	return z, z.Valid()
}

func (z Zone) Valid() bool {
	_, ok := zonePrices[z]
	return ok
}

func (z Zone) Price() float64 {
	return zonePrices[z]
}

type TicketStatus string

const (
	StatusUnsold TicketStatus = "Unsold"
	StatusSold   TicketStatus = "Sold"
)

type ScanStatus string

const (
	ScanUnscanned ScanStatus = "Unscanned"
	ScanScanned   ScanStatus = "Scanned"
)

// TicketState is the validation view of (Status, ScanStatus).
type TicketState int

const (
	StateNeverSold TicketState = iota
	StateSoldUnscanned
	StateSoldScanned
)

type Ticket struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	TicketId      string       `gorm:"size:80;uniqueIndex;not null" json:"ticketId"`
	Zone          Zone         `gorm:"size:1;not null;index:idx_tickets_zone_status,priority:1" json:"zone"`
	Price         float64      `gorm:"not null" json:"price"`
	Status        TicketStatus `gorm:"size:10;not null;default:'Unsold';index:idx_tickets_zone_status,priority:2" json:"status"`
	CustomerName  string       `gorm:"not null;default:''" json:"customerName"`
	PurchaseDate  *time.Time   `json:"purchaseDate,omitempty"`
	ScanStatus    ScanStatus   `gorm:"size:10;not null;default:'Unscanned'" json:"scanStatus"`
	ScanTimestamp *time.Time   `json:"scanTimestamp,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewTicket builds an unsold, unscanned ticket whose price follows its zone.
func NewTicket(ticketId string, zone Zone) Ticket {
	return Ticket{
		TicketId:   ticketId,
		Zone:       zone,
		Price:      zone.Price(),
		Status:     StatusUnsold,
		ScanStatus: ScanUnscanned,
	}
}

func (t *Ticket) State() TicketState {
	switch {
	case t.Status != StatusSold:
		return StateNeverSold
	case t.ScanStatus == ScanScanned:
		return StateSoldScanned
	default:
		return StateSoldUnscanned
	}
}

// TicketCode is the JSON payload carried by a ticket's QR code. Only TicketId
// is authoritative; the rest is advisory.
type TicketCode struct {
	TicketId     string  `json:"ticketId"`
	TicketNumber string  `json:"ticketNumber,omitempty"`
	Zone         Zone    `json:"zone,omitempty"`
	CustomerName string  `json:"customerName,omitempty"`
	Price        float64 `json:"price,omitempty"`
}

type SellTicketInput struct {
	Zone         string `json:"zone" validate:"required,oneof=B C D b c d"`
	CustomerName string `json:"customerName" validate:"required"`
}

type ProvisionTicketInput struct {
	Zone  string `json:"zone" validate:"required,oneof=B C D b c d"`
	Count int    `json:"count" validate:"required,gt=0,lte=10000"`
}

type TicketDetails struct {
	Zone         Zone       `json:"zone"`
	CustomerName string     `json:"customerName"`
	ScannedAt    *time.Time `json:"scannedAt"`
}

type ZoneStats struct {
	Total   int64 `json:"total"`
	Sold    int64 `json:"sold"`
	Scanned int64 `json:"scanned"`
}

type ZoneAvailability struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}
