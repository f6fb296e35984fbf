package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"eventra/broker"
	"eventra/clock"
	"eventra/metrics"
	"eventra/model"
	"eventra/store"
	"eventra/utils"

	"github.com/google/uuid"
)

const (
	maxSellAttempts = 10
	bulkLockKey     = "lock:tickets:bulk-generate"
	bulkLockTTL     = 5 * time.Minute
	receiptQRSize   = 300
	bulkQRSize      = 150
)

// Refresher is notified after every ticket mutation.
type Refresher interface {
	RefreshAsync()
}

type TicketService struct {
	tickets   store.TicketStore
	locker    broker.Locker
	clock     clock.Clock
	refresher Refresher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	assetsDir string
	lastStamp atomic.Int64

	renderPDF func(w io.Writer, item utils.TicketImage, background string) error
}

type TicketOption func(*TicketService)

func WithRefresher(r Refresher) TicketOption {
	return func(s *TicketService) { s.refresher = r }
}

func WithTicketMetrics(m *metrics.Metrics) TicketOption {
	return func(s *TicketService) { s.metrics = m }
}

func WithTicketLogger(l *slog.Logger) TicketOption {
	return func(s *TicketService) { s.logger = l }
}

// WithAssetsDir sets where receipt artwork is looked up.
func WithAssetsDir(dir string) TicketOption {
	return func(s *TicketService) { s.assetsDir = dir }
}

func NewTicketService(tickets store.TicketStore, locker broker.Locker, clk clock.Clock, opts ...TicketOption) *TicketService {
	s := &TicketService{
		tickets:   tickets,
		locker:    locker,
		clock:     clk,
		logger:    slog.Default(),
		renderPDF: utils.RenderReceiptPDF,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TicketService) refresh() {
	if s.refresher != nil {
		s.refresher.RefreshAsync()
	}
}

// Receipt is a sold ticket with its QR code and rendered PDF.
type Receipt struct {
	utils.TicketImage
	PDF []byte
}

// Sell claims the first unsold ticket of the zone for customerName. The
// receipt is rendered before the claim is committed, so a rendering failure
// leaves the ticket unsold. Losing a race for a candidate moves on to the next
// one.
func (s *TicketService) Sell(ctx context.Context, rawZone, customerName string) (*Receipt, error) {
	zone, err := parseZone(rawZone)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}

	for attempt := 0; attempt < maxSellAttempts; attempt++ {
		ticket, err := s.tickets.FirstUnsold(ctx, zone)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NoInventoryError{Zone: string(zone)}
		}
		if err != nil {
			return nil, fmt.Errorf("find unsold ticket in zone %s: %w", zone, err)
		}

		now := s.clock.Now()
		ticket.Status = model.StatusSold
		ticket.CustomerName = name
		ticket.PurchaseDate = &now

		receipt, err := s.renderReceipt(*ticket)
		if err != nil {
			return nil, fmt.Errorf("render receipt for %s: %w", ticket.TicketId, err)
		}

		ok, err := s.tickets.MarkSold(ctx, ticket.TicketId, name, now)
		if err != nil {
			return nil, fmt.Errorf("mark %s sold: %w", ticket.TicketId, err)
		}
		if !ok {
			continue
		}

		s.metrics.IncSold(string(zone))
		s.refresh()
		s.logger.Info("ticket sold", "ticketId", ticket.TicketId, "zone", zone)
		return receipt, nil
	}
	return nil, ErrInventoryContended
}

func (s *TicketService) renderReceipt(ticket model.Ticket) (*Receipt, error) {
	qr, err := utils.GenerateTicketQRCode(model.TicketCode{
		TicketId: ticket.TicketId,
		Zone:     ticket.Zone,
		Price:    ticket.Price,
	}, receiptQRSize)
	if err != nil {
		return nil, err
	}

	item := utils.TicketImage{Ticket: ticket, QR: qr}
	var buf bytes.Buffer
	if err := s.renderPDF(&buf, item, utils.ReceiptBackground(s.assetsDir, ticket.Zone)); err != nil {
		return nil, err
	}
	return &Receipt{TicketImage: item, PDF: buf.Bytes()}, nil
}

// ResolveTicketId extracts the ticket id from a validation request. The value
// may be a bare id, the JSON text read from a QR code, or an embedded object.
// When no usable ticketId field is found the trimmed input is used verbatim.
func ResolveTicketId(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
	}
	text = strings.TrimSpace(text)

	if id := idFromCode(text); id != "" {
		return id
	}
	return text
}

// idFromCode reads the ticketId field of a QR payload. Numeric ids keep their
// literal form; empty strings and zero count as absent.
func idFromCode(text string) string {
	var code struct {
		TicketId json.RawMessage `json:"ticketId"`
	}
	if err := json.Unmarshal([]byte(text), &code); err != nil || len(code.TicketId) == 0 {
		return ""
	}

	var id string
	if err := json.Unmarshal(code.TicketId, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var n float64
	if err := json.Unmarshal(code.TicketId, &n); err == nil && n != 0 {
		return string(code.TicketId)
	}
	return ""
}

// Validate consumes a sold ticket. A ticket can be validated once; later
// attempts report when it was used.
func (s *TicketService) Validate(ctx context.Context, ticketId string) (details *model.TicketDetails, err error) {
	defer func() { s.metrics.IncValidation(validationResult(err)) }()

	ticketId = strings.TrimSpace(ticketId)
	if ticketId == "" {
		return nil, ErrTicketIdRequired
	}

	ticket, err := s.tickets.FindByTicketId(ctx, ticketId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket %s: %w", ticketId, err)
	}

	switch ticket.State() {
	case model.StateNeverSold:
		return nil, ErrNeverSold
	case model.StateSoldScanned:
		return nil, &AlreadyScannedError{TicketId: ticketId, ScannedAt: ticket.ScanTimestamp}
	}

	now := s.clock.Now()
	ok, err := s.tickets.MarkScanned(ctx, ticketId, now)
	if err != nil {
		return nil, fmt.Errorf("mark %s scanned: %w", ticketId, err)
	}
	if !ok {
		current, err := s.tickets.FindByTicketId(ctx, ticketId)
		if err != nil {
			return nil, fmt.Errorf("reload ticket %s: %w", ticketId, err)
		}
		return nil, &AlreadyScannedError{TicketId: ticketId, ScannedAt: current.ScanTimestamp}
	}

	s.metrics.IncScanned(string(ticket.Zone))
	s.refresh()
	s.logger.Info("ticket validated", "ticketId", ticketId, "zone", ticket.Zone)

	return &model.TicketDetails{
		Zone:         ticket.Zone,
		CustomerName: ticket.CustomerName,
		ScannedAt:    &now,
	}, nil
}

func validationResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrNeverSold):
		return "never_sold"
	case errors.Is(err, ErrAlreadyScanned):
		return "already_scanned"
	default:
		return "error"
	}
}

// BulkResult lists the generated tickets in creation order.
type BulkResult struct {
	Count   int
	Tickets []utils.TicketImage
}

// NormalizeQuantities validates a zone to count map. A nil or empty request
// means defaultCount for every zone. No zone may exceed model.MaxBulkPerZone.
func NormalizeQuantities(req map[string]int, defaultCount int) (map[model.Zone]int, error) {
	out := make(map[model.Zone]int, len(model.Zones))
	if len(req) == 0 {
		if defaultCount <= 0 || defaultCount > model.MaxBulkPerZone {
			return nil, ErrInvalidQuantity
		}
		for _, zone := range model.Zones {
			out[zone] = defaultCount
		}
		return out, nil
	}

	total := 0
	for raw, n := range req {
		zone, ok := model.ParseZone(raw)
		if !ok {
			return nil, ErrInvalidZone
		}
		if n < 0 || out[zone]+n > model.MaxBulkPerZone {
			return nil, ErrInvalidQuantity
		}
		out[zone] += n
		total += n
	}
	if total == 0 {
		return nil, ErrInvalidQuantity
	}
	return out, nil
}

// BulkGenerate mints sold guest tickets for each zone in B, C, D order. A
// storage failure stops generation; tickets already created are kept and the
// returned *PartialBulkError says how many.
func (s *TicketService) BulkGenerate(ctx context.Context, quantities map[model.Zone]int) (*BulkResult, error) {
	for _, n := range quantities {
		if n < 0 || n > model.MaxBulkPerZone {
			return nil, ErrInvalidQuantity
		}
	}

	release, err := s.locker.Acquire(ctx, bulkLockKey, bulkLockTTL)
	if errors.Is(err, broker.ErrLocked) {
		return nil, ErrBulkInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("acquire bulk lock: %w", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.Warn("release bulk lock failed", "error", err)
		}
	}()

	stamp := s.nextStamp()
	result := &BulkResult{}
	defer func() {
		if result.Count > 0 {
			s.refresh()
		}
	}()

	for _, zone := range model.Zones {
		for i := 1; i <= quantities[zone]; i++ {
			now := s.clock.Now()
			number := fmt.Sprintf("%s-%03d", zone, i)
			ticket := model.NewTicket(fmt.Sprintf("TKT-%s-%d-%d", zone, stamp, i), zone)
			ticket.Status = model.StatusSold
			ticket.CustomerName = "Guest-" + number
			ticket.PurchaseDate = &now

			if err := s.tickets.Create(ctx, &ticket); err != nil {
				s.logger.Error("bulk generation aborted", "created", result.Count, "error", err)
				return nil, &PartialBulkError{Created: result.Count, Err: fmt.Errorf("create %s: %w", ticket.TicketId, err)}
			}
			s.metrics.AddGenerated(string(zone), string(model.StatusSold), 1)

			qr, err := utils.GenerateTicketQRCode(model.TicketCode{
				TicketId:     ticket.TicketId,
				TicketNumber: number,
				Zone:         zone,
				CustomerName: ticket.CustomerName,
				Price:        ticket.Price,
			}, bulkQRSize)
			if err != nil {
				return nil, &PartialBulkError{Created: result.Count + 1, Err: err}
			}
			result.Tickets = append(result.Tickets, utils.TicketImage{Ticket: ticket, QR: qr})
			result.Count++
		}
	}

	s.logger.Info("bulk generation finished", "created", result.Count)
	return result, nil
}

// nextStamp returns the millisecond stamp for a bulk run, never repeating a
// previous run's stamp.
func (s *TicketService) nextStamp() int64 {
	for {
		last := s.lastStamp.Load()
		stamp := s.clock.Now().UnixMilli()
		if stamp <= last {
			stamp = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, stamp) {
			return stamp
		}
	}
}

// Provision adds count unsold tickets to the zone's sellable inventory.
func (s *TicketService) Provision(ctx context.Context, rawZone string, count int) ([]model.Ticket, error) {
	zone, err := parseZone(rawZone)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, ErrInvalidQuantity
	}

	tickets := make([]model.Ticket, count)
	for i := range tickets {
		tickets[i] = model.NewTicket(fmt.Sprintf("TKT-%s-%s", zone, uuid.NewString()), zone)
	}
	if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("provision zone %s: %w", zone, err)
	}

	s.metrics.AddGenerated(string(zone), string(model.StatusUnsold), count)
	s.refresh()
	s.logger.Info("tickets provisioned", "zone", zone, "count", count)
	return tickets, nil
}
