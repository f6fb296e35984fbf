package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventra/broker"
	"eventra/metrics"
	"eventra/model"
	"eventra/store"
	"eventra/utils"

	"golang.org/x/sync/errgroup"
)

const refreshTimeout = 30 * time.Second

type ReportService struct {
	tickets      store.TicketStore
	snapshotPath string
	broker       broker.Broker
	archiver     Archiver
	metrics      *metrics.Metrics
	logger       *slog.Logger

	// mu serializes snapshot writers.
	mu sync.Mutex
	wg sync.WaitGroup
}

type ReportOption func(*ReportService)

func WithBroker(b broker.Broker) ReportOption {
	return func(s *ReportService) { s.broker = b }
}

func WithArchiver(a Archiver) ReportOption {
	return func(s *ReportService) { s.archiver = a }
}

func WithReportMetrics(m *metrics.Metrics) ReportOption {
	return func(s *ReportService) { s.metrics = m }
}

func WithReportLogger(l *slog.Logger) ReportOption {
	return func(s *ReportService) { s.logger = l }
}

func NewReportService(tickets store.TicketStore, snapshotPath string, opts ...ReportOption) *ReportService {
	s := &ReportService{
		tickets:      tickets,
		snapshotPath: snapshotPath,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) SnapshotPath() string {
	return s.snapshotPath
}

func parseZone(raw string) (model.Zone, error) {
	zone, ok := model.ParseZone(raw)
	if !ok {
		return "", ErrInvalidZone
	}
	return zone, nil
}

// AvailableCount counts tickets in the zone that have not been scanned,
// whether or not they were sold.
func (s *ReportService) AvailableCount(ctx context.Context, rawZone string) (int64, error) {
	zone, err := parseZone(rawZone)
	if err != nil {
		return 0, err
	}
	n, err := s.tickets.Count(ctx, store.TicketFilter{Zone: zone, ScanStatus: model.ScanUnscanned})
	if err != nil {
		return 0, fmt.Errorf("count available in zone %s: %w", zone, err)
	}
	return n, nil
}

func (s *ReportService) TotalCount(ctx context.Context, rawZone string) (int64, error) {
	zone, err := parseZone(rawZone)
	if err != nil {
		return 0, err
	}
	n, err := s.tickets.Count(ctx, store.TicketFilter{Zone: zone})
	if err != nil {
		return 0, fmt.Errorf("count zone %s: %w", zone, err)
	}
	return n, nil
}

// TotalCounts returns the ticket count of every zone.
func (s *ReportService) TotalCounts(ctx context.Context) (map[model.Zone]int64, error) {
	counts := make([]int64, len(model.Zones))
	g, gctx := errgroup.WithContext(ctx)
	for i, zone := range model.Zones {
		g.Go(func() error {
			n, err := s.tickets.Count(gctx, store.TicketFilter{Zone: zone})
			if err != nil {
				return fmt.Errorf("count zone %s: %w", zone, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[model.Zone]int64, len(model.Zones))
	for i, zone := range model.Zones {
		out[zone] = counts[i]
	}
	return out, nil
}

func (s *ReportService) ZoneStats(ctx context.Context, rawZone string) (model.ZoneStats, error) {
	zone, err := parseZone(rawZone)
	if err != nil {
		return model.ZoneStats{}, err
	}

	var stats model.ZoneStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.tickets.Count(gctx, store.TicketFilter{Zone: zone})
		return err
	})
	g.Go(func() (err error) {
		stats.Sold, err = s.tickets.Count(gctx, store.TicketFilter{Zone: zone, Status: model.StatusSold})
		return err
	})
	g.Go(func() (err error) {
		stats.Scanned, err = s.tickets.Count(gctx, store.TicketFilter{Zone: zone, ScanStatus: model.ScanScanned})
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ZoneStats{}, fmt.Errorf("zone %s stats: %w", zone, err)
	}
	return stats, nil
}

// LiveStats reports total and available counts for every zone.
func (s *ReportService) LiveStats(ctx context.Context) (map[model.Zone]model.ZoneAvailability, error) {
	out := make(map[model.Zone]model.ZoneAvailability, len(model.Zones))
	for _, zone := range model.Zones {
		total, err := s.tickets.Count(ctx, store.TicketFilter{Zone: zone})
		if err != nil {
			return nil, fmt.Errorf("count zone %s: %w", zone, err)
		}
		available, err := s.tickets.Count(ctx, store.TicketFilter{Zone: zone, ScanStatus: model.ScanUnscanned})
		if err != nil {
			return nil, fmt.Errorf("count available in zone %s: %w", zone, err)
		}
		out[zone] = model.ZoneAvailability{Total: total, Available: available}
	}
	return out, nil
}

// ExportSnapshot rewrites the snapshot workbook from a full read of the
// ticket store and returns its path.
func (s *ReportService) ExportSnapshot(ctx context.Context) (path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { s.metrics.ObserveSnapshot(start, err) }()

	tickets, err := s.tickets.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load tickets: %w", err)
	}
	if err := utils.SaveTicketWorkbook(s.snapshotPath, tickets); err != nil {
		return "", err
	}
	return s.snapshotPath, nil
}

// PublishStats sends the current live stats to subscribers.
func (s *ReportService) PublishStats(ctx context.Context) error {
	if s.broker == nil {
		return nil
	}
	stats, err := s.LiveStats(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.broker.Publish(ctx, payload)
}

// Refresh rebuilds the snapshot, archives it when an archiver is set and
// publishes live stats. Errors are logged, never returned.
func (s *ReportService) Refresh(ctx context.Context) {
	s.refresh(ctx, true)
}

func (s *ReportService) refresh(ctx context.Context, archive bool) {
	path, err := s.ExportSnapshot(ctx)
	if err != nil {
		s.logger.Error("snapshot refresh failed", "error", err)
	} else if archive && s.archiver != nil {
		actx, cancel := context.WithTimeout(ctx, archiveTimeout)
		url, err := s.archiver.Archive(actx, path)
		cancel()
		if err != nil {
			s.logger.Warn("snapshot archive failed", "error", err)
		} else {
			s.logger.Debug("snapshot archived", "url", url)
		}
	}

	if err := s.PublishStats(ctx); err != nil {
		s.logger.Warn("live stats publish failed", "error", err)
	}
}

// RefreshAsync rebuilds the snapshot and publishes live stats in the
// background, detached from the caller's request context. It does not archive.
func (s *ReportService) RefreshAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		s.refresh(ctx, false)
	}()
}

// Wait blocks until background refreshes have finished.
func (s *ReportService) Wait() {
	s.wg.Wait()
}
