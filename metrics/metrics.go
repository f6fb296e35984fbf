package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for ticket sales, scans and reporting.
// All methods are safe on a nil receiver.
type Metrics struct {
	TicketsSold      *prometheus.CounterVec
	TicketsScanned   *prometheus.CounterVec
	TicketsGenerated *prometheus.CounterVec
	Validations      *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	SnapshotFailures prometheus.Counter
}

// New registers all ticketing metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TicketsSold: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventra_tickets_sold_total",
			Help: "Total number of tickets sold, by zone",
		}, []string{"zone"}),
		TicketsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventra_tickets_scanned_total",
			Help: "Total number of tickets scanned at the door, by zone",
		}, []string{"zone"}),
		TicketsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventra_tickets_generated_total",
			Help: "Total number of tickets created by provisioning or bulk generation",
		}, []string{"zone", "status"}),
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventra_ticket_validations_total",
			Help: "Ticket validation attempts by outcome",
		}, []string{"result"}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventra_snapshot_duration_seconds",
			Help:    "Duration of spreadsheet snapshot exports",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SnapshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventra_snapshot_failures_total",
			Help: "Spreadsheet snapshot exports that failed",
		}),
	}
}

func (m *Metrics) IncSold(zone string) {
	if m == nil {
		return
	}
	m.TicketsSold.WithLabelValues(zone).Inc()
}

func (m *Metrics) IncScanned(zone string) {
	if m == nil {
		return
	}
	m.TicketsScanned.WithLabelValues(zone).Inc()
}

func (m *Metrics) AddGenerated(zone, status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TicketsGenerated.WithLabelValues(zone, status).Add(float64(n))
}

// IncValidation records a validation outcome: valid, not_found, never_sold, already_scanned, error.
func (m *Metrics) IncValidation(result string) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(result).Inc()
}

// ObserveSnapshot records the duration of a snapshot export started at start.
func (m *Metrics) ObserveSnapshot(start time.Time, err error) {
	if m == nil {
		return
	}
	m.SnapshotDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SnapshotFailures.Inc()
	}
}
