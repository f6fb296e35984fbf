package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncSold("B")
	m.IncSold("B")
	m.IncScanned("C")
	m.AddGenerated("D", "Sold", 4)
	m.IncValidation("already_scanned")
	m.ObserveSnapshot(time.Now(), errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TicketsSold.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketsScanned.WithLabelValues("C")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.TicketsGenerated.WithLabelValues("D", "Sold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("already_scanned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFailures))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSold("B")
		m.IncScanned("B")
		m.AddGenerated("B", "Unsold", 1)
		m.IncValidation("valid")
		m.ObserveSnapshot(time.Now(), nil)
	})
}
