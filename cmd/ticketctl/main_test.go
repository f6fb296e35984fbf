package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventra/broker"
	"eventra/clock"
	"eventra/model"
	"eventra/service"
	"eventra/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) (*env, *store.MemoryTicketStore) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	tickets := store.NewMemoryTicketStore()
	return &env{
		tickets: service.NewTicketService(tickets, broker.NewLocalLocker(), clk),
		reports: service.NewReportService(tickets, filepath.Join(t.TempDir(), "tickets.xlsx")),
		auth:    service.NewAuthService(store.NewMemoryUserStore(), nil, clk, []byte("secret"), "", nil),
		assets:  t.TempDir(),
		bulk:    1,
	}, tickets
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	opened := false
	open := func() (*env, error) { opened = true; return nil, errors.New("no database") }

	require.NoError(t, run(context.Background(), nil, &out, open))
	assert.Contains(t, out.String(), "bulk-generate")

	err := run(context.Background(), []string{"frobnicate"}, &out, open)
	assert.ErrorContains(t, err, "unknown command")
	assert.False(t, opened)
}

func TestRunCommands(t *testing.T) {
	e, tickets := memoryEnv(t)
	open := func() (*env, error) { return e, nil }
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, []string{"provision", "--zone", "c", "-n", "3"}, &out, open))
	n, err := tickets.Count(ctx, store.TicketFilter{Zone: model.ZoneC, Status: model.StatusUnsold})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	pdf := filepath.Join(t.TempDir(), "bulk.pdf")
	require.NoError(t, run(ctx, []string{"bulk-generate", "--zones", "B=2,D=1", "-o", pdf}, &out, open))
	info, err := os.Stat(pdf)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Contains(t, out.String(), "generated 3 tickets")

	require.NoError(t, run(ctx, []string{"export"}, &out, open))
	assert.Contains(t, out.String(), "snapshot written to")

	require.NoError(t, run(ctx, []string{"create-user", "-e", "ops@example.com", "-p", "secret-pass"}, &out, open))
	assert.Contains(t, out.String(), "ops@example.com")

	err = run(ctx, []string{"provision", "--count", "2"}, &out, open)
	assert.ErrorIs(t, err, errMissingFlag)
}
