package database

import (
	"context"
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

func TestSeedDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Now())
	tickets := store.NewMemoryTicketStore()
	users := store.NewMemoryUserStore()
	auth := service.NewAuthService(users, nil, clk, []byte("secret"), "http://localhost", nil)
	inventory := service.NewTicketService(tickets, broker.NewLocalLocker(), clk)

	opts := SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "admin-pass", SeedTicketsPerZone: 4}
	require.NoError(t, SeedData(ctx, tickets, auth, inventory, opts))
	require.NoError(t, SeedData(ctx, tickets, auth, inventory, opts))

	for _, zone := range model.Zones {
		n, err := tickets.Count(ctx, store.TicketFilter{Zone: zone, Status: model.StatusUnsold})
		require.NoError(t, err)
		assert.Equal(t, int64(4), n, "zone %s", zone)
	}

	admin, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "admin-pass", admin.Password)

	_, _, err = auth.Authenticate(ctx, "admin@example.com", "admin-pass")
	assert.NoError(t, err)
}

func TestSeedDataSkipsWhenUnset(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Now())
	tickets := store.NewMemoryTicketStore()
	users := store.NewMemoryUserStore()
	auth := service.NewAuthService(users, nil, clk, []byte("secret"), "", nil)
	inventory := service.NewTicketService(tickets, broker.NewLocalLocker(), clk)

	require.NoError(t, SeedData(ctx, tickets, auth, inventory, SeedOptions{}))
	n, err := tickets.Count(ctx, store.TicketFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
