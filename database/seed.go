package database

import (
	"context"
	"fmt"
	"log/slog"

	"eventra/model"
	"eventra/store"
)

type UserSeeder interface {
	EnsureUser(ctx context.Context, email, password string) (*model.User, bool, error)
}

type InventorySeeder interface {
	Provision(ctx context.Context, zone string, count int) ([]model.Ticket, error)
}

type SeedOptions struct {
	AdminEmail         string
	AdminPassword      string
	SeedTicketsPerZone int
}

// SeedData creates the admin account and gives every empty zone its
// initial unsold inventory. Running it again changes nothing.
func SeedData(ctx context.Context, tickets store.TicketStore, users UserSeeder, inventory InventorySeeder, opts SeedOptions) error {
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		_, created, err := users.EnsureUser(ctx, opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		if created {
			slog.Info("seeded admin user", "email", opts.AdminEmail)
		}
	}

	if opts.SeedTicketsPerZone <= 0 {
		return nil
	}
	for _, zone := range model.Zones {
		n, err := tickets.Count(ctx, store.TicketFilter{Zone: zone})
		if err != nil {
			return fmt.Errorf("count zone %s: %w", zone, err)
		}
		if n > 0 {
			continue
		}
		if _, err := inventory.Provision(ctx, string(zone), opts.SeedTicketsPerZone); err != nil {
			return fmt.Errorf("seed zone %s: %w", zone, err)
		}
		slog.Info("seeded ticket inventory", "zone", zone, "count", opts.SeedTicketsPerZone)
	}
	return nil
}
