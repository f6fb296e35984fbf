package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"eventra/helper"
	"eventra/service"
	"eventra/utils"

	"github.com/spf13/pflag"
)

func runProvision(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("provision", pflag.ContinueOnError)
	zone := fs.StringP("zone", "z", "", "zone to provision (B, C or D)")
	count := fs.IntP("count", "n", 0, "number of unsold tickets to create")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *zone == "" {
		return fmt.Errorf("%w: --zone", errMissingFlag)
	}

	created, err := e.tickets.Provision(ctx, *zone, *count)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "provisioned %d tickets in zone %s\n", len(created), created[0].Zone)
	return nil
}

func runBulkGenerate(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("bulk-generate", pflag.ContinueOnError)
	perZone := fs.StringToInt("zones", nil, "tickets per zone, e.g. B=10,C=5 (default: BULK_TICKETS_PER_ZONE for every zone)")
	output := fs.StringP("output", "o", "AllTickets.pdf", "PDF file to write")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	quantities, err := service.NormalizeQuantities(*perZone, e.bulk)
	if err != nil {
		return err
	}
	result, err := e.tickets.BulkGenerate(ctx, quantities)
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := utils.RenderBulkPDF(f, result.Tickets, utils.BulkBackgrounds(e.assets)); err != nil {
		return err
	}
	fmt.Fprintf(out, "generated %d tickets into %s\n", result.Count, *output)
	return f.Close()
}

func runExport(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	path, err := e.reports.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "snapshot written to %s\n", path)
	return nil
}

func runCreateUser(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	email := fs.StringP("email", "e", "", "login email")
	password := fs.StringP("password", "p", "", "initial password")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	token, user, err := e.auth.Register(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %d (%s)\n", user.ID, user.Email)
	fmt.Fprintf(out, "session token (valid %s): %s\n", helper.AccessTokenTTL, token)
	return nil
}
