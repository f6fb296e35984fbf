// ticketctl is the operator tool for ticket inventory: it provisions unsold
// tickets, prints bulk guest tickets to a PDF, exports the snapshot workbook
// and creates staff accounts, all directly against the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"eventra/broker"
	"eventra/clock"
	"eventra/config"
	"eventra/database"
	"eventra/service"
	"eventra/store"
	"eventra/utils"

	"github.com/spf13/pflag"
)

// env holds the services a command runs against.
type env struct {
	tickets *service.TicketService
	reports *service.ReportService
	auth    *service.AuthService
	assets  string
	bulk    int
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string, out io.Writer) error
}

var commands = map[string]command{
	"provision":     {"add unsold tickets to a zone", runProvision},
	"bulk-generate": {"mint sold guest tickets and write them to a PDF", runBulkGenerate},
	"export":        {"write the ticket snapshot workbook", runExport},
	"create-user":   {"create a staff account", runCreateUser},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := run(context.Background(), os.Args[1:], os.Stdout, openEnv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, open func() (*env, error)) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}

	e, err := open()
	if err != nil {
		return err
	}
	return cmd.run(ctx, e, args[1:], out)
}

func printUsage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "usage: ticketctl <command> [flags]")
	fmt.Fprintln(out)
	for _, name := range names {
		fmt.Fprintf(out, "  %-14s %s\n", name, commands[name].summary)
	}
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.NewSystem()
	tickets := store.NewGormTicketStore(db)
	reports := service.NewReportService(tickets, filepath.Join(cfg.TempDir, "tickets.xlsx"))
	mailer := utils.NewMailer(cfg.MailTransport, utils.SMTPConfig{}, slog.Default())

	var locker broker.Locker = broker.NewLocalLocker()
	if cfg.RedisAddr != "" {
		client, err := broker.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		locker = broker.NewRedisLocker(client)
	}

	return &env{
		tickets: service.NewTicketService(tickets, locker, clk),
		reports: reports,
		auth:    service.NewAuthService(store.NewGormUserStore(db), mailer, clk, []byte(cfg.JWTSecret), cfg.ClientURL, slog.Default()),
		assets:  cfg.AssetsDir,
		bulk:    cfg.BulkTicketsPerZone,
	}, nil
}

func parseFlags(fs *pflag.FlagSet, args []string) (bool, error) {
	fs.BoolP("help", "h", false, "show help")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	if help, _ := fs.GetBool("help"); help {
		fs.PrintDefaults()
		return false, nil
	}
	return true, nil
}

var errMissingFlag = errors.New("missing required flag")
