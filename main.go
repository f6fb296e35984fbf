package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"eventra/broker"
	"eventra/clock"
	"eventra/config"
	"eventra/database"
	"eventra/handler"
	"eventra/helper"
	"eventra/metrics"
	"eventra/router"
	"eventra/service"
	"eventra/store"
	"eventra/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func newLogger(cfg *config.Settings) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Settings, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}

	var (
		bus    broker.Broker = broker.NewLocalBroker()
		locker broker.Locker = broker.NewLocalLocker()
	)
	if cfg.RedisAddr != "" {
		client, err := broker.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		bus = broker.NewRedisBroker(client, broker.StatsChannel)
		locker = broker.NewRedisLocker(client)
		logger.Info("using redis for live stats and locks", "addr", cfg.RedisAddr)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	clk := clock.NewSystem()
	tickets := store.NewGormTicketStore(db)
	users := store.NewGormUserStore(db)

	reportOpts := []service.ReportOption{
		service.WithBroker(bus),
		service.WithReportMetrics(m),
		service.WithReportLogger(logger),
	}
	cld, err := helper.InitCloudinary(cfg.CloudinaryURL)
	if err != nil {
		return err
	}
	if cld != nil {
		reportOpts = append(reportOpts, service.WithArchiver(service.NewCloudinaryArchiver(cld, "eventra/snapshots", clk)))
	}
	reports := service.NewReportService(tickets, filepath.Join(cfg.TempDir, "tickets.xlsx"), reportOpts...)

	ticketSvc := service.NewTicketService(tickets, locker, clk,
		service.WithRefresher(reports),
		service.WithTicketMetrics(m),
		service.WithTicketLogger(logger),
		service.WithAssetsDir(cfg.AssetsDir),
	)

	mailer := utils.NewMailer(cfg.MailTransport, utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
	auth := service.NewAuthService(users, mailer, clk, []byte(cfg.JWTSecret), cfg.ClientURL, logger)

	if err := database.SeedData(ctx, tickets, auth, ticketSvc, database.SeedOptions{
		AdminEmail:         cfg.AdminEmail,
		AdminPassword:      cfg.AdminPassword,
		SeedTicketsPerZone: cfg.SeedTicketsPerZone,
	}); err != nil {
		return err
	}

	scheduler, err := helper.StartScheduler(cfg.SnapshotCron, reports, auth, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown", "error", err)
		}
	}()

	h := handler.New(ticketSvc, reports, auth, bus, handler.Options{
		SecureCookies:      cfg.IsProduction(),
		AssetsDir:          cfg.AssetsDir,
		BulkTicketsPerZone: cfg.BulkTicketsPerZone,
	}, logger)
	app := router.New(h, auth, router.Config{ClientURL: cfg.ClientURL, Gatherer: registry})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	reports.Wait()
	return nil
}
