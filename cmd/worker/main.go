package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/app"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/booking"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/invoice"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/docstore"
	"github.com/rajanjha-rb/brothers-holidays-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("init document store", slog.Any("error", err))
		os.Exit(1)
	}

	invoiceRepo := invoice.NewRepository(store)
	bookingRepo := booking.NewRepository(store)
	invoiceService := invoice.NewService(invoiceRepo, bookingRepo, invoice.Defaults{
		Company: invoice.CompanyProfile{
			Name:    cfg.CompanyName,
			Address: cfg.CompanyAddress,
			Phone:   cfg.CompanyPhone,
			Email:   cfg.CompanyEmail,
			Website: cfg.CompanyWebsite,
			Logo:    cfg.CompanyLogo,
		},
		Currency:            cfg.DefaultCurrency,
		TaxRate:             cfg.DefaultTaxRate,
		Terms:               cfg.DefaultTerms,
		PaymentInstructions: cfg.DefaultInstructions,
	}, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSendReminder, Handler: jobs.NewSendReminderHandler(invoiceService, logger)},
			{Type: jobs.TaskOverdueScan, Handler: jobs.NewOverdueScanHandler(invoiceService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueScanCron, Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func newStore(ctx context.Context, cfg *app.Config) (docstore.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return docstore.NewPostgresStore(ctx, cfg.PGDSN)
	case "memory":
		return docstore.NewMemoryStore(), nil
	default:
		return docstore.NewAppwriteClient(cfg.AppwriteEndpoint, cfg.AppwriteProject, cfg.AppwriteKey, cfg.AppwriteDatabase), nil
	}
}
