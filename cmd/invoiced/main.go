package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/app"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/booking"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/invoice"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/cache"
	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/docstore"
	"github.com/rajanjha-rb/brothers-holidays-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summary caching disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

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
	if redisClient != nil {
		invoiceService.SetSummaryCache(invoice.NewRedisSummaryCache(redisClient, cfg.SummaryCacheTTL))
	}

	invoiceHandler := invoice.NewHandler(logger, invoiceService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("job client unavailable, reminders disabled", slog.Any("error", err))
	} else {
		invoiceHandler.SetReminderEnqueuer(jobClient)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		InvoiceHandler: invoiceHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
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
