package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"estoque/internal/amqp"
	"estoque/internal/cache"
	"estoque/internal/cli"
	"estoque/internal/core"
	"estoque/internal/events"
	apphttp "estoque/internal/http"
	"estoque/internal/log"
	"estoque/internal/middleware/ratelimit"
	"estoque/internal/seed"
	"estoque/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	ctx := context.Background()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fail(ctx, "Failed to initialize data backend", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Local subscribers get every change; AMQP fans it out to other processes.
	hub := events.NewHub()
	notifiers := events.Multi{hub}
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Fail(ctx, "Failed to initialize AMQP client", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, amqpClient)
		logger.Info("AMQP change notifications enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - changes are only delivered in-process")
	}

	records := services.NewRecordService(store.Store, notifiers, cache.NewManager(cfg.CacheTTL), logger)

	if cfg.SeedDemo {
		if err := seedIfEmpty(ctx, store.Store, records, logger); err != nil {
			logger.Fail(ctx, "Failed to seed demo data", err)
		}
	}

	changes, unsubscribe := hub.Subscribe()
	refresher := services.NewDashboardRefresher(store.Store, services.RefresherConfig{
		Interval: cfg.RefreshInterval,
		Changes:  changes,
	}, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Records:   records,
		Dashboard: refresher,
		Logger:    logger,
		JWTSecret: cfg.AuthJWTSecret,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			CleanupInterval:   5 * time.Minute,
			IdleTimeout:       10 * time.Minute,
		},
		Ready: readiness(store.Store),
	})
	if err != nil {
		logger.Fail(ctx, "Failed to create HTTP server", err)
		os.Exit(1)
	}

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Fail(shutdownCtx, "Server shutdown error", err)
		}
		if err := refresher.Stop(shutdownCtx); err != nil {
			logger.Fail(shutdownCtx, "Dashboard refresher stop error", err)
		}
		unsubscribe()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Fail(shutdownCtx, "AMQP close error", err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Fail(shutdownCtx, "Data backend close error", err)
		}
	})

	if err := refresher.Start(runCtx); err != nil {
		logger.Fail(ctx, "Failed to start dashboard refresher", err)
		os.Exit(1)
	}

	// Writes made by other processes reach this one through its own queue.
	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeChanges(runCtx, remoteChangeHandler(records, refresher, logger))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Fail(runCtx, "Change consumption stopped", err)
			}
		}()
	}

	logger.Info("Starting estoque server", "port", cfg.Port, "backend", cfg.DataBackend,
		"refresh_interval", cfg.RefreshInterval.String(), "auth", cfg.AuthJWTSecret != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fail(ctx, "Server error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}

type (
	listInvalidator interface{ Invalidate(table string) }
	refreshTrigger  interface{ Trigger() }
)

// remoteChangeHandler drops the cached lists a remote write touched and
// schedules a dashboard refresh.
func remoteChangeHandler(records listInvalidator, refresher refreshTrigger, logger *log.Logger) func(context.Context, *amqp.ChangeMessage) error {
	return func(ctx context.Context, msg *amqp.ChangeMessage) error {
		logger.DebugContext(ctx, "Remote change received",
			log.FieldMessageID, msg.MessageID, log.FieldTable, msg.Table, log.FieldOperation, msg.Op)
		switch msg.Table {
		case core.TableReceipts, core.TableWithdrawals, core.TableWithdrawalItems:
			records.Invalidate(msg.Table)
		default:
			records.Invalidate(core.TableReceipts)
			records.Invalidate(core.TableWithdrawals)
			records.Invalidate(core.TableWithdrawalItems)
		}
		refresher.Trigger()
		return nil
	}
}

// seedIfEmpty writes demo records when the store has no receipts yet.
func seedIfEmpty(ctx context.Context, store core.Store, records *services.RecordService, logger *log.Logger) error {
	existing, err := store.ListReceipts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Skipping demo seed - store already has data", log.FieldReceipts, len(existing))
		return nil
	}
	counts, err := seed.Run(ctx, records, seed.DefaultOptions())
	if err != nil {
		return err
	}
	logger.Info("Demo data seeded",
		log.FieldReceipts, counts.Receipts,
		log.FieldWithdrawals, counts.Withdrawals,
		log.FieldItems, counts.Items)
	return nil
}

// readiness pings SQL backends; the memory store is always ready.
func readiness(store core.Store) func(context.Context) error {
	pinger, ok := store.(interface{ DB() *sqlx.DB })
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		return pinger.DB().PingContext(ctx)
	}
}
