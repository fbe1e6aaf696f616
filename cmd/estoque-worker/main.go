package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"estoque/internal/amqp"
	"estoque/internal/cli"
	"estoque/internal/log"
	"estoque/internal/sheets"
	gsheet "estoque/internal/sheets/google"
	mem "estoque/internal/sheets/memory"
	"estoque/internal/worker"
)

// mirrorQueueSuffix keeps the worker's queue apart from the server's, so
// both receive every change.
const mirrorQueueSuffix = ".mirror"

func main() {
	dryRun := flag.Bool("dry-run", false, "write the mirror to an in-memory sheet instead of Google Sheets")
	once := flag.Bool("once", false, "sync a single time and exit")
	flag.Parse()

	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if !*dryRun {
		if err := cfg.ValidateMirror(); err != nil {
			logger.Error("Mirror configuration invalid", log.FieldError, err)
			os.Exit(1)
		}
	}

	logger.Info("Starting estoque-worker", "backend", cfg.DataBackend, "dry_run", *dryRun)
	ctx := context.Background()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fail(ctx, "Failed to initialize data backend", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	var writer sheets.TabWriter
	if *dryRun {
		writer = mem.New()
		logger.Info("Mirroring to in-memory sheet")
	} else {
		client, err := gsheet.New(ctx, gsheet.FromAppConfig(cfg), logger)
		if err != nil {
			logger.Fail(ctx, "Failed to initialize Google Sheets client", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	if cfg.MirrorInterval <= 0 {
		cfg.MirrorInterval = 5 * time.Minute
	}
	mirror := worker.NewMirrorWorker(store.Store, writer, logger)

	// A first full sync covers changes made while the worker was down.
	if err := mirror.Sync(ctx); err != nil {
		logger.Fail(ctx, "Startup sync failed", err)
		if *once {
			os.Exit(1)
		}
	}
	if *once {
		return
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue+mirrorQueueSuffix, logger)
		if err != nil {
			logger.Fail(ctx, "Failed to initialize AMQP client", err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - mirroring on a timer only", "interval", cfg.MirrorInterval.String())
	}

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
	})

	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeChanges(runCtx, mirror.HandleChangeMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Fail(runCtx, "Change consumption stopped", err)
			}
		}()
	}

	// The timer catches anything a lost message would have missed.
	if err := mirror.Poll(runCtx, cfg.MirrorInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fail(runCtx, "Mirror polling stopped", err)
	}

	cli.WaitForShutdown(runCtx, done)
	stats := mirror.Stats()
	logger.Info("Worker stopped gracefully", "syncs", stats.Syncs, "failures", stats.Failures, "skipped", stats.Skipped)
}
