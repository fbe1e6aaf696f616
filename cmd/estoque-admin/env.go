package main

import (
	"context"
	"fmt"
	"os"

	"estoque/internal/amqp"
	"estoque/internal/backend"
	"estoque/internal/cache"
	"estoque/internal/cli"
	"estoque/internal/config"
	"estoque/internal/core"
	"estoque/internal/events"
	"estoque/internal/log"
	"estoque/internal/services"
)

// adminEnv is what every subcommand needs: configuration, a logger and the
// record service over the configured backend.
type adminEnv struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *backend.BackendResult
	records *services.RecordService
	amqp    *amqp.Client
}

// openEnv loads configuration and opens the store. Commands that write
// records pass notify so running servers and the mirror worker hear about
// the changes over AMQP.
func openEnv(ctx context.Context, notify bool) (*adminEnv, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level)

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	env := &adminEnv{cfg: cfg, logger: logger, store: store}
	var notifier core.Notifier = events.Multi{}
	if notify {
		notifier, env.amqp, err = changeNotifier(cfg, logger)
		if err != nil {
			env.Close()
			return nil, err
		}
	}
	env.records = services.NewRecordService(store.Store, notifier, cache.NewManager(cfg.CacheTTL), logger)
	return env, nil
}

// changeNotifier publishes over AMQP when a broker is configured. Without
// one nothing listens to this process, so changes go nowhere.
func changeNotifier(cfg *config.Config, logger *log.Logger) (core.Notifier, *amqp.Client, error) {
	if cfg.AMQPURL == "" {
		return events.Multi{}, nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect AMQP: %w", err)
	}
	return events.Multi{client}, client, nil
}

func (e *adminEnv) Close() {
	if e.amqp != nil {
		if err := e.amqp.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing AMQP client: %v\n", err)
		}
	}
	if err := e.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing data backend: %v\n", err)
	}
}
