package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/servipro/marketplace-api/config"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/internal/repository/postgres"
	"github.com/servipro/marketplace-api/pkg/logger"
	redismsg "github.com/servipro/marketplace-api/pkg/messaging/redis"
	"github.com/servipro/marketplace-api/pkg/metrics"
	"github.com/servipro/marketplace-api/pkg/worker"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := logger.New(nil)
		boot.Fatal(err, "failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.New(&logger.Config{Level: level, Pretty: cfg.Log.Pretty, Output: os.Stdout})

	var outbox repository.OutboxRepository
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		outbox = memory.NewStore().Outbox()
		log.Warn("running with in-memory storage, the worker sees no API events")
	default:
		db, err := postgres.NewDB(cfg.Database, log)
		if err != nil {
			log.Fatal(err, "failed to connect to database")
		}
		defer db.Close()
		outbox = postgres.NewOutboxRepository(db)
	}

	broker, err := redismsg.NewBroker(cfg.Redis, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.New(cfg.Metrics.Namespace + "_worker")
	processor := worker.NewOutboxProcessor(outbox, broker, m, log, cfg.Outbox)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor.Run(ctx)
}
