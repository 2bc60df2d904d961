package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gridiron/go/internal/audit"
	"github.com/mcdev12/gridiron/go/internal/dbconfig"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := setupDatabase(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("setup database")
	}
	defer db.Close()

	if err := runMigrations(db, cfg.Migrations.Dir); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	services := setupServices(db, cfg)

	// Audit publisher: JetStream in real deployments, log sink otherwise.
	var (
		publisher  audit.Publisher
		connStatus audit.ConnStatus
	)
	if cfg.NATS.Enabled {
		jsCfg := audit.DefaultJetStreamConfig()
		jsCfg.URL = getEnv("NATS_URL", cfg.NATS.URL)
		jsPublisher, err := audit.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create JetStream publisher")
		}
		defer func() {
			if err := jsPublisher.Close(); err != nil {
				log.Error().Err(err).Msg("close publisher")
			}
		}()
		publisher = jsPublisher
		connStatus = jsPublisher
	} else {
		publisher = audit.LogPublisher{}
	}

	outboxCfg := audit.DefaultOutboxConfig()
	outboxCfg.DatabaseURL = dbCfg.DSN()
	outboxCfg.NotifyChannel = cfg.Audit.Outbox.NotifyChannel
	outboxCfg.FallbackInterval = cfg.Audit.Outbox.FallbackInterval
	outboxCfg.BatchSize = cfg.Audit.Outbox.BatchSize
	outboxWorker, err := audit.NewOutboxWorker(db, publisher, outboxCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create audit outbox worker")
	}

	retentionWorker := audit.NewRetentionWorker(services.Recorder, audit.RetentionConfig{
		Interval:      cfg.Audit.CleanupInterval,
		RetentionDays: cfg.Audit.RetentionDays,
	})

	checker := audit.NewHealthChecker(db, outboxWorker, connStatus)
	server := setupServer(getEnv("PORT", cfg.Server.Port), checker)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := outboxWorker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start audit outbox worker")
	}
	if err := retentionWorker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start audit retention worker")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server exited unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := retentionWorker.Stop(); err != nil {
		log.Error().Err(err).Msg("stop retention worker")
	}
	if err := outboxWorker.Stop(); err != nil {
		log.Error().Err(err).Msg("stop outbox worker")
	}
	log.Info().Msg("graceful shutdown complete")
}
