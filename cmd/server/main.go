package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/alert"
	"github.com/counselops/clearance/internal/config"
	"github.com/counselops/clearance/internal/core"
	"github.com/counselops/clearance/internal/core/detect"
	"github.com/counselops/clearance/internal/driver"
	"github.com/counselops/clearance/internal/metrics"
	"github.com/counselops/clearance/internal/server"
	"github.com/counselops/clearance/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	graph, err := driver.NewNeo4jDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, logger)
	if err != nil {
		logger.Fatal("failed to connect to relationship graph", zap.Error(err))
	}
	defer graph.Close(ctx)

	if err := graph.EnsureSchema(ctx); err != nil {
		logger.Warn("failed to ensure graph schema", zap.Error(err))
	}

	if err := store.Migrate(cfg.Database.URL, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	records, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to conflict store", zap.Error(err))
	}
	defer records.Close()

	m := metrics.New()

	detectors := detect.All(graph, detect.Options{
		RowLimit:          cfg.Detection.RowLimit,
		LookbackYears:     cfg.Detection.LookbackYears,
		MaxOwnershipDepth: cfg.Detection.MaxOwnershipDepth,
		MinPartnerStake:   cfg.Detection.MinPartnerStake,
	})
	checker := core.NewChecker(detectors, time.Duration(cfg.Detection.LatencyBudgetMS)*time.Millisecond, logger, m)
	resolver := core.NewResolver(records, logger)

	registry := alert.NewRegistry(logger, m)
	mailer := &alert.SMTPMailer{
		Host: cfg.Alerts.SMTPHost,
		Port: cfg.Alerts.SMTPPort,
		From: cfg.Alerts.From,
		User: cfg.Alerts.SMTPUser,
		Pass: cfg.Alerts.SMTPPassword,
	}
	dispatcher := alert.NewDispatcher(registry, mailer, records, alert.Directory(cfg.Alerts.Recipients), logger, m)

	srv := server.New(checker, resolver, dispatcher, registry, records, logger,
		cfg.Detection.PersistThreshold,
		time.Duration(cfg.Alerts.HeartbeatSeconds)*time.Second)
	r := srv.SetupRouter()

	logger.Info("starting clearance server", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
