// Command etl runs the stock market ETL once and exits non-zero on failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stocketl/internal/config"
	"stocketl/internal/database"
	"stocketl/internal/extract"
	"stocketl/internal/load"
	"stocketl/internal/logger"
	"stocketl/internal/metrics"
	"stocketl/internal/pipeline"
	"stocketl/internal/store"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("ETL run failed: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if cfg.MigrateOnStart {
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := store.New(dbManager.DB(), cfg.LoadBatchSize, log)
	recorder := metrics.New()
	p := pipeline.New(
		extract.NewCSVExtractor(cfg.FilesPath, log),
		s,
		load.NewLoader(s, cfg.LoadAtomic, log),
		log,
		pipeline.WithMetrics(recorder),
	)

	result, runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := recorder.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL); err != nil {
			log.Warnw("failed to push metrics", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	log.Infow("ETL run completed",
		"run_id", result.RunID,
		"primary_rows", result.PrimaryRows,
		"secondary_rows", result.SecondaryRows,
		"metadata_rows", result.MetadataRows,
		"new_metadata_rows", result.NewMetadataRows,
		"price_rows", result.PriceRows,
		"duration", result.Duration.String(),
	)
	return nil
}
