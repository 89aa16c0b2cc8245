// Command dqcheck audits the persisted stock tables and exits 1 when they
// contain duplicates, missing values or no rows at all.
package main

import (
	"context"
	"fmt"
	"os"

	"stocketl/internal/config"
	"stocketl/internal/database"
	"stocketl/internal/logger"
	"stocketl/internal/quality"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Data quality check failed: %v", err)
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
	defer dbManager.Close()

	report, err := quality.NewAuditor(dbManager.DB()).Audit(context.Background())
	if err != nil {
		return err
	}

	for _, t := range []quality.TableReport{report.Prices, report.Metadata} {
		log.Infow("Audited table",
			"table", t.Table,
			"rows", t.Rows,
			"duplicates", t.Duplicates,
			"null_columns", len(t.NullCounts),
		)
	}
	for _, issue := range report.Issues() {
		log.Warn(issue)
	}

	if !report.Clean() {
		return fmt.Errorf("%d data quality issues found", len(report.Issues()))
	}
	log.Info("Stock tables passed all data quality checks")
	return nil
}
