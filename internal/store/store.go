// Package store persists stock metadata, stock prices and run audit entries
// through GORM.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
)

// DefaultBatchSize is the number of rows per INSERT statement when none is configured.
const DefaultBatchSize = 500

// Dataset names used in load errors.
const (
	DatasetMetadata = "metadata"
	DatasetPrices   = "prices"
)

// Store defines the persistence operations the pipeline needs.
type Store interface {
	ExistingSecuritiesCodes(ctx context.Context) ([]int64, error)
	AppendMetadata(ctx context.Context, rows []models.StockMetadata) error
	AppendPrices(ctx context.Context, rows []models.StockPrice) error
	// Transaction runs fn against a Store bound to a single database
	// transaction, committing when fn returns nil.
	Transaction(ctx context.Context, fn func(Store) error) error
	RecordRun(ctx context.Context, run *models.EtlRun)
}

// gormStore implements Store on a GORM connection.
type gormStore struct {
	db        *gorm.DB
	batchSize int
	log       *zap.SugaredLogger
}

// New creates a Store. A non-positive batchSize falls back to DefaultBatchSize.
func New(db *gorm.DB, batchSize int, log *zap.SugaredLogger) Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &gormStore{db: db, batchSize: batchSize, log: log}
}

// ExistingSecuritiesCodes returns every security code in StockMetadata, ascending.
func (s *gormStore) ExistingSecuritiesCodes(ctx context.Context) ([]int64, error) {
	var codes []int64
	err := s.db.WithContext(ctx).
		Model(&models.StockMetadata{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: models.ColumnSecuritiesCode}}).
		Pluck(models.ColumnSecuritiesCode, &codes).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuery, err)
	}
	return codes, nil
}

// AppendMetadata inserts new metadata rows. It never updates existing rows.
// The caller's slice is left untouched.
func (s *gormStore) AppendMetadata(ctx context.Context, rows []models.StockMetadata) error {
	if len(rows) == 0 {
		return nil
	}
	batch := append([]models.StockMetadata(nil), rows...)
	if err := s.db.WithContext(ctx).CreateInBatches(&batch, s.batchSize).Error; err != nil {
		return apperrors.ForDataset(apperrors.ErrLoad, DatasetMetadata,
			fmt.Errorf("insert %d rows into %s: %w", len(rows), models.StockMetadata{}.TableName(), err))
	}
	s.log.Debugw("appended metadata", "rows", len(rows))
	return nil
}

// AppendPrices inserts price rows. The referenced metadata must already exist.
// Generated ids are assigned on a copy so the same rows can be appended again.
func (s *gormStore) AppendPrices(ctx context.Context, rows []models.StockPrice) error {
	if len(rows) == 0 {
		return nil
	}
	batch := append([]models.StockPrice(nil), rows...)
	for i := range batch {
		batch[i].ID = 0
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&batch, s.batchSize).Error; err != nil {
		return apperrors.ForDataset(apperrors.ErrLoad, DatasetPrices,
			fmt.Errorf("insert %d rows into %s: %w", len(rows), models.StockPrice{}.TableName(), err))
	}
	s.log.Debugw("appended prices", "rows", len(rows))
	return nil
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, batchSize: s.batchSize, log: s.log})
	})
}

// RecordRun writes the audit entry of a run. Errors are logged but never
// propagate so the outcome of the run itself is unaffected.
func (s *gormStore) RecordRun(ctx context.Context, run *models.EtlRun) {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.log.Errorw("failed to record etl run",
			"error", err,
			"run_id", run.RunID,
			"status", run.Status,
		)
	}
}
