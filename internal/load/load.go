// Package load appends the new metadata and the enriched prices of a run.
package load

import (
	"context"

	"go.uber.org/zap"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
	"stocketl/internal/store"
)

// Result reports how many rows a load appended.
type Result struct {
	MetadataRows    int
	PriceRows       int
	SkippedMetadata bool
}

// Loader appends metadata before prices so every price row references an
// existing security. When atomic is set both appends share one transaction.
type Loader struct {
	store  store.Store
	atomic bool
	log    *zap.SugaredLogger
}

// NewLoader creates a Loader.
func NewLoader(s store.Store, atomic bool, log *zap.SugaredLogger) *Loader {
	return &Loader{store: s, atomic: atomic, log: log}
}

// Load appends newMetadata, skipping the step when it is empty, then prices.
func (l *Loader) Load(ctx context.Context, newMetadata []models.StockMetadata, prices []models.StockPrice) (*Result, error) {
	l.log.Infow("Start loading of stocks data", "atomic", l.atomic)

	var err error
	if l.atomic {
		err = l.store.Transaction(ctx, func(tx store.Store) error {
			return appendAll(ctx, tx, l.log, newMetadata, prices)
		})
	} else {
		err = appendAll(ctx, l.store, l.log, newMetadata, prices)
	}
	if err != nil {
		l.log.Errorw("Load of stocks data to db failed", "error", err)
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap(apperrors.ErrLoad, err)
		}
		return nil, err
	}

	l.log.Infow("Successfully loaded stocks data",
		"metadata_rows", len(newMetadata),
		"price_rows", len(prices),
	)
	return &Result{
		MetadataRows:    len(newMetadata),
		PriceRows:       len(prices),
		SkippedMetadata: len(newMetadata) == 0,
	}, nil
}

func appendAll(ctx context.Context, s store.Store, log *zap.SugaredLogger, newMetadata []models.StockMetadata, prices []models.StockPrice) error {
	if len(newMetadata) == 0 {
		log.Infow("No new stocks metadata to load")
	} else if err := s.AppendMetadata(ctx, newMetadata); err != nil {
		return err
	}
	return s.AppendPrices(ctx, prices)
}
