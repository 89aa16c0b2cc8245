// Package transform holds the business rules of the pipeline: row cleaning,
// the cross-dataset consistency check, the price merge with market-cap
// derivation and the incremental metadata selection.
package transform

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
)

// DatasetKind identifies which extract a dataset came from.
type DatasetKind string

const (
	DatasetPrimary   DatasetKind = "primary"
	DatasetSecondary DatasetKind = "secondary"
	DatasetMetadata  DatasetKind = "metadata"
)

// Required fields per dataset.
var (
	PriceRequiredFields    = []string{models.ColumnSecuritiesCode, models.ColumnDate}
	MetadataRequiredFields = []string{models.ColumnSecuritiesCode}
)

// metadataRenames maps stock-list source labels to canonical column names.
var metadataRenames = map[string]string{
	"Section/Products": models.ColumnSection,
	"33SectorName":     models.ColumnSectorName33,
	"17SectorName":     models.ColumnSectorName17,
}

// missingPlaceholder is the literal the stock list uses for "no value".
const missingPlaceholder = "-"

// CanonicalMetadataColumn returns the canonical name of a stock-list column label.
func CanonicalMetadataColumn(label string) string {
	if name, ok := metadataRenames[label]; ok {
		return name
	}
	return label
}

// Row is a record the cleaner can deduplicate and check for missing values.
type Row interface {
	Fingerprint() string
	IsMissing(column string) (bool, error)
}

// Clean drops rows missing any of the required columns, then removes exact
// duplicates keeping the first occurrence. The input slice is not modified.
func Clean[T Row](log *zap.SugaredLogger, kind DatasetKind, rows []T, required []string) ([]T, error) {
	before := len(rows)

	seen := make(map[string]struct{}, len(rows))
	cleaned := make([]T, 0, len(rows))
	for i, row := range rows {
		keep := true
		for _, column := range required {
			isMissing, err := row.IsMissing(column)
			if err != nil {
				log.Errorw("Preprocessing failed", "dataset", kind, "row", i, "error", err)
				return nil, apperrors.ForDataset(apperrors.ErrPreprocessing, string(kind), err)
			}
			if isMissing {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		key := row.Fingerprint()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, row)
	}

	log.Infow("Preprocessed dataset",
		"dataset", kind,
		"rows_before", before,
		"rows_after", len(cleaned),
	)
	return cleaned, nil
}

// CleanPrices cleans a primary or secondary price dataset.
func CleanPrices(log *zap.SugaredLogger, kind DatasetKind, rows []models.PriceRecord) ([]models.PriceRecord, error) {
	if kind != DatasetPrimary && kind != DatasetSecondary {
		return nil, apperrors.ForDataset(apperrors.ErrPreprocessing, string(kind),
			fmt.Errorf("not a price dataset"))
	}
	return Clean(log, kind, rows, PriceRequiredFields)
}

// CleanMetadata normalizes the text columns of the stock list, cleans it and
// keeps the first row per security code.
func CleanMetadata(log *zap.SugaredLogger, rows []models.MetadataRecord) ([]models.MetadataRecord, error) {
	normalized := make([]models.MetadataRecord, len(rows))
	for i, row := range rows {
		normalized[i] = NormalizeMetadata(row)
	}

	cleaned, err := Clean(log, DatasetMetadata, normalized, MetadataRequiredFields)
	if err != nil {
		return nil, err
	}

	byCode := make(map[int64]struct{}, len(cleaned))
	unique := cleaned[:0]
	for _, row := range cleaned {
		code := *row.SecuritiesCode
		if _, dup := byCode[code]; dup {
			continue
		}
		byCode[code] = struct{}{}
		unique = append(unique, row)
	}
	if dropped := len(cleaned) - len(unique); dropped > 0 {
		log.Warnw("Dropped metadata rows sharing a securities code", "dropped", dropped)
	}
	return unique, nil
}

// NormalizeMetadata trims every text column and turns empty strings and the
// "-" placeholder into missing values.
func NormalizeMetadata(row models.MetadataRecord) models.MetadataRecord {
	for _, field := range row.TextFields() {
		if *field == nil {
			continue
		}
		v := strings.TrimSpace(**field)
		if v == "" || v == missingPlaceholder {
			*field = nil
			continue
		}
		*field = &v
	}
	return row
}
