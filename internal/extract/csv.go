// Package extract reads the daily stock extracts from the local filesystem.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
	"stocketl/internal/transform"
)

// Extract file names under the configured base path.
const (
	PrimaryPricesFile   = "stock_prices.csv"
	SecondaryPricesFile = "secondary_stock_prices.csv"
	StockListFile       = "stock_list.csv"
)

// PriceColumns are the columns kept from both price extracts.
var PriceColumns = []string{
	models.ColumnDate, models.ColumnSecuritiesCode, models.ColumnOpen, models.ColumnHigh,
	models.ColumnLow, models.ColumnClose, models.ColumnVolume, models.ColumnAdjustmentFactor,
	models.ColumnExpectedDividend, models.ColumnSupervisionFlag,
}

// MetadataColumns are the source labels kept from the stock list.
var MetadataColumns = []string{
	"SecuritiesCode", "Name", "Section/Products", "NewMarketSegment",
	"33SectorName", "17SectorName", "NewIndexSeriesSize", "IssuedShares",
}

// naValues are the cell values read as missing.
var naValues = map[string]bool{
	"": true, "NA": true, "N/A": true, "#N/A": true,
	"NaN": true, "nan": true, "NULL": true, "null": true,
}

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006/01/02"}

// Extracted holds the three raw datasets of one run.
type Extracted struct {
	Primary   []models.PriceRecord
	Secondary []models.PriceRecord
	Metadata  []models.MetadataRecord
}

// CSVExtractor reads the extracts from a base directory.
type CSVExtractor struct {
	basePath string
	log      *zap.SugaredLogger
}

// NewCSVExtractor creates an extractor rooted at basePath.
func NewCSVExtractor(basePath string, log *zap.SugaredLogger) *CSVExtractor {
	return &CSVExtractor{basePath: basePath, log: log}
}

// Extract reads the primary prices, secondary prices and stock list.
func (e *CSVExtractor) Extract(ctx context.Context) (*Extracted, error) {
	e.log.Infow("Start extraction of stocks data", "base_path", e.basePath)

	primary, err := e.readPrices(ctx, PrimaryPricesFile, transform.DatasetPrimary)
	if err != nil {
		return nil, err
	}
	secondary, err := e.readPrices(ctx, SecondaryPricesFile, transform.DatasetSecondary)
	if err != nil {
		return nil, err
	}
	metadata, err := e.readMetadata(ctx, StockListFile)
	if err != nil {
		return nil, err
	}

	e.log.Infow("Successfully extracted stocks data",
		"primary_rows", len(primary),
		"secondary_rows", len(secondary),
		"metadata_rows", len(metadata),
	)
	return &Extracted{Primary: primary, Secondary: secondary, Metadata: metadata}, nil
}

func (e *CSVExtractor) readPrices(ctx context.Context, name string, kind transform.DatasetKind) ([]models.PriceRecord, error) {
	var records []models.PriceRecord
	err := e.scan(ctx, name, PriceColumns, nil, func(row cells) error {
		var r models.PriceRecord
		var err error
		if r.Date, err = parseDate(row.get(models.ColumnDate)); err != nil {
			return row.fail(models.ColumnDate, err)
		}
		if r.SecuritiesCode, err = parseCode(row.get(models.ColumnSecuritiesCode)); err != nil {
			return row.fail(models.ColumnSecuritiesCode, err)
		}
		for _, f := range []struct {
			column string
			dst    *decimal.NullDecimal
		}{
			{models.ColumnOpen, &r.Open},
			{models.ColumnHigh, &r.High},
			{models.ColumnLow, &r.Low},
			{models.ColumnClose, &r.Close},
			{models.ColumnVolume, &r.Volume},
		} {
			if *f.dst, err = parseDecimal(row.get(f.column)); err != nil {
				return row.fail(f.column, err)
			}
		}
		if r.AdjustmentFactor, err = parseFloat(row.get(models.ColumnAdjustmentFactor)); err != nil {
			return row.fail(models.ColumnAdjustmentFactor, err)
		}
		if r.ExpectedDividend, err = parseFloat(row.get(models.ColumnExpectedDividend)); err != nil {
			return row.fail(models.ColumnExpectedDividend, err)
		}
		if r.SupervisionFlag, err = parseBool(row.get(models.ColumnSupervisionFlag)); err != nil {
			return row.fail(models.ColumnSupervisionFlag, err)
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, apperrors.ForDataset(apperrors.ErrExtraction, string(kind), err)
	}
	return records, nil
}

func (e *CSVExtractor) readMetadata(ctx context.Context, name string) ([]models.MetadataRecord, error) {
	var records []models.MetadataRecord
	err := e.scan(ctx, name, MetadataColumns, transform.CanonicalMetadataColumn, func(row cells) error {
		var r models.MetadataRecord
		var err error
		if r.SecuritiesCode, err = parseCode(row.get(models.ColumnSecuritiesCode)); err != nil {
			return row.fail(models.ColumnSecuritiesCode, err)
		}
		r.Name = parseText(row.get(models.ColumnName))
		r.Section = parseText(row.get(models.ColumnSection))
		r.NewMarketSegment = parseText(row.get(models.ColumnNewMarketSegment))
		r.SectorName33 = parseText(row.get(models.ColumnSectorName33))
		r.SectorName17 = parseText(row.get(models.ColumnSectorName17))
		r.NewIndexSeriesSize = parseText(row.get(models.ColumnNewIndexSeriesSize))
		if r.IssuedShares, err = parseDecimal(row.get(models.ColumnIssuedShares)); err != nil {
			return row.fail(models.ColumnIssuedShares, err)
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, apperrors.ForDataset(apperrors.ErrExtraction, string(transform.DatasetMetadata), err)
	}
	return records, nil
}

// cells is one data row addressed by canonical column name.
type cells struct {
	file   string
	line   int
	index  map[string]int
	record []string
}

func (c cells) get(column string) string {
	i, ok := c.index[column]
	if !ok || i >= len(c.record) {
		return ""
	}
	return c.record[i]
}

func (c cells) fail(column string, err error) error {
	return fmt.Errorf("%s line %d column %s: %w", c.file, c.line, column, err)
}

// scan streams the rows of one CSV file, keeping only the selected columns.
// rename, when set, maps a source header label to its canonical column name.
func (e *CSVExtractor) scan(ctx context.Context, name string, columns []string, rename func(string) string, fn func(cells) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(e.basePath, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: missing header row", name)
		}
		return fmt.Errorf("%s: read header: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	positions := make(map[string]int, len(header))
	for i, label := range header {
		positions[strings.TrimSpace(label)] = i
	}

	index := make(map[string]int, len(columns))
	for _, label := range columns {
		i, ok := positions[label]
		if !ok {
			return fmt.Errorf("%s: missing column %q", name, label)
		}
		key := label
		if rename != nil {
			key = rename(label)
		}
		index[key] = i
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, line, err)
		}
		if err := fn(cells{file: name, line: line, index: index, record: record}); err != nil {
			return err
		}
	}

	e.log.Debugw("read extract file", "file", path, "rows", line-1)
	return nil
}

func missing(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, naValues[v]
}

func parseDate(raw string) (*time.Time, error) {
	v, na := missing(raw)
	if na {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", v)
}

func parseCode(raw string) (*int64, error) {
	v, na := missing(raw)
	if na {
		return nil, nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid securities code %q", v)
	}
	n := int64(f)
	return &n, nil
}

func parseDecimal(raw string) (decimal.NullDecimal, error) {
	v, na := missing(raw)
	if na {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid decimal %q", v)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseFloat(raw string) (*float64, error) {
	v, na := missing(raw)
	if na {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", v)
	}
	return &f, nil
}

func parseBool(raw string) (*bool, error) {
	v, na := missing(raw)
	if na {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", v)
	}
	return &b, nil
}

// parseText keeps surrounding whitespace; normalization belongs to the cleaner.
func parseText(raw string) *string {
	if naValues[raw] {
		return nil
	}
	return &raw
}
