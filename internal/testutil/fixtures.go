package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocketl/internal/models"
)

// Logger returns a logger that discards everything.
func Logger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Dec parses a decimal literal into a valid NullDecimal.
func Dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PriceRecord builds a fully populated raw price record.
func PriceRecord(date time.Time, code int64, closePrice string) models.PriceRecord {
	return models.PriceRecord{
		Date:             Ptr(date),
		SecuritiesCode:   Ptr(code),
		Open:             Dec(closePrice),
		High:             Dec(closePrice),
		Low:              Dec(closePrice),
		Close:            Dec(closePrice),
		Volume:           Dec("1000"),
		AdjustmentFactor: Ptr(1.0),
		ExpectedDividend: Ptr(0.0),
		SupervisionFlag:  Ptr(false),
	}
}

// MetadataRecord builds a raw metadata record with the given issued shares.
func MetadataRecord(code int64, name, issuedShares string) models.MetadataRecord {
	return models.MetadataRecord{
		SecuritiesCode:     Ptr(code),
		Name:               Ptr(name),
		Section:            Ptr("First Section (Domestic)"),
		NewMarketSegment:   Ptr("Prime Market"),
		SectorName33:       Ptr("Fishery, Agriculture and Forestry"),
		SectorName17:       Ptr("FOODS"),
		NewIndexSeriesSize: Ptr("TOPIX Small 2"),
		IssuedShares:       Dec(issuedShares),
	}
}

// WriteFile writes lines joined by newlines into dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// Header lines of the extract files, including columns the pipeline ignores.
const (
	PriceHeader     = "RowId,Date,SecuritiesCode,Open,High,Low,Close,Volume,AdjustmentFactor,ExpectedDividend,SupervisionFlag,Target"
	StockListHeader = "SecuritiesCode,EffectiveDate,Name,Section/Products,NewMarketSegment,33SectorCode,33SectorName,17SectorCode,17SectorName,NewIndexSeriesSizeCode,NewIndexSeriesSize,IssuedShares"
)

// WriteExtracts writes the three extract files into dir.
func WriteExtracts(t *testing.T, dir string, primary, secondary, stockList []string) {
	t.Helper()

	WriteFile(t, dir, "stock_prices.csv", append([]string{PriceHeader}, primary...)...)
	WriteFile(t, dir, "secondary_stock_prices.csv", append([]string{PriceHeader}, secondary...)...)
	WriteFile(t, dir, "stock_list.csv", append([]string{StockListHeader}, stockList...)...)
}
