// Package models defines the raw extract records and the persisted GORM models.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names shared by extraction, cleaning and persistence.
const (
	ColumnDate               = "Date"
	ColumnSecuritiesCode     = "SecuritiesCode"
	ColumnOpen               = "Open"
	ColumnHigh               = "High"
	ColumnLow                = "Low"
	ColumnClose              = "Close"
	ColumnVolume             = "Volume"
	ColumnAdjustmentFactor   = "AdjustmentFactor"
	ColumnExpectedDividend   = "ExpectedDividend"
	ColumnSupervisionFlag    = "SupervisionFlag"
	ColumnName               = "Name"
	ColumnSection            = "Section"
	ColumnNewMarketSegment   = "NewMarketSegment"
	ColumnSectorName33       = "SectorName33"
	ColumnSectorName17       = "SectorName17"
	ColumnNewIndexSeriesSize = "NewIndexSeriesSize"
	ColumnIssuedShares       = "IssuedShares"
)

// fieldSep separates encoded fields in a fingerprint; nullMark encodes a missing value.
const (
	fieldSep = "\x1f"
	nullMark = "\x00"
)

// PriceRecord is one raw trading record as read from a price extract.
// Every field is nullable so missing cells survive until cleaning.
type PriceRecord struct {
	Date             *time.Time
	SecuritiesCode   *int64
	Open             decimal.NullDecimal
	High             decimal.NullDecimal
	Low              decimal.NullDecimal
	Close            decimal.NullDecimal
	Volume           decimal.NullDecimal
	AdjustmentFactor *float64
	ExpectedDividend *float64
	SupervisionFlag  *bool
}

// Fingerprint encodes every field so that two records share a fingerprint
// exactly when they are identical across all columns.
func (r PriceRecord) Fingerprint() string {
	return strings.Join([]string{
		encodeTime(r.Date),
		encodeInt(r.SecuritiesCode),
		encodeDecimal(r.Open),
		encodeDecimal(r.High),
		encodeDecimal(r.Low),
		encodeDecimal(r.Close),
		encodeDecimal(r.Volume),
		encodeFloat(r.AdjustmentFactor),
		encodeFloat(r.ExpectedDividend),
		encodeBool(r.SupervisionFlag),
	}, fieldSep)
}

// IsMissing reports whether the named column holds no value.
func (r PriceRecord) IsMissing(column string) (bool, error) {
	switch column {
	case ColumnDate:
		return r.Date == nil, nil
	case ColumnSecuritiesCode:
		return r.SecuritiesCode == nil, nil
	case ColumnOpen:
		return !r.Open.Valid, nil
	case ColumnHigh:
		return !r.High.Valid, nil
	case ColumnLow:
		return !r.Low.Valid, nil
	case ColumnClose:
		return !r.Close.Valid, nil
	case ColumnVolume:
		return !r.Volume.Valid, nil
	case ColumnAdjustmentFactor:
		return r.AdjustmentFactor == nil, nil
	case ColumnExpectedDividend:
		return r.ExpectedDividend == nil, nil
	case ColumnSupervisionFlag:
		return r.SupervisionFlag == nil, nil
	}
	return false, fmt.Errorf("unknown price column %q", column)
}

// MetadataRecord is one raw security description as read from the stock list.
type MetadataRecord struct {
	SecuritiesCode     *int64
	Name               *string
	Section            *string
	NewMarketSegment   *string
	SectorName33       *string
	SectorName17       *string
	NewIndexSeriesSize *string
	IssuedShares       decimal.NullDecimal
}

// Fingerprint encodes every field of the record.
func (r MetadataRecord) Fingerprint() string {
	return strings.Join([]string{
		encodeInt(r.SecuritiesCode),
		encodeString(r.Name),
		encodeString(r.Section),
		encodeString(r.NewMarketSegment),
		encodeString(r.SectorName33),
		encodeString(r.SectorName17),
		encodeString(r.NewIndexSeriesSize),
		encodeDecimal(r.IssuedShares),
	}, fieldSep)
}

// IsMissing reports whether the named column holds no value.
func (r MetadataRecord) IsMissing(column string) (bool, error) {
	switch column {
	case ColumnSecuritiesCode:
		return r.SecuritiesCode == nil, nil
	case ColumnName:
		return r.Name == nil, nil
	case ColumnSection:
		return r.Section == nil, nil
	case ColumnNewMarketSegment:
		return r.NewMarketSegment == nil, nil
	case ColumnSectorName33:
		return r.SectorName33 == nil, nil
	case ColumnSectorName17:
		return r.SectorName17 == nil, nil
	case ColumnNewIndexSeriesSize:
		return r.NewIndexSeriesSize == nil, nil
	case ColumnIssuedShares:
		return !r.IssuedShares.Valid, nil
	}
	return false, fmt.Errorf("unknown metadata column %q", column)
}

// TextFields returns pointers to the text-valued columns, in column order.
func (r *MetadataRecord) TextFields() []**string {
	return []**string{
		&r.Name,
		&r.Section,
		&r.NewMarketSegment,
		&r.SectorName33,
		&r.SectorName17,
		&r.NewIndexSeriesSize,
	}
}

func encodeTime(t *time.Time) string {
	if t == nil {
		return nullMark
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeInt(v *int64) string {
	if v == nil {
		return nullMark
	}
	return strconv.FormatInt(*v, 10)
}

func encodeFloat(v *float64) string {
	if v == nil {
		return nullMark
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func encodeBool(v *bool) string {
	if v == nil {
		return nullMark
	}
	return strconv.FormatBool(*v)
}

func encodeString(v *string) string {
	if v == nil {
		return nullMark
	}
	return strconv.Quote(*v)
}

func encodeDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return nullMark
	}
	return d.Decimal.String()
}
