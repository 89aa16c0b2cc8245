package transform

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stocketl/internal/models"
)

// marketCapPlaces is the number of decimal places kept in market capitalization.
const marketCapPlaces = 2

// MarketCapitalization returns close × issued shares rounded half away from
// zero to two places. It is missing when either operand is missing.
func MarketCapitalization(closePrice, issuedShares decimal.NullDecimal) decimal.NullDecimal {
	if !closePrice.Valid || !issuedShares.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(closePrice.Decimal.Mul(issuedShares.Decimal).Round(marketCapPlaces))
}

type taggedPrice struct {
	models.PriceRecord
	isPrimary bool
}

// MergePrices unions the primary and secondary prices, orders them by
// (Date, SecuritiesCode), joins them with metadata on the security code and
// derives the market capitalization. Rows without metadata are dropped.
// Every row is stamped with runAt for both audit columns.
func MergePrices(primary, secondary []models.PriceRecord, metadata []models.MetadataRecord, runAt time.Time) []models.StockPrice {
	combined := make([]taggedPrice, 0, len(primary)+len(secondary))
	for _, r := range primary {
		combined = append(combined, taggedPrice{PriceRecord: r, isPrimary: true})
	}
	for _, r := range secondary {
		combined = append(combined, taggedPrice{PriceRecord: r, isPrimary: false})
	}

	// Stable, so primary rows precede secondary rows on equal keys.
	sort.SliceStable(combined, func(i, j int) bool {
		a, b := combined[i], combined[j]
		if !a.Date.Equal(*b.Date) {
			return a.Date.Before(*b.Date)
		}
		return *a.SecuritiesCode < *b.SecuritiesCode
	})

	shares := make(map[int64]decimal.NullDecimal, len(metadata))
	for _, m := range metadata {
		if m.SecuritiesCode == nil {
			continue
		}
		if _, ok := shares[*m.SecuritiesCode]; !ok {
			shares[*m.SecuritiesCode] = m.IssuedShares
		}
	}

	merged := make([]models.StockPrice, 0, len(combined))
	for _, r := range combined {
		issued, ok := shares[*r.SecuritiesCode]
		if !ok {
			continue
		}
		merged = append(merged, models.StockPrice{
			Date:                 *r.Date,
			SecuritiesCode:       *r.SecuritiesCode,
			Open:                 r.Open,
			High:                 r.High,
			Low:                  r.Low,
			Close:                r.Close,
			Volume:               r.Volume,
			MarketCapitalization: MarketCapitalization(r.Close, issued),
			AdjustmentFactor:     r.AdjustmentFactor,
			ExpectedDividend:     r.ExpectedDividend,
			SupervisionFlag:      r.SupervisionFlag,
			IsPrimary:            r.isPrimary,
			CreatedDateTime:      runAt,
			UpdatedDateTime:      runAt,
		})
	}
	return merged
}
