package transform

import (
	"time"

	"stocketl/internal/models"
)

// SelectNewMetadata returns the metadata rows whose security code is not yet
// persisted, in input order, without the issued-shares column and stamped
// with runAt. An empty result is a normal outcome.
func SelectNewMetadata(today []models.MetadataRecord, existing CodeSet, runAt time.Time) []models.StockMetadata {
	selected := make([]models.StockMetadata, 0)
	picked := CodeSet{}
	for _, m := range today {
		if m.SecuritiesCode == nil {
			continue
		}
		code := *m.SecuritiesCode
		if existing.Has(code) || picked.Has(code) {
			continue
		}
		picked.Add(code)
		selected = append(selected, models.StockMetadata{
			SecuritiesCode:     code,
			Name:               m.Name,
			Section:            m.Section,
			NewMarketSegment:   m.NewMarketSegment,
			SectorName33:       m.SectorName33,
			SectorName17:       m.SectorName17,
			NewIndexSeriesSize: m.NewIndexSeriesSize,
			CreatedDateTime:    runAt,
			UpdatedDateTime:    runAt,
		})
	}
	return selected
}
