package transform

import (
	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
)

// CodeSet is a set of security codes.
type CodeSet map[int64]struct{}

// Add inserts a code into the set.
func (s CodeSet) Add(code int64) { s[code] = struct{}{} }

// Has reports whether the set contains code.
func (s CodeSet) Has(code int64) bool {
	_, ok := s[code]
	return ok
}

// PriceCodes collects the security codes of the given price datasets.
func PriceCodes(datasets ...[]models.PriceRecord) CodeSet {
	codes := CodeSet{}
	for _, rows := range datasets {
		for _, r := range rows {
			if r.SecuritiesCode != nil {
				codes.Add(*r.SecuritiesCode)
			}
		}
	}
	return codes
}

// MetadataCodes collects the security codes of a metadata dataset.
func MetadataCodes(rows []models.MetadataRecord) CodeSet {
	codes := make(CodeSet, len(rows))
	for _, r := range rows {
		if r.SecuritiesCode != nil {
			codes.Add(*r.SecuritiesCode)
		}
	}
	return codes
}

// CheckConsistency fails with a *ConsistencyError listing every price code
// that has no metadata.
func CheckConsistency(priceCodes, metadataCodes CodeSet) error {
	var missing []int64
	for code := range priceCodes {
		if !metadataCodes.Has(code) {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewConsistencyError(missing)
	}
	return nil
}
