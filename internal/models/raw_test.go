package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func samplePrice() PriceRecord {
	return PriceRecord{
		Date:             ptr(time.Date(2021, 12, 3, 0, 0, 0, 0, time.UTC)),
		SecuritiesCode:   ptr(int64(1301)),
		Close:            decimal.NewNullDecimal(decimal.RequireFromString("2734")),
		AdjustmentFactor: ptr(1.0),
		SupervisionFlag:  ptr(false),
	}
}

func TestPriceRecordFingerprint(t *testing.T) {
	a, b := samplePrice(), samplePrice()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("identical records must share a fingerprint")
	}

	b.Volume = decimal.NewNullDecimal(decimal.Zero)
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("missing and zero volume must differ")
	}

	c := samplePrice()
	c.SupervisionFlag = nil
	if a.Fingerprint() == c.Fingerprint() {
		t.Errorf("missing and false flag must differ")
	}
}

func TestMetadataRecordFingerprint(t *testing.T) {
	a := MetadataRecord{SecuritiesCode: ptr(int64(1)), Name: ptr("A"), Section: nil}
	b := MetadataRecord{SecuritiesCode: ptr(int64(1)), Name: nil, Section: ptr("A")}
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("values in different columns must not collide")
	}

	c := MetadataRecord{SecuritiesCode: ptr(int64(1)), Name: ptr("")}
	d := MetadataRecord{SecuritiesCode: ptr(int64(1))}
	if c.Fingerprint() == d.Fingerprint() {
		t.Errorf("empty and missing name must differ")
	}
}

func TestIsMissing(t *testing.T) {
	p := samplePrice()
	tests := []struct {
		column string
		want   bool
	}{
		{ColumnDate, false},
		{ColumnSecuritiesCode, false},
		{ColumnClose, false},
		{ColumnOpen, true},
		{ColumnVolume, true},
		{ColumnExpectedDividend, true},
		{ColumnSupervisionFlag, false},
	}
	for _, tt := range tests {
		got, err := p.IsMissing(tt.column)
		if err != nil {
			t.Fatalf("IsMissing(%q): %v", tt.column, err)
		}
		if got != tt.want {
			t.Errorf("IsMissing(%q) = %v, want %v", tt.column, got, tt.want)
		}
	}

	if _, err := p.IsMissing(ColumnName); err == nil {
		t.Errorf("expected error for a metadata column on a price record")
	}

	m := MetadataRecord{SecuritiesCode: ptr(int64(1))}
	if missing, _ := m.IsMissing(ColumnIssuedShares); !missing {
		t.Errorf("expected issued shares to be missing")
	}
	if _, err := m.IsMissing("Target"); err == nil {
		t.Errorf("expected error for unknown column")
	}
}

func TestTextFields(t *testing.T) {
	m := MetadataRecord{Name: ptr("x")}
	fields := m.TextFields()
	if len(fields) != 6 {
		t.Fatalf("expected 6 text fields, got %d", len(fields))
	}
	*fields[0] = nil
	if m.Name != nil {
		t.Errorf("expected TextFields to address the record's own fields")
	}
}
