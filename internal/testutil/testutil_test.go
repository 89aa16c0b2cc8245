package testutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stocketl/internal/errors"
	"stocketl/internal/models"
	"stocketl/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"StockMetadata", "StockPrices", "EtlRuns"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	if err := first.Create(&models.StockMetadata{SecuritiesCode: 1301}).Error; err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	if n := testutil.CountRows(t, second, &models.StockMetadata{}); n != 0 {
		t.Errorf("expected databases to be isolated, got %d rows", n)
	}
}

func TestFixtures(t *testing.T) {
	p := testutil.PriceRecord(testutil.Day(2021, 12, 6), 1301, "2742")
	if *p.SecuritiesCode != 1301 || !p.Close.Valid || p.Close.Decimal.String() != "2742" {
		t.Errorf("unexpected price record: %+v", p)
	}

	m := testutil.MetadataRecord(1301, "KYOKUYO", "10928283")
	if *m.Name != "KYOKUYO" || m.IssuedShares.Decimal.String() != "10928283" {
		t.Errorf("unexpected metadata record: %+v", m)
	}

	dir := t.TempDir()
	testutil.WriteExtracts(t, dir, []string{"a"}, nil, []string{"b"})
	data, err := os.ReadFile(filepath.Join(dir, "stock_list.csv"))
	if err != nil {
		t.Fatalf("failed to read stock list: %v", err)
	}
	if !strings.HasPrefix(string(data), testutil.StockListHeader+"\nb") {
		t.Errorf("unexpected stock list: %q", data)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrLoad, "LOAD_FAILED")
	testutil.AssertAppError(t, errors.NewConsistencyError([]int64{1}), "CONSISTENCY_FAILED")
}
