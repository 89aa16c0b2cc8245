package store

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
	"stocketl/internal/testutil"
)

var runAt = time.Date(2022, 1, 5, 9, 30, 0, 0, time.UTC)

func metadata(code int64, name string) models.StockMetadata {
	return models.StockMetadata{
		SecuritiesCode:  code,
		Name:            testutil.Ptr(name),
		CreatedDateTime: runAt,
		UpdatedDateTime: runAt,
	}
}

func price(code int64, closePrice string) models.StockPrice {
	return models.StockPrice{
		Date:            testutil.Day(2021, 12, 3),
		SecuritiesCode:  code,
		Close:           testutil.Dec(closePrice),
		IsPrimary:       true,
		CreatedDateTime: runAt,
		UpdatedDateTime: runAt,
	}
}

func TestExistingSecuritiesCodes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := New(db, 2, testutil.Logger())
	ctx := context.Background()

	codes, err := s.ExistingSecuritiesCodes(ctx)
	testutil.AssertNoError(t, err)
	if len(codes) != 0 {
		t.Fatalf("expected empty store, got %v", codes)
	}

	testutil.AssertNoError(t, s.AppendMetadata(ctx, []models.StockMetadata{
		metadata(1332, "Nippon Suisan"), metadata(1301, "KYOKUYO"), metadata(1333, "Maruha"),
	}))

	codes, err = s.ExistingSecuritiesCodes(ctx)
	testutil.AssertNoError(t, err)
	want := []int64{1301, 1332, 1333}
	if len(codes) != len(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("expected %v, got %v", want, codes)
		}
	}
}

func TestAppendPrices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := New(db, 2, testutil.Logger())
	ctx := context.Background()

	testutil.AssertNoError(t, s.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "KYOKUYO")}))

	rows := []models.StockPrice{price(1301, "1"), price(1301, "2"), price(1301, "3")}
	testutil.AssertNoError(t, s.AppendPrices(ctx, rows))
	testutil.AssertNoError(t, s.AppendPrices(ctx, rows[:1]))
	testutil.AssertNoError(t, s.AppendPrices(ctx, rows))

	if n := testutil.CountRows(t, db, &models.StockPrice{}); n != 7 {
		t.Errorf("expected 7 appended rows, got %d", n)
	}
	for i, row := range rows {
		if row.ID != 0 {
			t.Errorf("caller row %d was modified: ID %d", i, row.ID)
		}
	}

	var stored models.StockPrice
	if err := db.Order("id").First(&stored).Error; err != nil {
		t.Fatalf("failed to read back price: %v", err)
	}
	if stored.ID == 0 || !stored.Close.Decimal.Equal(testutil.Dec("1").Decimal) || !stored.IsPrimary {
		t.Errorf("unexpected stored row: %+v", stored)
	}
}

func TestAppendFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := New(db, 0, testutil.Logger())
	ctx := context.Background()

	testutil.AssertNoError(t, s.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "KYOKUYO")}))

	t.Run("duplicate_metadata", func(t *testing.T) {
		err := s.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "again")})
		testutil.AssertAppError(t, err, "LOAD_FAILED")

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Dataset != DatasetMetadata {
			t.Errorf("expected metadata dataset, got %v", err)
		}
	})

	t.Run("price_without_metadata", func(t *testing.T) {
		err := s.AppendPrices(ctx, []models.StockPrice{price(4242, "1")})
		testutil.AssertAppError(t, err, "LOAD_FAILED")
	})

	t.Run("empty_is_noop", func(t *testing.T) {
		testutil.AssertNoError(t, s.AppendMetadata(ctx, nil))
		testutil.AssertNoError(t, s.AppendPrices(ctx, []models.StockPrice{}))
	})
}

func TestTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := New(db, 10, testutil.Logger())
	ctx := context.Background()

	t.Run("rolls_back_on_error", func(t *testing.T) {
		err := s.Transaction(ctx, func(tx Store) error {
			if err := tx.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "KYOKUYO")}); err != nil {
				return err
			}
			if err := tx.AppendPrices(ctx, []models.StockPrice{price(1301, "1")}); err != nil {
				return err
			}
			return tx.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "again")})
		})
		testutil.AssertAppError(t, err, "LOAD_FAILED")

		if n := testutil.CountRows(t, db, &models.StockMetadata{}); n != 0 {
			t.Errorf("expected metadata insert to be rolled back, got %d rows", n)
		}
		if n := testutil.CountRows(t, db, &models.StockPrice{}); n != 0 {
			t.Errorf("expected price insert to be rolled back, got %d rows", n)
		}
	})

	t.Run("commits_on_success", func(t *testing.T) {
		err := s.Transaction(ctx, func(tx Store) error {
			if err := tx.AppendMetadata(ctx, []models.StockMetadata{metadata(1301, "KYOKUYO")}); err != nil {
				return err
			}
			return tx.AppendPrices(ctx, []models.StockPrice{price(1301, "1")})
		})
		testutil.AssertNoError(t, err)

		if n := testutil.CountRows(t, db, &models.StockPrice{}); n != 1 {
			t.Errorf("expected 1 price row, got %d", n)
		}
	})
}

func TestRecordRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := New(db, 10, testutil.Logger())
	ctx := context.Background()

	run := &models.EtlRun{
		RunID:      "0190f6b4-0000-7000-8000-000000000001",
		StartedAt:  runAt,
		FinishedAt: runAt.Add(time.Second),
		Status:     models.RunStatusSucceeded,
		PriceRows:  3,
	}
	s.RecordRun(ctx, run)
	// A second write with the same id fails and is only logged.
	s.RecordRun(ctx, run)

	var stored models.EtlRun
	if err := db.First(&stored, "\"RunID\" = ?", run.RunID).Error; err != nil {
		t.Fatalf("failed to read run: %v", err)
	}
	if stored.Status != models.RunStatusSucceeded || stored.PriceRows != 3 {
		t.Errorf("unexpected run: %+v", stored)
	}
	if n := testutil.CountRows(t, db, &models.EtlRun{}); n != 1 {
		t.Errorf("expected 1 run, got %d", n)
	}
}
