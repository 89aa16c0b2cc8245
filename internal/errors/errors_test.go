package errors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "stocketl/internal/errors"
)

func TestAppErrorMatching(t *testing.T) {
	cause := fmt.Errorf("open stock_prices.csv: no such file")
	err := apperrors.ForDataset(apperrors.ErrExtraction, "primary", cause)

	if !errors.Is(err, apperrors.ErrExtraction) {
		t.Errorf("expected wrapped error to match its sentinel")
	}
	if errors.Is(err, apperrors.ErrLoad) {
		t.Errorf("did not expect match with a different sentinel")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected internal error to be reachable")
	}

	want := "Extraction of stocks data failed (dataset: primary): open stock_prices.csv: no such file"
	if err.Error() != want {
		t.Errorf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapAndWithMessage(t *testing.T) {
	err := apperrors.Wrap(apperrors.ErrLoad, errors.New("disk full"))
	if err.Code != "LOAD_FAILED" || err.Dataset != "" {
		t.Errorf("unexpected wrapped error: %+v", err)
	}

	msg := apperrors.WithMessage(apperrors.ErrConfig, "DB_NAME is required")
	if msg.Error() != "DB_NAME is required" || !errors.Is(msg, apperrors.ErrConfig) {
		t.Errorf("unexpected message error: %v", msg)
	}
}

func TestConsistencyError(t *testing.T) {
	err := apperrors.NewConsistencyError([]int64{999, 5, 42})

	if !errors.Is(err, apperrors.ErrConsistency) {
		t.Errorf("expected ConsistencyError to match ErrConsistency")
	}
	if got := fmt.Sprint(err.MissingCodes); got != "[5 42 999]" {
		t.Errorf("expected sorted codes, got %s", got)
	}

	wrapped := fmt.Errorf("run: %w", err)
	if apperrors.CodeOf(wrapped) != "CONSISTENCY_FAILED" {
		t.Errorf("unexpected code %q", apperrors.CodeOf(wrapped))
	}
}

func TestCodeOf(t *testing.T) {
	if got := apperrors.CodeOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty code, got %q", got)
	}
	if got := apperrors.CodeOf(apperrors.Wrap(apperrors.ErrQuery, nil)); got != "QUERY_FAILED" {
		t.Errorf("expected QUERY_FAILED, got %q", got)
	}
}
