// Package errors provides the failure taxonomy of the stock ETL pipeline.
// Every stage returns an *AppError (or a type that matches one under errors.Is)
// so the caller can tell which stage and which dataset aborted the run.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AppError represents a structured pipeline error with an error code,
// human-readable message, the dataset it concerns and an optional internal error.
type AppError struct {
	Code     string
	Message  string
	Dataset  string
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Dataset != "" {
		fmt.Fprintf(&b, " (dataset: %s)", e.Dataset)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ": %v", e.Internal)
	}
	return b.String()
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// wrapped copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Dataset:  sentinel.Dataset,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Dataset:  sentinel.Dataset,
		Internal: sentinel.Internal,
	}
}

// ForDataset creates a new AppError bound to a dataset kind, wrapping internal.
func ForDataset(sentinel *AppError, dataset string, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Dataset:  dataset,
		Internal: internal,
	}
}

// Stage failures. All of them are fatal to the current run.
var (
	ErrExtraction    = &AppError{Code: "EXTRACTION_FAILED", Message: "Extraction of stocks data failed"}
	ErrPreprocessing = &AppError{Code: "PREPROCESSING_FAILED", Message: "Preprocessing of stocks data failed"}
	ErrConsistency   = &AppError{Code: "CONSISTENCY_FAILED", Message: "Stock codes found in stock prices that are not present in stocks metadata"}
	ErrLoad          = &AppError{Code: "LOAD_FAILED", Message: "Load of stocks data to db failed"}
	ErrQuery         = &AppError{Code: "QUERY_FAILED", Message: "Query of existing stock codes failed"}
)

// Setup errors.
var (
	ErrConfig   = &AppError{Code: "INVALID_CONFIG", Message: "Invalid configuration"}
	ErrDatabase = &AppError{Code: "DATABASE_UNAVAILABLE", Message: "Database is unavailable"}
)

// ConsistencyError carries the security codes that appear in price data but
// not in metadata. It matches ErrConsistency under errors.Is.
type ConsistencyError struct {
	MissingCodes []int64
}

// NewConsistencyError returns a ConsistencyError with the codes sorted ascending.
func NewConsistencyError(codes []int64) *ConsistencyError {
	sorted := append([]int64(nil), codes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &ConsistencyError{MissingCodes: sorted}
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	parts := make([]string, len(e.MissingCodes))
	for i, c := range e.MissingCodes {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("%s: [%s]", ErrConsistency.Message, strings.Join(parts, ", "))
}

// Is makes a ConsistencyError match the ErrConsistency sentinel.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

// CodeOf returns the AppError code of err, or "" when err carries none.
func CodeOf(err error) string {
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return ErrConsistency.Code
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
