// Package quality audits the persisted tables for duplicate rows and
// missing values.
package quality

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/models"
)

// auditColumns are excluded from duplicate detection.
var auditColumns = map[string]bool{
	"id":              true,
	"CreatedDateTime": true,
	"UpdatedDateTime": true,
}

// TableReport is the audit result of one table.
type TableReport struct {
	Table      string
	Rows       int64
	Duplicates int64
	// NullCounts holds the number of NULLs per column, for columns that have any.
	NullCounts map[string]int64
}

// Issues lists the problems found in the table.
func (r TableReport) Issues() []string {
	var issues []string
	if r.Rows == 0 {
		issues = append(issues, fmt.Sprintf("%s table is empty", r.Table))
	}
	if r.Duplicates > 0 {
		issues = append(issues, fmt.Sprintf("%s table has %d duplicate rows", r.Table, r.Duplicates))
	}
	columns := make([]string, 0, len(r.NullCounts))
	for c := range r.NullCounts {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	for _, c := range columns {
		issues = append(issues, fmt.Sprintf("%s.%s has %d missing values", r.Table, c, r.NullCounts[c]))
	}
	return issues
}

// Report is the audit result of both tables.
type Report struct {
	Prices   TableReport
	Metadata TableReport
}

// Issues lists the problems of both tables, prices first.
func (r *Report) Issues() []string {
	return append(r.Prices.Issues(), r.Metadata.Issues()...)
}

// Clean reports whether both tables are non-empty, free of duplicates and
// free of missing values.
func (r *Report) Clean() bool {
	return len(r.Issues()) == 0
}

// Auditor runs the data-quality queries.
type Auditor struct {
	db *gorm.DB
}

// NewAuditor creates an Auditor.
func NewAuditor(db *gorm.DB) *Auditor {
	return &Auditor{db: db}
}

// Audit inspects StockPrices and StockMetadata.
func (a *Auditor) Audit(ctx context.Context) (*Report, error) {
	prices, err := a.auditTable(ctx, &models.StockPrice{})
	if err != nil {
		return nil, err
	}
	metadata, err := a.auditTable(ctx, &models.StockMetadata{})
	if err != nil {
		return nil, err
	}
	return &Report{Prices: *prices, Metadata: *metadata}, nil
}

func (a *Auditor) auditTable(ctx context.Context, model interface{}) (*TableReport, error) {
	db := a.db.WithContext(ctx)

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuery, fmt.Errorf("parse model %T: %w", model, err))
	}
	table, columns := stmt.Table, stmt.Schema.DBNames

	quote := db.Statement.Quote
	quotedTable := quote(table)

	// Row count and non-NULL count per column in one pass.
	selects := []string{"COUNT(*)"}
	for _, c := range columns {
		selects = append(selects, fmt.Sprintf("COUNT(%s)", quote(c)))
	}
	counts := make([]int64, len(selects))
	dest := make([]interface{}, len(counts))
	for i := range counts {
		dest[i] = &counts[i]
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quotedTable)
	if err := db.Raw(query).Row().Scan(dest...); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuery, fmt.Errorf("count missing values of %s: %w", table, err))
	}

	report := &TableReport{Table: table, Rows: counts[0], NullCounts: map[string]int64{}}
	for i, c := range columns {
		if missing := report.Rows - counts[i+1]; missing > 0 {
			report.NullCounts[c] = missing
		}
	}

	var keys []string
	for _, c := range columns {
		if !auditColumns[c] {
			keys = append(keys, quote(c))
		}
	}
	query = fmt.Sprintf(
		"SELECT COALESCE(SUM(n - 1), 0) FROM (SELECT COUNT(*) AS n FROM %s GROUP BY %s HAVING COUNT(*) > 1) dup",
		quotedTable, strings.Join(keys, ", "))
	if err := db.Raw(query).Row().Scan(&report.Duplicates); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuery, fmt.Errorf("count duplicates of %s: %w", table, err))
	}

	return report, nil
}
