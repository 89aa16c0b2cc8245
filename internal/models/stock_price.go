package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice is one enriched trading record for a security on a date.
// Rows are append-only: every run inserts new rows and never updates old ones.
// SecuritiesCode references StockMetadata; the constraint lives in the schema migrations.
type StockPrice struct {
	ID                   uint                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date                 time.Time           `gorm:"column:Date;not null;index" json:"date"`
	SecuritiesCode       int64               `gorm:"column:SecuritiesCode;not null;index" json:"securities_code"`
	Open                 decimal.NullDecimal `gorm:"column:Open;type:decimal(16,2)" json:"open"`
	High                 decimal.NullDecimal `gorm:"column:High;type:decimal(16,2)" json:"high"`
	Low                  decimal.NullDecimal `gorm:"column:Low;type:decimal(16,2)" json:"low"`
	Close                decimal.NullDecimal `gorm:"column:Close;type:decimal(16,2)" json:"close"`
	Volume               decimal.NullDecimal `gorm:"column:Volume;type:decimal(65,2)" json:"volume"`
	MarketCapitalization decimal.NullDecimal `gorm:"column:MarketCapitalization;type:decimal(65,2)" json:"market_capitalization"`
	AdjustmentFactor     *float64            `gorm:"column:AdjustmentFactor" json:"adjustment_factor"`
	ExpectedDividend     *float64            `gorm:"column:ExpectedDividend" json:"expected_dividend"`
	SupervisionFlag      *bool               `gorm:"column:SupervisionFlag" json:"supervision_flag"`
	IsPrimary            bool                `gorm:"column:IsPrimary;not null" json:"is_primary"`
	CreatedDateTime      time.Time           `gorm:"column:CreatedDateTime" json:"created_date_time"`
	UpdatedDateTime      time.Time           `gorm:"column:UpdatedDateTime" json:"updated_date_time"`
}

// TableName overrides the GORM default table name.
func (StockPrice) TableName() string { return "StockPrices" }
