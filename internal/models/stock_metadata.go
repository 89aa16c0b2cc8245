package models

import "time"

// StockMetadata is the long-lived descriptive record of a security.
// It is inserted once, the first time a security code is observed, and never updated.
type StockMetadata struct {
	SecuritiesCode     int64     `gorm:"column:SecuritiesCode;primaryKey;autoIncrement:false" json:"securities_code"`
	Name               *string   `gorm:"column:Name;type:text" json:"name"`
	Section            *string   `gorm:"column:Section;size:512" json:"section"`
	NewMarketSegment   *string   `gorm:"column:NewMarketSegment;size:512" json:"new_market_segment"`
	SectorName33       *string   `gorm:"column:SectorName33;size:512" json:"sector_name_33"`
	SectorName17       *string   `gorm:"column:SectorName17;size:512" json:"sector_name_17"`
	NewIndexSeriesSize *string   `gorm:"column:NewIndexSeriesSize;size:512" json:"new_index_series_size"`
	CreatedDateTime    time.Time `gorm:"column:CreatedDateTime" json:"created_date_time"`
	UpdatedDateTime    time.Time `gorm:"column:UpdatedDateTime" json:"updated_date_time"`
}

// TableName overrides the GORM default table name.
func (StockMetadata) TableName() string { return "StockMetadata" }
