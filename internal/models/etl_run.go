package models

import "time"

// RunStatus is the terminal outcome of a pipeline run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// EtlRun is the audit entry written once per pipeline run.
type EtlRun struct {
	RunID           string    `gorm:"column:RunID;primaryKey;size:36" json:"run_id"`
	StartedAt       time.Time `gorm:"column:StartedAt;not null" json:"started_at"`
	FinishedAt      time.Time `gorm:"column:FinishedAt;not null" json:"finished_at"`
	Status          RunStatus `gorm:"column:Status;size:16;not null" json:"status"`
	Stage           string    `gorm:"column:Stage;size:32" json:"stage,omitempty"`
	Error           string    `gorm:"column:Error;type:text" json:"error,omitempty"`
	PrimaryRows     int       `gorm:"column:PrimaryRows" json:"primary_rows"`
	SecondaryRows   int       `gorm:"column:SecondaryRows" json:"secondary_rows"`
	MetadataRows    int       `gorm:"column:MetadataRows" json:"metadata_rows"`
	NewMetadataRows int       `gorm:"column:NewMetadataRows" json:"new_metadata_rows"`
	PriceRows       int       `gorm:"column:PriceRows" json:"price_rows"`
}

// TableName overrides the GORM default table name.
func (EtlRun) TableName() string { return "EtlRuns" }
