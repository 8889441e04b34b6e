package model

import (
	"time"

	"bizradar/internal/domain/entity"
)

// ScanModel mirrors the 'scans' table, one row per scan attempt. The row is
// inserted in the running state and updated exactly once with the terminal
// outcome; it is never mutated afterwards.
type ScanModel struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Outcome     string `gorm:"type:varchar(20);not null;index"`
	StartedAt   time.Time
	FinishedAt  *time.Time
	Fetched     int
	New         int
	Changed     int
	Removed     int
	ErrorDetail string `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (ScanModel) TableName() string {
	return "scans"
}

// ToScanDomain converts a GORM ScanModel to a domain ScanRecord entity.
func ToScanDomain(data *ScanModel) *entity.ScanRecord {
	if data == nil {
		return nil
	}

	return &entity.ScanRecord{
		ID:          data.ID,
		Outcome:     entity.ScanOutcome(data.Outcome),
		StartedAt:   data.StartedAt,
		FinishedAt:  data.FinishedAt,
		Fetched:     data.Fetched,
		New:         data.New,
		Changed:     data.Changed,
		Removed:     data.Removed,
		ErrorDetail: data.ErrorDetail,
	}
}

// FromScanDomain converts a domain ScanRecord entity to a GORM ScanModel.
func FromScanDomain(data *entity.ScanRecord) *ScanModel {
	if data == nil {
		return nil
	}

	return &ScanModel{
		ID:          data.ID,
		Outcome:     string(data.Outcome),
		StartedAt:   data.StartedAt,
		FinishedAt:  data.FinishedAt,
		Fetched:     data.Fetched,
		New:         data.New,
		Changed:     data.Changed,
		Removed:     data.Removed,
		ErrorDetail: data.ErrorDetail,
	}
}
