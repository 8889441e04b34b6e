package model

import (
	"time"

	"bizradar/internal/domain/entity"

	"gorm.io/datatypes"
)

// settingsRowID pins the single settings row; there is one installation and
// one monitored location per deployment.
const settingsRowID = 1

// SettingsModel mirrors the 'monitoring_settings' table.
type SettingsModel struct {
	ID                    int    `gorm:"primaryKey"`
	BusinessName          string `gorm:"type:varchar(255)"`
	Latitude              float64
	Longitude             float64
	RadiusMeters          int
	ScanIntervalSeconds   int64
	Categories            datatypes.JSON `gorm:"type:jsonb"`
	ExcludeCategories     datatypes.JSON `gorm:"type:jsonb"`
	MinRating             float64
	RatingChangeThreshold float64
	TrendingDelta         float64
	RemovalGraceCount     int
	NotifyNewBusiness     bool
	NotifyRatingChanges   bool
	NotifyTrending        bool
	NotifyRemovals        bool
	UpdatedAt             time.Time
}

// TableName explicitly sets the table name for GORM.
func (SettingsModel) TableName() string {
	return "monitoring_settings"
}

// ToSettingsDomain converts a GORM SettingsModel to domain MonitoringSettings.
func ToSettingsDomain(data *SettingsModel) *entity.MonitoringSettings {
	if data == nil {
		return nil
	}

	return &entity.MonitoringSettings{
		BusinessName:          data.BusinessName,
		Latitude:              data.Latitude,
		Longitude:             data.Longitude,
		RadiusMeters:          data.RadiusMeters,
		ScanInterval:          time.Duration(data.ScanIntervalSeconds) * time.Second,
		Categories:            decodeCategories(data.Categories),
		ExcludeCategories:     decodeCategories(data.ExcludeCategories),
		MinRating:             data.MinRating,
		RatingChangeThreshold: data.RatingChangeThreshold,
		TrendingDelta:         data.TrendingDelta,
		RemovalGraceCount:     data.RemovalGraceCount,
		NotifyNewBusiness:     data.NotifyNewBusiness,
		NotifyRatingChanges:   data.NotifyRatingChanges,
		NotifyTrending:        data.NotifyTrending,
		NotifyRemovals:        data.NotifyRemovals,
		UpdatedAt:             data.UpdatedAt,
	}
}

// FromSettingsDomain converts domain MonitoringSettings to a GORM SettingsModel.
func FromSettingsDomain(data *entity.MonitoringSettings) *SettingsModel {
	if data == nil {
		return nil
	}

	return &SettingsModel{
		ID:                    settingsRowID,
		BusinessName:          data.BusinessName,
		Latitude:              data.Latitude,
		Longitude:             data.Longitude,
		RadiusMeters:          data.RadiusMeters,
		ScanIntervalSeconds:   int64(data.ScanInterval / time.Second),
		Categories:            encodeCategories(data.Categories),
		ExcludeCategories:     encodeCategories(data.ExcludeCategories),
		MinRating:             data.MinRating,
		RatingChangeThreshold: data.RatingChangeThreshold,
		TrendingDelta:         data.TrendingDelta,
		RemovalGraceCount:     data.RemovalGraceCount,
		NotifyNewBusiness:     data.NotifyNewBusiness,
		NotifyRatingChanges:   data.NotifyRatingChanges,
		NotifyTrending:        data.NotifyTrending,
		NotifyRemovals:        data.NotifyRemovals,
		UpdatedAt:             data.UpdatedAt,
	}
}
