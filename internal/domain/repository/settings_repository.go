package repository

import (
	"context"

	"bizradar/internal/domain/entity"
)

// SettingsRepository persists the operator's monitoring settings. There is a
// single settings row per installation; Get returns defaults when nothing
// has been saved yet.
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.MonitoringSettings, error)
	Save(ctx context.Context, settings *entity.MonitoringSettings) error
}
