package usecase

import (
	"context"

	"bizradar/internal/domain/entity"
)

// SettingsUsecase owns the operator's monitoring settings. Updates are
// validated and persisted; a running scan keeps the snapshot it started
// with, so an update applies from the next scan onward.
type SettingsUsecase interface {
	GetSettings(ctx context.Context) (*entity.MonitoringSettings, error)
	UpdateSettings(ctx context.Context, settings *entity.MonitoringSettings) (*entity.MonitoringSettings, error)
}
