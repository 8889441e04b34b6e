package impl

import (
	"context"
	"log/slog"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"
	"bizradar/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type settingsService struct {
	logger       *slog.Logger
	settingsRepo repository.SettingsRepository
	validate     *validator.Validate
	clock        service.Clock
}

// NewSettingsService creates the monitoring settings use case. Updates are
// validated against the engine's bounds (radius 100-5000 m, interval at
// least 15 minutes, rating thresholds within 0-5) before persisting.
func NewSettingsService(logger *slog.Logger, settingsRepo repository.SettingsRepository, clock service.Clock) usecase.SettingsUsecase {
	return &settingsService{
		logger:       logger,
		settingsRepo: settingsRepo,
		validate:     validator.New(),
		clock:        clock,
	}
}

// GetSettings returns the stored settings, defaults on first run.
func (s *settingsService) GetSettings(ctx context.Context) (*entity.MonitoringSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load monitoring settings")
	}

	return settings, nil
}

// UpdateSettings validates and persists new settings. A scan already in
// flight keeps the snapshot it started with.
func (s *settingsService) UpdateSettings(ctx context.Context, settings *entity.MonitoringSettings) (*entity.MonitoringSettings, error) {
	if err := s.validate.Struct(settings); err != nil {
		return nil, domainerrors.ErrInvalidSettings.WrapMessage(err.Error())
	}

	settings.UpdatedAt = s.clock.Now()
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, errors.Wrap(err, "save monitoring settings")
	}

	s.logger.Info("Monitoring settings updated",
		slog.Int("radius_m", settings.RadiusMeters),
		slog.Duration("scan_interval", settings.ScanInterval),
	)

	return settings, nil
}
