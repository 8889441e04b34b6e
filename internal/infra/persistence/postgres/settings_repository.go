package postgres

import (
	"context"
	"log/slog"
	"time"

	"bizradar/config"
	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRepository implements the repository.SettingsRepository interface.
// There is exactly one settings row; Get falls back to defaults seeded from
// configuration when nothing has been saved yet.
type settingsRepository struct {
	db       *gorm.DB
	defaults *config.MonitoringDefaults
	logger   *slog.Logger
}

// NewSettingsRepository is the constructor for settingsRepository.
func NewSettingsRepository(db *gorm.DB, cfg *config.Config, logger *slog.Logger) repository.SettingsRepository {
	return &settingsRepository{
		db:       db,
		defaults: cfg.Monitoring,
		logger:   logger,
	}
}

// Get returns the stored settings, or defaults on first run.
func (repo *settingsRepository) Get(ctx context.Context) (*entity.MonitoringSettings, error) {
	var settingsM model.SettingsModel

	if err := repo.db.WithContext(ctx).First(&settingsM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.seedDefaults(), nil
		}

		return nil, errors.Wrap(err, "failed to load monitoring settings")
	}

	return model.ToSettingsDomain(&settingsM), nil
}

// Save upserts the single settings row.
func (repo *settingsRepository) Save(ctx context.Context, settings *entity.MonitoringSettings) error {
	settingsM := model.FromSettingsDomain(settings)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settingsM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to save monitoring settings")
	}

	return nil
}

func (repo *settingsRepository) seedDefaults() *entity.MonitoringSettings {
	settings := entity.DefaultMonitoringSettings()
	if repo.defaults == nil {
		return settings
	}

	settings.BusinessName = repo.defaults.BusinessName
	settings.Latitude = repo.defaults.Latitude
	settings.Longitude = repo.defaults.Longitude
	if repo.defaults.RadiusMeters > 0 {
		settings.RadiusMeters = repo.defaults.RadiusMeters
	}
	if repo.defaults.ScanInterval >= 15*time.Minute {
		settings.ScanInterval = repo.defaults.ScanInterval
	}

	repo.logger.Debug("Monitoring settings not persisted yet, using configured defaults",
		slog.Int("radius_m", settings.RadiusMeters),
		slog.Duration("scan_interval", settings.ScanInterval),
	)

	return settings
}
