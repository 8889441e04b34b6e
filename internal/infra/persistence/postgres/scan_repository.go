package postgres

import (
	"context"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// scanRepository implements the repository.ScanRepository interface.
type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository is the constructor for scanRepository.
func NewScanRepository(db *gorm.DB) repository.ScanRepository {
	return &scanRepository{
		db: db,
	}
}

// Create inserts a new running scan record and fills in the generated ID.
func (repo *scanRepository) Create(ctx context.Context, record *entity.ScanRecord) error {
	scanM := model.FromScanDomain(record)
	scanM.ID = 0

	if err := repo.db.WithContext(ctx).Create(scanM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required scan information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create scan record")
	}

	record.ID = scanM.ID

	return nil
}

// Finalize stores the terminal outcome of the record. The running-state
// guard makes a double finalize fail instead of silently rewriting history.
func (repo *scanRepository) Finalize(ctx context.Context, record *entity.ScanRecord) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ScanModel{}).
		Where("id = ? AND outcome = ?", record.ID, string(entity.ScanRunning)).
		Updates(map[string]any{
			"outcome":      string(record.Outcome),
			"finished_at":  record.FinishedAt,
			"fetched":      record.Fetched,
			"new":          record.New,
			"changed":      record.Changed,
			"removed":      record.Removed,
			"error_detail": record.ErrorDetail,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to finalize scan record")
	}

	if result.RowsAffected == 0 {
		return repository.ErrScanNotFound
	}

	return nil
}

// List returns the most recent scan records, newest first.
func (repo *scanRepository) List(ctx context.Context, limit int) ([]*entity.ScanRecord, error) {
	var scanModels []*model.ScanModel

	query := repo.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&scanModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list scan records")
	}

	records := make([]*entity.ScanRecord, 0, len(scanModels))
	for _, scanM := range scanModels {
		records = append(records, model.ToScanDomain(scanM))
	}

	return records, nil
}
