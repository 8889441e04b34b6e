// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// businessRepository implements the repository.BusinessRepository interface.
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(db *gorm.DB) repository.BusinessRepository {
	return &businessRepository{
		db: db,
	}
}

// GetSnapshot loads the full committed snapshot keyed by place ID. An empty
// table means first run and returns an empty, non-nil snapshot.
func (repo *businessRepository) GetSnapshot(ctx context.Context) (entity.Snapshot, error) {
	var businessModels []*model.BusinessModel

	if err := repo.db.WithContext(ctx).Find(&businessModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load business snapshot")
	}

	snapshot := make(entity.Snapshot, len(businessModels))
	for _, businessM := range businessModels {
		snapshot[businessM.PlaceID] = model.ToBusinessDomain(businessM)
	}

	return snapshot, nil
}

// ReplaceSnapshot upserts every business in the new snapshot and deletes the
// removed place IDs. Run inside TransactionManager.Execute so readers never
// observe a half-replaced snapshot.
func (repo *businessRepository) ReplaceSnapshot(ctx context.Context, snapshot entity.Snapshot, removedIDs []string) error {
	if len(removedIDs) > 0 {
		if err := repo.db.WithContext(ctx).
			Where("place_id IN ?", removedIDs).
			Delete(&model.BusinessModel{}).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to delete removed businesses")
		}
	}

	if len(snapshot) == 0 {
		return nil
	}

	businessModels := make([]*model.BusinessModel, 0, len(snapshot))
	for _, business := range snapshot {
		businessModels = append(businessModels, model.FromBusinessDomain(business))
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "place_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(businessModels, 100).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert business snapshot")
	}

	return nil
}

// ListBusinesses returns businesses matching the filter, ordered by name.
func (repo *businessRepository) ListBusinesses(ctx context.Context, filter repository.BusinessFilter) ([]*entity.Business, error) {
	var businessModels []*model.BusinessModel

	query := repo.db.WithContext(ctx).Order("name ASC")
	if filter.CompetitorsOnly {
		query = query.Where("is_competitor = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("categories::text ILIKE ?", "%"+filter.Category+"%")
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	if err := query.Find(&businessModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list businesses")
	}

	businesses := make([]*entity.Business, 0, len(businessModels))
	for _, businessM := range businessModels {
		businesses = append(businesses, model.ToBusinessDomain(businessM))
	}

	return businesses, nil
}

// SetCompetitorFlag sets the operator-owned competitor annotation.
func (repo *businessRepository) SetCompetitorFlag(ctx context.Context, placeID string, isCompetitor bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessModel{}).
		Where("place_id = ?", placeID).
		Update("is_competitor", isCompetitor)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to set competitor flag")
	}

	if result.RowsAffected == 0 {
		return repository.ErrBusinessNotFound
	}

	return nil
}
