package usecase

import (
	"context"

	"bizradar/internal/domain/entity"
	"bizradar/internal/domain/repository"
)

// BusinessUsecase exposes the committed snapshot to external consumers.
type BusinessUsecase interface {
	// ListBusinesses returns tracked businesses matching the filter.
	ListBusinesses(ctx context.Context, filter repository.BusinessFilter) ([]*entity.Business, error)

	// SetCompetitorFlag sets the operator-owned competitor annotation on a
	// tracked business. The flag survives every subsequent scan.
	SetCompetitorFlag(ctx context.Context, placeID string, isCompetitor bool) error
}
