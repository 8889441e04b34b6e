package impl

import (
	"context"
	"log/slog"

	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/entity"
	"bizradar/internal/domain/repository"
	"bizradar/internal/errors"
	"bizradar/internal/usecase"
)

type businessService struct {
	logger       *slog.Logger
	businessRepo repository.BusinessRepository
}

// NewBusinessService creates the business query/annotation use case.
func NewBusinessService(logger *slog.Logger, businessRepo repository.BusinessRepository) usecase.BusinessUsecase {
	return &businessService{
		logger:       logger,
		businessRepo: businessRepo,
	}
}

// ListBusinesses returns tracked businesses matching the filter.
func (s *businessService) ListBusinesses(ctx context.Context, filter repository.BusinessFilter) ([]*entity.Business, error) {
	businesses, err := s.businessRepo.ListBusinesses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list businesses")
	}

	return businesses, nil
}

// SetCompetitorFlag records the operator's competitor annotation.
func (s *businessService) SetCompetitorFlag(ctx context.Context, placeID string, isCompetitor bool) error {
	if err := s.businessRepo.SetCompetitorFlag(ctx, placeID, isCompetitor); err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return domainerrors.ErrBusinessNotFound
		}

		return errors.Wrap(err, "set competitor flag")
	}

	s.logger.Info("Competitor flag updated",
		slog.String("place_id", placeID),
		slog.Bool("is_competitor", isCompetitor),
	)

	return nil
}
