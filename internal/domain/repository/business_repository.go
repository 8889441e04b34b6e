// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizradar/internal/domain/entity"
)

// ErrBusinessNotFound is returned when a business is not in the snapshot.
var ErrBusinessNotFound = errors.New("business not found")

// BusinessFilter narrows ListBusinesses results.
type BusinessFilter struct {
	CompetitorsOnly bool
	Category        string
	MinRating       float64
}

// BusinessRepository persists the last committed snapshot of tracked
// businesses. It is the engine's snapshot store: readers observe either the
// pre-scan or the fully committed post-scan state, never a mix.
type BusinessRepository interface {
	// GetSnapshot returns the last committed snapshot keyed by place ID,
	// empty on first run.
	GetSnapshot(ctx context.Context) (entity.Snapshot, error)

	// ReplaceSnapshot overwrites the stored snapshot with the given one,
	// deleting the listed place IDs. Callers needing atomicity with the
	// scan record run this inside TransactionManager.Execute.
	ReplaceSnapshot(ctx context.Context, snapshot entity.Snapshot, removedIDs []string) error

	// ListBusinesses returns businesses matching the filter, ordered by name.
	ListBusinesses(ctx context.Context, filter BusinessFilter) ([]*entity.Business, error)

	// SetCompetitorFlag sets the operator-owned competitor annotation.
	SetCompetitorFlag(ctx context.Context, placeID string, isCompetitor bool) error
}
