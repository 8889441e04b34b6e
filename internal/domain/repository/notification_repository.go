package repository

import (
	"context"
	"errors"

	"bizradar/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification is not found.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationFilter narrows ListNotifications results.
type NotificationFilter struct {
	UnreadOnly bool
	OpenOnly   bool
	Kind       entity.NotificationKind
	Limit      int
}

// NotificationRepository persists notifications and enforces the
// at-most-one-open-per-(place, kind) invariant.
type NotificationRepository interface {
	// UpsertOpen appends notifications. When an open (non-dismissed)
	// notification already exists for the same (PlaceID, Kind) pair, its
	// message and timestamp are updated instead of inserting a duplicate.
	// Dismissed entries never block a new insert.
	UpsertOpen(ctx context.Context, notifications []*entity.Notification) error

	// ListNotifications returns notifications matching the filter, newest
	// first.
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]*entity.Notification, error)

	// ListOpen returns all open notifications keyed by (PlaceID, Kind),
	// used by the notification builder for dedup.
	ListOpen(ctx context.Context) ([]*entity.Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags every unread notification as read and returns the
	// number updated.
	MarkAllRead(ctx context.Context) (int, error)

	// Dismiss closes a notification; a later recurrence of the same
	// condition creates a fresh entry.
	Dismiss(ctx context.Context, id uuid.UUID) error
}
