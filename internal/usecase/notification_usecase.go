package usecase

import (
	"context"

	"bizradar/internal/domain/entity"
	"bizradar/internal/domain/repository"

	"github.com/google/uuid"
)

// NotificationUsecase exposes the persisted notification feed and its
// read/dismiss lifecycle.
type NotificationUsecase interface {
	// ListNotifications returns notifications matching the filter, newest first.
	ListNotifications(ctx context.Context, filter repository.NotificationFilter) ([]*entity.Notification, error)

	// MarkRead flags one notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flags every unread notification as read, returning the count.
	MarkAllRead(ctx context.Context) (int, error)

	// Dismiss closes a notification so a recurring condition may alert again.
	Dismiss(ctx context.Context, id uuid.UUID) error

	// RecordSystemStatus persists and publishes an engine-status
	// notification (monitor started/stopped, scan failures).
	RecordSystemStatus(ctx context.Context, title, message string) (*entity.Notification, error)
}
