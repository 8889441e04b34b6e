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

	"github.com/google/uuid"
)

type notificationService struct {
	logger           *slog.Logger
	notificationRepo repository.NotificationRepository
	publisher        service.EventPublisher
	clock            service.Clock
}

// NewNotificationService creates the notification feed use case.
func NewNotificationService(
	logger *slog.Logger,
	notificationRepo repository.NotificationRepository,
	publisher service.EventPublisher,
	clock service.Clock,
) usecase.NotificationUsecase {
	return &notificationService{
		logger:           logger,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		clock:            clock,
	}
}

// ListNotifications returns notifications matching the filter, newest first.
func (s *notificationService) ListNotifications(ctx context.Context, filter repository.NotificationFilter) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListNotifications(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}

	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domainerrors.ErrNotificationNotFound
		}

		return errors.Wrap(err, "mark notification read")
	}

	return nil
}

// MarkAllRead flags every unread notification as read.
func (s *notificationService) MarkAllRead(ctx context.Context) (int, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}

	return count, nil
}

// Dismiss closes a notification.
func (s *notificationService) Dismiss(ctx context.Context, id uuid.UUID) error {
	if err := s.notificationRepo.Dismiss(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domainerrors.ErrNotificationNotFound
		}

		return errors.Wrap(err, "dismiss notification")
	}

	return nil
}

// RecordSystemStatus persists an engine-status notification and publishes it
// to the delivery stream.
func (s *notificationService) RecordSystemStatus(ctx context.Context, title, message string) (*entity.Notification, error) {
	notification := service.BuildSystemNotification(title, message, s.clock.Now())

	if err := s.notificationRepo.UpsertOpen(ctx, []*entity.Notification{notification}); err != nil {
		return nil, errors.Wrap(err, "record system status notification")
	}

	event := &service.NotificationEvent{
		NotificationID: notification.ID.String(),
		Kind:           string(notification.Kind),
		Title:          notification.Title,
		Message:        notification.Message,
		CreatedAt:      notification.CreatedAt,
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("System status publish failed",
			slog.String("notification_id", notification.ID.String()),
			slog.Any("error", err),
		)
	}

	return notification, nil
}
