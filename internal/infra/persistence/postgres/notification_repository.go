package postgres

import (
	"context"

	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// notificationRepository implements the repository.NotificationRepository interface.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// UpsertOpen inserts or refreshes notifications. The builder reuses the ID of
// an existing open notification for the same (PlaceID, Kind), so an upsert on
// the primary key keeps at most one open entry per pair. Dismissed entries
// keep their own IDs and never block a fresh insert. A refresh reopens the
// row: a dismiss racing the scan commit must not hide the recurrence.
func (repo *notificationRepository) UpsertOpen(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	for _, notification := range notifications {
		notificationM := model.FromNotificationDomain(notification)

		result := repo.db.WithContext(ctx).
			Model(&model.NotificationModel{}).
			Where("id = ?", notificationM.ID).
			Updates(openRefreshColumns(notificationM))
		if result.Error != nil {
			return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update open notification")
		}
		if result.RowsAffected > 0 {
			continue
		}

		if err := repo.db.WithContext(ctx).Create(notificationM).Error; err != nil {
			if isUniqueConstraintViolation(err) {
				return domainerrors.NewDatabaseExecuteError(err, "open notification already exists for business and kind")
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to create notification")
		}
	}

	return nil
}

// openRefreshColumns is the column set a recurring notification writes onto
// its existing open row. Both read and dismissed reset so a dismiss racing
// the scan commit cannot leave the recurrence hidden.
func openRefreshColumns(notificationM *model.NotificationModel) map[string]any {
	return map[string]any{
		"title":      notificationM.Title,
		"message":    notificationM.Message,
		"created_at": notificationM.CreatedAt,
		"read":       false,
		"dismissed":  false,
	}
}

// ListNotifications returns notifications matching the filter, newest first.
func (repo *notificationRepository) ListNotifications(ctx context.Context, filter repository.NotificationFilter) ([]*entity.Notification, error) {
	var notificationModels []*model.NotificationModel

	query := repo.db.WithContext(ctx).Order("created_at DESC")
	if filter.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if filter.OpenOnly {
		query = query.Where("dismissed = ?", false)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	notifications := make([]*entity.Notification, 0, len(notificationModels))
	for _, notificationM := range notificationModels {
		notifications = append(notifications, model.ToNotificationDomain(notificationM))
	}

	return notifications, nil
}

// ListOpen returns all open notifications for the builder's dedup lookup.
func (repo *notificationRepository) ListOpen(ctx context.Context) ([]*entity.Notification, error) {
	return repo.ListNotifications(ctx, repository.NotificationFilter{OpenOnly: true})
}

// MarkRead flags a notification as read.
func (repo *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Update("read", true)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark notification read")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead flags every unread notification as read.
func (repo *notificationRepository) MarkAllRead(ctx context.Context) (int, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("read = ?", false).
		Update("read", true)

	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark all notifications read")
	}

	return int(result.RowsAffected), nil
}

// Dismiss closes a notification so a later recurrence creates a fresh entry.
func (repo *notificationRepository) Dismiss(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Update("dismissed", true)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to dismiss notification")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}
