package model

import (
	"time"

	"bizradar/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationModel mirrors the 'notifications' table. A partial unique
// index on (place_id, kind) where dismissed = false backs the
// one-open-notification-per-pair invariant at the storage level. System
// status rows carry no subject business (empty place_id) and are exempt:
// any number of them may be open at once.
type NotificationModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind         string    `gorm:"type:varchar(30);not null;index:idx_notifications_open,where:dismissed = false AND place_id <> '',unique,composite:place_kind"`
	PlaceID      string    `gorm:"type:varchar(64);index:idx_notifications_open,where:dismissed = false AND place_id <> '',unique,composite:place_kind"`
	BusinessName string    `gorm:"type:varchar(255)"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Message      string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"index"`
	Read         bool      `gorm:"not null;default:false"`
	Dismissed    bool      `gorm:"not null;default:false"`
}

// TableName explicitly sets the table name for GORM.
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToNotificationDomain converts a GORM NotificationModel to a domain Notification entity.
func ToNotificationDomain(data *NotificationModel) *entity.Notification {
	if data == nil {
		return nil
	}

	return &entity.Notification{
		ID:           data.ID,
		Kind:         entity.NotificationKind(data.Kind),
		PlaceID:      data.PlaceID,
		BusinessName: data.BusinessName,
		Title:        data.Title,
		Message:      data.Message,
		CreatedAt:    data.CreatedAt,
		Read:         data.Read,
		Dismissed:    data.Dismissed,
	}
}

// FromNotificationDomain converts a domain Notification entity to a GORM NotificationModel.
func FromNotificationDomain(data *entity.Notification) *NotificationModel {
	if data == nil {
		return nil
	}

	return &NotificationModel{
		ID:           data.ID,
		Kind:         string(data.Kind),
		PlaceID:      data.PlaceID,
		BusinessName: data.BusinessName,
		Title:        data.Title,
		Message:      data.Message,
		CreatedAt:    data.CreatedAt,
		Read:         data.Read,
		Dismissed:    data.Dismissed,
	}
}
