package service

import (
	"context"
	"time"
)

// NotificationEvent is the wire shape of a newly created notification handed
// to the external delivery channel (desktop alerter, etc.). Delivery is
// at-least-once; exactly-once dedup is the persisted notification's job.
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	Kind           string    `json:"kind"`
	PlaceID        string    `json:"place_id,omitempty"`
	BusinessName   string    `json:"business_name,omitempty"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventPublisher defines the interface for publishing notification events to
// an external delivery channel.
type EventPublisher interface {
	// PublishNotificationEvent publishes one notification for external delivery.
	PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
