package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies a notification. The kinds mirror change event
// kinds plus SystemStatus for engine-level conditions.
type NotificationKind string

const (
	NotificationNewBusiness      NotificationKind = "new_business"
	NotificationRatingChanged    NotificationKind = "rating_changed"
	NotificationTrendingActivity NotificationKind = "trending_activity"
	NotificationBusinessRemoved  NotificationKind = "business_removed"
	NotificationSystemStatus     NotificationKind = "system_status"
)

// Notification is a persisted, user-facing alert produced from change events
// or engine status. At most one open (non-dismissed) notification may exist
// per (PlaceID, Kind) pair; repeated unresolved conditions update the open
// entry instead of duplicating it.
type Notification struct {
	ID           uuid.UUID        `json:"id"`
	Kind         NotificationKind `json:"kind"`
	PlaceID      string           `json:"place_id,omitempty"` // Empty for system notifications.
	BusinessName string           `json:"business_name,omitempty"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	CreatedAt    time.Time        `json:"created_at"`
	Read         bool             `json:"read"`
	Dismissed    bool             `json:"dismissed"`
}

// Open reports whether the notification still counts against the
// one-open-per-(business, kind) invariant.
func (n *Notification) Open() bool {
	return n != nil && !n.Dismissed
}
