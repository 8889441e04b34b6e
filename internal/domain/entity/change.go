package entity

import (
	"time"
)

// ChangeKind classifies a change detected between two snapshots.
type ChangeKind string

const (
	ChangeNewBusiness      ChangeKind = "new_business"
	ChangeRatingChanged    ChangeKind = "rating_changed"
	ChangeTrendingActivity ChangeKind = "trending_activity"
	ChangeBusinessRemoved  ChangeKind = "business_removed"
)

// ChangeEvent is produced per scan by the change detector and consumed
// immediately by the notification builder. Events are never persisted; the
// notifications derived from them are.
type ChangeEvent struct {
	Kind       ChangeKind
	PlaceID    string
	Name       string
	OldValue   *float64 // Kind-dependent: prior rating or popularity.
	NewValue   *float64 // Kind-dependent: current rating or popularity.
	DetectedAt time.Time
}
