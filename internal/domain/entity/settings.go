package entity

import (
	"strings"
	"time"
)

// MonitoringSettings is the operator-owned scan configuration. It is mutated
// only through explicit settings updates; a scan takes one immutable copy at
// start, so concurrent edits apply to the next scan only.
type MonitoringSettings struct {
	BusinessName      string        `json:"business_name"`
	Latitude          float64       `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude         float64       `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusMeters      int           `json:"radius_meters" validate:"gte=100,lte=5000"`
	ScanInterval      time.Duration `json:"scan_interval" validate:"gte=15m"`
	Categories        []string      `json:"categories"`         // Include list; empty means all.
	ExcludeCategories []string      `json:"exclude_categories"` // Businesses matching these are ignored.
	MinRating         float64       `json:"min_rating" validate:"gte=0,lte=5"`

	// Detection thresholds.
	RatingChangeThreshold float64 `json:"rating_change_threshold" validate:"gte=0,lte=5"` // Default 0.3.
	TrendingDelta         float64 `json:"trending_delta" validate:"gte=0,lte=1"`          // Popularity delta, default 0.15.
	RemovalGraceCount     int     `json:"removal_grace_count" validate:"gte=1"`           // Consecutive absences before removal, default 2.

	// Notification kind toggles.
	NotifyNewBusiness   bool `json:"notify_new_business"`
	NotifyRatingChanges bool `json:"notify_rating_changes"`
	NotifyTrending      bool `json:"notify_trending"`
	NotifyRemovals      bool `json:"notify_removals"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultMonitoringSettings returns the settings used until the operator
// saves their own.
func DefaultMonitoringSettings() *MonitoringSettings {
	return &MonitoringSettings{
		RadiusMeters:          1000,
		ScanInterval:          time.Hour,
		RatingChangeThreshold: 0.3,
		TrendingDelta:         0.15,
		RemovalGraceCount:     2,
		NotifyNewBusiness:     true,
		NotifyRatingChanges:   true,
		NotifyTrending:        true,
		NotifyRemovals:        true,
	}
}

// Clone returns a deep copy; the scan pipeline works on a copy so concurrent
// settings updates cannot tear a running scan.
func (s *MonitoringSettings) Clone() *MonitoringSettings {
	copied := *s
	copied.Categories = append([]string(nil), s.Categories...)
	copied.ExcludeCategories = append([]string(nil), s.ExcludeCategories...)

	return &copied
}

// KindEnabled reports whether notifications of the given kind are enabled.
// SystemStatus notifications are always enabled: failures must never be
// silent.
func (s *MonitoringSettings) KindEnabled(kind NotificationKind) bool {
	switch kind {
	case NotificationNewBusiness:
		return s.NotifyNewBusiness
	case NotificationRatingChanged:
		return s.NotifyRatingChanges
	case NotificationTrendingActivity:
		return s.NotifyTrending
	case NotificationBusinessRemoved:
		return s.NotifyRemovals
	case NotificationSystemStatus:
		return true
	default:
		return false
	}
}

// MatchesCategories reports whether a business passes the include/exclude
// category lists. Matching is case-insensitive substring matching, the same
// loose matching the upstream category names require.
func (s *MonitoringSettings) MatchesCategories(categories []string) bool {
	for _, category := range categories {
		for _, excluded := range s.ExcludeCategories {
			if strings.Contains(strings.ToLower(category), strings.ToLower(excluded)) {
				return false
			}
		}
	}

	if len(s.Categories) == 0 {
		return true
	}

	for _, category := range categories {
		for _, included := range s.Categories {
			if strings.Contains(strings.ToLower(category), strings.ToLower(included)) {
				return true
			}
		}
	}

	return false
}
