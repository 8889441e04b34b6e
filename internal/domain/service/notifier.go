package service

import (
	"fmt"
	"time"

	"bizradar/internal/domain/entity"

	"github.com/google/uuid"
)

// notificationKindFor maps change kinds onto notification kinds.
var notificationKindFor = map[entity.ChangeKind]entity.NotificationKind{
	entity.ChangeNewBusiness:      entity.NotificationNewBusiness,
	entity.ChangeRatingChanged:    entity.NotificationRatingChanged,
	entity.ChangeTrendingActivity: entity.NotificationTrendingActivity,
	entity.ChangeBusinessRemoved:  entity.NotificationBusinessRemoved,
}

// BuildNotifications turns change events into deduplicated notifications
// honoring the operator's preferences. Events whose kind is disabled or
// whose business fails the category/min-rating filters produce nothing.
// When an open notification already exists for the same (place, kind) pair
// its ID is reused so persistence updates it in place instead of
// duplicating it. Pure aside from ID allocation for fresh entries.
//
// old is consulted for removal events (the business is no longer in next);
// next for everything else.
func BuildNotifications(
	events []entity.ChangeEvent,
	old, next entity.Snapshot,
	open []*entity.Notification,
	settings *entity.MonitoringSettings,
) []*entity.Notification {
	openByKey := make(map[string]*entity.Notification, len(open))
	for _, n := range open {
		if n.Open() && n.PlaceID != "" {
			openByKey[notificationKey(n.PlaceID, n.Kind)] = n
		}
	}

	var out []*entity.Notification
	for _, event := range events {
		kind, known := notificationKindFor[event.Kind]
		if !known || !settings.KindEnabled(kind) {
			continue
		}

		subject := next[event.PlaceID]
		if event.Kind == entity.ChangeBusinessRemoved {
			subject = old[event.PlaceID]
		}
		if subject == nil || !passesFilters(subject, settings) {
			continue
		}

		notification := &entity.Notification{
			ID:           uuid.New(),
			Kind:         kind,
			PlaceID:      event.PlaceID,
			BusinessName: event.Name,
			Title:        titleFor(kind),
			Message:      messageFor(event, subject),
			CreatedAt:    event.DetectedAt,
		}

		if existing, dup := openByKey[notificationKey(event.PlaceID, kind)]; dup {
			notification.ID = existing.ID
		}

		out = append(out, notification)
	}

	return out
}

// BuildSystemNotification creates an engine-status notification with no
// subject business. Used for failed/partial scans and monitor lifecycle
// messages; never filtered by preferences.
func BuildSystemNotification(title, message string, createdAt time.Time) *entity.Notification {
	return &entity.Notification{
		ID:        uuid.New(),
		Kind:      entity.NotificationSystemStatus,
		Title:     title,
		Message:   message,
		CreatedAt: createdAt,
	}
}

// passesFilters applies the category include/exclude lists and the minimum
// rating threshold. Businesses without a published rating pass the rating
// filter; an unknown rating is not a low rating.
func passesFilters(b *entity.Business, settings *entity.MonitoringSettings) bool {
	if !settings.MatchesCategories(b.Categories) {
		return false
	}
	if settings.MinRating > 0 && b.Rating != nil && *b.Rating < settings.MinRating {
		return false
	}

	return true
}

func notificationKey(placeID string, kind entity.NotificationKind) string {
	return placeID + "|" + string(kind)
}

func titleFor(kind entity.NotificationKind) string {
	switch kind {
	case entity.NotificationNewBusiness:
		return "New Competitor Detected"
	case entity.NotificationRatingChanged:
		return "Rating Changed"
	case entity.NotificationTrendingActivity:
		return "Trending Activity"
	case entity.NotificationBusinessRemoved:
		return "Business Removed"
	default:
		return "BizRadar"
	}
}

func messageFor(event entity.ChangeEvent, subject *entity.Business) string {
	switch event.Kind {
	case entity.ChangeNewBusiness:
		if len(subject.Categories) > 0 {
			return fmt.Sprintf("'%s' has opened nearby in the %s category.", event.Name, subject.Categories[0])
		}

		return fmt.Sprintf("'%s' has opened nearby.", event.Name)
	case entity.ChangeRatingChanged:
		return fmt.Sprintf("'%s' rating moved from %.1f to %.1f.", event.Name, deref(event.OldValue), deref(event.NewValue))
	case entity.ChangeTrendingActivity:
		return fmt.Sprintf("'%s' is seeing a surge in activity (popularity %.2f, was %.2f).", event.Name, deref(event.NewValue), deref(event.OldValue))
	case entity.ChangeBusinessRemoved:
		return fmt.Sprintf("'%s' no longer appears in the monitored area.", event.Name)
	default:
		return event.Name
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}
