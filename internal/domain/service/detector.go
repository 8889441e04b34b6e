package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"bizradar/internal/domain/entity"
)

// DetectorOptions are the thresholds driving change detection, taken from
// one immutable settings snapshot per scan.
type DetectorOptions struct {
	// RatingChangeThreshold is the minimum absolute rating delta that
	// counts as a change.
	RatingChangeThreshold float64

	// TrendingDelta is the minimum popularity increase since the previous
	// scan that counts as trending activity.
	TrendingDelta float64

	// RemovalGraceCount is the number of consecutive absences required
	// before a business is treated as removed. Guards against flapping
	// from transient upstream omissions.
	RemovalGraceCount int

	// MonitoredCategories seeds the competitor heuristic for newly
	// discovered businesses. Empty means every new business is a
	// potential competitor.
	MonitoredCategories []string

	// Now stamps DetectedAt on events and LastSeen on snapshot entries.
	Now time.Time
}

// SnapshotFromList keys a fetched business list by place ID. Later
// duplicates win, matching upstream pagination behavior.
func SnapshotFromList(businesses []*entity.Business) entity.Snapshot {
	snapshot := make(entity.Snapshot, len(businesses))
	for _, b := range businesses {
		snapshot[b.PlaceID] = b
	}

	return snapshot
}

// Diff compares the committed snapshot against the freshly fetched one and
// returns the typed change events. It is a pure function: identical inputs
// produce identical output, and events are sorted by place ID then kind so
// the result never depends on map iteration order.
func Diff(old, fetched entity.Snapshot, opts DetectorOptions) []entity.ChangeEvent {
	var events []entity.ChangeEvent

	for id, current := range fetched {
		previous, known := old[id]
		if !known {
			events = append(events, entity.ChangeEvent{
				Kind:       entity.ChangeNewBusiness,
				PlaceID:    id,
				Name:       current.Name,
				NewValue:   current.Rating,
				DetectedAt: opts.Now,
			})

			continue
		}

		if ev, ok := ratingChange(previous, current, opts); ok {
			events = append(events, ev)
		}
		if ev, ok := trendingActivity(previous, current, opts); ok {
			events = append(events, ev)
		}
	}

	for id, previous := range old {
		if _, present := fetched[id]; present {
			continue
		}

		// Absences accumulate across scans; only report once the grace
		// count is met.
		if previous.MissedScans+1 >= opts.RemovalGraceCount {
			events = append(events, entity.ChangeEvent{
				Kind:       entity.ChangeBusinessRemoved,
				PlaceID:    id,
				Name:       previous.Name,
				OldValue:   previous.Rating,
				DetectedAt: opts.Now,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].PlaceID != events[j].PlaceID {
			return events[i].PlaceID < events[j].PlaceID
		}

		return events[i].Kind < events[j].Kind
	})

	return events
}

// ratingChange fires only when both sides carry a published rating. A rating
// appearing or disappearing is not a change: absent ratings are nil, never
// zero, exactly to avoid that false positive.
func ratingChange(previous, current *entity.Business, opts DetectorOptions) (entity.ChangeEvent, bool) {
	if previous.Rating == nil || current.Rating == nil {
		return entity.ChangeEvent{}, false
	}
	if math.Abs(*current.Rating-*previous.Rating) < opts.RatingChangeThreshold {
		return entity.ChangeEvent{}, false
	}

	return entity.ChangeEvent{
		Kind:       entity.ChangeRatingChanged,
		PlaceID:    current.PlaceID,
		Name:       current.Name,
		OldValue:   previous.Rating,
		NewValue:   current.Rating,
		DetectedAt: opts.Now,
	}, true
}

// trendingActivity degrades to a no-op when the upstream exposes no
// popularity signal for either side rather than fabricating a velocity.
func trendingActivity(previous, current *entity.Business, opts DetectorOptions) (entity.ChangeEvent, bool) {
	if previous.Popularity == nil || current.Popularity == nil || opts.TrendingDelta <= 0 {
		return entity.ChangeEvent{}, false
	}
	if *current.Popularity-*previous.Popularity < opts.TrendingDelta {
		return entity.ChangeEvent{}, false
	}

	return entity.ChangeEvent{
		Kind:       entity.ChangeTrendingActivity,
		PlaceID:    current.PlaceID,
		Name:       current.Name,
		OldValue:   previous.Popularity,
		NewValue:   current.Popularity,
		DetectedAt: opts.Now,
	}, true
}

// NextSnapshot builds the snapshot to commit from the previous one and the
// fetched businesses. Operator annotations and discovery timestamps are
// carried forward by place ID; businesses missing from the fetch stay in the
// snapshot with an incremented absence counter until the grace count is met,
// at which point their IDs are returned as removed. Pure: neither input is
// mutated.
func NextSnapshot(old entity.Snapshot, fetched entity.Snapshot, opts DetectorOptions) (entity.Snapshot, []string) {
	next := make(entity.Snapshot, len(fetched))

	for id, current := range fetched {
		entry := *current
		entry.Categories = append([]string(nil), current.Categories...)
		entry.MissedScans = 0
		entry.LastSeen = opts.Now

		if previous, known := old[id]; known {
			// Scans never erase operator annotations.
			entry.IsCompetitor = previous.IsCompetitor
			entry.FirstSeen = previous.FirstSeen
		} else {
			entry.FirstSeen = opts.Now
			entry.IsCompetitor = isPotentialCompetitor(current, opts.MonitoredCategories)
		}

		next[id] = &entry
	}

	var removed []string
	for id, previous := range old {
		if _, present := fetched[id]; present {
			continue
		}

		missed := previous.MissedScans + 1
		if missed >= opts.RemovalGraceCount {
			removed = append(removed, id)

			continue
		}

		entry := *previous
		entry.Categories = append([]string(nil), previous.Categories...)
		entry.MissedScans = missed
		next[id] = &entry
	}

	sort.Strings(removed)

	return next, removed
}

// isPotentialCompetitor seeds the competitor flag for a newly discovered
// business: a category overlap with the monitored list marks it. The flag is
// operator-owned from then on.
func isPotentialCompetitor(b *entity.Business, monitored []string) bool {
	if len(monitored) == 0 {
		return true
	}

	for _, category := range b.Categories {
		for _, m := range monitored {
			if strings.Contains(strings.ToLower(category), strings.ToLower(m)) {
				return true
			}
		}
	}

	return false
}
