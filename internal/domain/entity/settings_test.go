package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesCategories(t *testing.T) {
	tests := []struct {
		name       string
		include    []string
		exclude    []string
		categories []string
		want       bool
	}{
		{
			name:       "empty include list matches everything",
			categories: []string{"Coffee Shop"},
			want:       true,
		},
		{
			name:       "case-insensitive substring include",
			include:    []string{"coffee"},
			categories: []string{"Specialty Coffee Shop"},
			want:       true,
		},
		{
			name:       "include list rejects non-matching",
			include:    []string{"coffee"},
			categories: []string{"Fitness Center"},
			want:       false,
		},
		{
			name:       "exclude wins over include",
			include:    []string{"restaurant"},
			exclude:    []string{"fast food"},
			categories: []string{"Fast Food Restaurant"},
			want:       false,
		},
		{
			name:    "no categories with include list",
			include: []string{"coffee"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &MonitoringSettings{
				Categories:        tt.include,
				ExcludeCategories: tt.exclude,
			}

			assert.Equal(t, tt.want, settings.MatchesCategories(tt.categories))
		})
	}
}

func TestKindEnabled_SystemStatusAlwaysOn(t *testing.T) {
	settings := &MonitoringSettings{} // every toggle off

	assert.False(t, settings.KindEnabled(NotificationNewBusiness))
	assert.False(t, settings.KindEnabled(NotificationRatingChanged))
	assert.True(t, settings.KindEnabled(NotificationSystemStatus), "failures must never be silent")
}

func TestSnapshotClone_IsDeep(t *testing.T) {
	rating := 4.0
	original := Snapshot{
		"a": {
			PlaceID:    "a",
			Categories: []string{"Coffee Shop"},
			Rating:     &rating,
		},
	}

	cloned := original.Clone()
	*cloned["a"].Rating = 1.0
	cloned["a"].Categories[0] = "changed"
	cloned["a"].MissedScans = 9

	assert.InDelta(t, 4.0, *original["a"].Rating, 1e-9)
	assert.Equal(t, "Coffee Shop", original["a"].Categories[0])
	assert.Equal(t, 0, original["a"].MissedScans)
}
