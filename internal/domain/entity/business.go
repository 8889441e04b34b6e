// Package entity contains the core business objects of the project.
package entity

import (
	"time"
)

// Location holds the geographic position and postal details of a business.
type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
}

// Business represents a tracked place from the upstream places directory.
//
// PlaceID is the upstream's stable identifier and is unique within the
// snapshot. IsCompetitor is owned by the operator: scans carry it forward
// by PlaceID and never overwrite it.
type Business struct {
	PlaceID      string    `json:"place_id"`             // Stable external ID assigned by the places API.
	Name         string    `json:"name"`                 // Display name of the business.
	Categories   []string  `json:"categories"`           // Category names reported by the upstream.
	Location     Location  `json:"location"`             // Geographic location.
	Rating       *float64  `json:"rating,omitempty"`     // 0-5 with one decimal; nil when the upstream omits it.
	Popularity   *float64  `json:"popularity,omitempty"` // 0-1 activity signal; nil when the upstream omits it.
	PriceTier    int       `json:"price_tier,omitempty"` // 1-4 price tier; 0 when unknown.
	Verified     bool      `json:"verified"`             // Upstream verification flag.
	Hours        string    `json:"hours,omitempty"`      // Free-form hours descriptor.
	Website      string    `json:"website,omitempty"`    // Website URL if published.
	Phone        string    `json:"phone,omitempty"`      // Contact phone if published.
	IsCompetitor bool      `json:"is_competitor"`        // Operator-set annotation, never changed by scans.
	MissedScans  int       `json:"missed_scans"`         // Consecutive scans in which the business was absent.
	FirstSeen    time.Time `json:"first_seen"`           // When the business was first discovered.
	LastSeen     time.Time `json:"last_seen"`            // When the business last appeared in a scan.
}

// Snapshot is the complete set of tracked businesses as of the most recent
// committed scan, keyed by PlaceID.
type Snapshot map[string]*Business

// Clone returns a deep copy of the snapshot. Diffing and snapshot building
// are pure functions; callers hand them clones so the committed state is
// never mutated in place.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, b := range s {
		copied := *b
		copied.Categories = append([]string(nil), b.Categories...)
		if b.Rating != nil {
			r := *b.Rating
			copied.Rating = &r
		}
		if b.Popularity != nil {
			p := *b.Popularity
			copied.Popularity = &p
		}
		out[id] = &copied
	}

	return out
}

// HasRating reports whether the upstream has published a rating.
func (b *Business) HasRating() bool {
	return b != nil && b.Rating != nil
}
