// Package service contains the domain services of the engine: the upstream
// places client contract, change detection and notification building.
package service

import (
	"context"
	"fmt"

	"bizradar/internal/domain/entity"
)

// FetchErrorKind classifies upstream failures per the engine's taxonomy.
type FetchErrorKind string

const (
	// FetchUnauthorized means bad credentials; not retryable, the scan fails.
	FetchUnauthorized FetchErrorKind = "unauthorized"
	// FetchRateLimited means the quota was exhausted and the bounded wait
	// or retry budget ran out.
	FetchRateLimited FetchErrorKind = "rate_limited"
	// FetchTransient means network or 5xx failures that survived the retry
	// budget.
	FetchTransient FetchErrorKind = "transient"
	// FetchMalformed means the response body could not be parsed at all.
	FetchMalformed FetchErrorKind = "malformed"
)

// FetchError is the typed error surfaced by the places client after its
// internal retry loop gives up.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("places fetch: %s", e.Kind)
	}

	return fmt.Sprintf("places fetch: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchQuery is the request shape for a nearby search.
type FetchQuery struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Categories   []string // Include list; empty means all categories.
	Limit        int      // Max results; the upstream caps at 50.
}

// FetchResult carries the mapped businesses plus per-record skip accounting.
// MalformedCount > 0 marks the scan partial without failing it.
type FetchResult struct {
	Businesses     []*entity.Business
	MalformedCount int
}

// PlacesClient fetches the current set of nearby businesses from the
// upstream places directory. Implementations own authentication, rate-limit
// accounting and retry policy; a call either returns a usable result or a
// *FetchError, never partially mutated caller state.
type PlacesClient interface {
	FetchNearby(ctx context.Context, query FetchQuery) (*FetchResult, error)
}
