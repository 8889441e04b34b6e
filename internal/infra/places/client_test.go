package places

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bizradar/config"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*config.PlacesConfig)) service.PlacesClient {
	t.Helper()

	cfg := &config.PlacesConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		MaxRequests:    100,
		Window:         time.Hour,
		Policy:         config.PolicyFailFast,
		MaxWait:        time.Second,
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  3,
	}
	if mutate != nil {
		mutate(cfg)
	}

	client, err := New(Params{
		Config: &config.Config{Places: cfg},
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	client.(*Client).retryDelay = time.Millisecond

	return client
}

func TestFetchNearby_MapsResults(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{
					"fsq_id": "abc123",
					"name": "Blue Bottle Coffee",
					"categories": [{"name": "Coffee Shop"}],
					"geocodes": {"main": {"latitude": 37.776, "longitude": -122.423}},
					"location": {"address": "315 Linden St", "locality": "San Francisco"},
					"rating": 4.4,
					"popularity": 0.92,
					"price": 2,
					"verified": true,
					"hours": {"display": "Open until 6 PM"},
					"tel": "+14155551234"
				},
				{
					"fsq_id": "def456",
					"name": "Corner Bakery",
					"geocodes": {"main": {"latitude": 37.779, "longitude": -122.420}}
				},
				{
					"name": "No ID Here"
				},
				{
					"fsq_id": "ghi789",
					"name": "Nowhere Deli"
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	result, err := client.FetchNearby(context.Background(), service.FetchQuery{
		Latitude:     37.776,
		Longitude:    -122.423,
		RadiusMeters: 1000,
		Limit:        50,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth.Load())
	// One record without an ID, one without geocodes: both are malformed.
	// A geocode-less record must not map to (0, 0) and count as missing.
	assert.Equal(t, 2, result.MalformedCount)
	require.Len(t, result.Businesses, 2)

	first := result.Businesses[0]
	assert.Equal(t, "abc123", first.PlaceID)
	assert.Equal(t, "Blue Bottle Coffee", first.Name)
	assert.Equal(t, []string{"Coffee Shop"}, first.Categories)
	assert.InDelta(t, 37.776, first.Location.Latitude, 1e-9)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.4, *first.Rating, 1e-9)
	require.NotNil(t, first.Popularity)
	assert.InDelta(t, 0.92, *first.Popularity, 1e-9)
	assert.Equal(t, 2, first.PriceTier)
	assert.True(t, first.Verified)
	assert.Equal(t, "Open until 6 PM", first.Hours)

	// Sparse record: absent rating and popularity stay nil, never zero.
	second := result.Businesses[1]
	assert.Equal(t, "def456", second.PlaceID)
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.Popularity)
	assert.Empty(t, second.Categories)
}

func TestFetchNearby_UnauthorizedDoesNotRetry(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.Error(t, err)

	var fetchErr *service.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, service.FetchUnauthorized, fetchErr.Kind)
	assert.Equal(t, int64(1), calls.Load(), "auth failures must not be retried")
}

func TestFetchNearby_TransientRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	result, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Businesses)
	assert.Equal(t, int64(3), calls.Load())
}

func TestFetchNearby_TransientExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *config.PlacesConfig) {
		cfg.RetryAttempts = 2
	})

	_, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.Error(t, err)

	var fetchErr *service.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, service.FetchTransient, fetchErr.Kind)
	assert.Equal(t, int64(2), calls.Load())
}

func TestFetchNearby_MalformedBodyDoesNotRetry(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.Error(t, err)

	var fetchErr *service.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, service.FetchMalformed, fetchErr.Kind)
	assert.Equal(t, int64(1), calls.Load())
}

func TestFetchNearby_FailFastWhenQuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *config.PlacesConfig) {
		cfg.MaxRequests = 1
		cfg.Policy = config.PolicyFailFast
	})

	_, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.NoError(t, err)

	_, err = client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.Error(t, err)

	var fetchErr *service.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, service.FetchRateLimited, fetchErr.Kind)
}

func TestFetchNearby_WaitBoundedGivesUpAfterMaxWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *config.PlacesConfig) {
		cfg.MaxRequests = 1
		cfg.Window = time.Hour
		cfg.Policy = config.PolicyWaitBounded
		cfg.MaxWait = 50 * time.Millisecond
	})

	_, err := client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.FetchNearby(context.Background(), service.FetchQuery{Limit: 10})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "bounded wait must not block indefinitely")

	var fetchErr *service.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, service.FetchRateLimited, fetchErr.Kind)
}
