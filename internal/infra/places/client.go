// Package places implements the rate-limited upstream places API client.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bizradar/config"
	"bizradar/internal/domain/service"
	"bizradar/internal/errors"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 2 * time.Minute
	retryMaxJitter = 10 * time.Second

	// searchFields is the explicit field list requested from the upstream;
	// everything else is ignored defensively.
	searchFields = "fsq_id,name,categories,location,rating,price,hours,website,tel,verified,popularity"
)

// Params defines the dependencies for the places client.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Client talks to the upstream places directory. It enforces the local
// token-bucket quota, classifies failures into the engine's error taxonomy
// and retries transient ones with exponential backoff and jitter. A call is
// a pure mapping from request to typed result or typed error; it never
// partially mutates caller state.
type Client struct {
	cfg        *config.PlacesConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	retryDelay time.Duration
}

// New creates the places client from configuration.
func New(params Params) (service.PlacesClient, error) {
	cfg := params.Config.Places
	if cfg == nil {
		return nil, errors.New("places configuration is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("places API key is required")
	}

	// Token bucket sized to the upstream quota: MaxRequests per Window,
	// with the full quota available as burst after a quiet period.
	limit := rate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds())

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:    rate.NewLimiter(limit, cfg.MaxRequests),
		logger:     params.Logger,
		retryDelay: retryBaseDelay,
	}, nil
}

// FetchNearby searches the upstream for businesses around the query point.
func (c *Client) FetchNearby(ctx context.Context, query service.FetchQuery) (*service.FetchResult, error) {
	if err := c.reserve(ctx); err != nil {
		return nil, err
	}

	reqURL := c.searchURL(query)

	var result *service.FetchResult
	err := retry.Do(
		func() error {
			fetched, err := c.doSearch(ctx, reqURL)
			if err != nil {
				return err
			}
			result = fetched

			return nil
		},
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(retryMaxDelay),
		retry.MaxJitter(retryMaxJitter),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("Retrying places fetch", slog.Uint64("attempt", uint64(n)), slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, asFetchError(err)
	}

	return result, nil
}

// reserve takes one token from the local quota. Under the waitBounded
// policy it blocks up to MaxWait; under failFast it surfaces RateLimited
// immediately. Either way the caller never hangs indefinitely.
func (c *Client) reserve(ctx context.Context) error {
	if c.cfg.Policy == config.PolicyFailFast {
		if !c.limiter.Allow() {
			return &service.FetchError{Kind: service.FetchRateLimited, Err: errors.New("local quota exhausted")}
		}

		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.MaxWait)
	defer cancel()

	if err := c.limiter.Wait(waitCtx); err != nil {
		return &service.FetchError{Kind: service.FetchRateLimited, Err: errors.Wrap(err, "quota wait exceeded bound")}
	}

	return nil
}

func (c *Client) searchURL(query service.FetchQuery) string {
	params := url.Values{}
	params.Set("ll", fmt.Sprintf("%f,%f", query.Latitude, query.Longitude))
	params.Set("radius", strconv.Itoa(query.RadiusMeters))
	params.Set("limit", strconv.Itoa(min(query.Limit, 50)))
	params.Set("fields", searchFields)
	if len(query.Categories) > 0 {
		params.Set("categories", strings.Join(query.Categories, ","))
	}

	return c.cfg.BaseURL + "/search?" + params.Encode()
}

func (c *Client) doSearch(ctx context.Context, reqURL string) (*service.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, retry.Unrecoverable(errors.Wrap(err, "create request"))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Places request failed, will retry",
			slog.Duration("elapsed", time.Since(startTime)),
			slog.Any("error", err),
		)

		return nil, &service.FetchError{Kind: service.FetchTransient, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", slog.Any("error", closeErr))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, retry.Unrecoverable(&service.FetchError{
			Kind: service.FetchUnauthorized,
			Err:  errors.Errorf("HTTP %d", resp.StatusCode),
		})
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &service.FetchError{
			Kind: service.FetchRateLimited,
			Err:  errors.New("HTTP 429"),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &service.FetchError{
			Kind: service.FetchTransient,
			Err:  errors.Errorf("HTTP %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(&service.FetchError{
			Kind: service.FetchMalformed,
			Err:  errors.Errorf("unexpected HTTP %d", resp.StatusCode),
		})
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, retry.Unrecoverable(&service.FetchError{
			Kind: service.FetchMalformed,
			Err:  errors.Wrap(err, "decode response"),
		})
	}

	result := mapSearchResponse(&body)

	c.logger.Debug("Places fetch completed",
		slog.Duration("elapsed", time.Since(startTime)),
		slog.Int("results", len(result.Businesses)),
		slog.Int("malformed", result.MalformedCount),
	)

	return result, nil
}

// asFetchError guarantees callers always see a typed *service.FetchError.
func asFetchError(err error) error {
	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	return &service.FetchError{Kind: service.FetchTransient, Err: err}
}
