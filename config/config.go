// Package config loads the application configuration from YAML files and
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Places configures the upstream places API client.
	Places *PlacesConfig `json:"places" yaml:"places"`

	// Monitoring seeds the default scan configuration on first run.
	Monitoring *MonitoringDefaults `json:"monitoring" yaml:"monitoring"`

	// PubSub configures the notification delivery stream.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// RateLimitPolicy selects how the places client behaves when the quota is
// exhausted.
type RateLimitPolicy string

const (
	// PolicyWaitBounded blocks up to MaxWait for a token, then fails with
	// a rate-limited error.
	PolicyWaitBounded RateLimitPolicy = "waitBounded"
	// PolicyFailFast fails immediately when no token is available.
	PolicyFailFast RateLimitPolicy = "failFast"
)

// PlacesConfig defines upstream places API access and rate limiting.
type PlacesConfig struct {
	// BaseURL of the places API, e.g. https://api.foursquare.com/v3/places.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// APIKey is sent as a bearer-style Authorization header.
	APIKey string `json:"apiKey" yaml:"apiKey"`

	// MaxRequests per Window, sized to the upstream quota.
	MaxRequests int           `json:"maxRequests" yaml:"maxRequests"`
	Window      time.Duration `json:"window" yaml:"window"`

	// Policy when the local limiter has no token available.
	Policy RateLimitPolicy `json:"policy" yaml:"policy"`

	// MaxWait bounds the blocking wait under the waitBounded policy.
	MaxWait time.Duration `json:"maxWait" yaml:"maxWait"`

	// RequestTimeout bounds a single upstream HTTP call, separate from the
	// rate-limit wait bound.
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`

	// RetryAttempts caps transparent retries of transient failures.
	RetryAttempts uint `json:"retryAttempts" yaml:"retryAttempts"`
}

// MonitoringDefaults seeds the persisted monitoring settings on first run.
type MonitoringDefaults struct {
	BusinessName string        `json:"businessName" yaml:"businessName"`
	Latitude     float64       `json:"latitude" yaml:"latitude"`
	Longitude    float64       `json:"longitude" yaml:"longitude"`
	RadiusMeters int           `json:"radiusMeters" yaml:"radiusMeters"`
	ScanInterval time.Duration `json:"scanInterval" yaml:"scanInterval"`
}

// PubSubConfig defines the notification delivery stream provider.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP push or "google" for Google Pub/Sub.
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: PLACES_APIKEY -> places.apiKey (not places.apikey)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyPlacesDefaults(cfg)

	return cfg, nil
}

func applyPlacesDefaults(cfg *Config) {
	if cfg.Places == nil {
		return
	}

	if cfg.Places.BaseURL == "" {
		cfg.Places.BaseURL = "https://api.foursquare.com/v3/places"
	}
	if cfg.Places.MaxRequests == 0 {
		cfg.Places.MaxRequests = 50
	}
	if cfg.Places.Window == 0 {
		cfg.Places.Window = time.Hour
	}
	if cfg.Places.Policy == "" {
		cfg.Places.Policy = PolicyWaitBounded
	}
	if cfg.Places.MaxWait == 0 {
		cfg.Places.MaxWait = time.Minute
	}
	if cfg.Places.RequestTimeout == 0 {
		cfg.Places.RequestTimeout = 30 * time.Second
	}
	if cfg.Places.RetryAttempts == 0 {
		cfg.Places.RetryAttempts = 5
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
