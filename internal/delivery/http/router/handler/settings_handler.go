package handler

import (
	"net/http"
	"time"

	"bizradar/internal/delivery/http/response"
	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SettingsHandler holds dependencies for monitoring settings handlers
type SettingsHandler struct {
	uc usecase.SettingsUsecase
}

// NewSettingsHandler is the constructor for SettingsHandler
func NewSettingsHandler(uc usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{
		uc: uc,
	}
}

// SettingsPayload is the wire shape for monitoring settings. ScanInterval is
// a duration string ("1h", "30m") rather than raw nanoseconds.
type SettingsPayload struct {
	BusinessName          string   `json:"business_name"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	RadiusMeters          int      `json:"radius_meters"`
	ScanInterval          string   `json:"scan_interval"`
	Categories            []string `json:"categories"`
	ExcludeCategories     []string `json:"exclude_categories"`
	MinRating             float64  `json:"min_rating"`
	RatingChangeThreshold float64  `json:"rating_change_threshold"`
	TrendingDelta         float64  `json:"trending_delta"`
	RemovalGraceCount     int      `json:"removal_grace_count"`
	NotifyNewBusiness     bool     `json:"notify_new_business"`
	NotifyRatingChanges   bool     `json:"notify_rating_changes"`
	NotifyTrending        bool     `json:"notify_trending"`
	NotifyRemovals        bool     `json:"notify_removals"`
	UpdatedAt             string   `json:"updated_at,omitempty"`
}

// GetSettings returns the current monitoring settings.
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.uc.GetSettings(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSettingsPayload(settings), "Settings retrieved successfully")
}

// UpdateSettings validates and persists new monitoring settings. A scan in
// flight keeps the settings it started with; the update applies from the
// next scan onward.
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var payload SettingsPayload
	if err := c.Bind(&payload); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid settings input")
	}

	settings, err := fromSettingsPayload(&payload)
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	updated, err := h.uc.UpdateSettings(c.Request().Context(), settings)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSettingsPayload(updated), "Settings updated successfully")
}

func toSettingsPayload(settings *entity.MonitoringSettings) *SettingsPayload {
	payload := &SettingsPayload{
		BusinessName:          settings.BusinessName,
		Latitude:              settings.Latitude,
		Longitude:             settings.Longitude,
		RadiusMeters:          settings.RadiusMeters,
		ScanInterval:          settings.ScanInterval.String(),
		Categories:            settings.Categories,
		ExcludeCategories:     settings.ExcludeCategories,
		MinRating:             settings.MinRating,
		RatingChangeThreshold: settings.RatingChangeThreshold,
		TrendingDelta:         settings.TrendingDelta,
		RemovalGraceCount:     settings.RemovalGraceCount,
		NotifyNewBusiness:     settings.NotifyNewBusiness,
		NotifyRatingChanges:   settings.NotifyRatingChanges,
		NotifyTrending:        settings.NotifyTrending,
		NotifyRemovals:        settings.NotifyRemovals,
	}
	if !settings.UpdatedAt.IsZero() {
		payload.UpdatedAt = settings.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return payload
}

func fromSettingsPayload(payload *SettingsPayload) (*entity.MonitoringSettings, error) {
	interval, err := time.ParseDuration(payload.ScanInterval)
	if err != nil {
		return nil, errors.New("scan_interval must be a duration string such as \"1h\" or \"30m\"")
	}

	return &entity.MonitoringSettings{
		BusinessName:          payload.BusinessName,
		Latitude:              payload.Latitude,
		Longitude:             payload.Longitude,
		RadiusMeters:          payload.RadiusMeters,
		ScanInterval:          interval,
		Categories:            payload.Categories,
		ExcludeCategories:     payload.ExcludeCategories,
		MinRating:             payload.MinRating,
		RatingChangeThreshold: payload.RatingChangeThreshold,
		TrendingDelta:         payload.TrendingDelta,
		RemovalGraceCount:     payload.RemovalGraceCount,
		NotifyNewBusiness:     payload.NotifyNewBusiness,
		NotifyRatingChanges:   payload.NotifyRatingChanges,
		NotifyTrending:        payload.NotifyTrending,
		NotifyRemovals:        payload.NotifyRemovals,
	}, nil
}

// handleAppError handles application errors
func (h *SettingsHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
