package handler

import (
	"net/http"
	"strconv"

	"bizradar/internal/delivery/http/response"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BusinessHandler holds dependencies for snapshot-related handlers
type BusinessHandler struct {
	uc usecase.BusinessUsecase
}

// NewBusinessHandler is the constructor for BusinessHandler
func NewBusinessHandler(uc usecase.BusinessUsecase) *BusinessHandler {
	return &BusinessHandler{
		uc: uc,
	}
}

// ListBusinesses returns the tracked businesses from the committed snapshot.
// Supports filtering by competitors_only, category and min_rating.
func (h *BusinessHandler) ListBusinesses(c echo.Context) error {
	filter := repository.BusinessFilter{
		CompetitorsOnly: c.QueryParam("competitors_only") == "true",
		Category:        c.QueryParam("category"),
	}

	if minRatingStr := c.QueryParam("min_rating"); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil || minRating < 0 || minRating > 5 {
			return response.BadRequest(c, "VALIDATION_ERROR", "min_rating must be a number between 0 and 5")
		}
		filter.MinRating = minRating
	}

	businesses, err := h.uc.ListBusinesses(c.Request().Context(), filter)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, businesses, "Businesses retrieved successfully")
}

// SetCompetitorRequest represents the request body for the competitor flag
type SetCompetitorRequest struct {
	IsCompetitor *bool `json:"is_competitor"`
}

// SetCompetitorFlag sets the operator-owned competitor annotation on a
// tracked business. The flag survives every subsequent scan.
func (h *BusinessHandler) SetCompetitorFlag(c echo.Context) error {
	placeID := c.Param("placeID")
	if placeID == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "place ID is required")
	}

	var req SetCompetitorRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid competitor flag input")
	}
	if req.IsCompetitor == nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "is_competitor is required")
	}

	if err := h.uc.SetCompetitorFlag(c.Request().Context(), placeID, *req.IsCompetitor); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"place_id":      placeID,
		"is_competitor": *req.IsCompetitor,
	}, "Competitor flag updated successfully")
}

// handleAppError handles application errors
func (h *BusinessHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
