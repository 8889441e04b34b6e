package handler

import (
	"net/http"
	"strconv"

	"bizradar/internal/delivery/http/response"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const defaultScanHistoryLimit = 20

// ScanHandler holds dependencies for scan lifecycle handlers
type ScanHandler struct {
	uc usecase.ScanUsecase
}

// NewScanHandler is the constructor for ScanHandler
func NewScanHandler(uc usecase.ScanUsecase) *ScanHandler {
	return &ScanHandler{
		uc: uc,
	}
}

// TriggerScan runs one scan synchronously and returns the finalized record.
// A scan already in flight yields 409 SCAN_IN_PROGRESS without queueing.
func (h *ScanHandler) TriggerScan(c echo.Context) error {
	record, err := h.uc.RunScan(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, record, "Scan completed")
}

// CancelScan asks a running scan to stop before its commit phase.
func (h *ScanHandler) CancelScan(c echo.Context) error {
	cancelled := h.uc.CancelScan()
	if !cancelled {
		return response.Success(c, http.StatusOK, map[string]bool{"cancelled": false}, "No scan is running")
	}

	return response.Success(c, http.StatusOK, map[string]bool{"cancelled": true}, "Scan cancellation requested")
}

// GetStatus reports the scheduler state.
func (h *ScanHandler) GetStatus(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"state": string(h.uc.State()),
	}, "Scan status retrieved successfully")
}

// GetScanHistory returns the most recent scan records, newest first.
func (h *ScanHandler) GetScanHistory(c echo.Context) error {
	limit := defaultScanHistoryLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return response.BadRequest(c, "VALIDATION_ERROR", "limit must be a positive integer")
		}
		limit = parsed
	}

	records, err := h.uc.GetScanHistory(c.Request().Context(), limit)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, records, "Scan history retrieved successfully")
}

// handleAppError handles application errors
func (h *ScanHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
