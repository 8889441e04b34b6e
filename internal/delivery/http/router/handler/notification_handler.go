package handler

import (
	"net/http"
	"strconv"

	"bizradar/internal/delivery/http/response"
	"bizradar/internal/domain/entity"
	domainerrors "bizradar/internal/domain/errors"
	"bizradar/internal/domain/repository"
	"bizradar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// NotificationHandler holds dependencies for notification feed handlers
type NotificationHandler struct {
	uc usecase.NotificationUsecase
}

// NewNotificationHandler is the constructor for NotificationHandler
func NewNotificationHandler(uc usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{
		uc: uc,
	}
}

// ListNotifications returns the notification feed, newest first. Supports
// unread_only, open_only, kind and limit query parameters.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	filter := repository.NotificationFilter{
		UnreadOnly: c.QueryParam("unread_only") == "true",
		OpenOnly:   c.QueryParam("open_only") == "true",
	}

	if kind := c.QueryParam("kind"); kind != "" {
		filter.Kind = entity.NotificationKind(kind)
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return response.BadRequest(c, "VALIDATION_ERROR", "limit must be a positive integer")
		}
		filter.Limit = limit
	}

	notifications, err := h.uc.ListNotifications(c.Request().Context(), filter)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, notifications, "Notifications retrieved successfully")
}

// MarkRead flags a single notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := h.parseNotificationID(c)
	if err != nil {
		return err
	}

	if err := h.uc.MarkRead(c.Request().Context(), id); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked as read")
}

// MarkAllRead flags every unread notification as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	count, err := h.uc.MarkAllRead(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"updated": count}, "All notifications marked as read")
}

// Dismiss closes a notification. A later recurrence of the same condition
// creates a fresh entry instead of reopening this one.
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	id, err := h.parseNotificationID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Dismiss(c.Request().Context(), id); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification dismissed")
}

func (h *NotificationHandler) parseNotificationID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, response.BadRequest(c, "VALIDATION_ERROR", "notification ID must be a valid UUID")
	}

	return id, nil
}

// handleAppError handles application errors
func (h *NotificationHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
