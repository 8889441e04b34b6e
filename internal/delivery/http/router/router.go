// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bizradar/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	BusinessHandler     *handler.BusinessHandler
	NotificationHandler *handler.NotificationHandler
	ScanHandler         *handler.ScanHandler
	SettingsHandler     *handler.SettingsHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	businessHandler     *handler.BusinessHandler
	notificationHandler *handler.NotificationHandler
	scanHandler         *handler.ScanHandler
	settingsHandler     *handler.SettingsHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		businessHandler:     params.BusinessHandler,
		notificationHandler: params.NotificationHandler,
		scanHandler:         params.ScanHandler,
		settingsHandler:     params.SettingsHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Snapshot of tracked businesses
	businessGroup := e.Group("/businesses")
	{
		businessGroup.GET("", r.businessHandler.ListBusinesses)
		businessGroup.PUT("/:placeID/competitor", r.businessHandler.SetCompetitorFlag)
	}

	// Notification feed and its read/dismiss lifecycle
	notificationGroup := e.Group("/notifications")
	{
		notificationGroup.GET("", r.notificationHandler.ListNotifications)
		notificationGroup.POST("/read-all", r.notificationHandler.MarkAllRead)
		notificationGroup.POST("/:id/read", r.notificationHandler.MarkRead)
		notificationGroup.DELETE("/:id", r.notificationHandler.Dismiss)
	}

	// Scan lifecycle: manual trigger, cancel, status and history
	scanGroup := e.Group("/scans")
	{
		scanGroup.POST("", r.scanHandler.TriggerScan)
		scanGroup.POST("/cancel", r.scanHandler.CancelScan)
		scanGroup.GET("/status", r.scanHandler.GetStatus)
		scanGroup.GET("", r.scanHandler.GetScanHistory)
	}

	// Monitoring settings
	settingsGroup := e.Group("/settings")
	{
		settingsGroup.GET("", r.settingsHandler.GetSettings)
		settingsGroup.PUT("", r.settingsHandler.UpdateSettings)
	}
}
