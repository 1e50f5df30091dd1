package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"fincast/services"
)

type SystemHandlers struct {
	cache     *services.CacheService
	alerts    *services.AlertService
	notifier  *services.NotificationService
	startedAt time.Time
}

func NewSystemHandlers(cache *services.CacheService, alerts *services.AlertService,
	notifier *services.NotificationService) *SystemHandlers {
	return &SystemHandlers{
		cache:     cache,
		alerts:    alerts,
		notifier:  notifier,
		startedAt: time.Now(),
	}
}

// GetHealth returns OK
func (h *SystemHandlers) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStatus returns backend status
func (h *SystemHandlers) GetStatus(c echo.Context) error {
	status := map[string]interface{}{
		"status":              "running",
		"uptime":              time.Since(h.startedAt).String(),
		"alertProfiles":       len(h.alerts.ListProfiles()),
		"unreadNotifications": h.notifier.UnreadCount(),
		"cacheMode":           string(h.cache.GetCacheMode()),
		"timestamp":           time.Now(),
	}
	return c.JSON(http.StatusOK, status)
}
