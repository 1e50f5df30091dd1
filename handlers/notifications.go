package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fincast/services"
)

type NotificationHandlers struct {
	notifier *services.NotificationService
}

func NewNotificationHandlers(notifier *services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{
		notifier: notifier,
	}
}

// ListNotifications godoc
// @Summary Notification feed, newest first
// @Param filter query string false "all or unread (default all)"
// @Router /api/notifications [get]
func (nh *NotificationHandlers) ListNotifications(c echo.Context) error {
	filter := c.QueryParam("filter")
	if filter == "" {
		filter = "all"
	}
	if filter != "all" && filter != "unread" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "filter must be all or unread"})
	}

	return c.JSON(http.StatusOK, nh.notifier.List(filter))
}

// MarkRead godoc
// @Router /api/notifications/{id}/read [post]
func (nh *NotificationHandlers) MarkRead(c echo.Context) error {
	id := c.Param("id")

	if err := nh.notifier.MarkRead(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "notification marked read"})
}

// MarkAllRead godoc
// @Router /api/notifications/read-all [post]
func (nh *NotificationHandlers) MarkAllRead(c echo.Context) error {
	nh.notifier.MarkAllRead()
	return c.JSON(http.StatusOK, map[string]string{"message": "all notifications marked read"})
}

// DeleteNotification godoc
// @Router /api/notifications/{id} [delete]
func (nh *NotificationHandlers) DeleteNotification(c echo.Context) error {
	id := c.Param("id")

	if err := nh.notifier.Delete(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "notification deleted"})
}
