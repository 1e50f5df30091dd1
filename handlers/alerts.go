package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fincast/models"
	"fincast/services"
)

// AlertHandlers manages alert profile endpoints
type AlertHandlers struct {
	alertService *services.AlertService
}

func NewAlertHandlers(alertService *services.AlertService) *AlertHandlers {
	return &AlertHandlers{
		alertService: alertService,
	}
}

// CreateAlert godoc
// @Summary Create an alert profile
// @Router /api/alerts [post]
func (ah *AlertHandlers) CreateAlert(c echo.Context) error {
	var profile models.AlertProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := ah.alertService.CreateProfile(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, profile)
}

// ListAlerts godoc
// @Summary List alert profiles
// @Router /api/alerts [get]
func (ah *AlertHandlers) ListAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, ah.alertService.ListProfiles())
}

// GetAlert godoc
// @Summary Get one alert profile
// @Router /api/alerts/{id} [get]
func (ah *AlertHandlers) GetAlert(c echo.Context) error {
	id := c.Param("id")

	profile, found := ah.alertService.GetProfile(id)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "alert profile not found"})
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateAlert godoc
// @Summary Replace an alert profile
// @Router /api/alerts/{id} [put]
func (ah *AlertHandlers) UpdateAlert(c echo.Context) error {
	id := c.Param("id")

	var profile models.AlertProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := ah.alertService.UpdateProfile(id, &profile); err != nil {
		if err.Error() == "alert profile not found" {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, profile)
}

// DeleteAlert godoc
// @Summary Delete an alert profile
// @Router /api/alerts/{id} [delete]
func (ah *AlertHandlers) DeleteAlert(c echo.Context) error {
	id := c.Param("id")

	if err := ah.alertService.DeleteProfile(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "alert profile deleted"})
}

// GetAlertHistory godoc
// @Summary Recent alert firings, newest first
// @Router /api/alerts/history [get]
func (ah *AlertHandlers) GetAlertHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	return c.JSON(http.StatusOK, ah.alertService.GetEvents(limit))
}

// TestAlert godoc
// @Summary Dry-run a profile against current conditions
// @Router /api/alerts/test [post]
func (ah *AlertHandlers) TestAlert(c echo.Context) error {
	var profile models.AlertProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	triggered, matched, sample, err := ah.alertService.TestProfile(c.Request().Context(), &profile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"triggered": triggered,
		"matched":   matched,
		"sample":    sample,
	})
}
