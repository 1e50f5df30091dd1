package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fincast/models"
	"fincast/services"
)

type PreferencesHandlers struct {
	prefs *services.PreferencesService
}

func NewPreferencesHandlers(prefs *services.PreferencesService) *PreferencesHandlers {
	return &PreferencesHandlers{
		prefs: prefs,
	}
}

// GetPreferences godoc
// @Router /api/preferences/{client} [get]
func (ph *PreferencesHandlers) GetPreferences(c echo.Context) error {
	client := c.Param("client")
	return c.JSON(http.StatusOK, ph.prefs.Get(client))
}

// PutPreferences godoc
// @Router /api/preferences/{client} [put]
func (ph *PreferencesHandlers) PutPreferences(c echo.Context) error {
	client := c.Param("client")

	var body models.Preferences
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	updated, err := ph.prefs.Put(client, &body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, updated)
}

// CycleUnits godoc
// @Summary Advance the unit system to the next in the cycle
// @Router /api/preferences/{client}/units/cycle [post]
func (ph *PreferencesHandlers) CycleUnits(c echo.Context) error {
	client := c.Param("client")
	return c.JSON(http.StatusOK, ph.prefs.CycleUnits(client))
}
