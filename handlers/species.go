package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fincast/config"
	"fincast/services"
)

type SpeciesHandlers struct {
	cfg     *config.Config
	species *services.SpeciesService
}

func NewSpeciesHandlers(cfg *config.Config, species *services.SpeciesService) *SpeciesHandlers {
	return &SpeciesHandlers{
		cfg:     cfg,
		species: species,
	}
}

// ListSpecies godoc
// @Summary Species catalog sorted by name
// @Router /api/species [get]
func (sh *SpeciesHandlers) ListSpecies(c echo.Context) error {
	return c.JSON(http.StatusOK, sh.species.ListSpecies())
}

// GetSpecies godoc
// @Router /api/species/{id} [get]
func (sh *SpeciesHandlers) GetSpecies(c echo.Context) error {
	id := c.Param("id")

	sp, found := sh.species.GetSpecies(id)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "species not found"})
	}

	return c.JSON(http.StatusOK, sp)
}

// GetSpeciesCalendar godoc
// @Summary Month-by-month availability and season openings
// @Router /api/species/{id}/calendar [get]
func (sh *SpeciesHandlers) GetSpeciesCalendar(c echo.Context) error {
	id := c.Param("id")

	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	calendar, err := sh.species.Calendar(id, year)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, calendar)
}

// GetRegulations godoc
// @Summary Regulation windows, optionally filtered by region
// @Router /api/regulations [get]
func (sh *SpeciesHandlers) GetRegulations(c echo.Context) error {
	region := c.QueryParam("region")
	return c.JSON(http.StatusOK, sh.species.Regulations(region))
}

// GetNotices godoc
// @Summary Recent fishery notices
// @Router /api/notices [get]
func (sh *SpeciesHandlers) GetNotices(c echo.Context) error {
	region := c.QueryParam("region")
	if region == "" {
		region = sh.cfg.Notices.DefaultRegion
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}

	notices, err := sh.species.GetNotices(c.Request().Context(), region, int64(limit))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, notices)
}
