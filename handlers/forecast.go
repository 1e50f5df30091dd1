package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fincast/models"
	"fincast/services"
	"fincast/utils"
)

// ForecastHandlers serves forecast reports, tide predictions, and the
// tide station catalog.
type ForecastHandlers struct {
	forecast   *services.ForecastService
	tides      *services.TideClient
	stations   *services.StationRepository
	conditions *services.ConditionsService
	geo        *utils.GeoResolver
}

func NewForecastHandlers(forecast *services.ForecastService, tides *services.TideClient,
	stations *services.StationRepository, conditions *services.ConditionsService, geo *utils.GeoResolver) *ForecastHandlers {
	return &ForecastHandlers{
		forecast:   forecast,
		tides:      tides,
		stations:   stations,
		conditions: conditions,
		geo:        geo,
	}
}

// resolveLocation reads lat/lng query params, falling back to a GeoIP
// lookup on the client address when they are absent.
func (fh *ForecastHandlers) resolveLocation(c echo.Context) (float64, float64, bool) {
	latStr := c.QueryParam("lat")
	lngStr := c.QueryParam("lng")

	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return 0, 0, false
		}
		return lat, lng, true
	}

	loc := fh.geo.Resolve(c.RealIP())
	return loc.Lat, loc.Lng, true
}

// GetForecast godoc
// @Summary Multi-day fishing forecast report
// @Param lat query number false "Latitude (defaults to GeoIP)"
// @Param lng query number false "Longitude (defaults to GeoIP)"
// @Param days query int false "Report length, 1-14 (default 14)"
// @Param algorithm query string false "Scoring algorithm (v1 or v2)"
// @Router /api/forecast [get]
func (fh *ForecastHandlers) GetForecast(c echo.Context) error {
	lat, lng, ok := fh.resolveLocation(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	days = services.ClampDays(days)

	algorithm, err := utils.NormalizeAlgorithm(c.QueryParam("algorithm"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	report, err := fh.forecast.GetReport(c.Request().Context(), lat, lng, days, algorithm)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, report)
}

// GetForecastToday godoc
// @Summary Today's forecast only
// @Router /api/forecast/today [get]
func (fh *ForecastHandlers) GetForecastToday(c echo.Context) error {
	lat, lng, ok := fh.resolveLocation(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
	}

	algorithm, err := utils.NormalizeAlgorithm(c.QueryParam("algorithm"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	report, err := fh.forecast.GetReport(c.Request().Context(), lat, lng, 1, algorithm)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	if len(report.Days) == 0 {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "no forecast data available"})
	}

	return c.JSON(http.StatusOK, report.Days[0])
}

// GetForecastSummary godoc
// @Summary Report aggregates: best day, averages, ranges
// @Router /api/forecast/summary [get]
func (fh *ForecastHandlers) GetForecastSummary(c echo.Context) error {
	lat, lng, ok := fh.resolveLocation(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	days = services.ClampDays(days)

	algorithm, err := utils.NormalizeAlgorithm(c.QueryParam("algorithm"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	report, err := fh.forecast.GetReport(c.Request().Context(), lat, lng, days, algorithm)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, report.Summary)
}

// GetConditionsHistory godoc
// @Summary Persisted condition samples for a location
// @Param hours query int false "Trailing window in hours, 1-720 (default 24)"
// @Router /api/conditions/history [get]
func (fh *ForecastHandlers) GetConditionsHistory(c echo.Context) error {
	lat, lng, ok := fh.resolveLocation(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
	}

	hours, _ := strconv.Atoi(c.QueryParam("hours"))
	if hours < 1 {
		hours = 24
	}
	if hours > 720 {
		hours = 720
	}

	snapshots, err := fh.conditions.History(c.Request().Context(), lat, lng, hours)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"samples": snapshots,
		"hours":   hours,
	})
}

// GetTides godoc
// @Summary Tide predictions for a station or location
// @Param station query string false "Station ID (defaults to nearest)"
// @Router /api/tides [get]
func (fh *ForecastHandlers) GetTides(c echo.Context) error {
	stationID := c.QueryParam("station")

	var station *models.TideStation
	var err error
	if stationID != "" {
		station, err = fh.stations.GetByID(stationID)
	} else {
		lat, lng, ok := fh.resolveLocation(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
		}
		station, err = fh.stations.Nearest(lat, lng)
	}
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "tide station not found"})
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	days = services.ClampDays(days)

	now := time.Now()
	tides, err := fh.tides.GetPredictions(c.Request().Context(), station.ID, now, now.AddDate(0, 0, days))
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"station": station,
		"tides":   tides,
	})
}

// GetStations godoc
// @Summary Tide stations near a location, closest first
// @Router /api/stations [get]
func (fh *ForecastHandlers) GetStations(c echo.Context) error {
	lat, lng, ok := fh.resolveLocation(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid lat/lng"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}

	stations, err := fh.stations.Nearby(lat, lng, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, stations)
}
