package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/config"
)

func TestGetHourly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "49.2827", r.URL.Query().Get("latitude"))
		assert.Equal(t, "2", r.URL.Query().Get("forecast_days"))
		assert.Equal(t, "auto", r.URL.Query().Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"timezone": "America/Vancouver",
			"utc_offset_seconds": -25200,
			"hourly": {
				"time": ["2026-08-30T00:00", "2026-08-30T01:00", "2026-08-30T02:00"],
				"wind_speed_10m": [10.5, 12.0, 9.8],
				"wind_direction_10m": [270, 280, 265],
				"surface_pressure": [1013.2, 1012.8, 1012.1],
				"temperature_2m": [15.1, 14.8, 14.2],
				"sea_surface_temperature": [12.0, 12.0, 11.9]
			}
		}`))
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Weather.BaseURL = server.URL
	cfg.Weather.Timeout = 5

	client := NewWeatherClient(cfg)
	hours, err := client.GetHourly(context.Background(), 49.2827, -123.1207, 2)

	require.NoError(t, err)
	require.Len(t, hours, 3)
	assert.InDelta(t, 10.5, hours[0].WindSpeed, 0.001)
	assert.InDelta(t, 270, hours[0].WindDirection, 0.001)
	assert.InDelta(t, 1012.1, hours[2].Pressure, 0.001)
	assert.InDelta(t, 11.9, hours[2].WaterTemp, 0.001)
	assert.Equal(t, 1, hours[1].Time.Hour())
	// Wall times are anchored in the provider's zone: 01:00 at -07:00
	// is 08:00 UTC.
	assert.True(t, hours[1].Time.Equal(time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)))
}

func TestGetHourlyEmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hourly": {"time": []}}`))
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Weather.BaseURL = server.URL
	cfg.Weather.Timeout = 5

	client := NewWeatherClient(cfg)
	_, err := client.GetHourly(context.Background(), 49, -123, 1)
	assert.Error(t, err)
}
