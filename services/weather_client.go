package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fincast/config"
)

// WeatherClient fetches marine weather from an Open-Meteo style API:
// hourly wind, pressure, and temperature series for a point.
type WeatherClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWeatherClient(cfg *config.Config) *WeatherClient {
	return &WeatherClient{
		baseURL: cfg.Weather.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.WeatherTimeoutDuration(),
		},
	}
}

// HourlyWeather is one hour of the provider series
type HourlyWeather struct {
	Time          time.Time
	WindSpeed     float64 // km/h
	WindDirection float64 // degrees
	Pressure      float64 // hPa
	AirTemp       float64 // Celsius
	WaterTemp     float64 // Celsius
}

type weatherResponse struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Hourly           struct {
		Time          []string  `json:"time"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
		WindDirection []float64 `json:"wind_direction_10m"`
		Pressure      []float64 `json:"surface_pressure"`
		AirTemp       []float64 `json:"temperature_2m"`
		WaterTemp     []float64 `json:"sea_surface_temperature"`
	} `json:"hourly"`
}

// GetHourly retrieves the hourly series for a point over the given
// number of days (today onward).
func (c *WeatherClient) GetHourly(ctx context.Context, lat, lng float64, days int) ([]HourlyWeather, error) {
	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%.4f", lat))
	params.Add("longitude", fmt.Sprintf("%.4f", lng))
	params.Add("hourly", "wind_speed_10m,wind_direction_10m,surface_pressure,temperature_2m,sea_surface_temperature")
	params.Add("forecast_days", fmt.Sprint(days))
	params.Add("timezone", "auto")

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var wr weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	// The series carries local wall-clock timestamps with no offset.
	// Anchor them in the location's zone so they compare correctly
	// against absolute times.
	zone := time.FixedZone(wr.Timezone, wr.UTCOffsetSeconds)

	hours := make([]HourlyWeather, 0, len(wr.Hourly.Time))
	for i, ts := range wr.Hourly.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, zone)
		if err != nil {
			continue // skip malformed timestamps
		}

		h := HourlyWeather{Time: t}
		if i < len(wr.Hourly.WindSpeed) {
			h.WindSpeed = wr.Hourly.WindSpeed[i]
		}
		if i < len(wr.Hourly.WindDirection) {
			h.WindDirection = wr.Hourly.WindDirection[i]
		}
		if i < len(wr.Hourly.Pressure) {
			h.Pressure = wr.Hourly.Pressure[i]
		}
		if i < len(wr.Hourly.AirTemp) {
			h.AirTemp = wr.Hourly.AirTemp[i]
		}
		if i < len(wr.Hourly.WaterTemp) {
			h.WaterTemp = wr.Hourly.WaterTemp[i]
		}
		hours = append(hours, h)
	}

	if len(hours) == 0 {
		return nil, fmt.Errorf("weather API returned no usable hours")
	}

	return hours, nil
}
