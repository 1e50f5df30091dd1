package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fincast/config"
	"fincast/models"
)

// TideClient fetches high/low predictions from a NOAA CO-OPS style API
type TideClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTideClient(cfg *config.Config) *TideClient {
	return &TideClient{
		baseURL: cfg.Tide.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.TideTimeoutDuration(),
		},
	}
}

type tideResponse struct {
	Metadata struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"metadata"`
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`    // returned as string
		Type   string `json:"type"` // "H" or "L"
	} `json:"predictions"`
}

// GetPredictions retrieves high/low tide predictions for a station and
// date range.
func (c *TideClient) GetPredictions(ctx context.Context, stationID string, start, end time.Time) (*models.TideData, error) {
	params := url.Values{}
	params.Add("begin_date", start.UTC().Format("20060102"))
	params.Add("end_date", end.UTC().Format("20060102"))
	params.Add("station", stationID)
	params.Add("product", "predictions")
	params.Add("datum", "MLLW")
	params.Add("time_zone", "gmt")
	params.Add("interval", "hilo")
	params.Add("units", "metric")
	params.Add("format", "json")
	params.Add("application", "Fincast")

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tide data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tide API returned status %d", resp.StatusCode)
	}

	var tr tideResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode tide response: %w", err)
	}

	data := &models.TideData{
		StationID:   stationID,
		StationName: tr.Metadata.Name,
		Events:      make([]models.TideEvent, 0, len(tr.Predictions)),
		UpdatedAt:   time.Now(),
	}

	for _, pred := range tr.Predictions {
		// Requested in GMT, so the zone-less parse yields the right
		// absolute instant.
		eventTime, err := time.Parse("2006-01-02 15:04", pred.Time)
		if err != nil {
			continue
		}
		height, err := strconv.ParseFloat(pred.Height, 64)
		if err != nil {
			continue
		}

		data.Events = append(data.Events, models.TideEvent{
			Time:   eventTime,
			Type:   pred.Type,
			Height: height,
		})
	}

	return data, nil
}

// PhaseAt derives the tide phase at t from the bracketing extremes, and
// the exchange (height delta) between them. Within 30 minutes of an
// extreme the phase is slack.
func PhaseAt(events []models.TideEvent, t time.Time) (phase string, exchange float64) {
	var prev, next *models.TideEvent
	for i := range events {
		e := &events[i]
		if !e.Time.After(t) {
			prev = e
		} else {
			next = e
			break
		}
	}

	if prev == nil || next == nil {
		return "", 0
	}

	exchange = next.Height - prev.Height
	if exchange < 0 {
		exchange = -exchange
	}

	const slackWindow = 30 * time.Minute
	if t.Sub(prev.Time) < slackWindow {
		if prev.Type == "H" {
			return models.TideHighSlack, exchange
		}
		return models.TideLowSlack, exchange
	}
	if next.Time.Sub(t) < slackWindow {
		if next.Type == "H" {
			return models.TideHighSlack, exchange
		}
		return models.TideLowSlack, exchange
	}

	if next.Type == "H" {
		return models.TideIncoming, exchange
	}
	return models.TideOutgoing, exchange
}
