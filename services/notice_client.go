package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"fincast/config"
	"fincast/models"
)

// NoticeClient fetches fishery notices from the DFO open-data API
type NoticeClient struct {
	client *resty.Client
}

func NewNoticeClient(cfg *config.Config) *NoticeClient {
	client := resty.New().
		SetBaseURL(cfg.Notices.BaseURL).
		SetTimeout(20 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &NoticeClient{client: client}
}

type noticePayload struct {
	Notices []struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Summary   string `json:"summary"`
		Region    string `json:"region"`
		URL       string `json:"url"`
		Published string `json:"published_at"`
	} `json:"notices"`
}

// FetchNotices retrieves current notices for a region
func (c *NoticeClient) FetchNotices(ctx context.Context, region string) ([]*models.FisheryNotice, error) {
	var payload noticePayload

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("region", region).
		SetResult(&payload).
		Get("/notices")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fishery notices: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notice API returned status %d", resp.StatusCode())
	}

	now := time.Now()
	notices := make([]*models.FisheryNotice, 0, len(payload.Notices))
	for _, n := range payload.Notices {
		published, err := time.Parse(time.RFC3339, n.Published)
		if err != nil {
			published = now
		}

		notices = append(notices, &models.FisheryNotice{
			NoticeID:    n.ID,
			Title:       n.Title,
			Summary:     n.Summary,
			Region:      n.Region,
			URL:         n.URL,
			PublishedAt: published,
			FetchedAt:   now,
		})
	}

	return notices, nil
}
