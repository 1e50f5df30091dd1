package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/config"
)

func TestFetchNotices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notices", r.URL.Path)
		assert.Equal(t, "pacific", r.URL.Query().Get("region"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"notices": [
				{
					"id": "FN0712",
					"title": "Area 29 chinook opening",
					"summary": "Recreational chinook opens June 15.",
					"region": "pacific",
					"url": "https://example.org/fn0712",
					"published_at": "2026-06-10T09:00:00Z"
				},
				{
					"id": "FN0713",
					"title": "Prawn closure",
					"summary": "Spot prawn season closes June 25.",
					"region": "pacific",
					"url": "https://example.org/fn0713",
					"published_at": "2026-06-20T12:30:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notices.BaseURL = server.URL

	client := NewNoticeClient(cfg)
	notices, err := client.FetchNotices(context.Background(), "pacific")

	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, "FN0712", notices[0].NoticeID)
	assert.Equal(t, "pacific", notices[0].Region)
	assert.Equal(t, 2026, notices[0].PublishedAt.Year())
	assert.False(t, notices[0].FetchedAt.IsZero())
}

func TestFetchNoticesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notices.BaseURL = server.URL

	client := NewNoticeClient(cfg)
	_, err := client.FetchNotices(context.Background(), "pacific")
	assert.Error(t, err)
}
