package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/models"
)

const testCatalog = `
species:
  - id: coho
    name: Coho Salmon
    category: salmon
    months: [7, 8, 9, 10]
    min_size_cm: 30
    daily_limit: 2
    regions: [pacific]
  - id: chinook
    name: Chinook Salmon
    category: salmon
    months: [5, 6, 7, 8, 9]
    min_size_cm: 62
    daily_limit: 2
    regions: [pacific]
  - id: dungeness
    name: Dungeness Crab
    category: shellfish
    months: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12]
    min_size_cm: 16.5
    daily_limit: 4
    regions: [pacific]

regulations:
  - species_id: coho
    region: pacific
    open_from: "2026-07-01"
    open_to: "2026-10-31"
  - species_id: chinook
    region: pacific
    open_from: "2026-06-15"
    open_to: "2026-09-30"
  - species_id: chinook
    region: atlantic
    open_from: "2026-05-01"
    open_to: "2026-05-31"
`

func newTestSpeciesService(t *testing.T) *SpeciesService {
	t.Helper()

	path := filepath.Join(t.TempDir(), "species.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	cfg := newTestConfig()
	cfg.Species.CatalogPath = path

	s, err := NewSpeciesService(cfg, nil, NewCacheService(cfg), nil, nil)
	require.NoError(t, err)
	return s
}

func TestSpeciesServiceMissingCatalog(t *testing.T) {
	cfg := newTestConfig()
	cfg.Species.CatalogPath = "/does/not/exist.yaml"

	_, err := NewSpeciesService(cfg, nil, NewCacheService(cfg), nil, nil)
	assert.Error(t, err)
}

func TestListSpeciesSortedByName(t *testing.T) {
	s := newTestSpeciesService(t)

	species := s.ListSpecies()
	require.Len(t, species, 3)
	assert.Equal(t, "Chinook Salmon", species[0].Name)
	assert.Equal(t, "Coho Salmon", species[1].Name)
	assert.Equal(t, "Dungeness Crab", species[2].Name)
}

func TestRegulationsFilterByRegion(t *testing.T) {
	s := newTestSpeciesService(t)

	assert.Len(t, s.Regulations(""), 3)
	assert.Len(t, s.Regulations("pacific"), 2)
	assert.Len(t, s.Regulations("atlantic"), 1)
	assert.Empty(t, s.Regulations("arctic"))
}

func TestCalendar(t *testing.T) {
	s := newTestSpeciesService(t)

	months, err := s.Calendar("coho", 2026)
	require.NoError(t, err)
	require.Len(t, months, 12)

	june := months[5]
	assert.False(t, june.Available)
	assert.False(t, june.Open)

	july := months[6]
	assert.True(t, july.Available)
	assert.True(t, july.Open)

	october := months[9]
	assert.True(t, october.Available)
	assert.True(t, october.Open)

	november := months[10]
	assert.False(t, november.Available)
	assert.False(t, november.Open)
}

func TestCalendarOpenWithoutAvailability(t *testing.T) {
	s := newTestSpeciesService(t)

	// Chinook: present May-September, open June 15 - September 30
	months, err := s.Calendar("chinook", 2026)
	require.NoError(t, err)

	may := months[4]
	assert.True(t, may.Available)
	assert.True(t, may.Open, "atlantic May window still marks the month open")

	june := months[5]
	assert.True(t, june.Open, "window starting mid-month opens the month")
}

func TestCalendarUnknownSpecies(t *testing.T) {
	s := newTestSpeciesService(t)

	_, err := s.Calendar("kraken", 2026)
	assert.Error(t, err)
}

func TestAdjustScores(t *testing.T) {
	s := newTestSpeciesService(t)

	scores := s.AdjustScores(60, 8) // August
	assert.InDelta(t, 65, scores["coho"], 0.001)
	assert.InDelta(t, 65, scores["chinook"], 0.001)
	assert.InDelta(t, 65, scores["dungeness"], 0.001)

	scores = s.AdjustScores(60, 12) // December
	assert.InDelta(t, 40, scores["coho"], 0.001)
	assert.InDelta(t, 65, scores["dungeness"], 0.001, "year-round species stays in season")

	// Clamp at both ends
	scores = s.AdjustScores(10, 12)
	assert.InDelta(t, 0, scores["coho"], 0.001)
	scores = s.AdjustScores(98, 8)
	assert.InDelta(t, 100, scores["coho"], 0.001)
}

func TestRefreshNoticesAnnouncesNewNoticesOnce(t *testing.T) {
	payloads := []string{
		`{"notices": [
			{"id": "FN0801", "title": "Area 17 closure", "summary": "Closed to all finfish.", "region": "pacific"},
			{"id": "FN0802", "title": "Crab opening", "summary": "Dungeness opens Sept 1.", "region": "pacific"}
		]}`,
		`{"notices": [
			{"id": "FN0801", "title": "Area 17 closure", "summary": "Closed to all finfish.", "region": "pacific"},
			{"id": "FN0802", "title": "Crab opening", "summary": "Dungeness opens Sept 1.", "region": "pacific"},
			{"id": "FN0803", "title": "Prawn update", "summary": "Spot prawn limits revised.", "region": "pacific"}
		]}`,
	}
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payloads[call]))
		call++
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "species.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	cfg := newTestConfig()
	cfg.Species.CatalogPath = path
	cfg.Notices.BaseURL = server.URL
	cfg.Notices.DefaultRegion = "pacific"

	notifier := NewNotificationService(nil)
	s, err := NewSpeciesService(cfg, NewNoticeClient(cfg), NewCacheService(cfg), nil, notifier)
	require.NoError(t, err)

	require.NoError(t, s.RefreshNotices(context.Background()))

	list := notifier.List("all")
	require.Len(t, list.Notifications, 2)
	for _, n := range list.Notifications {
		assert.Equal(t, models.NotificationNotice, n.Type)
	}

	// Second refresh repeats the known notices and adds one: only the
	// new ID lands in the feed.
	require.NoError(t, s.RefreshNotices(context.Background()))

	list = notifier.List("all")
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, "Prawn update", list.Notifications[0].Title)
}
