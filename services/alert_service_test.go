package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/config"
	"fincast/models"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Redis.Enabled = false
	cfg.Cache.TTL = 60
	cfg.Polling.SampleInterval = 900
	cfg.Polling.EvaluateInterval = 300
	cfg.Polling.StaleThreshold = 60
	return cfg
}

func newTestAlertService(t *testing.T) *AlertService {
	t.Helper()
	cfg := newTestConfig()
	cache := NewCacheService(cfg)
	conditions := NewConditionsService(cfg, nil, nil, nil, nil, cache, nil)
	return NewAlertService(cfg, conditions, NewNotificationService(nil), nil, nil)
}

func fullTriggers() models.AlertTriggers {
	return models.AlertTriggers{
		Wind: &models.WindTrigger{
			Enabled:            true,
			SpeedMin:           5,
			SpeedMax:           20,
			DirectionCenter:    f64(270),
			DirectionTolerance: f64(45),
		},
		Tide: &models.TideTrigger{
			Enabled:     true,
			Phases:      []string{models.TideIncoming, models.TideHighSlack},
			ExchangeMin: f64(1.5),
		},
		Pressure: &models.PressureTrigger{
			Enabled:           true,
			Trend:             models.PressureFalling,
			GradientThreshold: 2.0,
		},
		WaterTemp: &models.WaterTempTrigger{Enabled: false, Min: 8, Max: 16},
		Solunar:   &models.SolunarTrigger{Enabled: true, Phases: []string{models.SolunarMajor}},
		FishingScore: &models.FishingScoreTrigger{
			Enabled:  true,
			MinScore: 60,
			Species:  "coho",
		},
	}
}

func TestCreateProfileRoundTrip(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{
		Name:        "Westerly window",
		Lat:         49.28,
		Lng:         -123.12,
		Triggers:    fullTriggers(),
		LogicMode:   models.LogicOr,
		CooldownHrs: 6,
		ActiveHours: &models.ActiveHours{Start: "05:00", End: "21:00"},
		Enabled:     true,
	}

	require.NoError(t, as.CreateProfile(profile))
	require.NotEmpty(t, profile.ID)

	stored, found := as.GetProfile(profile.ID)
	require.True(t, found)

	// Every sub-condition comes back exactly as configured
	assert.Equal(t, fullTriggers(), stored.Triggers)
	assert.Equal(t, models.LogicOr, stored.LogicMode)
	assert.Equal(t, 6, stored.CooldownHrs)
	assert.Equal(t, "05:00", stored.ActiveHours.Start)
	assert.False(t, stored.Triggers.WaterTemp.Enabled, "disabled sub-condition keeps its settings")
}

func TestCreateProfileCooldownClamp(t *testing.T) {
	as := newTestAlertService(t)

	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{24, 24},
		{168, 168},
		{169, 168},
		{10000, 168},
	}

	for _, tt := range tests {
		profile := &models.AlertProfile{Name: "p", Lat: 49, Lng: -123, CooldownHrs: tt.in}
		require.NoError(t, as.CreateProfile(profile))
		assert.Equal(t, tt.want, profile.CooldownHrs, "cooldown %d", tt.in)
	}
}

func TestCreateProfileDefaultsLogicMode(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{Name: "p", Lat: 49, Lng: -123}
	require.NoError(t, as.CreateProfile(profile))
	assert.Equal(t, models.LogicAnd, profile.LogicMode)
}

func TestCreateProfileValidation(t *testing.T) {
	as := newTestAlertService(t)

	tests := []struct {
		name    string
		profile models.AlertProfile
	}{
		{"missing name", models.AlertProfile{Lat: 49, Lng: -123}},
		{"lat out of range", models.AlertProfile{Name: "p", Lat: 91, Lng: -123}},
		{"lng out of range", models.AlertProfile{Name: "p", Lat: 49, Lng: -191}},
		{"bad logic mode", models.AlertProfile{Name: "p", Lat: 49, Lng: -123, LogicMode: "XOR"}},
		{"unknown tide phase", models.AlertProfile{Name: "p", Lat: 49, Lng: -123,
			Triggers: models.AlertTriggers{Tide: &models.TideTrigger{Enabled: true, Phases: []string{"ebbing"}}}}},
		{"unknown pressure trend", models.AlertProfile{Name: "p", Lat: 49, Lng: -123,
			Triggers: models.AlertTriggers{Pressure: &models.PressureTrigger{Enabled: true, Trend: "dropping"}}}},
		{"unknown solunar phase", models.AlertProfile{Name: "p", Lat: 49, Lng: -123,
			Triggers: models.AlertTriggers{Solunar: &models.SolunarTrigger{Enabled: true, Phases: []string{"full_moon"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			assert.Error(t, as.CreateProfile(&p))
		})
	}
}

func TestCreateProfileAcceptsInvertedSpeedRange(t *testing.T) {
	as := newTestAlertService(t)

	// speed_min above speed_max is stored as-is; it simply never matches
	profile := &models.AlertProfile{
		Name: "p", Lat: 49, Lng: -123,
		Triggers: models.AlertTriggers{
			Wind: &models.WindTrigger{Enabled: true, SpeedMin: 30, SpeedMax: 10},
		},
	}
	require.NoError(t, as.CreateProfile(profile))

	ok, _ := EvaluateTriggers(&profile.Triggers, models.LogicAnd, baseSample())
	assert.False(t, ok)
}

func TestUpdateProfilePreservesIdentity(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{Name: "before", Lat: 49, Lng: -123, CooldownHrs: 4}
	require.NoError(t, as.CreateProfile(profile))

	created := profile.CreatedAt
	updated := &models.AlertProfile{Name: "after", Lat: 48.5, Lng: -123.5, CooldownHrs: 500}
	require.NoError(t, as.UpdateProfile(profile.ID, updated))

	stored, found := as.GetProfile(profile.ID)
	require.True(t, found)
	assert.Equal(t, "after", stored.Name)
	assert.Equal(t, profile.ID, stored.ID)
	assert.Equal(t, created, stored.CreatedAt)
	assert.Equal(t, 168, stored.CooldownHrs)
}

func TestUpdateProfileNotFound(t *testing.T) {
	as := newTestAlertService(t)

	err := as.UpdateProfile("missing", &models.AlertProfile{Name: "p", Lat: 49, Lng: -123})
	assert.Error(t, err)
}

func TestDeleteProfile(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{Name: "p", Lat: 49, Lng: -123}
	require.NoError(t, as.CreateProfile(profile))
	require.NoError(t, as.DeleteProfile(profile.ID))

	_, found := as.GetProfile(profile.ID)
	assert.False(t, found)
	assert.Error(t, as.DeleteProfile(profile.ID))
}

func TestEvaluateProfilesFiresAndRecordsEvent(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{
		Name: "score watch", Lat: 49.28, Lng: -123.12,
		Triggers: models.AlertTriggers{
			FishingScore: &models.FishingScoreTrigger{Enabled: true, MinScore: 60},
		},
		CooldownHrs: 2,
		Enabled:     true,
	}
	require.NoError(t, as.CreateProfile(profile))

	sample := baseSample()
	sample.Lat = 49.28
	sample.Lng = -123.12
	as.conditions.cache.SetSample(sample, time.Minute)

	as.EvaluateProfiles()

	events := as.GetEvents(10)
	require.Len(t, events, 1)
	assert.Equal(t, profile.ID, events[0].ProfileID)
	assert.Equal(t, []string{TriggerFishingScore}, events[0].Matched)
	assert.True(t, events[0].Delivered["in_app"])

	// Cooldown suppresses an immediate second firing
	as.EvaluateProfiles()
	assert.Len(t, as.GetEvents(10), 1)
}

func TestEvaluateProfilesSkipsDisabled(t *testing.T) {
	as := newTestAlertService(t)

	profile := &models.AlertProfile{
		Name: "off", Lat: 49.28, Lng: -123.12,
		Triggers: models.AlertTriggers{
			FishingScore: &models.FishingScoreTrigger{Enabled: true, MinScore: 0},
		},
		Enabled: false,
	}
	require.NoError(t, as.CreateProfile(profile))

	sample := baseSample()
	sample.Lat = 49.28
	sample.Lng = -123.12
	as.conditions.cache.SetSample(sample, time.Minute)

	as.EvaluateProfiles()
	assert.Empty(t, as.GetEvents(10))
}

func TestFireProfileDeliversWebhook(t *testing.T) {
	received := make(chan map[string]interface{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := newTestConfig()
	cfg.Alerts.WebhookURL = server.URL
	cache := NewCacheService(cfg)
	conditions := NewConditionsService(cfg, nil, nil, nil, nil, cache, nil)
	as := NewAlertService(cfg, conditions, NewNotificationService(nil), nil, nil)

	profile := &models.AlertProfile{
		Name: "webhook watch", Lat: 49.28, Lng: -123.12,
		Triggers: models.AlertTriggers{
			FishingScore: &models.FishingScoreTrigger{Enabled: true, MinScore: 60},
		},
		Enabled: true,
	}
	require.NoError(t, as.CreateProfile(profile))

	sample := baseSample()
	sample.Lat = 49.28
	sample.Lng = -123.12
	cache.SetSample(sample, time.Minute)

	as.EvaluateProfiles()

	select {
	case body := <-received:
		assert.Equal(t, profile.ID, body["profile_id"])
		assert.Equal(t, "webhook watch", body["name"])
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never called")
	}

	events := as.GetEvents(1)
	require.Len(t, events, 1)
	assert.True(t, events[0].Delivered["webhook"])
}

func TestGetEventsColdRing(t *testing.T) {
	as := newTestAlertService(t)

	// No mongo and nothing fired yet: empty history, no fallback panic
	events := as.GetEvents(50)
	assert.Empty(t, events)
}
