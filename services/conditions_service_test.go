package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Series hours carry the provider's zone; selection must work off the
// absolute instant, not the wall clock.
func TestPickHoursAcrossZones(t *testing.T) {
	pacific := time.FixedZone("America/Vancouver", -7*3600)

	hours := make([]HourlyWeather, 0, 12)
	for i := 0; i < 12; i++ {
		hours = append(hours, HourlyWeather{
			Time:     time.Date(2026, 8, 30, i, 0, 0, 0, pacific),
			Pressure: 1010 + float64(i),
		})
	}

	// 30 minutes past the 06:00 local hour, expressed in UTC
	now := time.Date(2026, 8, 30, 13, 30, 0, 0, time.UTC)

	current, earlier := pickHours(hours, now)
	require.NotNil(t, current)
	require.NotNil(t, earlier)
	assert.Equal(t, 6, current.Time.Hour())
	assert.Equal(t, 3, earlier.Time.Hour())
	assert.InDelta(t, 1016, current.Pressure, 0.001)
	assert.InDelta(t, 1013, earlier.Pressure, 0.001)
}

func TestPickHoursBeforeSeries(t *testing.T) {
	hours := []HourlyWeather{
		{Time: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)},
	}

	current, earlier := pickHours(hours, time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	assert.Nil(t, current)
	assert.Nil(t, earlier)
}

func TestWatchUnwatch(t *testing.T) {
	cfg := newTestConfig()
	cs := NewConditionsService(cfg, nil, nil, nil, nil, NewCacheService(cfg), nil)

	cs.Watch(49.2827, -123.1207)
	cs.Watch(48.4284, -123.3656)
	require.Len(t, cs.WatchedLocations(), 2)

	cs.Unwatch(49.2827, -123.1207)
	locations := cs.WatchedLocations()
	require.Len(t, locations, 1)
	assert.InDelta(t, 48.4284, locations[0][0], 0.001)
}
