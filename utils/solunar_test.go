package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/models"
)

func TestSolunarWindowsCoverTheDay(t *testing.T) {
	dayStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	windows := SolunarWindows(dayStart)
	require.NotEmpty(t, windows)

	// A lunar day is just under 25 hours, so a calendar day sees about
	// four windows: two majors and two minors.
	assert.GreaterOrEqual(t, len(windows), 3)
	assert.LessOrEqual(t, len(windows), 5)

	for i, w := range windows {
		assert.True(t, w.End.After(dayStart) && w.Start.Before(dayEnd), "window %d touches the day", i)
		assert.True(t, w.End.After(w.Start))

		switch w.Phase {
		case models.SolunarMajor:
			assert.Equal(t, 2*time.Hour, w.End.Sub(w.Start))
		case models.SolunarMinor:
			assert.Equal(t, time.Hour, w.End.Sub(w.Start))
		default:
			t.Fatalf("unexpected phase %q", w.Phase)
		}

		if i > 0 {
			assert.False(t, w.Start.Before(windows[i-1].Start), "windows sorted by start")
		}
	}
}

func TestSolunarPhaseAtMatchesWindows(t *testing.T) {
	dayStart := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	windows := SolunarWindows(dayStart)
	require.NotEmpty(t, windows)

	first := windows[0]
	mid := first.Start.Add(first.End.Sub(first.Start) / 2)
	if mid.Before(dayStart) {
		mid = dayStart
	}
	assert.Equal(t, first.Phase, SolunarPhaseAt(mid))

	// A moment between two windows is in neither
	for i := 1; i < len(windows); i++ {
		gapStart := windows[i-1].End
		gapEnd := windows[i].Start
		if gapEnd.Sub(gapStart) > time.Minute && !gapStart.Before(dayStart) {
			between := gapStart.Add(gapEnd.Sub(gapStart) / 2)
			assert.Empty(t, SolunarPhaseAt(between))
			return
		}
	}
}
