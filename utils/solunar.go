package utils

import (
	"sort"
	"time"

	"fincast/models"
)

// Lunar cycle approximation. Transit times drift about 50 minutes per
// day, which is accurate enough for feeding windows; this is not an
// ephemeris.
const (
	lunarDay   = 24*time.Hour + 50*time.Minute
	majorHalf  = time.Hour        // major window is transit +/- 1h
	minorHalf  = 30 * time.Minute // minor window is rise/set +/- 30m
	quarterDay = lunarDay / 4
)

// Reference new moon: 2000-01-06 18:14 UTC
var lunarEpoch = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

// lunarTransit returns the nearest lunar upper transit at or before t
func lunarTransit(t time.Time) time.Time {
	cycles := int64(t.Sub(lunarEpoch) / lunarDay)
	return lunarEpoch.Add(time.Duration(cycles) * lunarDay)
}

// SolunarWindows returns the major and minor feeding periods that touch
// the given calendar day, sorted by start time.
func SolunarWindows(dayStart time.Time) []models.SolunarWindow {
	dayEnd := dayStart.AddDate(0, 0, 1)

	var windows []models.SolunarWindow

	// Walk transits from just before the day until past its end. Upper
	// and lower transits are majors; the quarter points are minors.
	transit := lunarTransit(dayStart.Add(-lunarDay))
	for transit.Before(dayEnd.Add(lunarDay)) {
		points := []struct {
			phase  string
			center time.Time
			half   time.Duration
		}{
			{models.SolunarMajor, transit, majorHalf},
			{models.SolunarMinor, transit.Add(quarterDay), minorHalf},
			{models.SolunarMajor, transit.Add(2 * quarterDay), majorHalf},
			{models.SolunarMinor, transit.Add(3 * quarterDay), minorHalf},
		}

		for _, p := range points {
			start := p.center.Add(-p.half)
			end := p.center.Add(p.half)
			if end.After(dayStart) && start.Before(dayEnd) {
				windows = append(windows, models.SolunarWindow{
					Phase: p.phase,
					Start: start,
					End:   end,
				})
			}
		}

		transit = transit.Add(lunarDay)
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows
}

// SolunarPhaseAt reports which feeding window t falls in: major, minor,
// or empty when outside both.
func SolunarPhaseAt(t time.Time) string {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for _, w := range SolunarWindows(dayStart) {
		if !t.Before(w.Start) && t.Before(w.End) {
			return w.Phase
		}
	}
	return ""
}
