package services

import (
	"math"
	"time"

	"fincast/models"
)

// Trigger names used in event records and notification payloads
const (
	TriggerWind         = "wind"
	TriggerTide         = "tide"
	TriggerPressure     = "pressure"
	TriggerWaterTemp    = "water_temp"
	TriggerSolunar      = "solunar"
	TriggerFishingScore = "fishing_score"
)

// EvaluateTriggers applies a profile's trigger set to a sample. Only
// sub-conditions with Enabled=true participate: AND requires all of
// them to match, OR requires at least one. A set with no enabled
// sub-conditions never matches.
func EvaluateTriggers(t *models.AlertTriggers, mode models.LogicMode, sample *models.ConditionSample) (bool, []string) {
	type check struct {
		name string
		ok   bool
	}

	var checks []check
	if t.Wind != nil && t.Wind.Enabled {
		checks = append(checks, check{TriggerWind, matchWind(t.Wind, sample)})
	}
	if t.Tide != nil && t.Tide.Enabled {
		checks = append(checks, check{TriggerTide, matchTide(t.Tide, sample)})
	}
	if t.Pressure != nil && t.Pressure.Enabled {
		checks = append(checks, check{TriggerPressure, matchPressure(t.Pressure, sample)})
	}
	if t.WaterTemp != nil && t.WaterTemp.Enabled {
		checks = append(checks, check{TriggerWaterTemp, matchWaterTemp(t.WaterTemp, sample)})
	}
	if t.Solunar != nil && t.Solunar.Enabled {
		checks = append(checks, check{TriggerSolunar, matchSolunar(t.Solunar, sample)})
	}
	if t.FishingScore != nil && t.FishingScore.Enabled {
		checks = append(checks, check{TriggerFishingScore, matchScore(t.FishingScore, sample)})
	}

	if len(checks) == 0 {
		return false, nil
	}

	var matched []string
	for _, c := range checks {
		if c.ok {
			matched = append(matched, c.name)
		}
	}

	if mode == models.LogicOr {
		return len(matched) > 0, matched
	}
	return len(matched) == len(checks), matched
}

func matchWind(w *models.WindTrigger, s *models.ConditionSample) bool {
	if s.WindSpeed < w.SpeedMin || s.WindSpeed > w.SpeedMax {
		return false
	}
	if w.DirectionCenter != nil && w.DirectionTolerance != nil {
		if angularDelta(s.WindDirection, *w.DirectionCenter) > *w.DirectionTolerance {
			return false
		}
	}
	return true
}

// angularDelta is the smallest angle between two bearings, so a sector
// centered near north matches headings on either side of 360.
func angularDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func matchTide(t *models.TideTrigger, s *models.ConditionSample) bool {
	if t.ExchangeMin != nil && s.TideExchange < *t.ExchangeMin {
		return false
	}
	for _, phase := range t.Phases {
		if s.TidePhase == phase {
			return true
		}
	}
	return false
}

func matchPressure(p *models.PressureTrigger, s *models.ConditionSample) bool {
	if s.PressureTrend != p.Trend {
		return false
	}
	return math.Abs(s.PressureGradient) >= p.GradientThreshold
}

func matchWaterTemp(w *models.WaterTempTrigger, s *models.ConditionSample) bool {
	return s.WaterTemp >= w.Min && s.WaterTemp <= w.Max
}

func matchSolunar(sol *models.SolunarTrigger, s *models.ConditionSample) bool {
	for _, phase := range sol.Phases {
		if s.SolunarPhase == phase {
			return true
		}
	}
	return false
}

func matchScore(f *models.FishingScoreTrigger, s *models.ConditionSample) bool {
	score := s.Score
	if f.Species != "" {
		if sp, ok := s.SpeciesScores[f.Species]; ok {
			score = sp
		}
	}
	return score >= f.MinScore
}

// WithinActiveHours reports whether t falls inside the daily window.
// A nil window means always active; Start > End wraps midnight.
func WithinActiveHours(w *models.ActiveHours, t time.Time) bool {
	if w == nil {
		return true
	}

	start, okStart := parseClock(w.Start)
	end, okEnd := parseClock(w.End)
	if !okStart || !okEnd {
		return true // malformed window never blocks an alert
	}

	minute := t.Hour()*60 + t.Minute()
	if start <= end {
		return minute >= start && minute < end
	}
	// wraps midnight
	return minute >= start || minute < end
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
