package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fincast/models"
)

func f64(v float64) *float64 { return &v }

func baseSample() *models.ConditionSample {
	return &models.ConditionSample{
		WindSpeed:        12,
		WindDirection:    350,
		Pressure:         1013,
		PressureTrend:    models.PressureFalling,
		PressureGradient: -2.5,
		WaterTemp:        11,
		TidePhase:        models.TideIncoming,
		TideExchange:     2.4,
		SolunarPhase:     models.SolunarMajor,
		Score:            72,
		SpeciesScores:    map[string]float64{"coho": 77, "halibut": 52},
		SampledAt:        time.Now(),
	}
}

func TestEvaluateTriggersOnlyEnabledParticipate(t *testing.T) {
	triggers := &models.AlertTriggers{
		Wind: &models.WindTrigger{Enabled: true, SpeedMin: 0, SpeedMax: 20},
		// Present but disabled: would fail if it were evaluated
		WaterTemp: &models.WaterTempTrigger{Enabled: false, Min: 20, Max: 25},
	}

	ok, matched := EvaluateTriggers(triggers, models.LogicAnd, baseSample())
	assert.True(t, ok)
	assert.Equal(t, []string{TriggerWind}, matched)
}

func TestEvaluateTriggersNoEnabledNeverMatches(t *testing.T) {
	triggers := &models.AlertTriggers{
		Wind: &models.WindTrigger{Enabled: false, SpeedMin: 0, SpeedMax: 100},
	}

	ok, _ := EvaluateTriggers(triggers, models.LogicOr, baseSample())
	assert.False(t, ok)

	ok, _ = EvaluateTriggers(&models.AlertTriggers{}, models.LogicAnd, baseSample())
	assert.False(t, ok)
}

func TestEvaluateTriggersAndRequiresAll(t *testing.T) {
	triggers := &models.AlertTriggers{
		Wind:      &models.WindTrigger{Enabled: true, SpeedMin: 0, SpeedMax: 20},
		WaterTemp: &models.WaterTempTrigger{Enabled: true, Min: 20, Max: 25}, // sample is 11
	}

	ok, matched := EvaluateTriggers(triggers, models.LogicAnd, baseSample())
	assert.False(t, ok)
	assert.Equal(t, []string{TriggerWind}, matched)

	ok, _ = EvaluateTriggers(triggers, models.LogicOr, baseSample())
	assert.True(t, ok)
}

func TestMatchWindCircularDirection(t *testing.T) {
	// Sector centered on north must match bearings on both sides of 360
	trigger := &models.WindTrigger{
		Enabled:            true,
		SpeedMin:           0,
		SpeedMax:           30,
		DirectionCenter:    f64(0),
		DirectionTolerance: f64(30),
	}

	s := baseSample()
	s.WindDirection = 350
	assert.True(t, matchWind(trigger, s))

	s.WindDirection = 15
	assert.True(t, matchWind(trigger, s))

	s.WindDirection = 90
	assert.False(t, matchWind(trigger, s))
}

func TestMatchWindSpeedRange(t *testing.T) {
	trigger := &models.WindTrigger{Enabled: true, SpeedMin: 5, SpeedMax: 15}

	s := baseSample()
	s.WindSpeed = 15
	assert.True(t, matchWind(trigger, s))

	s.WindSpeed = 15.1
	assert.False(t, matchWind(trigger, s))

	s.WindSpeed = 4.9
	assert.False(t, matchWind(trigger, s))
}

func TestMatchTide(t *testing.T) {
	trigger := &models.TideTrigger{
		Enabled:     true,
		Phases:      []string{models.TideIncoming, models.TideHighSlack},
		ExchangeMin: f64(2.0),
	}

	s := baseSample()
	assert.True(t, matchTide(trigger, s))

	s.TideExchange = 1.5
	assert.False(t, matchTide(trigger, s), "exchange below minimum")

	s.TideExchange = 2.4
	s.TidePhase = models.TideOutgoing
	assert.False(t, matchTide(trigger, s), "phase not in set")
}

func TestMatchPressure(t *testing.T) {
	trigger := &models.PressureTrigger{
		Enabled:           true,
		Trend:             models.PressureFalling,
		GradientThreshold: 2.0,
	}

	s := baseSample()
	assert.True(t, matchPressure(trigger, s))

	s.PressureGradient = -1.5
	assert.False(t, matchPressure(trigger, s), "gradient magnitude below threshold")

	s.PressureGradient = -2.5
	s.PressureTrend = models.PressureRising
	assert.False(t, matchPressure(trigger, s))
}

func TestMatchScoreSpeciesOverride(t *testing.T) {
	s := baseSample() // overall 72, coho 77, halibut 52

	assert.True(t, matchScore(&models.FishingScoreTrigger{Enabled: true, MinScore: 70}, s))
	assert.True(t, matchScore(&models.FishingScoreTrigger{Enabled: true, MinScore: 75, Species: "coho"}, s))
	assert.False(t, matchScore(&models.FishingScoreTrigger{Enabled: true, MinScore: 70, Species: "halibut"}, s))

	// Unknown species falls back to the overall score
	assert.True(t, matchScore(&models.FishingScoreTrigger{Enabled: true, MinScore: 70, Species: "marlin"}, s))
}

func TestWithinActiveHours(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 30, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		window *models.ActiveHours
		t      time.Time
		want   bool
	}{
		{"nil window always active", nil, at(3, 0), true},
		{"inside normal window", &models.ActiveHours{Start: "05:00", End: "21:00"}, at(12, 0), true},
		{"at start inclusive", &models.ActiveHours{Start: "05:00", End: "21:00"}, at(5, 0), true},
		{"at end exclusive", &models.ActiveHours{Start: "05:00", End: "21:00"}, at(21, 0), false},
		{"before window", &models.ActiveHours{Start: "05:00", End: "21:00"}, at(4, 59), false},
		{"midnight wrap evening", &models.ActiveHours{Start: "20:00", End: "04:00"}, at(23, 30), true},
		{"midnight wrap morning", &models.ActiveHours{Start: "20:00", End: "04:00"}, at(2, 0), true},
		{"midnight wrap outside", &models.ActiveHours{Start: "20:00", End: "04:00"}, at(12, 0), false},
		{"malformed never blocks", &models.ActiveHours{Start: "dawn", End: "dusk"}, at(12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinActiveHours(tt.window, tt.t))
		})
	}
}

func TestAngularDelta(t *testing.T) {
	assert.InDelta(t, 20, angularDelta(350, 10), 0.001)
	assert.InDelta(t, 180, angularDelta(0, 180), 0.001)
	assert.InDelta(t, 0, angularDelta(90, 90), 0.001)
	assert.InDelta(t, 10, angularDelta(5, 355), 0.001)
}
