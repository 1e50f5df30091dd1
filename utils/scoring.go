package utils

import (
	"fincast/models"
)

// Scoring weights shared by both algorithm versions
const (
	baseScore         = 50.0
	windPenaltyMax    = 30.0
	windComfortKmh    = 10.0 // below this wind costs nothing
	windCutoffKmh     = 45.0 // at or above this the full penalty applies
	fallingBonus      = 15.0
	steadyBonus       = 5.0
	risingPenalty     = 5.0
	movingTideBonus   = 15.0
	solunarMajorBonus = 10.0
	solunarMinorBonus = 5.0
	tempBandBonus     = 10.0
	tempBandLow       = 8.0 // Celsius
	tempBandHigh      = 16.0
)

// ScoreSample computes the fishing score for a sample under the given
// algorithm version. Unknown versions fall back to v1. Scores clamp to
// [0, 100].
func ScoreSample(s *models.ConditionSample, algorithm string) float64 {
	score := scoreV1(s)
	if algorithm == models.AlgorithmV2 {
		score += solunarBonus(s.SolunarPhase)
		score += waterTempBonus(s.WaterTemp)
	}
	return clampScore(score)
}

func scoreV1(s *models.ConditionSample) float64 {
	score := baseScore

	// Wind: linear penalty between the comfort and cutoff speeds
	switch {
	case s.WindSpeed <= windComfortKmh:
		// no penalty
	case s.WindSpeed >= windCutoffKmh:
		score -= windPenaltyMax
	default:
		frac := (s.WindSpeed - windComfortKmh) / (windCutoffKmh - windComfortKmh)
		score -= frac * windPenaltyMax
	}

	// Pressure: fish feed ahead of a front
	switch s.PressureTrend {
	case models.PressureFalling:
		score += fallingBonus
	case models.PressureSteady:
		score += steadyBonus
	case models.PressureRising:
		score -= risingPenalty
	}

	// Moving water beats slack
	if s.TidePhase == models.TideIncoming || s.TidePhase == models.TideOutgoing {
		score += movingTideBonus
	}

	return score
}

func solunarBonus(phase string) float64 {
	switch phase {
	case models.SolunarMajor:
		return solunarMajorBonus
	case models.SolunarMinor:
		return solunarMinorBonus
	}
	return 0
}

func waterTempBonus(temp float64) float64 {
	if temp >= tempBandLow && temp <= tempBandHigh {
		return tempBandBonus
	}
	return 0
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
