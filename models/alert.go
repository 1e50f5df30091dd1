package models

import "time"

// LogicMode controls how enabled triggers combine during evaluation
type LogicMode string

const (
	LogicAnd LogicMode = "AND"
	LogicOr  LogicMode = "OR"
)

// Cooldown bounds in hours
const (
	CooldownMinHours = 1
	CooldownMaxHours = 168
)

// Tide phases a tide trigger can match
const (
	TideIncoming  = "incoming"
	TideOutgoing  = "outgoing"
	TideHighSlack = "high_slack"
	TideLowSlack  = "low_slack"
)

// Pressure trends
const (
	PressureRising  = "rising"
	PressureFalling = "falling"
	PressureSteady  = "steady"
)

// Solunar phases
const (
	SolunarMajor = "major"
	SolunarMinor = "minor"
)

// AlertProfile is a saved, user-defined notification rule tied to a location
type AlertProfile struct {
	ID           string        `json:"id" bson:"id"`
	Name         string        `json:"name" bson:"name"`
	Lat          float64       `json:"lat" bson:"lat"`
	Lng          float64       `json:"lng" bson:"lng"`
	LocationName string        `json:"location_name" bson:"location_name"`
	Triggers     AlertTriggers `json:"triggers" bson:"triggers"`
	LogicMode    LogicMode     `json:"logic_mode" bson:"logic_mode"`
	CooldownHrs  int           `json:"cooldown_hours" bson:"cooldown_hours"`
	ActiveHours  *ActiveHours  `json:"active_hours,omitempty" bson:"active_hours,omitempty"`
	Enabled      bool          `json:"enabled" bson:"enabled"`
	LastFired    time.Time     `json:"last_fired" bson:"last_fired"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// ActiveHours restricts firing to a daily window. Start and End are
// "HH:MM" local times; a window may wrap midnight (Start > End).
type ActiveHours struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// AlertTriggers holds every sub-condition of a profile. Only the
// sub-conditions with Enabled=true participate in logic-mode evaluation.
type AlertTriggers struct {
	Wind         *WindTrigger         `json:"wind,omitempty" bson:"wind,omitempty"`
	Tide         *TideTrigger         `json:"tide,omitempty" bson:"tide,omitempty"`
	Pressure     *PressureTrigger     `json:"pressure,omitempty" bson:"pressure,omitempty"`
	WaterTemp    *WaterTempTrigger    `json:"water_temp,omitempty" bson:"water_temp,omitempty"`
	Solunar      *SolunarTrigger      `json:"solunar,omitempty" bson:"solunar,omitempty"`
	FishingScore *FishingScoreTrigger `json:"fishing_score,omitempty" bson:"fishing_score,omitempty"`
}

type WindTrigger struct {
	Enabled            bool     `json:"enabled" bson:"enabled"`
	SpeedMin           float64  `json:"speed_min" bson:"speed_min"`
	SpeedMax           float64  `json:"speed_max" bson:"speed_max"`
	DirectionCenter    *float64 `json:"direction_center,omitempty" bson:"direction_center,omitempty"`
	DirectionTolerance *float64 `json:"direction_tolerance,omitempty" bson:"direction_tolerance,omitempty"`
}

type TideTrigger struct {
	Enabled     bool     `json:"enabled" bson:"enabled"`
	Phases      []string `json:"phases" bson:"phases"`
	ExchangeMin *float64 `json:"exchange_min,omitempty" bson:"exchange_min,omitempty"`
}

type PressureTrigger struct {
	Enabled           bool    `json:"enabled" bson:"enabled"`
	Trend             string  `json:"trend" bson:"trend"`
	GradientThreshold float64 `json:"gradient_threshold" bson:"gradient_threshold"`
}

type WaterTempTrigger struct {
	Enabled bool    `json:"enabled" bson:"enabled"`
	Min     float64 `json:"min" bson:"min"`
	Max     float64 `json:"max" bson:"max"`
}

type SolunarTrigger struct {
	Enabled bool     `json:"enabled" bson:"enabled"`
	Phases  []string `json:"phases" bson:"phases"`
}

type FishingScoreTrigger struct {
	Enabled  bool    `json:"enabled" bson:"enabled"`
	MinScore float64 `json:"min_score" bson:"min_score"`
	Species  string  `json:"species,omitempty" bson:"species,omitempty"`
}

// AlertEvent records one firing of a profile
type AlertEvent struct {
	ID        string            `json:"id" bson:"id"`
	ProfileID string            `json:"profile_id" bson:"profile_id"`
	Name      string            `json:"profile_name" bson:"profile_name"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Matched   []string          `json:"matched_triggers" bson:"matched_triggers"`
	Sample    *ConditionSample  `json:"sample,omitempty" bson:"sample,omitempty"`
	Delivered map[string]bool   `json:"delivered" bson:"delivered"`
	ErrorMsg  string            `json:"error_msg,omitempty" bson:"error_msg,omitempty"`
}
