package models

import "time"

// ConditionSample is the instantaneous state of a location that alert
// profiles evaluate against.
type ConditionSample struct {
	Lat              float64            `json:"lat" bson:"lat"`
	Lng              float64            `json:"lng" bson:"lng"`
	WindSpeed        float64            `json:"wind_speed" bson:"wind_speed"`                 // km/h
	WindDirection    float64            `json:"wind_direction" bson:"wind_direction"`         // degrees true
	Pressure         float64            `json:"pressure" bson:"pressure"`                     // hPa
	PressureTrend    string             `json:"pressure_trend" bson:"pressure_trend"`         // rising / falling / steady
	PressureGradient float64            `json:"pressure_gradient" bson:"pressure_gradient"`   // hPa over last 3h
	WaterTemp        float64            `json:"water_temp" bson:"water_temp"`                 // Celsius
	TidePhase        string             `json:"tide_phase" bson:"tide_phase"`                 // incoming / outgoing / high_slack / low_slack
	TideExchange     float64            `json:"tide_exchange" bson:"tide_exchange"`           // meters between bracketing extremes
	SolunarPhase     string             `json:"solunar_phase,omitempty" bson:"solunar_phase,omitempty"` // major / minor / ""
	Score            float64            `json:"fishing_score" bson:"fishing_score"`
	SpeciesScores    map[string]float64 `json:"species_scores,omitempty" bson:"species_scores,omitempty"`
	SampledAt        time.Time          `json:"sampled_at" bson:"sampled_at"`
}

// TideEvent is a single predicted high or low tide
type TideEvent struct {
	Time   time.Time `json:"time" bson:"time"`
	Type   string    `json:"type" bson:"type"` // "H" or "L"
	Height float64   `json:"height" bson:"height"`
}

// TideData is the prediction set for one station
type TideData struct {
	StationID   string      `json:"station_id"`
	StationName string      `json:"station_name"`
	Events      []TideEvent `json:"events"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SolunarWindow is a major or minor feeding period within a day
type SolunarWindow struct {
	Phase string    `json:"phase"` // major / minor
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayForecast is one day of a report
type DayForecast struct {
	Date          string          `json:"date"` // YYYY-MM-DD
	WindSpeedMin  float64         `json:"wind_speed_min"`
	WindSpeedMax  float64         `json:"wind_speed_max"`
	WindSpeedAvg  float64         `json:"wind_speed_avg"`
	WindDirection float64         `json:"wind_direction"`
	Pressure      float64         `json:"pressure"`
	PressureTrend string          `json:"pressure_trend"`
	AirTempMax    float64         `json:"air_temp_max"`
	AirTempMin    float64         `json:"air_temp_min"`
	WaterTemp     float64         `json:"water_temp"`
	Tides         []TideEvent     `json:"tides"`
	Solunar       []SolunarWindow `json:"solunar,omitempty"`
	Score         float64         `json:"fishing_score"`
}

// ReportSummary holds the client-side aggregates the report pages show
type ReportSummary struct {
	BestDay      string  `json:"best_day"`
	BestScore    float64 `json:"best_score"`
	AvgScore     float64 `json:"avg_score"`
	WindSpeedMin float64 `json:"wind_speed_min"`
	WindSpeedMax float64 `json:"wind_speed_max"`
	WindSpeedAvg float64 `json:"wind_speed_avg"`
	PressureMin  float64 `json:"pressure_min"`
	PressureMax  float64 `json:"pressure_max"`
	WaterTempMin float64 `json:"water_temp_min"`
	WaterTempMax float64 `json:"water_temp_max"`
}

// ForecastReport is the full payload behind the 14-day report page
type ForecastReport struct {
	Lat          float64       `json:"lat"`
	Lng          float64       `json:"lng"`
	LocationName string        `json:"location_name,omitempty"`
	StationID    string        `json:"station_id,omitempty"`
	Algorithm    string        `json:"algorithm"`
	Days         []DayForecast `json:"days"`
	Summary      ReportSummary `json:"summary"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// SampleSnapshot is a persisted ConditionSample for a watched location
type SampleSnapshot struct {
	Timestamp time.Time       `json:"timestamp" bson:"timestamp"`
	LocKey    string          `json:"loc_key" bson:"loc_key"`
	Sample    ConditionSample `json:"sample" bson:"sample"`
}
