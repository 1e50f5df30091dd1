package models

import "time"

// UnitSystems is the fixed cycle order the unit display clicks through
var UnitSystems = []string{"metric", "imperial", "nautical"}

// Algorithm versions accepted for the fishing score
const (
	AlgorithmV1 = "v1"
	AlgorithmV2 = "v2"
)

// Preferences mirrors the per-client settings the original kept in
// browser storage (unit system, algorithm-version, report-widgets).
type Preferences struct {
	ClientID      string    `json:"client_id" bson:"client_id"`
	UnitSystem    string    `json:"unit_system" bson:"unit_system"`
	Algorithm     string    `json:"algorithm_version" bson:"algorithm_version"`
	ReportWidgets []string  `json:"report_widgets" bson:"report_widgets"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}
