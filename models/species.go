package models

import "time"

// Species is one catalog entry with its availability calendar
type Species struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Category   string   `json:"category" yaml:"category"` // salmon, groundfish, shellfish...
	Months     []int    `json:"months" yaml:"months"`     // 1-12, months the species is typically present
	MinSizeCm  float64  `json:"min_size_cm" yaml:"min_size_cm"`
	DailyLimit int      `json:"daily_limit" yaml:"daily_limit"`
	Regions    []string `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// RegulationWindow is an open/closed season for a species in a region
type RegulationWindow struct {
	SpeciesID string `json:"species_id" yaml:"species_id"`
	Region    string `json:"region" yaml:"region"`
	OpenFrom  string `json:"open_from" yaml:"open_from"` // YYYY-MM-DD
	OpenTo    string `json:"open_to" yaml:"open_to"`
	Notes     string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SpeciesCatalog is the YAML file shape
type SpeciesCatalog struct {
	Species     []Species          `yaml:"species"`
	Regulations []RegulationWindow `yaml:"regulations"`
}

// CalendarMonth is one month of a species availability calendar
type CalendarMonth struct {
	Month     int  `json:"month"`
	Available bool `json:"available"`
	Open      bool `json:"open"` // a regulation window covers any day of the month
}

// FisheryNotice mirrors one row of the dfo_fishery_notices collection
type FisheryNotice struct {
	NoticeID    string    `json:"notice_id" bson:"notice_id"`
	Title       string    `json:"title" bson:"title"`
	Summary     string    `json:"summary" bson:"summary"`
	Region      string    `json:"region" bson:"region"`
	URL         string    `json:"url" bson:"url"`
	PublishedAt time.Time `json:"published_at" bson:"published_at"`
	FetchedAt   time.Time `json:"fetched_at" bson:"fetched_at"`
}
