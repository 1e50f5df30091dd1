package services

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"fincast/models"
)

// StationRepository is the local tide-station catalog. Stations are
// kept in SQLite so nearest-station lookups work offline.
type StationRepository struct {
	db *sql.DB
}

// seedStations covers the Pacific coast waters the dashboard defaults
// to. A deployment can replace the database with a fuller catalog.
var seedStations = []models.TideStation{
	{ID: "9447130", Name: "Seattle", Region: "puget-sound", Lat: 47.6026, Lng: -122.3393},
	{ID: "9449880", Name: "Friday Harbor", Region: "san-juan", Lat: 48.5453, Lng: -123.0129},
	{ID: "9443090", Name: "Neah Bay", Region: "strait", Lat: 48.3683, Lng: -124.6017},
	{ID: "9444900", Name: "Port Townsend", Region: "puget-sound", Lat: 48.1129, Lng: -122.7595},
	{ID: "07120", Name: "Point Atkinson", Region: "strait-of-georgia", Lat: 49.3370, Lng: -123.2530},
	{ID: "07735", Name: "Vancouver", Region: "strait-of-georgia", Lat: 49.2864, Lng: -123.1116},
	{ID: "07577", Name: "Tsawwassen", Region: "strait-of-georgia", Lat: 49.0064, Lng: -123.1322},
	{ID: "08408", Name: "Campbell River", Region: "discovery-passage", Lat: 50.0420, Lng: -125.2473},
	{ID: "08074", Name: "Tofino", Region: "west-coast-vi", Lat: 49.1540, Lng: -125.9130},
	{ID: "08615", Name: "Port Hardy", Region: "queen-charlotte-strait", Lat: 50.7220, Lng: -127.4890},
	{ID: "09354", Name: "Prince Rupert", Region: "north-coast", Lat: 54.3170, Lng: -130.3240},
	{ID: "07654", Name: "Victoria", Region: "juan-de-fuca", Lat: 48.4244, Lng: -123.3705},
}

// NewStationRepository opens (and if necessary provisions) the catalog
func NewStationRepository(dbPath string) (*StationRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating station db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening station database: %w", err)
	}

	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")

	repo := &StationRepository{db: db}
	if err := repo.provision(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *StationRepository) provision() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS tide_stations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			region TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tide_stations_lat_lng
			ON tide_stations(latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("creating tide_stations table: %w", err)
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tide_stations").Scan(&count); err != nil {
		return fmt.Errorf("counting tide stations: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO tide_stations (id, name, region, latitude, longitude) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range seedStations {
		if _, err := stmt.Exec(s.ID, s.Name, s.Region, s.Lat, s.Lng); err != nil {
			tx.Rollback()
			return fmt.Errorf("seeding station %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

func (r *StationRepository) Close() error {
	return r.db.Close()
}

// Nearby returns up to limit stations sorted by distance from a point
func (r *StationRepository) Nearby(lat, lng float64, limit int) ([]models.TideStation, error) {
	rows, err := r.db.Query("SELECT id, name, region, latitude, longitude FROM tide_stations")
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var stations []models.TideStation
	for rows.Next() {
		var s models.TideStation
		if err := rows.Scan(&s.ID, &s.Name, &s.Region, &s.Lat, &s.Lng); err != nil {
			continue
		}
		s.DistanceKm = haversineKm(lat, lng, s.Lat, s.Lng)
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("no tide stations in catalog")
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].DistanceKm < stations[j].DistanceKm
	})

	if limit > 0 && len(stations) > limit {
		stations = stations[:limit]
	}
	return stations, nil
}

// Nearest returns the closest station to a point
func (r *StationRepository) Nearest(lat, lng float64) (*models.TideStation, error) {
	stations, err := r.Nearby(lat, lng, 1)
	if err != nil {
		return nil, err
	}
	return &stations[0], nil
}

// GetByID retrieves a single station
func (r *StationRepository) GetByID(id string) (*models.TideStation, error) {
	var s models.TideStation
	err := r.db.QueryRow(
		"SELECT id, name, region, latitude, longitude FROM tide_stations WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &s.Region, &s.Lat, &s.Lng)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tide station %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tide station: %w", err)
	}
	return &s, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
