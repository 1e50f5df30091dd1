package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// DefaultLocation is the point the dashboard centers on for a client
// that has not picked one.
type DefaultLocation struct {
	Lat  float64
	Lng  float64
	Name string
}

// GeoResolver maps a client IP to a default dashboard location using a
// local GeoIP database with an HTTP API fallback. Lookups are cached
// per IP for the lifetime of the process.
type GeoResolver struct {
	db         *geoip2.Reader
	httpClient *http.Client
	fallback   DefaultLocation
	cache      sync.Map // map[string]DefaultLocation
}

// NewGeoResolver never fails outright: without a database it runs in
// API-only mode, and without connectivity it serves the fallback point.
func NewGeoResolver(dbPath string, fallback DefaultLocation) (*GeoResolver, error) {
	var db *geoip2.Reader

	if dbPath != "" {
		var err error
		db, err = geoip2.Open(dbPath)
		if err != nil {
			fmt.Printf("Warning: Could not open GeoIP database at %s: %v. Using API fallback only.\n", dbPath, err)
			db = nil
		}
	}

	return &GeoResolver{
		db: db,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		fallback: fallback,
	}, nil
}

func (g *GeoResolver) Close() {
	if g != nil && g.db != nil {
		g.db.Close()
	}
}

// Resolve is safe to call on a nil resolver; it then returns the zero
// fallback location.
func (g *GeoResolver) Resolve(ipStr string) DefaultLocation {
	if g == nil {
		return DefaultLocation{}
	}

	if val, ok := g.cache.Load(ipStr); ok {
		return val.(DefaultLocation)
	}

	loc, found := g.lookupDB(ipStr)
	if !found {
		loc, found = g.lookupAPI(ipStr)
	}
	if !found {
		loc = g.fallback
	}

	g.cache.Store(ipStr, loc)
	return loc
}

func (g *GeoResolver) lookupDB(ipStr string) (DefaultLocation, bool) {
	if g.db == nil {
		return DefaultLocation{}, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return DefaultLocation{}, false
	}
	record, err := g.db.City(ip)
	if err != nil {
		return DefaultLocation{}, false
	}
	name := record.City.Names["en"]
	if name == "" {
		name = record.Country.Names["en"]
	}
	return DefaultLocation{
		Lat:  record.Location.Latitude,
		Lng:  record.Location.Longitude,
		Name: name,
	}, true
}

type ipApiResponse struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Status  string  `json:"status"`
}

func (g *GeoResolver) lookupAPI(ip string) (DefaultLocation, bool) {
	url := fmt.Sprintf("http://ip-api.com/json/%s", ip)
	resp, err := g.httpClient.Get(url)
	if err != nil {
		return DefaultLocation{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultLocation{}, false
	}

	var apiResp ipApiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return DefaultLocation{}, false
	}
	if apiResp.Status == "fail" {
		return DefaultLocation{}, false
	}

	name := apiResp.City
	if name == "" {
		name = apiResp.Country
	}
	return DefaultLocation{Lat: apiResp.Lat, Lng: apiResp.Lon, Name: name}, true
}
