package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Weather  WeatherConfig  `json:"weather"`
	Tide     TideConfig     `json:"tide"`
	Notices  NoticesConfig  `json:"notices"`
	Polling  PollingConfig  `json:"polling"`
	Alerts   AlertsConfig   `json:"alerts"`
	Cache    CacheConfig    `json:"cache"`
	Redis    RedisConfig    `json:"redis"`
	GeoIP    GeoIPConfig    `json:"geoip"`
	MongoDB  MongoDBConfig  `json:"mongodb"`
	Species  SpeciesConfig  `json:"species"`
	Stations StationsConfig `json:"stations"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type WeatherConfig struct {
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout_seconds"`
}

type TideConfig struct {
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout_seconds"`
}

type NoticesConfig struct {
	BaseURL       string `json:"base_url"`
	RefreshCron   string `json:"refresh_cron"`   // cron spec for notice refresh
	WarmCron      string `json:"warm_cron"`      // cron spec for daily forecast warm
	DefaultRegion string `json:"default_region"`
}

type PollingConfig struct {
	SampleInterval   int `json:"sample_interval_seconds"`   // condition sampling per watched location
	EvaluateInterval int `json:"evaluate_interval_seconds"` // alert evaluation pass
	StaleThreshold   int `json:"stale_threshold_minutes"`   // samples older than this don't fire alerts
}

type AlertsConfig struct {
	WebhookURL string `json:"webhook_url"` // optional POST target for fired alerts
}

type CacheConfig struct {
	TTL int `json:"ttl_seconds"`
}

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Enabled  bool   `json:"enabled"`
	UseTLS   bool   `json:"use_tls"`
}

type GeoIPConfig struct {
	DBPath      string  `json:"db_path"`
	DefaultLat  float64 `json:"default_lat"`
	DefaultLng  float64 `json:"default_lng"`
	DefaultName string  `json:"default_name"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Enabled  bool   `json:"enabled"`
}

type SpeciesConfig struct {
	CatalogPath string `json:"catalog_path"`
}

type StationsConfig struct {
	DBPath string `json:"db_path"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Weather: WeatherConfig{
			BaseURL: "https://marine-api.open-meteo.com/v1/marine",
			Timeout: 15,
		},
		Tide: TideConfig{
			BaseURL: "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter",
			Timeout: 30,
		},
		Notices: NoticesConfig{
			BaseURL:       "https://notices.dfo-mpo.gc.ca/fns-sap/api",
			RefreshCron:   "0 */6 * * *", // every six hours
			WarmCron:      "30 4 * * *",  // daily pre-dawn forecast warm
			DefaultRegion: "pacific",
		},
		Polling: PollingConfig{
			SampleInterval:   900, // 15 minutes per watched location
			EvaluateInterval: 300, // evaluation pass every 5 minutes
			StaleThreshold:   60,
		},
		Alerts: AlertsConfig{
			WebhookURL: "",
		},
		Cache: CacheConfig{
			TTL: 1800,
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
			Enabled:  true,
			UseTLS:   false,
		},
		GeoIP: GeoIPConfig{
			DBPath:      "",
			DefaultLat:  49.2827,
			DefaultLng:  -123.1207,
			DefaultName: "Vancouver, BC",
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "fincast",
			Enabled:  true,
		},
		Species: SpeciesConfig{
			CatalogPath: "config/species.yaml",
		},
		Stations: StationsConfig{
			DBPath: "data/stations.db",
		},
	}

	// Load from config file if exists
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err == nil {
			defer file.Close()
			decoder := json.NewDecoder(file)
			if err := decoder.Decode(cfg); err != nil {
				fmt.Printf("Warning: Failed to decode config file: %v\n", err)
			}
		}
	}

	// Environment variables override the config file
	loadEnv(cfg)

	// Command-line flags override everything
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var serverPort int
	var serverHost string

	fs.IntVar(&serverPort, "port", 0, "Server port")
	fs.StringVar(&serverHost, "host", "", "Server host")

	_ = fs.Parse(os.Args[1:])

	if isFlagPassed(fs, "port") {
		cfg.Server.Port = serverPort
	}
	if isFlagPassed(fs, "host") {
		cfg.Server.Host = serverHost
	}

	return cfg, nil
}

func isFlagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func loadEnv(cfg *Config) {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Server.AllowedOrigins = parts
	}

	if val := os.Getenv("WEATHER_BASE_URL"); val != "" {
		cfg.Weather.BaseURL = val
	}
	if val := os.Getenv("WEATHER_TIMEOUT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Weather.Timeout = p
		}
	}
	if val := os.Getenv("TIDE_BASE_URL"); val != "" {
		cfg.Tide.BaseURL = val
	}
	if val := os.Getenv("TIDE_TIMEOUT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Tide.Timeout = p
		}
	}
	if val := os.Getenv("NOTICES_BASE_URL"); val != "" {
		cfg.Notices.BaseURL = val
	}
	if val := os.Getenv("NOTICES_REFRESH_CRON"); val != "" {
		cfg.Notices.RefreshCron = val
	}
	if val := os.Getenv("FORECAST_WARM_CRON"); val != "" {
		cfg.Notices.WarmCron = val
	}
	if val := os.Getenv("NOTICES_DEFAULT_REGION"); val != "" {
		cfg.Notices.DefaultRegion = val
	}

	if val := os.Getenv("SAMPLE_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Polling.SampleInterval = p
		}
	}
	if val := os.Getenv("EVALUATE_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Polling.EvaluateInterval = p
		}
	}
	if val := os.Getenv("STALE_THRESHOLD"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Polling.StaleThreshold = p
		}
	}

	if val := os.Getenv("CACHE_TTL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Cache.TTL = p
		}
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = p
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		cfg.Redis.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("REDIS_USE_TLS"); val != "" {
		cfg.Redis.UseTLS = val == "true" || val == "1"
	}

	if val := os.Getenv("ALERT_WEBHOOK_URL"); val != "" {
		cfg.Alerts.WebhookURL = val
	}

	if val := os.Getenv("GEOIP_DB_PATH"); val != "" {
		cfg.GeoIP.DBPath = val
	}
	if val := os.Getenv("DEFAULT_LAT"); val != "" {
		if lat, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.GeoIP.DefaultLat = lat
		}
	}
	if val := os.Getenv("DEFAULT_LNG"); val != "" {
		if lng, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.GeoIP.DefaultLng = lng
		}
	}

	if val := os.Getenv("MONGODB_URI"); val != "" {
		cfg.MongoDB.URI = val
	}
	if val := os.Getenv("MONGODB_DATABASE"); val != "" {
		cfg.MongoDB.Database = val
	}
	if val := os.Getenv("MONGODB_ENABLED"); val != "" {
		cfg.MongoDB.Enabled = val == "true" || val == "1"
	}

	if val := os.Getenv("SPECIES_CATALOG"); val != "" {
		cfg.Species.CatalogPath = val
	}
	if val := os.Getenv("STATIONS_DB_PATH"); val != "" {
		cfg.Stations.DBPath = val
	}
}

// Helper methods for duration conversion
func (c *Config) WeatherTimeoutDuration() time.Duration {
	return time.Duration(c.Weather.Timeout) * time.Second
}

func (c *Config) TideTimeoutDuration() time.Duration {
	return time.Duration(c.Tide.Timeout) * time.Second
}

func (c *Config) SampleIntervalDuration() time.Duration {
	return time.Duration(c.Polling.SampleInterval) * time.Second
}

func (c *Config) EvaluateIntervalDuration() time.Duration {
	return time.Duration(c.Polling.EvaluateInterval) * time.Second
}

func (c *Config) StaleThresholdDuration() time.Duration {
	return time.Duration(c.Polling.StaleThreshold) * time.Minute
}

func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}
