package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"fincast/config"
	"fincast/handlers"
	"fincast/middleware"
	"fincast/services"
	"fincast/utils"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("=== Configuration ===")
	log.Printf("Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Redis: %s", cfg.Redis.Address)
	log.Printf("MongoDB: %s", cfg.MongoDB.Database)

	// 2. Core Services - Initialize
	geo, err := utils.NewGeoResolver(cfg.GeoIP.DBPath, utils.DefaultLocation{
		Lat:  cfg.GeoIP.DefaultLat,
		Lng:  cfg.GeoIP.DefaultLng,
		Name: cfg.GeoIP.DefaultName,
	})
	if err != nil {
		log.Printf("GeoIP DB not found at %s: %v", cfg.GeoIP.DBPath, err)
	}
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg)
	if err != nil {
		log.Printf("MongoDB connection failed: %v", err)
		log.Println("Persistence features will be disabled")
		mongoService = nil
	}
	if mongoService != nil {
		defer mongoService.Close()
	}

	discordToken := os.Getenv("DISCORD_BOT_TOKEN")
	discordChannelID := os.Getenv("DISCORD_CHANNEL_ID")
	discordBot, err := services.NewDiscordBotService(discordToken, discordChannelID)
	if err != nil {
		log.Printf("Discord bot initialization failed: %v", err)
		log.Println("Discord notifications will be disabled")
		discordBot = nil
	} else if discordBot != nil {
		defer discordBot.Close()
		log.Println("Discord Bot connected")
	}

	weather := services.NewWeatherClient(cfg)
	tides := services.NewTideClient(cfg)
	notices := services.NewNoticeClient(cfg)

	stations, err := services.NewStationRepository(cfg.Stations.DBPath)
	if err != nil {
		log.Fatalf("Failed to open station database: %v", err)
	}
	defer stations.Close()

	cache := services.NewCacheService(cfg)

	notificationService := services.NewNotificationService(mongoService)

	speciesService, err := services.NewSpeciesService(cfg, notices, cache, mongoService, notificationService)
	if err != nil {
		log.Fatalf("Failed to load species catalog: %v", err)
	}

	conditions := services.NewConditionsService(cfg, weather, tides, stations, speciesService, cache, mongoService)
	forecastService := services.NewForecastService(cfg, weather, tides, stations, cache)
	alertService := services.NewAlertService(cfg, conditions, notificationService, mongoService, discordBot)
	preferencesService := services.NewPreferencesService(mongoService)
	scheduler := services.NewScheduler(cfg, speciesService, forecastService, conditions)

	// 3. Start CRITICAL services immediately (before HTTP server)
	log.Println("=== Starting Critical Services ===")

	cache.Start()
	log.Println("Cache Service started")
	log.Printf("   Mode: %s", cache.GetCacheMode())

	if err := alertService.LoadProfilesFromDB(); err != nil {
		log.Printf("Warning: Failed to load alert profiles from MongoDB: %v", err)
	}
	if err := notificationService.LoadFromDB(); err != nil {
		log.Printf("Warning: Failed to load notifications from MongoDB: %v", err)
	}

	conditions.Start()
	log.Println("Conditions Sampler started")

	// 4. Web Server Setup
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.LoggerMiddleware())
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic: %v", r)
					c.Error(fmt.Errorf("internal server error"))
				}
			}()
			return next(c)
		}
	})

	// 5. Handlers
	systemHandlers := handlers.NewSystemHandlers(cache, alertService, notificationService)
	alertHandlers := handlers.NewAlertHandlers(alertService)
	forecastHandlers := handlers.NewForecastHandlers(forecastService, tides, stations, conditions, geo)
	notificationHandlers := handlers.NewNotificationHandlers(notificationService)
	speciesHandlers := handlers.NewSpeciesHandlers(cfg, speciesService)
	preferencesHandlers := handlers.NewPreferencesHandlers(preferencesService)
	cacheHandlers := handlers.NewCacheHandlers(cache)

	// 6. Routes
	e.GET("/health", systemHandlers.GetHealth)
	e.GET("/cache/status", cacheHandlers.GetCacheStatus)
	e.POST("/cache/clear", cacheHandlers.ClearCache)

	api := e.Group("/api")

	api.GET("/status", systemHandlers.GetStatus)

	alerts := api.Group("/alerts")
	alerts.POST("", alertHandlers.CreateAlert)
	alerts.GET("", alertHandlers.ListAlerts)
	alerts.GET("/history", alertHandlers.GetAlertHistory)
	alerts.POST("/test", alertHandlers.TestAlert)
	alerts.GET("/:id", alertHandlers.GetAlert)
	alerts.PUT("/:id", alertHandlers.UpdateAlert)
	alerts.DELETE("/:id", alertHandlers.DeleteAlert)

	api.GET("/forecast", forecastHandlers.GetForecast)
	api.GET("/forecast/today", forecastHandlers.GetForecastToday)
	api.GET("/forecast/summary", forecastHandlers.GetForecastSummary)
	api.GET("/conditions/history", forecastHandlers.GetConditionsHistory)
	api.GET("/tides", forecastHandlers.GetTides)
	api.GET("/stations", forecastHandlers.GetStations)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandlers.ListNotifications)
	notifications.POST("/read-all", notificationHandlers.MarkAllRead)
	notifications.POST("/:id/read", notificationHandlers.MarkRead)
	notifications.DELETE("/:id", notificationHandlers.DeleteNotification)

	api.GET("/species", speciesHandlers.ListSpecies)
	api.GET("/species/:id", speciesHandlers.GetSpecies)
	api.GET("/species/:id/calendar", speciesHandlers.GetSpeciesCalendar)
	api.GET("/regulations", speciesHandlers.GetRegulations)
	api.GET("/notices", speciesHandlers.GetNotices)

	preferences := api.Group("/preferences")
	preferences.GET("/:client", preferencesHandlers.GetPreferences)
	preferences.PUT("/:client", preferencesHandlers.PutPreferences)
	preferences.POST("/:client/units/cycle", preferencesHandlers.CycleUnits)

	// 7. Start HTTP Server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		log.Printf("Server running on http://%s", serverAddr)
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("shutting down the server: %v", err)
		}
	}()

	// Small delay to ensure server is listening
	time.Sleep(200 * time.Millisecond)
	log.Println("HTTP Server ready")

	// 8. Start remaining services in background
	go func() {
		log.Println("Initializing remaining services...")

		alertService.Start()
		log.Println("Alert Service started")

		if err := scheduler.Start(); err != nil {
			log.Printf("Warning: scheduler failed to start: %v", err)
		}

		log.Println("=== All Services Running ===")
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Graceful shutdown initiated...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Stopping services...")
	scheduler.Stop()
	alertService.Stop()
	conditions.Stop()
	cache.Stop()
	log.Println("All services stopped")

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	log.Println("Server exited cleanly")
}
