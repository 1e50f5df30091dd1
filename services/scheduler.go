package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"fincast/config"
	"fincast/models"
)

// Scheduler runs the periodic housekeeping jobs: fishery notice
// refresh and the daily forecast cache warm for watched locations.
type Scheduler struct {
	cfg        *config.Config
	species    *SpeciesService
	forecast   *ForecastService
	conditions *ConditionsService

	cron *cron.Cron
}

func NewScheduler(cfg *config.Config, species *SpeciesService, forecast *ForecastService,
	conditions *ConditionsService) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		species:    species,
		forecast:   forecast,
		conditions: conditions,
		cron:       cron.New(),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Notices.RefreshCron, s.refreshNotices); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.Notices.WarmCron, s.warmForecasts); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Scheduler started")

	// Prime the notice feed right away instead of waiting for the
	// first cron tick.
	go s.refreshNotices()

	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) refreshNotices() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := s.species.RefreshNotices(ctx); err != nil {
		log.Printf("Notice refresh failed: %v", err)
	}
}

func (s *Scheduler) warmForecasts() {
	locations := s.conditions.WatchedLocations()
	if len(locations) == 0 {
		return
	}

	log.Printf("Warming forecasts for %d locations", len(locations))
	s.forecast.Warm(locations, models.AlgorithmV2)
}
