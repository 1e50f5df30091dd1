package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fincast/config"
	"fincast/models"
	"fincast/utils"
)

// ConditionsService keeps a fresh ConditionSample for every watched
// location (the distinct locations of saved alert profiles). Samples
// are cached for the evaluation loop and persisted as snapshots.
type ConditionsService struct {
	cfg      *config.Config
	weather  *WeatherClient
	tides    *TideClient
	stations *StationRepository
	species  *SpeciesService
	cache    *CacheService
	mongo    *MongoDBService

	watched map[string][2]float64 // loc key -> lat/lng
	mutex   sync.RWMutex

	stopChan chan struct{}
}

func NewConditionsService(cfg *config.Config, weather *WeatherClient, tides *TideClient,
	stations *StationRepository, species *SpeciesService, cache *CacheService, mongo *MongoDBService) *ConditionsService {
	return &ConditionsService{
		cfg:      cfg,
		weather:  weather,
		tides:    tides,
		stations: stations,
		species:  species,
		cache:    cache,
		mongo:    mongo,
		watched:  make(map[string][2]float64),
		stopChan: make(chan struct{}),
	}
}

func (cs *ConditionsService) Start() {
	log.Println("Starting Conditions Service...")
	ticker := time.NewTicker(cs.cfg.SampleIntervalDuration())

	go func() {
		cs.sampleAll()

		for {
			select {
			case <-ticker.C:
				cs.sampleAll()
			case <-cs.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (cs *ConditionsService) Stop() {
	close(cs.stopChan)
}

// Watch registers a location for periodic sampling
func (cs *ConditionsService) Watch(lat, lng float64) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.watched[LocKey(lat, lng)] = [2]float64{lat, lng}
}

// Unwatch drops a location nothing references anymore
func (cs *ConditionsService) Unwatch(lat, lng float64) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	delete(cs.watched, LocKey(lat, lng))
}

// WatchedLocations snapshots the current watch list
func (cs *ConditionsService) WatchedLocations() [][2]float64 {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	locations := make([][2]float64, 0, len(cs.watched))
	for _, loc := range cs.watched {
		locations = append(locations, loc)
	}
	return locations
}

// Latest returns the freshest sample for a location, sampling on demand
// when the cache has nothing.
func (cs *ConditionsService) Latest(ctx context.Context, lat, lng float64) (*models.ConditionSample, error) {
	if sample, ok := cs.cache.GetSample(lat, lng); ok {
		return sample, nil
	}

	sample, err := cs.buildSample(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	cs.cache.SetSample(sample, cs.cfg.CacheTTLDuration())
	return sample, nil
}

// History returns persisted samples for a location over the trailing
// window. Empty without persistence.
func (cs *ConditionsService) History(ctx context.Context, lat, lng float64, hours int) ([]models.SampleSnapshot, error) {
	if cs.mongo == nil || !cs.mongo.enabled {
		return []models.SampleSnapshot{}, nil
	}

	end := time.Now()
	start := end.Add(-time.Duration(hours) * time.Hour)
	return cs.mongo.GetSampleSnapshots(ctx, LocKey(lat, lng), start, end)
}

func (cs *ConditionsService) sampleAll() {
	cs.mutex.RLock()
	locations := make([][2]float64, 0, len(cs.watched))
	for _, loc := range cs.watched {
		locations = append(locations, loc)
	}
	cs.mutex.RUnlock()

	for _, loc := range locations {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		sample, err := cs.buildSample(ctx, loc[0], loc[1])
		cancel()
		if err != nil {
			log.Printf("Sampling %s failed: %v", LocKey(loc[0], loc[1]), err)
			continue
		}

		cs.cache.SetSample(sample, cs.cfg.CacheTTLDuration())

		if cs.mongo != nil && cs.mongo.enabled {
			snap := &models.SampleSnapshot{
				Timestamp: sample.SampledAt,
				LocKey:    LocKey(sample.Lat, sample.Lng),
				Sample:    *sample,
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := cs.mongo.InsertSampleSnapshot(ctx, snap); err != nil {
				log.Printf("Failed to persist sample snapshot: %v", err)
			}
			cancel()
		}
	}

	// retention pass
	if cs.mongo != nil && cs.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := cs.mongo.DeleteOldSnapshots(ctx, 30*24*time.Hour); err != nil {
			log.Printf("Snapshot retention pass failed: %v", err)
		}
		cancel()
	}
}

// buildSample fetches current weather and tide state for a point and
// derives the sample the evaluator consumes.
func (cs *ConditionsService) buildSample(ctx context.Context, lat, lng float64) (*models.ConditionSample, error) {
	now := time.Now()

	type weatherResult struct {
		hours []HourlyWeather
		err   error
	}
	type tideResult struct {
		data *models.TideData
		err  error
	}

	weatherChan := make(chan weatherResult, 1)
	tideChan := make(chan tideResult, 1)

	go func() {
		hours, err := cs.weather.GetHourly(ctx, lat, lng, 2)
		weatherChan <- weatherResult{hours, err}
	}()
	go func() {
		station, err := cs.stations.Nearest(lat, lng)
		if err != nil {
			tideChan <- tideResult{nil, err}
			return
		}
		data, err := cs.tides.GetPredictions(ctx, station.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
		tideChan <- tideResult{data, err}
	}()

	wr := <-weatherChan
	if wr.err != nil {
		return nil, fmt.Errorf("weather fetch: %w", wr.err)
	}

	sample := &models.ConditionSample{
		Lat:       lat,
		Lng:       lng,
		SampledAt: now,
	}

	current, threeHoursAgo := pickHours(wr.hours, now)
	if current == nil {
		return nil, fmt.Errorf("weather series has no hour covering %s", now.Format(time.RFC3339))
	}

	sample.WindSpeed = current.WindSpeed
	sample.WindDirection = current.WindDirection
	sample.Pressure = current.Pressure
	sample.WaterTemp = current.WaterTemp

	if threeHoursAgo != nil {
		sample.PressureGradient = current.Pressure - threeHoursAgo.Pressure
	}
	sample.PressureTrend = trendFromGradient(sample.PressureGradient)

	// Tide failures degrade the sample instead of failing it: wind and
	// pressure triggers still evaluate.
	tr := <-tideChan
	if tr.err != nil {
		log.Printf("Tide fetch degraded for %s: %v", LocKey(lat, lng), tr.err)
	} else {
		sample.TidePhase, sample.TideExchange = PhaseAt(tr.data.Events, now)
	}

	sample.SolunarPhase = utils.SolunarPhaseAt(now)

	sample.Score = utils.ScoreSample(sample, models.AlgorithmV2)
	if cs.species != nil {
		sample.SpeciesScores = cs.species.AdjustScores(sample.Score, int(now.Month()))
	}

	return sample, nil
}

// pickHours finds the series hour covering t and the one three hours
// earlier, for the pressure gradient.
func pickHours(hours []HourlyWeather, t time.Time) (current, earlier *HourlyWeather) {
	for i := range hours {
		h := &hours[i]
		if !h.Time.After(t) {
			current = h
		}
	}
	if current == nil {
		return nil, nil
	}

	target := current.Time.Add(-3 * time.Hour)
	for i := range hours {
		h := &hours[i]
		if h.Time.Equal(target) {
			earlier = h
			break
		}
	}
	return current, earlier
}

// trendFromGradient buckets a 3h pressure delta. The +-1 hPa band is
// treated as steady.
func trendFromGradient(gradient float64) string {
	switch {
	case gradient > 1.0:
		return models.PressureRising
	case gradient < -1.0:
		return models.PressureFalling
	default:
		return models.PressureSteady
	}
}
