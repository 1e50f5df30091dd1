package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fincast/config"
	"fincast/models"
	"fincast/utils"
)

// Forecast length bounds; the report page shows at most two weeks
const (
	ForecastMinDays = 1
	ForecastMaxDays = 14
)

// ForecastService assembles the multi-day reports behind the dashboard
// and report pages.
type ForecastService struct {
	cfg      *config.Config
	weather  *WeatherClient
	tides    *TideClient
	stations *StationRepository
	cache    *CacheService
}

func NewForecastService(cfg *config.Config, weather *WeatherClient, tides *TideClient,
	stations *StationRepository, cache *CacheService) *ForecastService {
	return &ForecastService{
		cfg:      cfg,
		weather:  weather,
		tides:    tides,
		stations: stations,
		cache:    cache,
	}
}

// ClampDays normalizes a requested report length
func ClampDays(days int) int {
	if days < ForecastMinDays {
		return ForecastMaxDays // unset or nonsense: serve the full report
	}
	if days > ForecastMaxDays {
		return ForecastMaxDays
	}
	return days
}

// GetReport returns the forecast report for a point, served from cache
// when fresh.
func (fs *ForecastService) GetReport(ctx context.Context, lat, lng float64, days int, algorithm string) (*models.ForecastReport, error) {
	days = ClampDays(days)

	if report, ok := fs.cache.GetForecast(lat, lng, days, algorithm); ok {
		return report, nil
	}

	report, err := fs.buildReport(ctx, lat, lng, days, algorithm)
	if err != nil {
		return nil, err
	}

	fs.cache.SetForecast(report, days, fs.cfg.CacheTTLDuration())
	return report, nil
}

func (fs *ForecastService) buildReport(ctx context.Context, lat, lng float64, days int, algorithm string) (*models.ForecastReport, error) {
	now := time.Now()

	type weatherResult struct {
		hours []HourlyWeather
		err   error
	}
	type tideResult struct {
		station *models.TideStation
		data    *models.TideData
		err     error
	}

	weatherChan := make(chan weatherResult, 1)
	tideChan := make(chan tideResult, 1)

	go func() {
		hours, err := fs.weather.GetHourly(ctx, lat, lng, days)
		weatherChan <- weatherResult{hours, err}
	}()
	go func() {
		station, err := fs.stations.Nearest(lat, lng)
		if err != nil {
			tideChan <- tideResult{nil, nil, err}
			return
		}
		data, err := fs.tides.GetPredictions(ctx, station.ID, now, now.AddDate(0, 0, days))
		tideChan <- tideResult{station, data, err}
	}()

	wr := <-weatherChan
	if wr.err != nil {
		return nil, fmt.Errorf("weather fetch: %w", wr.err)
	}

	report := &models.ForecastReport{
		Lat:         lat,
		Lng:         lng,
		Algorithm:   algorithm,
		GeneratedAt: now,
	}

	var tideEvents []models.TideEvent
	tr := <-tideChan
	if tr.err != nil {
		log.Printf("Tide fetch degraded for %s: %v", LocKey(lat, lng), tr.err)
	} else {
		report.StationID = tr.station.ID
		report.LocationName = tr.station.Name
		tideEvents = tr.data.Events
	}

	report.Days = buildDays(wr.hours, tideEvents, days, algorithm)
	if len(report.Days) == 0 {
		return nil, fmt.Errorf("weather series produced no forecast days")
	}
	report.Summary = Summarize(report.Days)

	return report, nil
}

// buildDays folds the hourly series into per-day aggregates
func buildDays(hours []HourlyWeather, tides []models.TideEvent, maxDays int, algorithm string) []models.DayForecast {
	byDate := make(map[string][]HourlyWeather)
	var order []string
	for _, h := range hours {
		date := h.Time.Format("2006-01-02")
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], h)
	}

	if len(order) > maxDays {
		order = order[:maxDays]
	}

	days := make([]models.DayForecast, 0, len(order))
	for _, date := range order {
		dayHours := byDate[date]
		day := models.DayForecast{Date: date}

		day.WindSpeedMin = dayHours[0].WindSpeed
		day.AirTempMin = dayHours[0].AirTemp
		var windSum, dirSum, pressureSum, waterSum float64
		for _, h := range dayHours {
			if h.WindSpeed < day.WindSpeedMin {
				day.WindSpeedMin = h.WindSpeed
			}
			if h.WindSpeed > day.WindSpeedMax {
				day.WindSpeedMax = h.WindSpeed
			}
			if h.AirTemp < day.AirTempMin {
				day.AirTempMin = h.AirTemp
			}
			if h.AirTemp > day.AirTempMax {
				day.AirTempMax = h.AirTemp
			}
			windSum += h.WindSpeed
			dirSum += h.WindDirection
			pressureSum += h.Pressure
			waterSum += h.WaterTemp
		}
		n := float64(len(dayHours))
		day.WindSpeedAvg = windSum / n
		day.WindDirection = dirSum / n
		day.Pressure = pressureSum / n
		day.WaterTemp = waterSum / n
		day.PressureTrend = trendFromGradient(dayHours[len(dayHours)-1].Pressure - dayHours[0].Pressure)

		for _, e := range tides {
			if e.Time.Format("2006-01-02") == date {
				day.Tides = append(day.Tides, e)
			}
		}

		dayStart := time.Date(dayHours[0].Time.Year(), dayHours[0].Time.Month(), dayHours[0].Time.Day(),
			0, 0, 0, 0, dayHours[0].Time.Location())
		day.Solunar = utils.SolunarWindows(dayStart)

		day.Score = scoreDay(&day, algorithm)
		days = append(days, day)
	}

	return days
}

// scoreDay evaluates the day's midday-representative sample
func scoreDay(day *models.DayForecast, algorithm string) float64 {
	sample := &models.ConditionSample{
		WindSpeed:     day.WindSpeedAvg,
		WindDirection: day.WindDirection,
		Pressure:      day.Pressure,
		PressureTrend: day.PressureTrend,
		WaterTemp:     day.WaterTemp,
	}
	// any tide movement during the day counts
	if len(day.Tides) >= 2 {
		sample.TidePhase = models.TideIncoming
	}
	return utils.ScoreSample(sample, algorithm)
}

// Summarize computes the report aggregates. Best day is the maximum
// score; ties resolve to the first occurrence.
func Summarize(days []models.DayForecast) models.ReportSummary {
	if len(days) == 0 {
		return models.ReportSummary{}
	}

	s := models.ReportSummary{
		BestDay:      days[0].Date,
		BestScore:    days[0].Score,
		WindSpeedMin: days[0].WindSpeedMin,
		WindSpeedMax: days[0].WindSpeedMax,
		PressureMin:  days[0].Pressure,
		PressureMax:  days[0].Pressure,
		WaterTempMin: days[0].WaterTemp,
		WaterTempMax: days[0].WaterTemp,
	}

	var scoreSum, windSum float64
	for _, d := range days {
		if d.Score > s.BestScore {
			s.BestScore = d.Score
			s.BestDay = d.Date
		}
		if d.WindSpeedMin < s.WindSpeedMin {
			s.WindSpeedMin = d.WindSpeedMin
		}
		if d.WindSpeedMax > s.WindSpeedMax {
			s.WindSpeedMax = d.WindSpeedMax
		}
		if d.Pressure < s.PressureMin {
			s.PressureMin = d.Pressure
		}
		if d.Pressure > s.PressureMax {
			s.PressureMax = d.Pressure
		}
		if d.WaterTemp < s.WaterTempMin {
			s.WaterTempMin = d.WaterTemp
		}
		if d.WaterTemp > s.WaterTempMax {
			s.WaterTempMax = d.WaterTemp
		}
		scoreSum += d.Score
		windSum += d.WindSpeedAvg
	}

	s.AvgScore = scoreSum / float64(len(days))
	s.WindSpeedAvg = windSum / float64(len(days))

	return s
}

// Warm pre-builds the default-length report for a set of locations
func (fs *ForecastService) Warm(locations [][2]float64, algorithm string) {
	for _, loc := range locations {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		_, err := fs.GetReport(ctx, loc[0], loc[1], ForecastMaxDays, algorithm)
		cancel()
		if err != nil {
			log.Printf("Forecast warm failed for %s: %v", LocKey(loc[0], loc[1]), err)
		}
	}
}
