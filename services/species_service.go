package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"fincast/config"
	"fincast/models"
)

// SpeciesService serves the species catalog, regulation windows, and
// DFO fishery notices. The catalog is a YAML file loaded at startup;
// notices come from the DFO API and are persisted so the list survives
// provider outages.
type SpeciesService struct {
	cfg      *config.Config
	notices  *NoticeClient
	cache    *CacheService
	mongo    *MongoDBService
	notifier *NotificationService

	catalog models.SpeciesCatalog
	byID    map[string]*models.Species

	seen      map[string]struct{} // notice IDs already announced
	seenMutex sync.Mutex
	seeded    bool
}

func NewSpeciesService(cfg *config.Config, notices *NoticeClient, cache *CacheService,
	mongo *MongoDBService, notifier *NotificationService) (*SpeciesService, error) {
	s := &SpeciesService{
		cfg:      cfg,
		notices:  notices,
		cache:    cache,
		mongo:    mongo,
		notifier: notifier,
		byID:     make(map[string]*models.Species),
		seen:     make(map[string]struct{}),
	}

	if err := s.loadCatalog(cfg.Species.CatalogPath); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SpeciesService) loadCatalog(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading species catalog: %w", err)
	}

	if err := yaml.Unmarshal(raw, &s.catalog); err != nil {
		return fmt.Errorf("parsing species catalog: %w", err)
	}
	if len(s.catalog.Species) == 0 {
		return fmt.Errorf("species catalog %s contains no species", path)
	}

	for i := range s.catalog.Species {
		sp := &s.catalog.Species[i]
		s.byID[sp.ID] = sp
	}

	log.Printf("Loaded %d species, %d regulation windows from %s",
		len(s.catalog.Species), len(s.catalog.Regulations), path)
	return nil
}

// ListSpecies returns the catalog sorted by name
func (s *SpeciesService) ListSpecies() []models.Species {
	out := make([]models.Species, len(s.catalog.Species))
	copy(out, s.catalog.Species)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetSpecies looks up one species by id
func (s *SpeciesService) GetSpecies(id string) (*models.Species, bool) {
	sp, ok := s.byID[id]
	return sp, ok
}

// Regulations returns the windows for a region, or all when region is empty
func (s *SpeciesService) Regulations(region string) []models.RegulationWindow {
	if region == "" {
		out := make([]models.RegulationWindow, len(s.catalog.Regulations))
		copy(out, s.catalog.Regulations)
		return out
	}

	var out []models.RegulationWindow
	for _, r := range s.catalog.Regulations {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}

// Calendar builds the 12-month availability view for a species in a year
func (s *SpeciesService) Calendar(id string, year int) ([]models.CalendarMonth, error) {
	sp, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("species %s not found", id)
	}

	available := make(map[int]bool, len(sp.Months))
	for _, m := range sp.Months {
		available[m] = true
	}

	months := make([]models.CalendarMonth, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = models.CalendarMonth{
			Month:     m,
			Available: available[m],
			Open:      s.monthOpen(id, year, m),
		}
	}
	return months, nil
}

func (s *SpeciesService) monthOpen(speciesID string, year, month int) bool {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	for _, r := range s.catalog.Regulations {
		if r.SpeciesID != speciesID {
			continue
		}
		open, err1 := time.Parse("2006-01-02", r.OpenFrom)
		close, err2 := time.Parse("2006-01-02", r.OpenTo)
		if err1 != nil || err2 != nil {
			continue
		}
		if open.Before(monthEnd) && close.After(monthStart) {
			return true
		}
	}
	return false
}

// AdjustScores derives per-species scores from the overall score: in
// season the species scores slightly above it, out of season well below.
func (s *SpeciesService) AdjustScores(base float64, month int) map[string]float64 {
	scores := make(map[string]float64, len(s.catalog.Species))
	for _, sp := range s.catalog.Species {
		inSeason := false
		for _, m := range sp.Months {
			if m == month {
				inSeason = true
				break
			}
		}

		score := base
		if inSeason {
			score += 5
		} else {
			score -= 20
		}
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		scores[sp.ID] = score
	}
	return scores
}

// RefreshNotices pulls current fishery notices for the default region,
// persists them, refreshes the cache, and drops an in-app notification
// for each notice seen for the first time. Called on the cron schedule
// and once at startup.
func (s *SpeciesService) RefreshNotices(ctx context.Context) error {
	region := s.cfg.Notices.DefaultRegion

	notices, err := s.notices.FetchNotices(ctx, region)
	if err != nil {
		return err
	}

	s.seedSeen(ctx, region)

	for _, n := range notices {
		if s.mongo != nil && s.mongo.enabled {
			if err := s.mongo.UpsertFisheryNotice(ctx, n); err != nil {
				log.Printf("Failed to persist notice %s: %v", n.NoticeID, err)
			}
		}
		s.announceNotice(n)
	}

	s.cache.SetNotices(region, notices, s.cfg.CacheTTLDuration())
	log.Printf("Refreshed %d fishery notices for region %s", len(notices), region)
	return nil
}

// seedSeen primes the announced set from persisted notices so a restart
// does not re-announce everything already in the feed.
func (s *SpeciesService) seedSeen(ctx context.Context, region string) {
	s.seenMutex.Lock()
	defer s.seenMutex.Unlock()

	if s.seeded {
		return
	}
	s.seeded = true

	if s.mongo == nil || !s.mongo.enabled {
		return
	}
	persisted, err := s.mongo.GetFisheryNotices(ctx, region, 0)
	if err != nil {
		log.Printf("Failed to seed announced notices: %v", err)
		return
	}
	for _, n := range persisted {
		s.seen[n.NoticeID] = struct{}{}
	}
}

// announceNotice creates an in-app notification the first time a notice
// ID shows up, deduping repeats across refresh passes.
func (s *SpeciesService) announceNotice(n *models.FisheryNotice) {
	if s.notifier == nil {
		return
	}

	s.seenMutex.Lock()
	if _, ok := s.seen[n.NoticeID]; ok {
		s.seenMutex.Unlock()
		return
	}
	s.seen[n.NoticeID] = struct{}{}
	s.seenMutex.Unlock()

	notification := &models.Notification{
		Type:  models.NotificationNotice,
		Title: n.Title,
		Body:  n.Summary,
	}
	if err := s.notifier.Create(notification); err != nil {
		log.Printf("Failed to create notice notification %s: %v", n.NoticeID, err)
	}
}

// GetNotices serves notices from the cache, falling back to Mongo
func (s *SpeciesService) GetNotices(ctx context.Context, region string, limit int64) ([]*models.FisheryNotice, error) {
	if region == "" {
		region = s.cfg.Notices.DefaultRegion
	}

	if notices, ok := s.cache.GetNotices(region); ok {
		if limit > 0 && int64(len(notices)) > limit {
			notices = notices[:limit]
		}
		return notices, nil
	}

	if s.mongo != nil && s.mongo.enabled {
		return s.mongo.GetFisheryNotices(ctx, region, limit)
	}

	return []*models.FisheryNotice{}, nil
}
