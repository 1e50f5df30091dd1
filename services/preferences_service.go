package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fincast/models"
	"fincast/utils"
)

// PreferencesService stores per-client display preferences: the unit
// system, the scoring algorithm version, and the report widget layout.
type PreferencesService struct {
	mongo *MongoDBService

	prefs map[string]*models.Preferences
	mutex sync.RWMutex
}

func NewPreferencesService(mongo *MongoDBService) *PreferencesService {
	return &PreferencesService{
		mongo: mongo,
		prefs: make(map[string]*models.Preferences),
	}
}

func defaultPreferences(clientID string) *models.Preferences {
	return &models.Preferences{
		ClientID:   clientID,
		UnitSystem: models.UnitSystems[0],
		Algorithm:  models.AlgorithmV2,
	}
}

// Get returns the stored preferences, falling back to MongoDB and
// finally to defaults. The defaults are not persisted until changed.
func (ps *PreferencesService) Get(clientID string) *models.Preferences {
	ps.mutex.RLock()
	p, exists := ps.prefs[clientID]
	ps.mutex.RUnlock()
	if exists {
		return p
	}

	if ps.mongo != nil && ps.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if stored, err := ps.mongo.GetPreferences(ctx, clientID); err == nil && stored != nil {
			ps.mutex.Lock()
			ps.prefs[clientID] = stored
			ps.mutex.Unlock()
			return stored
		}
	}

	return defaultPreferences(clientID)
}

// Put validates and stores preferences for a client
func (ps *PreferencesService) Put(clientID string, p *models.Preferences) (*models.Preferences, error) {
	if p.UnitSystem != "" && !validUnitSystem(p.UnitSystem) {
		return nil, fmt.Errorf("unknown unit system %q", p.UnitSystem)
	}

	algorithm, err := utils.NormalizeAlgorithm(p.Algorithm)
	if err != nil {
		return nil, err
	}

	current := ps.Get(clientID)
	updated := &models.Preferences{
		ClientID:      clientID,
		UnitSystem:    current.UnitSystem,
		Algorithm:     algorithm,
		ReportWidgets: p.ReportWidgets,
		UpdatedAt:     time.Now(),
	}
	if p.UnitSystem != "" {
		updated.UnitSystem = p.UnitSystem
	}
	if p.ReportWidgets == nil {
		updated.ReportWidgets = current.ReportWidgets
	}

	ps.store(updated)
	return updated, nil
}

// CycleUnits advances the client's unit system to the next one in
// order, wrapping after the last.
func (ps *PreferencesService) CycleUnits(clientID string) *models.Preferences {
	current := ps.Get(clientID)

	updated := *current
	updated.UnitSystem = NextUnitSystem(current.UnitSystem)
	updated.UpdatedAt = time.Now()

	ps.store(&updated)
	return &updated
}

// NextUnitSystem returns the successor in the fixed cycle. Unknown
// values restart at the first system.
func NextUnitSystem(current string) string {
	for i, u := range models.UnitSystems {
		if u == current {
			return models.UnitSystems[(i+1)%len(models.UnitSystems)]
		}
	}
	return models.UnitSystems[0]
}

func validUnitSystem(u string) bool {
	for _, known := range models.UnitSystems {
		if u == known {
			return true
		}
	}
	return false
}

func (ps *PreferencesService) store(p *models.Preferences) {
	ps.mutex.Lock()
	ps.prefs[p.ClientID] = p
	ps.mutex.Unlock()

	if ps.mongo != nil && ps.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ps.mongo.UpsertPreferences(ctx, p); err != nil {
			log.Printf("Failed to persist preferences: %v", err)
		}
	}
}
