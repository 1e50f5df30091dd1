package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"fincast/config"
	"fincast/models"
)

// AlertService owns the alert profiles: CRUD, validation, and the
// periodic evaluation pass that fires notifications.
type AlertService struct {
	cfg        *config.Config
	conditions *ConditionsService
	notifier   *NotificationService
	mongo      *MongoDBService
	discordBot *DiscordBotService
	webhook    *resty.Client

	profiles map[string]*models.AlertProfile
	events   []*models.AlertEvent
	mutex    sync.RWMutex

	stopChan chan struct{}
}

func NewAlertService(cfg *config.Config, conditions *ConditionsService, notifier *NotificationService,
	mongo *MongoDBService, discordBot *DiscordBotService) *AlertService {
	as := &AlertService{
		cfg:        cfg,
		conditions: conditions,
		notifier:   notifier,
		mongo:      mongo,
		discordBot: discordBot,
		profiles:   make(map[string]*models.AlertProfile),
		events:     make([]*models.AlertEvent, 0),
		stopChan:   make(chan struct{}),
	}

	if cfg.Alerts.WebhookURL != "" {
		as.webhook = resty.New().
			SetTimeout(10 * time.Second).
			SetRetryCount(2)
	}

	return as
}

func (as *AlertService) Start() {
	log.Println("Starting Alert Service...")
	ticker := time.NewTicker(as.cfg.EvaluateIntervalDuration())

	go func() {
		for {
			select {
			case <-ticker.C:
				as.EvaluateProfiles()
			case <-as.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (as *AlertService) Stop() {
	close(as.stopChan)
}

// ValidateProfile enforces the creation contract: required name and a
// sane location, known logic mode, known phase and trend names.
// Cross-field checks stay shallow: speed_min above speed_max is the
// caller's problem.
func ValidateProfile(p *models.AlertProfile) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat must be within [-90, 90]")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("lng must be within [-180, 180]")
	}

	switch p.LogicMode {
	case models.LogicAnd, models.LogicOr, "":
	default:
		return fmt.Errorf("logic_mode must be AND or OR")
	}

	if t := p.Triggers.Tide; t != nil {
		for _, phase := range t.Phases {
			switch phase {
			case models.TideIncoming, models.TideOutgoing, models.TideHighSlack, models.TideLowSlack:
			default:
				return fmt.Errorf("unknown tide phase %q", phase)
			}
		}
	}
	if pt := p.Triggers.Pressure; pt != nil && pt.Enabled {
		switch pt.Trend {
		case models.PressureRising, models.PressureFalling, models.PressureSteady:
		default:
			return fmt.Errorf("unknown pressure trend %q", pt.Trend)
		}
	}
	if sol := p.Triggers.Solunar; sol != nil {
		for _, phase := range sol.Phases {
			if phase != models.SolunarMajor && phase != models.SolunarMinor {
				return fmt.Errorf("unknown solunar phase %q", phase)
			}
		}
	}

	return nil
}

// NormalizeProfile fills defaults and clamps the cooldown to [1, 168]
func NormalizeProfile(p *models.AlertProfile) {
	if p.LogicMode == "" {
		p.LogicMode = models.LogicAnd
	}
	if p.CooldownHrs < models.CooldownMinHours {
		p.CooldownHrs = models.CooldownMinHours
	}
	if p.CooldownHrs > models.CooldownMaxHours {
		p.CooldownHrs = models.CooldownMaxHours
	}
}

// CreateProfile validates, normalizes, and stores a new profile
func (as *AlertService) CreateProfile(p *models.AlertProfile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	NormalizeProfile(p)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	as.mutex.Lock()
	as.profiles[p.ID] = p
	as.mutex.Unlock()

	as.conditions.Watch(p.Lat, p.Lng)

	if as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.InsertProfile(ctx, p); err != nil {
			log.Printf("Failed to persist alert profile: %v", err)
		}
	}

	return nil
}

func (as *AlertService) GetProfile(id string) (*models.AlertProfile, bool) {
	as.mutex.RLock()
	defer as.mutex.RUnlock()
	p, exists := as.profiles[id]
	return p, exists
}

func (as *AlertService) ListProfiles() []*models.AlertProfile {
	as.mutex.RLock()
	defer as.mutex.RUnlock()

	profiles := make([]*models.AlertProfile, 0, len(as.profiles))
	for _, p := range as.profiles {
		profiles = append(profiles, p)
	}
	return profiles
}

// UpdateProfile replaces an existing profile, preserving its identity
// and firing history.
func (as *AlertService) UpdateProfile(id string, updated *models.AlertProfile) error {
	if err := ValidateProfile(updated); err != nil {
		return err
	}
	NormalizeProfile(updated)

	as.mutex.Lock()
	existing, exists := as.profiles[id]
	if !exists {
		as.mutex.Unlock()
		return fmt.Errorf("alert profile not found")
	}

	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.LastFired = existing.LastFired
	updated.UpdatedAt = time.Now()
	as.profiles[id] = updated
	as.mutex.Unlock()

	as.conditions.Watch(updated.Lat, updated.Lng)
	as.releaseLocation(existing.Lat, existing.Lng)

	if as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.UpdateProfile(ctx, updated); err != nil {
			log.Printf("Failed to update alert profile: %v", err)
		}
	}

	return nil
}

func (as *AlertService) DeleteProfile(id string) error {
	as.mutex.Lock()
	p, exists := as.profiles[id]
	if !exists {
		as.mutex.Unlock()
		return fmt.Errorf("alert profile not found")
	}
	delete(as.profiles, id)
	as.mutex.Unlock()

	as.releaseLocation(p.Lat, p.Lng)

	if as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.DeleteProfile(ctx, id); err != nil {
			log.Printf("Failed to delete alert profile: %v", err)
		}
	}

	return nil
}

// releaseLocation unwatches a location once no profile references it
func (as *AlertService) releaseLocation(lat, lng float64) {
	as.mutex.RLock()
	inUse := false
	for _, p := range as.profiles {
		if LocKey(p.Lat, p.Lng) == LocKey(lat, lng) {
			inUse = true
			break
		}
	}
	as.mutex.RUnlock()

	if !inUse {
		as.conditions.Unwatch(lat, lng)
	}
}

// GetEvents returns recent firing history, newest first. A cold ring
// (fresh boot) falls back to persisted events.
func (as *AlertService) GetEvents(limit int) []*models.AlertEvent {
	as.mutex.RLock()
	n := limit
	if n <= 0 || n > len(as.events) {
		n = len(as.events)
	}

	start := len(as.events) - n
	result := make([]*models.AlertEvent, n)
	copy(result, as.events[start:])
	as.mutex.RUnlock()

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	if len(result) == 0 && as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		persisted, err := as.mongo.GetAlertEvents(ctx, int64(limit))
		if err != nil {
			log.Printf("Failed to load persisted alert events: %v", err)
			return result
		}
		return persisted
	}

	return result
}

// EvaluateProfiles runs one evaluation pass over every enabled profile
func (as *AlertService) EvaluateProfiles() {
	as.mutex.RLock()
	profiles := make([]*models.AlertProfile, 0, len(as.profiles))
	for _, p := range as.profiles {
		if p.Enabled {
			profiles = append(profiles, p)
		}
	}
	as.mutex.RUnlock()

	now := time.Now()
	for _, p := range profiles {
		if now.Sub(p.LastFired) < time.Duration(p.CooldownHrs)*time.Hour {
			continue
		}
		if !WithinActiveHours(p.ActiveHours, now) {
			continue
		}

		sample, ok := as.conditions.cache.GetSample(p.Lat, p.Lng)
		if !ok {
			continue // no fresh sample yet for this location
		}
		if now.Sub(sample.SampledAt) > as.cfg.StaleThresholdDuration() {
			continue
		}

		triggered, matched := EvaluateTriggers(&p.Triggers, p.LogicMode, sample)
		if triggered {
			as.fireProfile(p, matched, sample)
		}
	}
}

func (as *AlertService) fireProfile(p *models.AlertProfile, matched []string, sample *models.ConditionSample) {
	log.Printf("Alert fired: %s (%v)", p.Name, matched)

	as.mutex.Lock()
	p.LastFired = time.Now()
	as.mutex.Unlock()

	delivered := make(map[string]bool)

	if as.notifier != nil {
		err := as.notifier.Create(&models.Notification{
			Type:      models.NotificationAlert,
			Title:     fmt.Sprintf("Conditions alert: %s", p.Name),
			Body:      fmt.Sprintf("%s matched at %s", formatMatched(matched), p.LocationName),
			ProfileID: p.ID,
		})
		delivered["in_app"] = err == nil
	}

	if as.discordBot != nil {
		err := as.discordBot.SendAlert(p, matched, sample)
		if err != nil {
			log.Printf("Discord alert error: %v", err)
		}
		delivered["discord"] = err == nil
	}

	if as.webhook != nil {
		delivered["webhook"] = as.sendWebhook(p, matched, sample)
	}

	event := &models.AlertEvent{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		Name:      p.Name,
		Timestamp: time.Now(),
		Matched:   matched,
		Sample:    sample,
		Delivered: delivered,
	}

	as.mutex.Lock()
	as.events = append(as.events, event)
	if len(as.events) > 1000 {
		as.events = as.events[len(as.events)-1000:]
	}
	as.mutex.Unlock()

	if as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.InsertAlertEvent(ctx, event); err != nil {
			log.Printf("Failed to persist alert event: %v", err)
		}
	}

	if p.Enabled && as.mongo != nil && as.mongo.enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.UpdateProfile(ctx, p); err != nil {
			log.Printf("Failed to persist last_fired: %v", err)
		}
	}
}

func (as *AlertService) sendWebhook(p *models.AlertProfile, matched []string, sample *models.ConditionSample) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := as.webhook.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"profile_id": p.ID,
			"name":       p.Name,
			"matched":    matched,
			"sample":     sample,
			"fired_at":   time.Now(),
		}).
		Post(as.cfg.Alerts.WebhookURL)
	if err != nil {
		log.Printf("Webhook delivery error: %v", err)
		return false
	}
	if resp.IsError() {
		log.Printf("Webhook delivery returned status %d", resp.StatusCode())
		return false
	}
	return true
}

func formatMatched(matched []string) string {
	if len(matched) == 0 {
		return "configured triggers"
	}
	out := matched[0]
	for _, m := range matched[1:] {
		out += ", " + m
	}
	return out
}

// TestProfile evaluates a profile against the latest sample for its
// location without saving it or recording history.
func (as *AlertService) TestProfile(ctx context.Context, p *models.AlertProfile) (bool, []string, *models.ConditionSample, error) {
	if err := ValidateProfile(p); err != nil {
		return false, nil, nil, err
	}
	NormalizeProfile(p)

	sample, err := as.conditions.Latest(ctx, p.Lat, p.Lng)
	if err != nil {
		return false, nil, nil, fmt.Errorf("no conditions available for location: %w", err)
	}

	triggered, matched := EvaluateTriggers(&p.Triggers, p.LogicMode, sample)

	if triggered && as.discordBot != nil {
		if err := as.discordBot.SendTestAlert(p, matched, sample); err != nil {
			log.Printf("Discord test alert error: %v", err)
		}
	}

	return triggered, matched, sample, nil
}

// LoadProfilesFromDB restores saved profiles on boot
func (as *AlertService) LoadProfilesFromDB() error {
	if as.mongo == nil || !as.mongo.enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profiles, err := as.mongo.GetAllProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alert profiles: %w", err)
	}

	as.mutex.Lock()
	for _, p := range profiles {
		as.profiles[p.ID] = p
	}
	as.mutex.Unlock()

	for _, p := range profiles {
		as.conditions.Watch(p.Lat, p.Lng)
	}

	log.Printf("Loaded %d alert profiles", len(profiles))
	return nil
}
