package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"fincast/config"
	"fincast/models"
)

// CacheMode indicates which cache backend is active
type CacheMode string

const (
	CacheModeRedis    CacheMode = "redis"
	CacheModeInMemory CacheMode = "in-memory"
)

// Cache key prefixes
const (
	keyForecast = "forecast:" // forecast:<loc>:<days>:<algorithm>
	keySample   = "sample:"   // sample:<loc>
	keyNotices  = "notices:"  // notices:<region>
)

// CacheItem for in-memory fallback
type CacheItem struct {
	Data      []byte
	ExpiresAt time.Time
}

// CacheService fronts Redis with an in-memory fallback. Values are
// stored as JSON in both backends so a mode switch is transparent.
type CacheService struct {
	cfg *config.Config

	redis       *redis.Client
	redisCtx    context.Context
	redisCancel context.CancelFunc
	mode        CacheMode
	modeMutex   sync.RWMutex

	inMemoryStore sync.Map

	stopChan chan struct{}
}

func NewCacheService(cfg *config.Config) *CacheService {
	ctx, cancel := context.WithCancel(context.Background())

	cs := &CacheService{
		cfg:         cfg,
		redisCtx:    ctx,
		redisCancel: cancel,
		stopChan:    make(chan struct{}),
	}

	if cfg.Redis.Enabled {
		cs.connectRedis()
	} else {
		log.Println("Redis disabled in configuration, using in-memory cache")
		cs.setMode(CacheModeInMemory)
	}

	return cs
}

func (cs *CacheService) connectRedis() {
	options := &redis.Options{
		Addr:         cs.cfg.Redis.Address,
		Password:     cs.cfg.Redis.Password,
		DB:           cs.cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     5,
		MinIdleConns: 1,
		MaxRetries:   3,
		PoolTimeout:  10 * time.Second,
	}

	if cs.cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cs.redis = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := cs.redis.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		log.Println("Running with in-memory cache only")
		cs.setMode(CacheModeInMemory)
		return
	}

	log.Printf("Redis connected at %s", cs.cfg.Redis.Address)
	cs.setMode(CacheModeRedis)
}

func (cs *CacheService) setMode(mode CacheMode) {
	cs.modeMutex.Lock()
	defer cs.modeMutex.Unlock()

	if cs.mode != mode {
		cs.mode = mode
		log.Printf("Cache mode changed: %s", mode)
	}
}

func (cs *CacheService) getMode() CacheMode {
	cs.modeMutex.RLock()
	defer cs.modeMutex.RUnlock()
	return cs.mode
}

// Start launches the Redis health-check loop
func (cs *CacheService) Start() {
	if cs.cfg.Redis.Enabled {
		go cs.runHealthCheckLoop()
	}
}

func (cs *CacheService) Stop() {
	close(cs.stopChan)
	cs.redisCancel()

	if cs.redis != nil {
		cs.redis.Close()
	}
}

func (cs *CacheService) runHealthCheckLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.checkRedisHealth()
		case <-cs.stopChan:
			return
		}
	}
}

// checkRedisHealth demotes to in-memory on failure and promotes back
// once Redis answers again.
func (cs *CacheService) checkRedisHealth() {
	if cs.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cs.redis.Ping(ctx).Result()

	switch cs.getMode() {
	case CacheModeRedis:
		if err != nil {
			log.Printf("Redis health check failed: %v", err)
			cs.setMode(CacheModeInMemory)
		}
	case CacheModeInMemory:
		if err == nil {
			log.Println("Redis reconnected")
			cs.setMode(CacheModeRedis)
		}
	}
}

// ============================================
// Generic Set/Get (JSON in both backends)
// ============================================

func (cs *CacheService) Set(key string, data interface{}, ttl time.Duration) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("Cache marshal failed for %q: %v", key, err)
		return
	}

	if cs.getMode() == CacheModeRedis {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		if err := cs.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
			log.Printf("Redis SET failed for %q: %v (falling back to in-memory)", key, err)
			cs.setInMemory(key, raw, ttl)
		}
		return
	}

	cs.setInMemory(key, raw, ttl)
}

// Get unmarshals the cached value into out and reports whether the key
// was present and fresh.
func (cs *CacheService) Get(key string, out interface{}) bool {
	var raw []byte
	var found bool

	if cs.getMode() == CacheModeRedis {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		val, err := cs.redis.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			return false
		case err != nil:
			raw, found = cs.getInMemory(key)
		default:
			raw, found = val, true
		}
	} else {
		raw, found = cs.getInMemory(key)
	}

	if !found {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("Cache unmarshal failed for %q: %v", key, err)
		return false
	}
	return true
}

func (cs *CacheService) setInMemory(key string, raw []byte, ttl time.Duration) {
	cs.inMemoryStore.Store(key, &CacheItem{
		Data:      raw,
		ExpiresAt: time.Now().Add(ttl),
	})
}

func (cs *CacheService) getInMemory(key string) ([]byte, bool) {
	val, ok := cs.inMemoryStore.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(*CacheItem)
	if time.Now().After(item.ExpiresAt) {
		return nil, false
	}

	return item.Data, true
}

// ============================================
// Typed helpers
// ============================================

// LocKey canonicalizes a point so nearby float noise maps to one key
func LocKey(lat, lng float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lng)
}

func (cs *CacheService) SetForecast(report *models.ForecastReport, days int, ttl time.Duration) {
	key := keyForecast + LocKey(report.Lat, report.Lng) + ":" + fmt.Sprint(days) + ":" + report.Algorithm
	cs.Set(key, report, ttl)
}

func (cs *CacheService) GetForecast(lat, lng float64, days int, algorithm string) (*models.ForecastReport, bool) {
	key := keyForecast + LocKey(lat, lng) + ":" + fmt.Sprint(days) + ":" + algorithm
	var report models.ForecastReport
	if !cs.Get(key, &report) {
		return nil, false
	}
	return &report, true
}

func (cs *CacheService) SetSample(sample *models.ConditionSample, ttl time.Duration) {
	cs.Set(keySample+LocKey(sample.Lat, sample.Lng), sample, ttl)
}

func (cs *CacheService) GetSample(lat, lng float64) (*models.ConditionSample, bool) {
	var sample models.ConditionSample
	if !cs.Get(keySample+LocKey(lat, lng), &sample) {
		return nil, false
	}
	return &sample, true
}

func (cs *CacheService) SetNotices(region string, notices []*models.FisheryNotice, ttl time.Duration) {
	cs.Set(keyNotices+region, notices, ttl)
}

func (cs *CacheService) GetNotices(region string) ([]*models.FisheryNotice, bool) {
	var notices []*models.FisheryNotice
	if !cs.Get(keyNotices+region, &notices) {
		return nil, false
	}
	return notices, true
}

// ============================================
// Utility
// ============================================

func (cs *CacheService) GetCacheMode() CacheMode {
	return cs.getMode()
}

func (cs *CacheService) ClearCache() error {
	if cs.getMode() == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 5*time.Second)
		defer cancel()

		deleted := 0
		for _, prefix := range []string{keyForecast, keySample, keyNotices} {
			iter := cs.redis.Scan(ctx, 0, prefix+"*", 0).Iterator()
			for iter.Next(ctx) {
				cs.redis.Del(ctx, iter.Val())
				deleted++
			}
		}
		log.Printf("Redis cache cleared (%d keys deleted)", deleted)
	}

	cs.inMemoryStore = sync.Map{}
	log.Println("In-memory cache cleared")

	return nil
}

func (cs *CacheService) GetCacheStats() map[string]interface{} {
	stats := map[string]interface{}{
		"mode":    string(cs.getMode()),
		"enabled": cs.cfg.Redis.Enabled,
	}

	if cs.getMode() == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		if dbSize, err := cs.redis.DBSize(ctx).Result(); err == nil {
			stats["redis_keys"] = dbSize
		}
	}

	inMemCount := 0
	cs.inMemoryStore.Range(func(_, _ interface{}) bool {
		inMemCount++
		return true
	})
	stats["in_memory_keys"] = inMemCount

	return stats
}
