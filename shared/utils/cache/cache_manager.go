package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"approvalflow-backend/shared/config"
)

type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// StatisticsCacheData holds cached approval counters for a unit scope.
type StatisticsCacheData struct {
	Total    int64     `json:"total"`
	Pending  int64     `json:"pending"`
	Approved int64     `json:"approved"`
	Rejected int64     `json:"rejected"`
	CachedAt time.Time `json:"cached_at"`
}

var (
	globalCacheManager *CacheManager
	StatisticsTTL      = 5 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.GetRedisDB(),
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, cfg.GetRedisDB())

	return nil
}

// GetCacheManager returns the global cache manager instance
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		if err := InitCacheManager(); err != nil {
			log.Printf("❌ Failed to initialize cache manager: %v", err)
			return nil
		}
	}
	return globalCacheManager
}

// GenerateStatisticsKey generates a cache key for unit-scoped statistics.
// The empty scope (all units) uses the literal "all".
func GenerateStatisticsKey(unitScope string) string {
	if unitScope == "" {
		unitScope = "all"
	}
	return fmt.Sprintf("approval:stats:unit:%s", unitScope)
}

// GetStatisticsCache returns cached statistics, or nil on miss.
func (cm *CacheManager) GetStatisticsCache(unitScope string) *StatisticsCacheData {
	if cm == nil || cm.client == nil {
		return nil
	}

	raw, err := cm.client.Get(cm.ctx, GenerateStatisticsKey(unitScope)).Result()
	if err != nil {
		return nil
	}

	var data StatisticsCacheData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return &data
}

// SetStatisticsCache caches statistics for a unit scope
func (cm *CacheManager) SetStatisticsCache(unitScope string, data *StatisticsCacheData) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	data.CachedAt = time.Now()
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return cm.client.Set(cm.ctx, GenerateStatisticsKey(unitScope), raw, StatisticsTTL).Err()
}

// InvalidateStatistics drops cached statistics for a unit scope and the
// global scope. Called after every submit and decision.
func (cm *CacheManager) InvalidateStatistics(unitScope string) {
	if cm == nil || cm.client == nil {
		return
	}

	keys := []string{GenerateStatisticsKey("")}
	if unitScope != "" {
		keys = append(keys, GenerateStatisticsKey(unitScope))
	}

	if err := cm.client.Del(cm.ctx, keys...).Err(); err != nil {
		log.Printf("❌ Failed to invalidate statistics cache: %v", err)
	}
}

// Close closes the Redis connection
func (cm *CacheManager) Close() error {
	if cm == nil || cm.client == nil {
		return nil
	}
	return cm.client.Close()
}
