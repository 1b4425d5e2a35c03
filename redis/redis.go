package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orchard-bridge/config"
	"orchard-bridge/models"

	"github.com/go-redis/redis/v8"
)

// Identity cache TTL. Directory edits (sensor moved to another plot,
// deactivated) take at most this long to reach the ingestion path.
const identityTTL = 5 * time.Minute

// Live plot status is recomputed from readings; the cache only smooths
// dashboard polling.
const statusTTL = 60 * time.Second

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: rdb, ctx: ctx}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// SaveIdentity caches a resolved sensor identity under its device
// identifier.
func (r *RedisClient) SaveIdentity(identifier string, identity *models.SensorIdentity) error {
	key := fmt.Sprintf("sensor:identity:%s", identifier)

	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := r.client.Set(r.ctx, key, identityJSON, identityTTL).Err(); err != nil {
		return fmt.Errorf("failed to save identity to Redis: %w", err)
	}
	return nil
}

// GetIdentity returns a cached identity, or (nil, nil) on a cache miss.
func (r *RedisClient) GetIdentity(identifier string) (*models.SensorIdentity, error) {
	key := fmt.Sprintf("sensor:identity:%s", identifier)

	val, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity from Redis: %w", err)
	}

	var identity models.SensorIdentity
	if err := json.Unmarshal([]byte(val), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	return &identity, nil
}

// SavePlotStatus caches a computed live status for a plot.
func (r *RedisClient) SavePlotStatus(status *models.PlotStatus) error {
	key := fmt.Sprintf("plot:status:%s", status.PlotID)

	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal plot status: %w", err)
	}

	if err := r.client.Set(r.ctx, key, statusJSON, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save plot status to Redis: %w", err)
	}
	return nil
}

// GetPlotStatus returns a cached plot status, or (nil, nil) on a miss.
func (r *RedisClient) GetPlotStatus(plotID string) (*models.PlotStatus, error) {
	key := fmt.Sprintf("plot:status:%s", plotID)

	val, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plot status from Redis: %w", err)
	}

	var status models.PlotStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plot status: %w", err)
	}
	return &status, nil
}
