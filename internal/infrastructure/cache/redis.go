package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/pkg/config"
)

// statusTTL bounds how stale a cached job status can get; the database
// remains the source of truth
const statusTTL = 30 * time.Second

// JobStatusCache fronts job status reads with Redis so dashboard
// polling does not hammer Postgres
type JobStatusCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewJobStatusCache connects to Redis and verifies the connection
func NewJobStatusCache(cfg *config.Config, logger *zap.Logger) (*JobStatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &JobStatusCache{client: client, logger: logger}, nil
}

func statusKey(jobID string) string {
	return "job:status:" + jobID
}

// Set stores a job snapshot. Cache errors are logged, never propagated:
// status reads fall back to the database.
func (c *JobStatusCache) Set(ctx context.Context, job *entities.ClipJob) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKey(job.ID.String()), data, statusTTL).Err(); err != nil {
		if c.logger != nil {
			c.logger.Warn("cache.set_failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		}
	}
}

// Get returns the cached job snapshot, or nil on miss
func (c *JobStatusCache) Get(ctx context.Context, jobID string) *entities.ClipJob {
	data, err := c.client.Get(ctx, statusKey(jobID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("cache.get_failed", zap.String("job_id", jobID), zap.Error(err))
		}
		return nil
	}
	var job entities.ClipJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil
	}
	return &job
}

// Invalidate drops the cached snapshot, used when a job reaches a
// terminal state
func (c *JobStatusCache) Invalidate(ctx context.Context, jobID string) {
	if err := c.client.Del(ctx, statusKey(jobID)).Err(); err != nil && c.logger != nil {
		c.logger.Warn("cache.del_failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// Close releases the Redis connection
func (c *JobStatusCache) Close() error {
	return c.client.Close()
}
