package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// CacheRepository caches absence summaries in Redis. A nil client disables
// caching entirely; callers never need to branch on availability.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheRepository constructs the cache layer.
func NewCacheRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheRepository{client: client, ttl: ttl, logger: logger}
}

func summaryKey(studentID, classID string) string {
	return fmt.Sprintf("absence:summary:%s:%s", classID, studentID)
}

func classSetKey(classID string) string {
	return fmt.Sprintf("absence:summary:keys:%s", classID)
}

// GetSummary fetches a cached summary. The second return value reports a hit.
func (r *CacheRepository) GetSummary(ctx context.Context, studentID, classID string) (*models.AbsenceSummary, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	raw, err := r.client.Get(ctx, summaryKey(studentID, classID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("absence summary cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var summary models.AbsenceSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		r.logger.Warn("absence summary cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return &summary, true
}

// SetSummary stores a summary and tracks its key for class-wide invalidation.
func (r *CacheRepository) SetSummary(ctx context.Context, summary models.AbsenceSummary) {
	if r == nil || r.client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	key := summaryKey(summary.StudentID, summary.ClassID)
	pipe := r.client.Pipeline()
	pipe.Set(ctx, key, raw, r.ttl)
	pipe.SAdd(ctx, classSetKey(summary.ClassID), key)
	pipe.Expire(ctx, classSetKey(summary.ClassID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("absence summary cache write failed", zap.Error(err))
	}
}

// InvalidateClass drops every cached summary for a class. Called whenever a
// roster save or cascade delete changes the underlying counts.
func (r *CacheRepository) InvalidateClass(ctx context.Context, classID string) {
	if r == nil || r.client == nil {
		return
	}
	setKey := classSetKey(classID)
	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("absence summary cache invalidation failed", zap.Error(err))
		}
		return
	}
	keys = append(keys, setKey)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("absence summary cache delete failed", zap.Error(err))
	}
}
