package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	return nil
}

func postListKey(category string) string {
	if category == "" {
		category = domain.CategoryAll
	}
	return fmt.Sprintf("posts:list:%s", category)
}

func (r *cacheRepository) GetPostList(ctx context.Context, category string) ([]domain.Post, error) {
	data, err := r.Get(ctx, postListKey(category))
	if err != nil || data == nil {
		return nil, err
	}

	var posts []domain.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		// Treat a corrupt entry as a miss.
		r.logger.Warn("Dropping unreadable cached post list",
			zap.String("category", category),
			zap.Error(err))
		_ = r.Delete(ctx, postListKey(category))
		return nil, nil
	}

	return posts, nil
}

func (r *cacheRepository) SetPostList(ctx context.Context, category string, posts []domain.Post, ttl time.Duration) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal post list: %w", err)
	}
	return r.Set(ctx, postListKey(category), data, ttl)
}

// InvalidatePostLists drops the cached list for every known category plus
// the unfiltered list. The key set is fixed, so no SCAN is needed.
func (r *cacheRepository) InvalidatePostLists(ctx context.Context) error {
	keys := []string{postListKey(domain.CategoryAll)}
	for _, tag := range domain.Categories() {
		keys = append(keys, postListKey(tag))
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to invalidate post list cache", zap.Error(err))
		return fmt.Errorf("cache invalidate error: %w", err)
	}

	r.logger.Debug("Post list cache invalidated")
	return nil
}
