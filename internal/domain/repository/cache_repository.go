package repository

import (
	"context"
	"time"

	"github.com/notemap-service/internal/domain"
)

// CacheRepository caches ordered post lists per category. A nil result
// with nil error is a miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	GetPostList(ctx context.Context, category string) ([]domain.Post, error)
	SetPostList(ctx context.Context, category string, posts []domain.Post, ttl time.Duration) error

	// InvalidatePostLists drops every cached list variant after a write.
	InvalidatePostLists(ctx context.Context) error
}
