package repository

import (
	"context"

	"github.com/notemap-service/internal/domain"
)

// PostRepository is the durable post store. Reads are ordered by creation
// time descending; the category filter is pushed down to the backend query.
type PostRepository interface {
	// List returns all posts, newest first. category == domain.CategoryAll
	// (or "") disables the filter.
	List(ctx context.Context, category string) ([]domain.Post, error)

	// ListByCategories returns posts matching any of the given tags,
	// newest first.
	ListByCategories(ctx context.Context, categories []string) ([]domain.Post, error)

	GetByID(ctx context.Context, id string) (*domain.Post, error)

	Create(ctx context.Context, post *domain.Post) error

	// IncrementGood atomically bumps the approval counter by one at the
	// backend and returns the new value. Never read-modify-write.
	IncrementGood(ctx context.Context, id string) (int64, error)
}
