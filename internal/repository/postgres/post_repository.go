package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/domain/repository"
	"go.uber.org/zap"
)

type postRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewPostRepository(db *DB, logger *zap.Logger) repository.PostRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

const postColumns = `
	id,
	message,
	category,
	COALESCE(risk_level, '') AS risk_level,
	location,
	COALESCE(image_url, '') AS image_url,
	good_count,
	created_at`

// List returns all posts newest first. The category filter is pushed down
// into the query so filtering happens server-side.
func (r *postRepository) List(ctx context.Context, category string) ([]domain.Post, error) {
	var posts []domain.Post
	var err error

	if category == "" || category == domain.CategoryAll {
		query := fmt.Sprintf(`SELECT %s FROM posts ORDER BY created_at DESC`, postColumns)
		err = r.db.SelectContext(ctx, &posts, query)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM posts WHERE category = $1 ORDER BY created_at DESC`, postColumns)
		err = r.db.SelectContext(ctx, &posts, query, category)
	}

	if err != nil {
		r.logger.Error("failed to list posts",
			zap.String("category", category),
			zap.Error(err))
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

func (r *postRepository) ListByCategories(ctx context.Context, categories []string) ([]domain.Post, error) {
	if len(categories) == 0 {
		return r.List(ctx, domain.CategoryAll)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts
		WHERE category = ANY($1)
		ORDER BY created_at DESC`, postColumns)

	var posts []domain.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(categories)); err != nil {
		r.logger.Error("failed to list posts by categories",
			zap.Strings("categories", categories),
			zap.Error(err))
		return nil, fmt.Errorf("list posts by categories: %w", err)
	}

	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = $1`, postColumns)

	var post domain.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		r.logger.Error("failed to get post", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, message, category, risk_level, location, image_url, good_count, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Message,
		post.Category,
		post.RiskLevel,
		[]byte(post.Location),
		post.ImageURL,
		post.GoodCount,
		post.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create post", zap.String("id", post.ID), zap.Error(err))
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

// IncrementGood bumps the counter inside the database so concurrent
// approvals from independent clients never lose updates.
func (r *postRepository) IncrementGood(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE posts
		SET good_count = good_count + 1
		WHERE id = $1
		RETURNING good_count`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		r.logger.Error("failed to increment good count", zap.String("id", id), zap.Error(err))
		return 0, fmt.Errorf("increment good count: %w", err)
	}

	return count, nil
}
