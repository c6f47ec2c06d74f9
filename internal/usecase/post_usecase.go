package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/domain/repository"
	"github.com/notemap-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// PostUseCase is the post store client: ordered reads with the category
// filter pushed down, a retained last-known snapshot for
// stale-but-available reads, the atomic approval increment, and the live
// snapshot subscription.
type PostUseCase struct {
	posts    repository.PostRepository
	cache    repository.CacheRepository
	streams  repository.StreamRepository
	logger   *zap.Logger
	cacheTTL time.Duration

	mu        sync.RWMutex
	lastKnown map[string][]domain.Post
}

func NewPostUseCase(
	posts repository.PostRepository,
	cache repository.CacheRepository,
	streams repository.StreamRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *PostUseCase {
	return &PostUseCase{
		posts:     posts,
		cache:     cache,
		streams:   streams,
		logger:    logger,
		cacheTTL:  cacheTTL,
		lastKnown: make(map[string][]domain.Post),
	}
}

// Fetch returns all posts for the category (domain.CategoryAll or "" means
// no filter), newest first. When the backend read fails and a prior
// snapshot exists, that snapshot is returned with stale == true instead of
// an error; the caller surfaces a non-blocking notice.
func (uc *PostUseCase) Fetch(ctx context.Context, category string) ([]domain.Post, bool, error) {
	if category == "" {
		category = domain.CategoryAll
	}

	if cached, err := uc.cache.GetPostList(ctx, category); err == nil && cached != nil {
		uc.retain(category, cached)
		return cached, false, nil
	}

	posts, err := uc.posts.List(ctx, category)
	if err != nil {
		uc.mu.RLock()
		snapshot, ok := uc.lastKnown[category]
		uc.mu.RUnlock()
		if ok {
			uc.logger.Warn("Post fetch failed, serving retained snapshot",
				zap.String("category", category),
				zap.Error(err))
			return copyPosts(snapshot), true, nil
		}
		uc.logger.Error("Post fetch failed with no retained snapshot",
			zap.String("category", category),
			zap.Error(err))
		return nil, false, errors.ErrStoreFetchFailed
	}

	uc.retain(category, posts)
	if err := uc.cache.SetPostList(ctx, category, posts, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache post list", zap.Error(err))
	}

	return posts, false, nil
}

// FetchByCategories returns posts matching any of the given tags, newest
// first. Uncached; used by the raw read API.
func (uc *PostUseCase) FetchByCategories(ctx context.Context, categories []string) ([]domain.Post, error) {
	for _, tag := range categories {
		if !domain.KnownCategory(tag) {
			return nil, errors.ErrInvalidCategory
		}
	}

	posts, err := uc.posts.ListByCategories(ctx, categories)
	if err != nil {
		return nil, errors.ErrStoreFetchFailed
	}
	return posts, nil
}

func (uc *PostUseCase) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := uc.posts.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrPostNotFound
		}
		return nil, errors.ErrStoreFetchFailed
	}
	return post, nil
}

// Approve runs the backend-side atomic increment and returns the new
// count. On failure no local state changes anywhere - callers skip their
// optimistic update.
func (uc *PostUseCase) Approve(ctx context.Context, id string) (int64, error) {
	count, err := uc.posts.IncrementGood(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return 0, errors.ErrPostNotFound
		}
		uc.logger.Error("Approval increment failed", zap.String("post_id", id), zap.Error(err))
		return 0, errors.ErrStoreWriteFailed
	}

	uc.applyCount(id, count)

	// Best effort: downstream readers recover via TTL and events.
	if err := uc.cache.InvalidatePostLists(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate post list cache", zap.Error(err))
	}
	if err := uc.streams.PublishToStream(ctx, domain.StreamPostsEvents, domain.PostEvent{
		Type:      domain.EventPostApproved,
		PostID:    id,
		GoodCount: count,
	}); err != nil {
		uc.logger.Warn("Failed to publish approval event", zap.Error(err))
	}

	return count, nil
}

// Subscribe delivers a fresh full snapshot per change event, in arrival
// order. When the receiver lags, intermediate snapshots are replaced by
// newer ones. The channel closes when ctx is cancelled.
func (uc *PostUseCase) Subscribe(ctx context.Context) (<-chan []domain.Post, error) {
	msgs, err := uc.streams.Tail(ctx, domain.StreamPostsEvents)
	if err != nil {
		return nil, err
	}

	out := make(chan []domain.Post, 1)
	go func() {
		defer close(out)

		for msg := range msgs {
			var event domain.PostEvent
			if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
				uc.logger.Warn("Skipping unreadable post event",
					zap.String("message_id", msg.ID),
					zap.Error(err))
				continue
			}

			posts, err := uc.posts.List(ctx, domain.CategoryAll)
			if err != nil {
				// Receiver keeps its prior snapshot.
				uc.logger.Warn("Snapshot refresh failed after event", zap.Error(err))
				continue
			}
			uc.retain(domain.CategoryAll, posts)

			select {
			case out <- posts:
			default:
				// Replace the pending stale snapshot with the newest.
				select {
				case <-out:
				default:
				}
				select {
				case out <- posts:
				default:
				}
			}
		}
	}()

	return out, nil
}

// Categories returns the fixed filter tag set.
func (uc *PostUseCase) Categories() []string {
	return domain.Categories()
}

// retain stores its own copy of the list. Each caller of Fetch owns the
// slice it got back; nothing done here later may reach into it.
func (uc *PostUseCase) retain(category string, posts []domain.Post) {
	snapshot := copyPosts(posts)
	uc.mu.Lock()
	uc.lastKnown[category] = snapshot
	uc.mu.Unlock()
}

// applyCount patches the approved count into the retained snapshots so a
// later stale read does not resurrect the old counter. Copy-on-write: a
// stale slice already handed out keeps its old backing array.
func (uc *PostUseCase) applyCount(id string, count int64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for category, snapshot := range uc.lastKnown {
		for i := range snapshot {
			if snapshot[i].ID == id {
				updated := copyPosts(snapshot)
				updated[i].GoodCount = count
				uc.lastKnown[category] = updated
				break
			}
		}
	}
}

func copyPosts(posts []domain.Post) []domain.Post {
	return append([]domain.Post(nil), posts...)
}
