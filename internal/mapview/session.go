package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/pkg/errors"
	"github.com/notemap-service/internal/pkg/utils"
	"go.uber.org/zap"
)

// PostSource is what a session needs from the post store client: a
// one-shot fetch (stale reports that a retained snapshot was served after a
// fetch failure), the atomic approval, and the live snapshot subscription.
type PostSource interface {
	Fetch(ctx context.Context, category string) (posts []domain.Post, stale bool, err error)
	Approve(ctx context.Context, id string) (int64, error)
	Subscribe(ctx context.Context) (<-chan []domain.Post, error)
}

// Session owns the posts snapshot and filter state of one active map view.
// Nothing is shared across sessions except the backend collection itself.
type Session struct {
	ID     string
	source PostSource
	logger *zap.Logger
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	posts      []domain.Post
	degraded   bool
	closed     bool
	lastActive time.Time
}

func newSession(source PostSource, logger *zap.Logger) *Session {
	return &Session{
		ID:         uuid.NewString(),
		source:     source,
		logger:     logger,
		state:      NewState(),
		lastActive: time.Now(),
	}
}

// touch marks client activity. Callers hold s.mu.
func (s *Session) touch() {
	s.lastActive = time.Now()
}

// lastSeen reports when the client last interacted with this session.
// Background snapshot applies do not count as activity.
func (s *Session) lastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Refresh loads the full post list. On fetch failure the prior snapshot is
// retained and the session is only flagged degraded - the view stays
// interactive on stale data.
func (s *Session) Refresh(ctx context.Context) {
	posts, stale, err := s.source.Fetch(ctx, domain.CategoryAll)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Warn("Post fetch failed, keeping prior snapshot",
			zap.String("session_id", s.ID),
			zap.Error(err))
		s.degraded = true
		return
	}

	s.posts = posts
	s.degraded = stale
	s.state = Reconcile(s.state, VisiblePosts(posts, s.state))
}

// watch feeds live snapshots into the session until ctx is cancelled.
func (s *Session) watch(ctx context.Context) {
	ch, err := s.source.Subscribe(ctx)
	if err != nil {
		s.logger.Warn("Live subscription unavailable, view stays one-shot",
			zap.String("session_id", s.ID),
			zap.Error(err))
		return
	}

	for posts := range ch {
		s.applySnapshot(posts)
	}
}

func (s *Session) applySnapshot(posts []domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A snapshot that arrives after Close is dropped.
	if s.closed {
		return
	}
	s.posts = posts
	s.degraded = false
	s.state = Reconcile(s.state, VisiblePosts(posts, s.state))
}

// SetCategory switches the active filter tag. The selection survives unless
// the selected post drops out of the visible subset.
func (s *Session) SetCategory(tag string) error {
	if tag != domain.CategoryAll && !domain.KnownCategory(tag) {
		return errors.ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	s.touch()
	s.state = s.state.SetCategory(tag)
	s.state = Reconcile(s.state, VisiblePosts(s.posts, s.state))
	return nil
}

// Select handles a marker click. Clicking the already-selected marker
// toggles the overlay closed.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	s.touch()

	if s.state.SelectedID == id {
		s.state = s.state.ClearSelection()
		return nil
	}

	for _, p := range VisiblePosts(s.posts, s.state) {
		if p.ID == id {
			s.state = s.state.SelectPost(id)
			return nil
		}
	}
	return errors.ErrPostNotFound
}

// Deselect handles a click on empty map area or the overlay close button.
func (s *Session) Deselect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	s.touch()
	s.state = s.state.ClearSelection()
	return nil
}

// SetUserPosition enables the proximity filter around the reported
// location.
func (s *Session) SetUserPosition(p domain.Point, radiusKm float64) error {
	if !utils.ValidateCoordinates(p.Lat, p.Lng) {
		return errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(radiusKm) {
		return errors.ErrInvalidRadius
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	s.touch()
	s.state = s.state.SetUserPosition(p, radiusKm)
	s.state = Reconcile(s.state, VisiblePosts(s.posts, s.state))
	return nil
}

// ReportGeolocationFailure records that position acquisition failed. The
// prior position (usually none) is kept and a per-kind notice is returned
// for the user.
func (s *Session) ReportGeolocationFailure(kind string) (string, error) {
	failure := domain.ParseGeolocationFailure(kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.ErrSessionClosed
	}
	s.touch()

	s.logger.Info("Geolocation failed, proximity filter stays off",
		zap.String("session_id", s.ID),
		zap.String("kind", string(failure)))
	return failure.Message(), nil
}

// Approve runs the atomic increment and, on success, applies the new count
// to the session snapshot. Markers and the open overlay both read from that
// snapshot, so the two views can never diverge. On failure nothing local
// changes.
func (s *Session) Approve(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, errors.ErrSessionClosed
	}
	s.touch()
	s.mu.Unlock()

	// Suspension point: the session lock is not held across the store call.
	count, err := s.source.Approve(ctx, id)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Result arrived after teardown; the store write already
		// happened, only the local update is dropped.
		return count, nil
	}
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].GoodCount = count
			break
		}
	}
	return count, nil
}

// Snapshot returns the current posts, state and degraded flag for
// rendering.
func (s *Session) Snapshot() ([]domain.Post, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.posts, s.state, s.degraded
}

// Close tears the session down. Pending async completions become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}
