package mapview_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/mapview"
	"github.com/notemap-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource is a controllable PostSource.
type fakeSource struct {
	mu         sync.Mutex
	posts      []domain.Post
	fetchErr   error
	approveErr error
	snapshots  chan []domain.Post
}

func newFakeSource(posts ...domain.Post) *fakeSource {
	return &fakeSource{
		posts:     posts,
		snapshots: make(chan []domain.Post, 4),
	}
}

func (f *fakeSource) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeSource) Fetch(ctx context.Context, category string) ([]domain.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, false, f.fetchErr
	}
	return append([]domain.Post(nil), f.posts...), false, nil
}

func (f *fakeSource) Approve(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return 0, f.approveErr
	}
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].GoodCount++
			return f.posts[i].GoodCount, nil
		}
	}
	return 0, errors.ErrPostNotFound
}

func (f *fakeSource) Subscribe(ctx context.Context) (<-chan []domain.Post, error) {
	return f.snapshots, nil
}

func testPosts() []domain.Post {
	return []domain.Post{
		{
			ID:        "p1",
			Message:   "工事中につき通行止め",
			Category:  domain.CategoryDanger,
			RiskLevel: domain.RiskDangerArea,
			Location:  json.RawMessage(`{"lat": 35.68, "lng": 139.76}`),
			GoodCount: 2,
		},
		{
			ID:       "p2",
			Message:  "桜が満開",
			Category: domain.CategoryScenery,
			Location: json.RawMessage(`{"lat": 35.69, "lng": 139.70}`),
		},
	}
}

func openSession(t *testing.T, source mapview.PostSource) (*mapview.Registry, *mapview.Session) {
	t.Helper()
	registry := mapview.NewRegistry(source, 0, zap.NewNop())
	s := registry.Open(context.Background())
	t.Cleanup(registry.CloseAll)
	return registry, s
}

func TestSession_InitialSnapshot(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))

	posts, state, degraded := s.Snapshot()
	assert.Len(t, posts, 2)
	assert.Equal(t, domain.CategoryAll, state.Category)
	assert.False(t, degraded)
}

func TestSession_SelectToggle(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))

	require.NoError(t, s.Select("p1"))
	_, state, _ := s.Snapshot()
	assert.Equal(t, "p1", state.SelectedID)

	// Second click on the same marker closes the overlay.
	require.NoError(t, s.Select("p1"))
	_, state, _ = s.Snapshot()
	assert.Empty(t, state.SelectedID)
}

func TestSession_SelectUnknownPost(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))
	assert.ErrorIs(t, s.Select("nope"), errors.ErrPostNotFound)
}

func TestSession_CategoryChangeClearsDroppedSelection(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))

	require.NoError(t, s.SetCategory(domain.CategoryDanger))
	require.NoError(t, s.Select("p1"))

	require.NoError(t, s.SetCategory(domain.CategoryScenery))
	_, state, _ := s.Snapshot()
	assert.Empty(t, state.SelectedID, "selection should clear when p1 leaves the visible subset")
}

func TestSession_SetCategoryUnknownTag(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))
	assert.ErrorIs(t, s.SetCategory("謎タグ"), errors.ErrInvalidCategory)
}

func TestSession_ApproveUpdatesSnapshot(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))
	require.NoError(t, s.Select("p1"))

	count, err := s.Approve(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Marker list and overlay both read this snapshot: one count, no
	// divergence.
	posts, state, _ := s.Snapshot()
	assert.Equal(t, "p1", state.SelectedID)
	for _, p := range posts {
		if p.ID == "p1" {
			assert.Equal(t, int64(3), p.GoodCount)
		}
	}
}

func TestSession_ApproveFailureLeavesCountsUnchanged(t *testing.T) {
	source := newFakeSource(testPosts()...)
	source.approveErr = errors.ErrStoreWriteFailed
	_, s := openSession(t, source)

	_, err := s.Approve(context.Background(), "p1")
	assert.ErrorIs(t, err, errors.ErrStoreWriteFailed)

	posts, _, _ := s.Snapshot()
	for _, p := range posts {
		if p.ID == "p1" {
			assert.Equal(t, int64(2), p.GoodCount)
		}
	}
}

func TestSession_RefreshFailureKeepsPriorSnapshot(t *testing.T) {
	source := newFakeSource(testPosts()...)
	_, s := openSession(t, source)

	source.setFetchErr(errors.ErrStoreFetchFailed)
	s.Refresh(context.Background())

	posts, _, degraded := s.Snapshot()
	assert.Len(t, posts, 2, "stale data stays available")
	assert.True(t, degraded)
}

func TestSession_GeolocationFailureKeepsPosition(t *testing.T) {
	_, s := openSession(t, newFakeSource(testPosts()...))

	notice, err := s.ReportGeolocationFailure("permission_denied")
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPermissionDenied.Message(), notice)

	// Distinct kinds give distinct notices.
	other, err := s.ReportGeolocationFailure("timeout")
	require.NoError(t, err)
	assert.NotEqual(t, notice, other)

	_, state, _ := s.Snapshot()
	assert.Nil(t, state.UserPosition, "failed acquisition leaves position unset")
}

func TestSession_LiveSnapshotApplies(t *testing.T) {
	source := newFakeSource(testPosts()...)
	_, s := openSession(t, source)

	updated := testPosts()
	updated[0].GoodCount = 99
	source.snapshots <- updated

	assert.Eventually(t, func() bool {
		posts, _, _ := s.Snapshot()
		for _, p := range posts {
			if p.ID == "p1" && p.GoodCount == 99 {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestSession_ClosedSessionDropsLateSnapshots(t *testing.T) {
	source := newFakeSource(testPosts()...)
	registry, s := openSession(t, source)

	require.NoError(t, registry.Close(s.ID))

	updated := testPosts()
	updated[0].GoodCount = 99
	// The watch goroutine may already be gone; the send must not block
	// the test either way.
	select {
	case source.snapshots <- updated:
	default:
	}

	time.Sleep(50 * time.Millisecond)
	posts, _, _ := s.Snapshot()
	for _, p := range posts {
		if p.ID == "p1" {
			assert.Equal(t, int64(2), p.GoodCount, "no update after dispose")
		}
	}

	assert.ErrorIs(t, s.Deselect(), errors.ErrSessionClosed)
	_, err := s.Approve(context.Background(), "p1")
	assert.ErrorIs(t, err, errors.ErrSessionClosed)
}

// A browser that navigates away without DELETE leaves its session behind;
// the registry reaps it once the client goes quiet, tearing down the watch
// goroutine and the stream tail with it.
func TestRegistry_ReapsIdleSessions(t *testing.T) {
	registry := mapview.NewRegistry(newFakeSource(testPosts()...), 50*time.Millisecond, zap.NewNop())
	t.Cleanup(registry.CloseAll)

	s := registry.Open(context.Background())

	assert.Eventually(t, func() bool {
		_, err := registry.Get(s.ID)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond, "idle session never reaped")

	_, err := registry.Get(s.ID)
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)
	assert.ErrorIs(t, s.Deselect(), errors.ErrSessionClosed)
}

func TestRegistry_GetAndClose(t *testing.T) {
	registry := mapview.NewRegistry(newFakeSource(testPosts()...), 0, zap.NewNop())
	s := registry.Open(context.Background())

	got, err := registry.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, registry.Close(s.ID))
	_, err = registry.Get(s.ID)
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)
	assert.ErrorIs(t, registry.Close(s.ID), errors.ErrSessionNotFound)
}
