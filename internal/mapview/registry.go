package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/notemap-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// Registry tracks the active map sessions of this instance. Sessions are
// ephemeral view state, so they live in process memory only. A browser
// that navigates away without the explicit close would otherwise leak its
// session and stream tail, so sessions idle beyond idleTTL are reaped.
type Registry struct {
	source  PostSource
	logger  *zap.Logger
	idleTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewRegistry creates the registry. idleTTL <= 0 disables idle reaping.
func NewRegistry(source PostSource, idleTTL time.Duration, logger *zap.Logger) *Registry {
	r := &Registry{
		source:    source,
		logger:    logger,
		idleTTL:   idleTTL,
		sessions:  make(map[string]*Session),
		sweepStop: make(chan struct{}),
	}

	if idleTTL > 0 {
		go r.sweepLoop()
	}

	return r
}

// Open creates a session, loads the initial snapshot and starts the live
// subscription. ctx only bounds the initial fetch; the subscription runs on
// the session's own lifetime.
func (r *Registry) Open(ctx context.Context) *Session {
	s := newSession(r.source, r.logger)

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.Refresh(ctx)
	go s.watch(watchCtx)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("Map session opened", zap.String("session_id", s.ID))
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return errors.ErrSessionNotFound
	}

	s.Close()
	r.logger.Info("Map session closed", zap.String("session_id", id))
	return nil
}

// CloseAll tears every session down, used on shutdown.
func (r *Registry) CloseAll() {
	r.sweepOnce.Do(func() { close(r.sweepStop) })

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) sweepLoop() {
	interval := r.idleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.reapIdle()
		}
	}
}

// reapIdle closes sessions whose client went quiet. Expired ids are
// collected under the read lock first; Close takes the write lock itself.
func (r *Registry) reapIdle() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.RLock()
	var expired []string
	for id, s := range r.sessions {
		if s.lastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range expired {
		if err := r.Close(id); err == nil {
			r.logger.Info("Idle map session reaped", zap.String("session_id", id))
		}
	}
}
