package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewardscraft/studio/internal/logo"
	"github.com/rewardscraft/studio/internal/metrics"
)

// Notifier is told about every committed transition and about teardown.
type Notifier interface {
	Notify(snap Snapshot)
	SessionClosed(id uuid.UUID)
}

// Registry holds live sessions keyed by id.
type Registry struct {
	store   logo.BlobStore
	saver   Saver
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	notifier Notifier
}

// NewRegistry creates an empty registry. idleTTL <= 0 disables expiry.
func NewRegistry(store logo.BlobStore, saver Saver, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:    store,
		saver:    saver,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// SetNotifier sets who receives snapshots after each transition.
func (r *Registry) SetNotifier(n Notifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}

func (r *Registry) currentNotifier() Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifier
}

func (r *Registry) notify(snap Snapshot) {
	if n := r.currentNotifier(); n != nil {
		n.Notify(snap)
	}
}

// Create starts a new session with a default campaign.
func (r *Registry) Create() *Session {
	s := newSession(uuid.New(), r.store, r.saver, r.notify, r.now, r.logger)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()
	r.logger.Info("session created", zap.String("session_id", s.ID().String()))
	return s
}

// Get returns a live session.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close removes a session and releases its logo.
func (r *Registry) Close(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	metrics.ActiveSessions.Dec()
	r.logger.Info("session closed", zap.String("session_id", id.String()))
	err := s.Close(ctx)
	if n := r.currentNotifier(); n != nil {
		n.SessionClosed(id)
	}
	return err
}

// ExpireIdle closes sessions idle longer than the TTL and returns how many were closed.
func (r *Registry) ExpireIdle(ctx context.Context) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.RLock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.RUnlock()

	var idle []uuid.UUID
	for _, s := range live {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s.ID())
		}
	}

	n := 0
	for _, id := range idle {
		err := r.Close(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			r.logger.Warn("expire session", zap.String("session_id", id.String()), zap.Error(err))
		}
		n++
	}
	return n
}

// CloseAll closes every session. Used on shutdown.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			r.logger.Warn("close session", zap.String("session_id", id.String()), zap.Error(err))
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
