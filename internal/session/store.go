package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
)

// Store keeps sessions in memory and evicts the ones left idle past the TTL
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl         time.Duration
	interval    time.Duration
	maxSessions int

	now     func() time.Time
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics reports the active session count
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store. Call Start to run the janitor.
func NewStore(cfg config.SessionConfig, opts ...Option) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		ttl:         cfg.TTL,
		interval:    cfg.CleanupInterval,
		maxSessions: cfg.MaxSessions,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = infrastructure.WithComponent(infrastructure.GetLogger(), "session")
	}
	if s.interval <= 0 {
		s.interval = time.Minute
	}
	return s
}

// Start runs the janitor until Stop is called
func (s *Store) Start() {
	go s.cleanup()
}

// Stop ends the janitor goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Get returns a live session and marks it as used
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		s.remove(id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// GetOrCreate returns the session for id, creating a new one when it is
// unknown or expired. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Create starts a new session, evicting the least recently used one when
// the store is full
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	sess := newSession(uuid.New().String(), s.now())
	s.sessions[sess.ID] = sess
	s.addActive(1)

	s.logger.Debug("Session created", slog.String("session_id", sess.ID))
	return sess
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			s.remove(id)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// remove deletes id; the caller holds s.mu
func (s *Store) remove(id string) {
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		s.addActive(-1)
	}
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	if oldestID != "" {
		s.logger.Info("Session store full, evicting least recently used session",
			slog.String("session_id", oldestID),
			slog.Int("max_sessions", s.maxSessions))
		s.remove(oldestID)
	}
}

func (s *Store) addActive(delta int64) {
	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(context.Background(), delta)
	}
}

func (s *Store) cleanup() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Expired sessions removed",
					slog.Int("removed", n),
					slog.Int("remaining", s.Len()))
			}
		case <-s.stopChan:
			return
		}
	}
}
