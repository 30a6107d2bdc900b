package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"signup-e2e/internal/application/port/output"
)

var (
	// ErrSessionUnresponsive marks a session whose liveness probe failed.
	// Acquire handles it by provisioning a replacement.
	ErrSessionUnresponsive = errors.New("session unresponsive")
	ErrSessionBusy         = errors.New("session already acquired")
	ErrManagerClosed       = errors.New("session manager closed")
)

const defaultProbeTimeout = 5 * time.Second

// Session is one live browser owned by the manager and lent to one worker at a time.
type Session struct {
	Worker  int
	Browser output.BrowserPort
	Created time.Time

	uses   int
	inUse  bool
	closed bool
}

// Uses counts how many acquisitions this session has served.
func (s *Session) Uses() int {
	return s.uses
}

type SessionStats struct {
	Provisioned int
	Disposed    int
	Replaced    int
}

type SessionManager struct {
	factory      output.BrowserFactory
	logger       output.LoggerPort
	probeTimeout time.Duration

	mu       sync.Mutex
	sessions map[int]*Session
	stats    SessionStats
	closed   bool
}

func NewSessionManager(factory output.BrowserFactory, logger output.LoggerPort) *SessionManager {
	return &SessionManager{
		factory:      factory,
		logger:       logger.WithField("component", "sessions"),
		probeTimeout: defaultProbeTimeout,
		sessions:     make(map[int]*Session),
	}
}

// SetProbeTimeout bounds the liveness probe run on every reuse.
func (m *SessionManager) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		m.probeTimeout = d
	}
}

// Acquire lends the worker its session, reusing the existing one if it still
// answers and provisioning a fresh browser otherwise.
func (m *SessionManager) Acquire(ctx context.Context, worker int) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	s := m.sessions[worker]
	if s != nil && s.inUse {
		m.mu.Unlock()
		return nil, fmt.Errorf("worker %d: %w", worker, ErrSessionBusy)
	}
	if s != nil {
		s.inUse = true
	}
	m.mu.Unlock()

	if s != nil {
		err := m.probe(ctx, s)
		if err == nil {
			m.mu.Lock()
			s.uses++
			uses := s.uses
			m.mu.Unlock()
			m.logger.Debug("Reusing session", "worker", worker, "uses", uses)
			return s, nil
		}
		m.logger.Warn("Replacing session", "worker", worker, "error", err)
		m.mu.Lock()
		m.stats.Replaced++
		m.mu.Unlock()
		m.dispose(worker, s)
	}

	return m.provision(ctx, worker)
}

func (m *SessionManager) probe(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	if _, err := s.Browser.CurrentURL(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnresponsive, err)
	}
	return nil
}

func (m *SessionManager) provision(ctx context.Context, worker int) (*Session, error) {
	start := time.Now()
	browser, err := m.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision session for worker %d: %w", worker, err)
	}

	s := &Session{
		Worker:  worker,
		Browser: browser,
		Created: time.Now(),
		uses:    1,
		inUse:   true,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = browser.Close()
		return nil, ErrManagerClosed
	}
	m.sessions[worker] = s
	m.stats.Provisioned++
	m.mu.Unlock()

	m.logger.Info("Session provisioned",
		"worker", worker,
		"browser", string(browser.Kind()),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return s, nil
}

// Release returns the session to the manager for later reuse.
func (m *SessionManager) Release(s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.inUse = false
}

// Reset clears cookies and web storage so the next test starts logged out.
// Both steps run even if the first fails.
func (m *SessionManager) Reset(ctx context.Context, s *Session) error {
	var errs []error
	if err := s.Browser.ClearCookies(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear cookies: %w", err))
	}
	if err := s.Browser.ClearStorage(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear storage: %w", err))
	}
	return errors.Join(errs...)
}

// Dispose closes the worker's session. The next Acquire provisions a new one.
func (m *SessionManager) Dispose(s *Session) error {
	if s == nil {
		return nil
	}
	return m.dispose(s.Worker, s)
}

func (m *SessionManager) dispose(worker int, s *Session) error {
	m.mu.Lock()
	if m.sessions[worker] == s {
		delete(m.sessions, worker)
	}
	if s.closed {
		m.mu.Unlock()
		return nil
	}
	s.closed = true
	s.inUse = false
	m.stats.Disposed++
	m.mu.Unlock()

	if err := s.Browser.Close(); err != nil {
		m.logger.Warn("Closing session failed", "worker", worker, "error", err)
		return fmt.Errorf("close session for worker %d: %w", worker, err)
	}
	m.logger.Debug("Session disposed", "worker", worker)
	return nil
}

func (m *SessionManager) Stats() SessionStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Active lists the workers that currently hold a live session.
func (m *SessionManager) Active() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	workers := make([]int, 0, len(m.sessions))
	for w := range m.sessions {
		workers = append(workers, w)
	}
	sort.Ints(workers)
	return workers
}

// Close disposes every session and rejects further acquisitions.
func (m *SessionManager) Close() error {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := m.dispose(s.Worker, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
