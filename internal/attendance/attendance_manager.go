package attendance

import (
	"context"
	"sync"
	"time"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
	"digiwave-dashboard/internal/device"

	"go.uber.org/zap"
)

// Manager owns one Session per mounted user and unmounts sessions nobody
// has touched for idleTimeout.
type Manager struct {
	cfg         SessionConfig
	deps        Deps
	idleTimeout time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*managedSession
	onUnmount []func(Identity)
}

type managedSession struct {
	session  *Session
	lastSeen time.Time
}

func NewManager(cfg SessionConfig, deps Deps, idleTimeout time.Duration, logger ...*zap.Logger) *Manager {
	l := zap.L().Named("attendance.manager")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.manager")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{
		cfg:         cfg,
		deps:        deps,
		idleTimeout: idleTimeout,
		logger:      l,
		sessions:    make(map[string]*managedSession),
	}
}

// OnUnmount registers fn to run after a session is closed for any reason.
func (m *Manager) OnUnmount(fn func(Identity)) {
	m.mu.Lock()
	m.onUnmount = append(m.onUnmount, fn)
	m.mu.Unlock()
}

// Mount starts a fresh session for id, replacing any previous one.
func (m *Manager) Mount(id Identity, token string, signals device.Signals) *Session {
	s := NewSession(id, token, signals, m.cfg, m.deps, m.logger)

	m.mu.Lock()
	old := m.sessions[id.UserID]
	m.sessions[id.UserID] = &managedSession{session: s, lastSeen: m.deps.Now()}
	m.mu.Unlock()

	if old != nil {
		old.session.Close()
	}
	s.Start()
	m.logger.Info("attendance session mounted",
		zap.String("user_id", id.UserID),
		zap.Bool("mobile", s.device.IsMobile),
		zap.Bool("remount", old != nil),
	)
	return s
}

// Get returns the user's session, marks it used and refreshes its token.
func (m *Manager) Get(userID, token string) (*Session, error) {
	m.mu.Lock()
	ms, ok := m.sessions[userID]
	if ok {
		ms.lastSeen = m.deps.Now()
	}
	m.mu.Unlock()

	if !ok {
		return nil, attendanceerrors.ErrSessionNotMounted
	}
	ms.session.SetToken(token)
	return ms.session, nil
}

// Touch keeps a session alive without handing it out.
func (m *Manager) Touch(userID string) {
	m.mu.Lock()
	if ms, ok := m.sessions[userID]; ok {
		ms.lastSeen = m.deps.Now()
	}
	m.mu.Unlock()
}

func (m *Manager) Unmount(userID string) bool {
	m.mu.Lock()
	ms, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.closeSession(ms.session)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run evicts idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := max(m.idleTimeout/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// EvictIdle unmounts every session idle for longer than idleTimeout and
// returns how many it closed.
func (m *Manager) EvictIdle() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	now := m.deps.Now()

	m.mu.Lock()
	var idle []*Session
	for userID, ms := range m.sessions {
		if now.Sub(ms.lastSeen) > m.idleTimeout {
			idle = append(idle, ms.session)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.logger.Info("evicting idle attendance session", zap.String("user_id", s.identity.UserID))
		m.closeSession(s)
	}
	return len(idle)
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for userID, ms := range m.sessions {
		all = append(all, ms.session)
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.closeSession(s)
		}(s)
	}
	wg.Wait()
	m.logger.Info("attendance sessions closed", zap.Int("count", len(all)))
}

func (m *Manager) closeSession(s *Session) {
	s.Close()

	m.mu.Lock()
	hooks := append([]func(Identity){}, m.onUnmount...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(s.identity)
	}
}
