package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Potestas06/HouseOfBlackJack/server/auth"
	"github.com/Potestas06/HouseOfBlackJack/server/rules"
)

// Manager hands out one session per signed-in user and tears it down again
// on logout.
type Manager struct {
	cfg     *rules.Config
	ledger  Ledger
	newShoe ShoeFunc
	clock   quartz.Clock
	logger  *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg *rules.Config, ledger Ledger, newShoe ShoeFunc, clock quartz.Clock, logger *log.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		ledger:   ledger,
		newShoe:  newShoe,
		clock:    clock,
		logger:   logger.WithPrefix("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Get returns the user's session, creating it from the ledger profile on
// first contact. Unknown users get a fresh profile seeded with the table's
// starting balance.
func (m *Manager) Get(ctx context.Context, user auth.Identity) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[user.UserID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the lock; profile loads hit the database.
	profile, err := m.ledger.LoadProfile(ctx, user.UserID, user.Name, m.cfg.Table.StartingBalance)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[user.UserID]; ok {
		return s, nil
	}
	s := newSession(user, profile, m.cfg, m.newShoe, m.ledger, m.clock, m.logger)
	m.sessions[user.UserID] = s
	m.logger.Info("session opened", "user", user.UserID, "session", s.ID)
	return s, nil
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Evict closes and forgets a user's session. Waits for any in-flight
// transition to finish first.
func (m *Manager) Evict(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.Close()
		m.logger.Info("session closed", "user", userID, "session", s.ID)
	}
}

// Attach wires the manager to the auth observer: a login warms the user's
// session, a logout is left to the logout endpoint which knows the user.
func (m *Manager) Attach(o *auth.Observer) func() {
	return o.Subscribe(func(id *auth.Identity) {
		if id == nil {
			return
		}
		if _, err := m.Get(context.Background(), *id); err != nil {
			m.logger.Error("warming session failed", "user", id.UserID, "err", err)
		}
	})
}

// Close evicts every session; each drains its own pending ledger writes.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
