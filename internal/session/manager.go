package session

import (
	"sync"

	"go.uber.org/zap"
)

// ActiveSessionsObserver is told the number of live authorities whenever
// the set changes.
type ActiveSessionsObserver interface {
	SetActiveSessions(n int)
}

// Manager hands out one Authority per gateway session, keyed by the
// session ID carried in the signed cookie.
type Manager struct {
	store    CredentialStore
	api      IdentityClient
	logger   *zap.Logger
	observer ActiveSessionsObserver

	mu          sync.Mutex
	authorities map[string]*Authority
}

// NewManager constructs a session manager. observer may be nil.
func NewManager(store CredentialStore, api IdentityClient, logger *zap.Logger, observer ActiveSessionsObserver) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:       store,
		api:         api,
		logger:      logger,
		observer:    observer,
		authorities: make(map[string]*Authority),
	}
}

// Authority returns the authority for the session, creating it on first use.
func (m *Manager) Authority(sessionID string) *Authority {
	m.mu.Lock()
	defer m.mu.Unlock()
	if auth, ok := m.authorities[sessionID]; ok {
		return auth
	}
	auth := NewAuthority(sessionID, m.store, m.api, m.logger)
	m.authorities[sessionID] = auth
	if m.observer != nil {
		m.observer.SetActiveSessions(len(m.authorities))
	}
	return auth
}

// Drop forgets the in-memory authority for a session. The persisted
// credential, if any, is untouched; a later request re-creates the
// authority and resolves it again.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.authorities, sessionID)
	if m.observer != nil {
		m.observer.SetActiveSessions(len(m.authorities))
	}
}
