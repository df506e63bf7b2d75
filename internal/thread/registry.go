package thread

import (
	"sync"

	"go.uber.org/zap"
)

// Registry hands out one Synchronizer per gateway session so that one
// conversation view owns the selection context and thread exclusively.
type Registry struct {
	messages  MessageClient
	directory DirectoryClient
	logger    *zap.Logger
	observer  SyncObserver

	mu    sync.Mutex
	bySID map[string]*Synchronizer
}

// NewRegistry constructs a synchronizer registry. observer may be nil.
func NewRegistry(messages MessageClient, directory DirectoryClient, logger *zap.Logger, observer SyncObserver) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		messages:  messages,
		directory: directory,
		logger:    logger,
		observer:  observer,
		bySID:     make(map[string]*Synchronizer),
	}
}

// For returns the synchronizer for the session, creating it on first use.
func (r *Registry) For(sessionID string, session Session) *Synchronizer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.bySID[sessionID]; ok {
		return s
	}
	s := NewSynchronizer(session, r.messages, r.directory, r.logger, r.observer)
	r.bySID[sessionID] = s
	return s
}

// Drop forgets the session's synchronizer, discarding its selection and
// thread. Called on sign-out.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySID, sessionID)
}
