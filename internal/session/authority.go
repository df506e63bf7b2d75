package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

// State is the authority's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateResolving
	StateAuthenticated
	StateAnonymous
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// IdentityClient is the slice of the upstream client the authority needs.
type IdentityClient interface {
	Login(ctx context.Context, email, secret string) (string, error)
	Me(ctx context.Context, token string) (*models.Identity, error)
}

// Authority owns the authenticated-identity lifecycle for one gateway
// session: resuming a persisted credential, validating it upstream,
// exposing the current identity, and signing in and out. It is the single
// writer of the persisted credential.
type Authority struct {
	sessionID string
	store     CredentialStore
	api       IdentityClient
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	identity    *models.Identity
	token       string
	epoch       uint64
	resolveDone chan struct{}
}

// NewAuthority builds an authority in the Uninitialized state.
func NewAuthority(sessionID string, store CredentialStore, api IdentityClient, logger *zap.Logger) *Authority {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authority{
		sessionID: sessionID,
		store:     store,
		api:       api,
		logger:    logger,
		state:     StateUninitialized,
	}
}

// Initialize resumes a persisted credential if one exists and resolves the
// session to Authenticated or Anonymous. It is idempotent: the resolution
// runs at most once, and concurrent callers wait for the same outcome. No
// failure is fatal; a rejected or unreachable validation downgrades to
// Anonymous and discards the credential.
func (a *Authority) Initialize(ctx context.Context) error {
	a.mu.Lock()
	switch a.state {
	case StateAuthenticated, StateAnonymous:
		a.mu.Unlock()
		return nil
	case StateResolving:
		done := a.resolveDone
		a.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a.state = StateResolving
	a.resolveDone = make(chan struct{})
	done := a.resolveDone
	epoch := a.epoch
	a.mu.Unlock()

	defer close(done)

	token, ok, err := a.store.Get(ctx, a.sessionID)
	if err != nil {
		a.logger.Warn("credential read failed, treating session as anonymous",
			zap.String("session_id", a.sessionID), zap.Error(err))
		a.settle(epoch, StateAnonymous, nil, "")
		return nil
	}
	if !ok {
		a.settle(epoch, StateAnonymous, nil, "")
		return nil
	}

	identity, err := a.api.Me(ctx, token)
	if err != nil {
		// Stale or rejected credential: discard it. This is the normal
		// "not logged in" path, not a user-visible error. If the epoch
		// moved, a sign-in or sign-out concluded while we were waiting
		// and owns the persisted credential now.
		if a.Epoch() == epoch {
			if delErr := a.store.Delete(ctx, a.sessionID); delErr != nil {
				a.logger.Warn("failed to discard stale credential",
					zap.String("session_id", a.sessionID), zap.Error(delErr))
			}
		}
		a.settle(epoch, StateAnonymous, nil, "")
		return nil
	}

	a.settle(epoch, StateAuthenticated, identity, token)
	return nil
}

// SignIn authenticates against the upstream. The credential is persisted
// only after a successful login response and before the identity fetch; a
// failing identity fetch leaves the credential persisted and the session
// unresolved so a later Initialize can retry.
func (a *Authority) SignIn(ctx context.Context, email, secret string) (*models.Identity, error) {
	token, err := a.api.Login(ctx, email, secret)
	if err != nil {
		return nil, err
	}

	if err := a.store.Set(ctx, a.sessionID, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist credential")
	}

	identity, err := a.api.Me(ctx, token)
	if err != nil {
		a.mu.Lock()
		if a.state != StateAuthenticated {
			a.state = StateUninitialized
			a.resolveDone = nil
		}
		a.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrSessionUnresolved.Code, appErrors.ErrSessionUnresolved.Status, appErrors.ErrSessionUnresolved.Message)
	}

	a.mu.Lock()
	// The epoch bump invalidates any resolution still in flight against
	// the previous credential, so it can neither delete the fresh token
	// nor settle the session back to Anonymous.
	a.epoch++
	a.state = StateAuthenticated
	a.identity = identity
	a.token = token
	a.mu.Unlock()
	return identity, nil
}

// SignOut erases the persisted credential and resets the session to
// Anonymous unconditionally, without an upstream call. The epoch bump
// guarantees that any in-flight resolution or synchronization pass that
// completes afterwards cannot resurrect the identity.
func (a *Authority) SignOut(ctx context.Context) {
	a.mu.Lock()
	a.epoch++
	a.state = StateAnonymous
	a.identity = nil
	a.token = ""
	a.mu.Unlock()

	if err := a.store.Delete(ctx, a.sessionID); err != nil {
		a.logger.Warn("failed to erase credential on sign-out",
			zap.String("session_id", a.sessionID), zap.Error(err))
	}
}

func (a *Authority) settle(epoch uint64, state State, identity *models.Identity, token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.epoch != epoch {
		// Signed in or out while resolving; keep what that established.
		return
	}
	a.state = state
	a.identity = identity
	a.token = token
}

// State reports the current lifecycle state.
func (a *Authority) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// CurrentIdentity returns a copy of the resolved identity, if any.
func (a *Authority) CurrentIdentity() (models.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateAuthenticated || a.identity == nil {
		return models.Identity{}, false
	}
	return *a.identity, true
}

// IsAuthenticated reports whether the session holds a resolved identity.
func (a *Authority) IsAuthenticated() bool {
	_, ok := a.CurrentIdentity()
	return ok
}

// HasRole reports whether the current identity's role is in the given set.
// An empty set admits any authenticated identity.
func (a *Authority) HasRole(roles ...models.Role) bool {
	identity, ok := a.CurrentIdentity()
	if !ok {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// Token exposes the bearer credential for the transport layer only. All
// other consumers must go through CurrentIdentity.
func (a *Authority) Token() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateAuthenticated || a.token == "" {
		return "", false
	}
	return a.token, true
}

// Epoch returns the identity generation counter, bumped by SignOut and by
// a successful SignIn; consumers capture it before a long-running pass and
// discard results if it moved.
func (a *Authority) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epoch
}
