// Package client implements the consumer-side session manager: it holds
// the session token, mirrors the server's verdict on it as an explicit
// state machine, and keeps concurrent logins, logouts, and verification
// calls from clobbering each other.
package client

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
)

// SessionState enumerates the session lifecycle.
type SessionState string

const (
	// StateUnknown is the initial state, before the stored token has
	// been checked.
	StateUnknown SessionState = "unknown"
	// StateVerifying means a stored or fresh token is being checked
	// against the backend.
	StateVerifying SessionState = "verifying"
	// StateAuthenticated means the backend accepted the current token.
	StateAuthenticated SessionState = "authenticated"
	// StateUnauthenticated means there is no usable session.
	StateUnauthenticated SessionState = "unauthenticated"
)

// ErrNoSession is returned when an operation needs a token and none is
// held.
var ErrNoSession = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode("NO_SESSION").
	WithCode(goerrors.CodeUnauthorized)

// ErrStaleResult is returned when an async result arrives after a newer
// login or logout already superseded it. The result is discarded.
var ErrStaleResult = goerrors.New("session changed while the operation ran", goerrors.CategoryConflict).
	WithTextCode("STALE_SESSION_RESULT").
	WithCode(goerrors.CodeConflict)

// ErrSessionActive is returned when Login is called while an
// authenticated session is held. Logout first; otherwise a failed
// exchange would destroy a valid session.
var ErrSessionActive = goerrors.New("a session is already active", goerrors.CategoryConflict).
	WithTextCode("SESSION_ACTIVE").
	WithCode(goerrors.CodeConflict)

// StateListener observes state changes. Listeners run synchronously
// under the manager lock; keep them cheap.
type StateListener func(from, to SessionState)

// SessionManagerOption customizes session manager construction.
type SessionManagerOption func(*SessionManager)

// WithLogger overrides the default logger.
func WithLogger(logger auth.Logger) SessionManagerOption {
	return func(sm *SessionManager) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) SessionManagerOption {
	return func(sm *SessionManager) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateListener registers a listener for state transitions.
func WithStateListener(listener StateListener) SessionManagerOption {
	return func(sm *SessionManager) {
		if listener != nil {
			sm.listeners = append(sm.listeners, listener)
		}
	}
}

// SessionManager owns the client session: token, resolved user, and
// lifecycle state. All methods are safe for concurrent use.
//
// Network calls run outside the lock. Each mutation bumps a generation
// counter and results are committed only if the generation is still
// current, so a logout during a slow verification wins.
type SessionManager struct {
	mu         sync.Mutex
	state      SessionState
	token      string
	user       *auth.PublicUser
	generation uint64
	verifiedAt *time.Time

	api       API
	store     Store
	logger    auth.Logger
	listeners []StateListener
	now       func() time.Time
}

// NewSessionManager creates a manager in the unknown state. Call
// Initialize to load and verify any stored token.
func NewSessionManager(api API, store Store, opts ...SessionManagerOption) *SessionManager {
	sm := &SessionManager{
		state:  StateUnknown,
		api:    api,
		store:  store,
		logger: discardLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// State returns the current session state.
func (sm *SessionManager) State() SessionState {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state
}

// IsAuthenticated reports whether the backend accepted the current
// token.
func (sm *SessionManager) IsAuthenticated() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state == StateAuthenticated
}

// IsLoading reports whether a login or verification is in flight.
func (sm *SessionManager) IsLoading() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state == StateVerifying
}

// Token returns the held session token, empty when there is none.
func (sm *SessionManager) Token() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.token
}

// CurrentUser returns the user the backend resolved for the current
// session, nil while not authenticated.
func (sm *SessionManager) CurrentUser() *auth.PublicUser {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.user
}

// Initialize loads the stored session and verifies it with the backend.
// Verification runs only when both the token and the cached user are
// present; anything less short-circuits to unauthenticated without a
// network round-trip. The cached user is visible through CurrentUser
// while the verification is in flight.
func (sm *SessionManager) Initialize(ctx context.Context) error {
	token, err := sm.store.ReadToken()
	if err != nil {
		sm.logger.Warn("session store read failed: %v", err)
	}
	cached, err := sm.store.ReadUser()
	if err != nil {
		sm.logger.Warn("session store read failed: %v", err)
	}

	if token == "" || cached == nil {
		// a half-written session is unusable; drop the leftover part
		if token != "" || cached != nil {
			sm.clearStore()
		}
		sm.mu.Lock()
		sm.setStateLocked(StateUnauthenticated)
		sm.mu.Unlock()
		return nil
	}

	sm.mu.Lock()
	sm.token = token
	sm.user = cached
	gen := sm.beginLocked(StateVerifying)
	sm.mu.Unlock()

	return sm.verify(ctx, gen, token)
}

// Login exchanges credentials for a session token. On success the token
// and user are persisted and the manager becomes authenticated. Calling
// Login over an authenticated session returns ErrSessionActive; an
// in-flight startup verification is superseded instead.
func (sm *SessionManager) Login(ctx context.Context, email, password string) (*auth.PublicUser, error) {
	sm.mu.Lock()
	if sm.state == StateAuthenticated {
		sm.mu.Unlock()
		return nil, ErrSessionActive
	}
	gen := sm.beginLocked(StateVerifying)
	sm.mu.Unlock()

	creds, err := sm.api.Login(ctx, email, password)
	if err != nil {
		sm.abandonSession(gen)
		return nil, err
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if gen != sm.generation {
		return nil, ErrStaleResult
	}

	sm.token = creds.Token
	sm.user = creds.User
	now := sm.now()
	sm.verifiedAt = &now
	sm.setStateLocked(StateAuthenticated)

	if err := sm.store.WriteToken(creds.Token); err != nil {
		sm.logger.Warn("session store write failed: %v", err)
	}
	if err := sm.store.WriteUser(creds.User); err != nil {
		sm.logger.Warn("session store write failed: %v", err)
	}

	return creds.User, nil
}

// Logout clears the session locally. The token simply stops being
// presented; the backend holds no session state to tear down.
func (sm *SessionManager) Logout() error {
	sm.mu.Lock()
	sm.generation++
	sm.token = ""
	sm.user = nil
	sm.verifiedAt = nil
	sm.setStateLocked(StateUnauthenticated)
	sm.mu.Unlock()

	if err := sm.store.ClearToken(); err != nil {
		return err
	}
	return sm.store.ClearUser()
}

// VerifyToken re-checks the held token with the backend. A rejected
// token drops the session to unauthenticated and clears the store.
func (sm *SessionManager) VerifyToken(ctx context.Context) error {
	sm.mu.Lock()
	token := sm.token
	if token == "" {
		sm.setStateLocked(StateUnauthenticated)
		sm.mu.Unlock()
		return ErrNoSession
	}
	gen := sm.beginLocked(StateVerifying)
	sm.mu.Unlock()

	return sm.verify(ctx, gen, token)
}

func (sm *SessionManager) verify(ctx context.Context, gen uint64, token string) error {
	user, err := sm.api.VerifyToken(ctx, token)
	if err != nil {
		sm.abandonSession(gen)
		return err
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if gen != sm.generation {
		return ErrStaleResult
	}

	sm.user = user
	now := sm.now()
	sm.verifiedAt = &now
	sm.setStateLocked(StateAuthenticated)

	if err := sm.store.WriteUser(user); err != nil {
		sm.logger.Warn("session store write failed: %v", err)
	}

	return nil
}

// abandonSession drops to unauthenticated after a failed exchange, but
// only if no newer operation took over in the meantime.
func (sm *SessionManager) abandonSession(gen uint64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if gen != sm.generation {
		return
	}

	sm.token = ""
	sm.user = nil
	sm.verifiedAt = nil
	sm.setStateLocked(StateUnauthenticated)

	sm.clearStore()
}

// clearStore drops the persisted session, logging instead of failing:
// the in-memory state is already settled by the time this runs.
func (sm *SessionManager) clearStore() {
	if err := sm.store.ClearToken(); err != nil {
		sm.logger.Warn("session store clear failed: %v", err)
	}
	if err := sm.store.ClearUser(); err != nil {
		sm.logger.Warn("session store clear failed: %v", err)
	}
}

// beginLocked starts a new operation: bumps the generation so slower
// in-flight results get discarded, and moves to the given state.
func (sm *SessionManager) beginLocked(state SessionState) uint64 {
	sm.generation++
	sm.setStateLocked(state)
	return sm.generation
}

func (sm *SessionManager) setStateLocked(next SessionState) {
	if sm.state == next {
		return
	}

	prev := sm.state
	sm.state = next

	for _, listener := range sm.listeners {
		listener(prev, next)
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
