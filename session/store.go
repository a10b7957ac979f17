package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-session-guard/identity"
	interrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/profiles"
)

// Store is the single writer of the session state. It owns the provider
// subscription and exposes every mutating action; ActivityMonitor and the
// navigation guard only read snapshots and call actions.
type Store struct {
	provider        identity.Provider
	profiles        profiles.Repo
	log             zerolog.Logger
	nowTime         func() time.Time // nowTime function (injectable for testing)
	sessionDuration time.Duration
	inactivityLimit time.Duration

	lock          sync.Mutex
	state         State
	initialized   bool
	closed        bool
	unsubscribe   func()
	firstIdentity *identity.Identity

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for recoverable conditions.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// WithSessionDuration overrides the absolute expiry window.
func WithSessionDuration(d time.Duration) StoreOption {
	return func(s *Store) {
		s.sessionDuration = d
	}
}

// WithInactivityLimit overrides the inactivity timeout window.
func WithInactivityLimit(d time.Duration) StoreOption {
	return func(s *Store) {
		s.inactivityLimit = d
	}
}

// NewStore initializes a new Store with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for testing).
func NewStore(provider identity.Provider, profileRepo profiles.Repo, options ...StoreOption) (*Store, error) {
	if provider == nil {
		return nil, errors.New("[NewStore] identity provider is required")
	}
	if profileRepo == nil {
		return nil, errors.New("[NewStore] profile repo is required")
	}

	store := &Store{
		provider:        provider,
		profiles:        profileRepo,
		log:             zerolog.Nop(),
		nowTime:         time.Now,
		sessionDuration: SessionDuration,
		inactivityLimit: InactivityLimit,
		ready:           make(chan struct{}),
		done:            make(chan struct{}),
	}

	for _, opt := range options {
		opt(store)
	}

	store.state = State{
		Loading:      true,
		LastActivity: store.nowTime(),
	}
	return store, nil
}

// Initialize subscribes to the identity provider's state changes and blocks
// until the first notification arrives, returning the raw identity it carried
// (nil when signed out). The subscription stays live afterwards; Initialize
// may only be called once.
func (s *Store) Initialize(ctx context.Context) (*identity.Identity, error) {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil, interrors.ErrStoreClosed
	}
	if s.initialized {
		s.lock.Unlock()
		return nil, interrors.ErrAlreadyInitialized
	}
	s.initialized = true
	s.lock.Unlock()

	cancel, err := s.provider.Subscribe(s.handleAuthState)
	if err != nil {
		return nil, interrors.Wrapf(err, "[Initialize] provider subscribe")
	}

	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		cancel()
		return nil, interrors.ErrStoreClosed
	}
	s.unsubscribe = cancel
	s.lock.Unlock()

	select {
	case <-s.ready:
	case <-s.done:
		return nil, interrors.ErrStoreClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.lock.Lock()
	first := cloneIdentity(s.firstIdentity)
	s.lock.Unlock()
	return first, nil
}

// Ready is closed exactly once, when the first provider notification has been
// applied and Loading has transitioned to false. The navigation guard awaits
// it instead of polling.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed when the store is torn down, releasing any waiters.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Close detaches the provider subscription exactly once and releases waiters.
func (s *Store) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.lock.Unlock()

	if unsub != nil {
		unsub()
	}
	close(s.done)
}

// handleAuthState applies one provider notification. Three branches: verified
// identity authenticates and loads the profile, an unverified identity is
// held without authenticating (so verification can be re-sent), absence
// resets. Loading ends exactly once, on the first notification.
func (s *Store) handleAuthState(id *identity.Identity) {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	now := s.nowTime()
	switch {
	case id != nil && id.Verified:
		s.state.Identity = id
		s.state.Authenticated = true
		s.state.LastActivity = now
		s.state.SessionExpiry = now.Add(s.sessionDuration)

		// The profile fetch happens outside the lock; fetchProfile re-checks
		// that this identity is still current before storing the role.
		uid := id.ID
		s.lock.Unlock()
		s.fetchProfile(context.Background(), uid)
		s.lock.Lock()
	case id != nil:
		// Signed in but unverified: hold the identity so verification can be
		// re-sent, but never authenticate it.
		s.state.Identity = id
		s.state.Authenticated = false
		s.state.Role = ""
		s.state.Profile = nil
	default:
		s.resetLocked()
	}
	s.state.Loading = false
	s.lock.Unlock()

	s.readyOnce.Do(func() {
		s.lock.Lock()
		s.firstIdentity = id
		s.lock.Unlock()
		close(s.ready)
	})
}

// fetchProfile loads the profile document and derives the role. Failure is
// recoverable and silent: the user stays signed in with no role, which makes
// role-gated checks deny without logging anyone out.
func (s *Store) fetchProfile(ctx context.Context, uid string) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", uid).Msg("profile lookup failed")
		return
	}

	s.lock.Lock()
	if s.state.Identity != nil && s.state.Identity.ID == uid {
		s.state.Profile = profile
		s.state.Role = profile.Role
	}
	s.lock.Unlock()
}

// Login authenticates with credentials. Expected failures come back as
// LoginResult with a short mapped message; nothing is raised.
func (s *Store) Login(ctx context.Context, email, password string, rememberMe bool) LoginResult {
	s.lock.Lock()
	s.state.Err = ""
	s.lock.Unlock()

	mode := identity.PersistenceSession
	if rememberMe {
		mode = identity.PersistenceDurable
	}

	id, err := s.provider.SignIn(ctx, email, password, mode)
	if err != nil {
		return s.failLogin(identity.ErrorCode(err))
	}
	if !id.Verified {
		return s.failLogin(identity.CodeEmailNotVerified)
	}

	now := s.nowTime()
	if err := s.profiles.Update(ctx, id.ID, map[string]any{"lastLogin": now.Format(time.RFC3339)}); err != nil {
		// Best effort: a missing profile document must never fail the login.
		s.log.Debug().Err(err).Str("user_id", id.ID).Msg("last login update skipped")
	}

	s.lock.Lock()
	s.state.Identity = id
	s.state.Authenticated = true
	s.state.LastActivity = now
	s.state.SessionExpiry = now.Add(s.sessionDuration)
	s.lock.Unlock()

	return LoginResult{Success: true, User: cloneIdentity(id)}
}

func (s *Store) failLogin(code string) LoginResult {
	msg := loginMessage(code)
	s.lock.Lock()
	s.state.Err = msg
	s.lock.Unlock()
	return LoginResult{Error: msg}
}

// Logout signs out at the provider and performs the full reset regardless of
// the sign-out outcome.
func (s *Store) Logout(ctx context.Context) Result {
	err := s.provider.SignOut(ctx)

	s.lock.Lock()
	s.resetLocked()
	s.lock.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("provider sign out failed")
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// ResendVerification asks the provider to re-send its verification artifact
// for the currently held identity.
func (s *Store) ResendVerification(ctx context.Context) Result {
	s.lock.Lock()
	id := cloneIdentity(s.state.Identity)
	s.lock.Unlock()

	if id == nil {
		return Result{Error: noCurrentUserMessage}
	}
	if err := s.provider.SendVerification(ctx, id); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// RecordActivity stamps the last-activity time. It has no effect on the
// absolute expiry.
func (s *Store) RecordActivity() {
	s.lock.Lock()
	s.state.LastActivity = s.nowTime()
	s.lock.Unlock()
}

// CheckTimeout is the pull-based inactivity check: when the elapsed time
// since the last recorded activity exceeds the limit it triggers a logout and
// reports true. The store runs no clock of its own; ActivityMonitor calls
// this periodically.
func (s *Store) CheckTimeout(ctx context.Context) bool {
	s.lock.Lock()
	last := s.state.LastActivity
	limit := s.inactivityLimit
	s.lock.Unlock()

	if s.nowTime().Sub(last) > limit {
		s.Logout(ctx)
		return true
	}
	return false
}

// State returns a point-in-time copy of the session state.
func (s *Store) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()

	snapshot := s.state
	snapshot.Identity = cloneIdentity(s.state.Identity)
	snapshot.Profile = cloneProfile(s.state.Profile)
	return snapshot
}

// IsAuthenticated reports whether a verified identity is currently held.
func (s *Store) IsAuthenticated() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.Authenticated
}

// IsLoading reports whether the first provider notification is still pending.
func (s *Store) IsLoading() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.Loading
}

// IsSessionValid is the absolute-expiry check, orthogonal to the inactivity
// check: a zero expiry never expires.
func (s *Store) IsSessionValid() bool {
	s.lock.Lock()
	expiry := s.state.SessionExpiry
	s.lock.Unlock()

	if expiry.IsZero() {
		return true
	}
	return s.nowTime().Before(expiry)
}

// HasRole reports whether the current role matches exactly.
func (s *Store) HasRole(role profiles.Role) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.Role == role
}

// CanAccess reports whether the current role is within the allowed set. An
// empty set allows any role.
func (s *Store) CanAccess(allowed ...profiles.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	s.lock.Lock()
	role := s.state.Role
	s.lock.Unlock()

	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// resetLocked clears every field back to the signed-out branch. Loading is
// left alone: it only ever transitions once, in handleAuthState.
func (s *Store) resetLocked() {
	s.state.Identity = nil
	s.state.Role = ""
	s.state.Profile = nil
	s.state.Authenticated = false
	s.state.Err = ""
	s.state.SessionExpiry = time.Time{}
	s.state.LastActivity = time.Time{}
}

func cloneIdentity(id *identity.Identity) *identity.Identity {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}

func cloneProfile(p *profiles.Profile) *profiles.Profile {
	if p == nil {
		return nil
	}
	clone := &profiles.Profile{Role: p.Role, Fields: make(map[string]any, len(p.Fields))}
	for k, v := range p.Fields {
		clone.Fields[k] = v
	}
	return clone
}
