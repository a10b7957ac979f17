package guard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	interrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/profiles"
	"github.com/jrsteele09/go-session-guard/session"
)

// Query keys and values carried on redirects, mirroring what the sign-in page
// consumes.
const (
	QueryRedirect = "redirect"
	QuerySession  = "session"
	QueryReason   = "reason"

	SessionExpired   = "expired"
	ReasonTimeout    = "timeout"
	ReasonInactivity = "inactivity"
)

const (
	defaultLoginRoute   = "Login"
	defaultLandingRoute = "Dashboard"
)

// Route is the access metadata a navigation target declares.
type Route struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresGuest bool
	AllowedRoles  []profiles.Role
}

// Table is an ordered route table.
type Table []Route

// Lookup finds a route by name.
func (t Table) Lookup(name string) (Route, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Redirect names the route a denied navigation is sent to, with its query
// parameters.
type Redirect struct {
	Name  string
	Query map[string]string
}

// Decision is the outcome of a guard check: either the navigation proceeds or
// it is redirected. Denials always redirect somewhere, never dead-end.
type Decision struct {
	Allowed  bool
	Redirect *Redirect
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirectTo(name string, query map[string]string) Decision {
	return Decision{Redirect: &Redirect{Name: name, Query: query}}
}

// Guard is the pre-navigation interceptor. It renders no decision while the
// store is still loading; a parked check resumes once the store becomes
// ready and then evaluates against the final state.
type Guard struct {
	store        *session.Store
	log          zerolog.Logger
	loginRoute   string
	landingRoute string
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithLoginRoute overrides the sign-in route name.
func WithLoginRoute(name string) GuardOption {
	return func(g *Guard) {
		g.loginRoute = name
	}
}

// WithLandingRoute overrides the default authenticated landing route name.
func WithLandingRoute(name string) GuardOption {
	return func(g *Guard) {
		g.landingRoute = name
	}
}

// WithGuardLogger sets the guard's logger.
func WithGuardLogger(log zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

// NewGuard initializes a Guard with required dependencies.
func NewGuard(store *session.Store, options ...GuardOption) (*Guard, error) {
	if store == nil {
		return nil, errors.New("[NewGuard] session store is required")
	}

	guard := &Guard{
		store:        store,
		log:          zerolog.Nop(),
		loginRoute:   defaultLoginRoute,
		landingRoute: defaultLandingRoute,
	}

	for _, opt := range options {
		opt(guard)
	}
	return guard, nil
}

// LoginRoute returns the configured sign-in route name.
func (g *Guard) LoginRoute() string {
	return g.loginRoute
}

// LandingRoute returns the configured default landing route name.
func (g *Guard) LandingRoute() string {
	return g.landingRoute
}

// InactivityRedirect is the redirect issued after an inactivity timeout.
func (g *Guard) InactivityRedirect() Redirect {
	return Redirect{
		Name: g.loginRoute,
		Query: map[string]string{
			QuerySession: SessionExpired,
			QueryReason:  ReasonInactivity,
		},
	}
}

// Check evaluates a navigation attempt against the session state. It waits
// for initialization to finish before deciding; cancelling ctx abandons the
// parked check without leaking it. Rules run in fixed order and the first
// match wins.
func (g *Guard) Check(ctx context.Context, route Route) (Decision, error) {
	select {
	case <-g.store.Ready():
	case <-g.store.Done():
		return Decision{}, interrors.ErrStoreClosed
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}

	state := g.store.State()

	// Rule 2: authentication required but absent.
	if route.RequiresAuth && !state.Authenticated {
		g.log.Debug().Str("route", route.Name).Msg("navigation denied: not authenticated")
		return redirectTo(g.loginRoute, map[string]string{
			QueryRedirect: route.Path,
			QuerySession:  SessionExpired,
		}), nil
	}

	// Rule 3: role restriction not met. Deny-and-redirect to the landing
	// page, never a dead-end.
	if len(route.AllowedRoles) > 0 && state.Authenticated && !g.store.CanAccess(route.AllowedRoles...) {
		g.log.Debug().Str("route", route.Name).Str("role", string(state.Role)).Msg("navigation denied: role not allowed")
		return redirectTo(g.landingRoute, nil), nil
	}

	// Rule 4: guest-only route with an authenticated session.
	if route.RequiresGuest && state.Authenticated {
		return redirectTo(g.landingRoute, nil), nil
	}

	// Rule 5: absolute expiry passed. Force the logout before redirecting.
	if state.Authenticated && !g.store.IsSessionValid() {
		g.log.Info().Str("route", route.Name).Msg("session expired during navigation")
		g.store.Logout(ctx)
		return redirectTo(g.loginRoute, map[string]string{
			QuerySession: SessionExpired,
			QueryReason:  ReasonTimeout,
		}), nil
	}

	return allow(), nil
}
