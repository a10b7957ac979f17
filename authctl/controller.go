// Package authctl composes the session store, navigation guard, and activity
// monitor behind one convenience surface, the way an application shell
// consumes them.
package authctl

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-session-guard/activity"
	"github.com/jrsteele09/go-session-guard/guard"
	"github.com/jrsteele09/go-session-guard/identity"
	"github.com/jrsteele09/go-session-guard/profiles"
	"github.com/jrsteele09/go-session-guard/session"
)

// Controller is the session-aware facade: read-only projections of the
// session state plus login/logout orchestration of the activity monitor.
type Controller struct {
	store   *session.Store
	guard   *guard.Guard
	monitor *activity.Monitor
}

// New initializes a Controller with required dependencies.
func New(store *session.Store, g *guard.Guard, monitor *activity.Monitor) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[authctl.New] session store is required")
	}
	if g == nil {
		return nil, errors.New("[authctl.New] navigation guard is required")
	}
	if monitor == nil {
		return nil, errors.New("[authctl.New] activity monitor is required")
	}
	return &Controller{store: store, guard: g, monitor: monitor}, nil
}

// User returns the currently held identity, verified or not.
func (c *Controller) User() *identity.Identity { return c.store.State().Identity }

// Role returns the current role, empty until the profile fetch completes.
func (c *Controller) Role() profiles.Role { return c.store.State().Role }

// Profile returns the current profile document.
func (c *Controller) Profile() *profiles.Profile { return c.store.State().Profile }

// IsAuthenticated reports whether a verified identity is held.
func (c *Controller) IsAuthenticated() bool { return c.store.IsAuthenticated() }

// IsLoading reports whether initialization is still pending.
func (c *Controller) IsLoading() bool { return c.store.IsLoading() }

// AuthError returns the last human-readable authentication error.
func (c *Controller) AuthError() string { return c.store.State().Err }

// IsAdmin reports whether the current role is admin.
func (c *Controller) IsAdmin() bool { return c.store.HasRole(profiles.RoleAdmin) }

// IsManager reports whether the current role is manager.
func (c *Controller) IsManager() bool { return c.store.HasRole(profiles.RoleManager) }

// IsUser reports whether the current role is user.
func (c *Controller) IsUser() bool { return c.store.HasRole(profiles.RoleUser) }

// Login authenticates and, on success, starts activity monitoring.
func (c *Controller) Login(ctx context.Context, email, password string, rememberMe bool) session.LoginResult {
	result := c.store.Login(ctx, email, password, rememberMe)
	if result.Success {
		c.monitor.Start()
	}
	return result
}

// Logout signs out, stops activity monitoring, and returns where to send the
// user next.
func (c *Controller) Logout(ctx context.Context) (session.Result, guard.Redirect) {
	result := c.store.Logout(ctx)
	c.monitor.Stop()
	return result, guard.Redirect{Name: c.guard.LoginRoute()}
}

// ResendVerification asks the provider to re-send its verification artifact.
func (c *Controller) ResendVerification(ctx context.Context) session.Result {
	return c.store.ResendVerification(ctx)
}

// StartMonitoring begins activity monitoring for an already-authenticated
// session, e.g. one restored by the provider at startup.
func (c *Controller) StartMonitoring() {
	if c.store.IsAuthenticated() {
		c.monitor.Start()
	}
}

// StopMonitoring releases the monitor's listeners and timers.
func (c *Controller) StopMonitoring() {
	c.monitor.Stop()
}

// RequireAuth is the imperative counterpart to the navigation guard, usable
// for component-level gating. It applies the same role-set semantics as the
// guard's role rule.
func (c *Controller) RequireAuth(currentPath string, allowedRoles ...profiles.Role) guard.Decision {
	if !c.store.IsAuthenticated() {
		return guard.Decision{Redirect: &guard.Redirect{
			Name:  c.guard.LoginRoute(),
			Query: map[string]string{guard.QueryRedirect: currentPath},
		}}
	}
	if len(allowedRoles) > 0 && !c.store.CanAccess(allowedRoles...) {
		return guard.Decision{Redirect: &guard.Redirect{Name: c.guard.LandingRoute()}}
	}
	return guard.Decision{Allowed: true}
}

// CheckPermission reports whether the current role grants a permission. A
// role is only trusted while the session is authenticated.
func (c *Controller) CheckPermission(permission string) bool {
	state := c.store.State()
	if !state.Authenticated {
		return false
	}
	return state.Role.Can(permission)
}
