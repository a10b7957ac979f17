package guard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/guard"
	"github.com/jrsteele09/go-session-guard/identity/providerfake"
	"github.com/jrsteele09/go-session-guard/profiles"
	"github.com/jrsteele09/go-session-guard/profiles/repofake"
	"github.com/jrsteele09/go-session-guard/session"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "password123"
)

type testClock struct {
	lock sync.Mutex
	now  time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

type testFixture struct {
	provider *providerfake.FakeProvider
	clock    *testClock
	store    *session.Store
	guard    *guard.Guard
}

func setupTestFixture(t *testing.T, role profiles.Role) *testFixture {
	t.Helper()

	provider := providerfake.New()
	profileRepo := repofake.NewFakeProfileRepo()
	clock := newTestClock()

	account := provider.AddAccount(testEmail, testPassword, true)
	profileRepo.Put(account.ID, &profiles.Profile{Role: role})

	store, err := session.NewStore(provider, profileRepo, session.WithNowTime(clock.Now))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	navGuard, err := guard.NewGuard(store)
	require.NoError(t, err)

	return &testFixture{provider: provider, clock: clock, store: store, guard: navGuard}
}

func dashboardRoute() guard.Route {
	return guard.Route{Name: "Dashboard", Path: "/admin/dashboard", RequiresAuth: true}
}

func TestCheckDefersUntilReady(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	f.provider.SignInDirect(testEmail)

	type checkResult struct {
		decision guard.Decision
		err      error
	}
	decisions := make(chan checkResult, 1)
	go func() {
		decision, err := f.guard.Check(context.Background(), dashboardRoute())
		decisions <- checkResult{decision: decision, err: err}
	}()

	// No decision may be rendered while the store is still loading.
	select {
	case <-decisions:
		t.Fatal("guard decided before initialization finished")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)

	// The parked navigation resolves against the now-final state.
	select {
	case result := <-decisions:
		require.NoError(t, result.err)
		require.True(t, result.decision.Allowed)
	case <-time.After(time.Second):
		t.Fatal("parked navigation never resolved")
	}
}

func TestCheckCancelledWhileLoading(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.guard.Check(ctx, dashboardRoute())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRequiresAuthRedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)

	decision, err := f.guard.Check(context.Background(), dashboardRoute())
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, "Login", decision.Redirect.Name)
	require.Equal(t, "/admin/dashboard", decision.Redirect.Query[guard.QueryRedirect])
	require.Equal(t, guard.SessionExpired, decision.Redirect.Query[guard.QuerySession])
}

func TestRoleRestrictionRedirectsToLanding(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleUser)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, f.store.Login(context.Background(), testEmail, testPassword, false).Success)

	route := guard.Route{
		Name:         "UserManagement",
		Path:         "/admin/user-management",
		RequiresAuth: true,
		AllowedRoles: []profiles.Role{profiles.RoleAdmin},
	}
	decision, err := f.guard.Check(context.Background(), route)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, "Dashboard", decision.Redirect.Name)
	require.Empty(t, decision.Redirect.Query)

	// The session itself is untouched: deny-and-redirect, not logout.
	require.True(t, f.store.IsAuthenticated())
}

func TestAllowedRoleNavigates(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleManager)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, f.store.Login(context.Background(), testEmail, testPassword, false).Success)

	route := guard.Route{
		Name:         "Approve",
		Path:         "/admin/approve",
		RequiresAuth: true,
		AllowedRoles: []profiles.Role{profiles.RoleAdmin, profiles.RoleManager},
	}
	decision, err := f.guard.Check(context.Background(), route)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestRequiresGuestRedirectsAuthenticated(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, f.store.Login(context.Background(), testEmail, testPassword, false).Success)

	route := guard.Route{Name: "Login", Path: "/", RequiresGuest: true}
	decision, err := f.guard.Check(context.Background(), route)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, "Dashboard", decision.Redirect.Name)
}

func TestGuestAllowedWhenSignedOut(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)

	route := guard.Route{Name: "Login", Path: "/", RequiresGuest: true}
	decision, err := f.guard.Check(context.Background(), route)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestExpiredSessionForcesLogout(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, f.store.Login(context.Background(), testEmail, testPassword, false).Success)

	f.clock.Advance(session.SessionDuration + time.Minute)

	decision, err := f.guard.Check(context.Background(), dashboardRoute())
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, "Login", decision.Redirect.Name)
	require.Equal(t, guard.SessionExpired, decision.Redirect.Query[guard.QuerySession])
	require.Equal(t, guard.ReasonTimeout, decision.Redirect.Query[guard.QueryReason])

	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.State().Identity)
}

func TestCustomRouteNames(t *testing.T) {
	f := setupTestFixture(t, profiles.RoleAdmin)
	_, err := f.store.Initialize(context.Background())
	require.NoError(t, err)

	navGuard, err := guard.NewGuard(f.store,
		guard.WithLoginRoute("SignIn"),
		guard.WithLandingRoute("Home"),
	)
	require.NoError(t, err)

	decision, err := navGuard.Check(context.Background(), dashboardRoute())
	require.NoError(t, err)
	require.Equal(t, "SignIn", decision.Redirect.Name)

	redirect := navGuard.InactivityRedirect()
	require.Equal(t, "SignIn", redirect.Name)
	require.Equal(t, guard.ReasonInactivity, redirect.Query[guard.QueryReason])
}

func TestTableLookup(t *testing.T) {
	table := guard.Table{
		{Name: "Login", Path: "/", RequiresGuest: true},
		{Name: "Dashboard", Path: "/admin/dashboard", RequiresAuth: true},
	}

	route, ok := table.Lookup("Dashboard")
	require.True(t, ok)
	require.Equal(t, "/admin/dashboard", route.Path)

	_, ok = table.Lookup("Missing")
	require.False(t, ok)
}
