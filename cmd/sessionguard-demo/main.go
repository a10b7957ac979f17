// Command sessionguard-demo drives a scripted session through the controller:
// initialization, guarded navigation, login, role-gated routes, inactivity,
// and logout. It uses the in-memory identity provider and, when REDIS_ADDR is
// set, a Redis-backed profile store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-session-guard/activity"
	"github.com/jrsteele09/go-session-guard/activity/sourcefake"
	"github.com/jrsteele09/go-session-guard/authctl"
	"github.com/jrsteele09/go-session-guard/guard"
	"github.com/jrsteele09/go-session-guard/identity/providerfake"
	"github.com/jrsteele09/go-session-guard/internal/config"
	"github.com/jrsteele09/go-session-guard/profiles"
	"github.com/jrsteele09/go-session-guard/profiles/redisrepo"
	"github.com/jrsteele09/go-session-guard/profiles/repofake"
	"github.com/jrsteele09/go-session-guard/session"
)

const (
	demoEmail    = "admin@example.com"
	demoPassword = "Password123"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running demo: %s\n", err)
	}
	log.Printf("Demo finished\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	provider := providerfake.New()
	adminIdentity := provider.AddAccount(demoEmail, demoPassword, true)

	profileRepo, err := buildProfileRepo(ctx, c, adminIdentity.ID)
	if err != nil {
		return err
	}

	store, err := session.NewStore(provider, profileRepo,
		session.WithLogger(logger),
		session.WithSessionDuration(c.GetSessionDuration()),
		session.WithInactivityLimit(c.GetInactivityLimit()),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	navGuard, err := guard.NewGuard(store,
		guard.WithLoginRoute(c.GetLoginRoute()),
		guard.WithLandingRoute(c.GetLandingRoute()),
		guard.WithGuardLogger(logger),
	)
	if err != nil {
		return err
	}

	source := sourcefake.New()
	monitor, err := activity.NewMonitor(store, source,
		activity.WithMonitorLogger(logger),
		activity.WithCheckInterval(c.GetCheckInterval()),
		activity.WithWarningSchedule(c.GetInactivityLimit()-c.GetWarningBefore(), c.GetWarningBefore()),
		activity.WithWarningFunc(func(w activity.Warning) {
			logger.Warn().Dur("remaining", w.Remaining).Msg(w.Message)
		}),
		activity.WithTimeoutFunc(func() {
			r := navGuard.InactivityRedirect()
			logger.Info().Str("route", r.Name).Interface("query", r.Query).Msg("redirecting after inactivity")
		}),
	)
	if err != nil {
		return err
	}

	controller, err := authctl.New(store, navGuard, monitor)
	if err != nil {
		return err
	}

	// Initialize before anything consults the session state, the same way the
	// host application mounts only after the first provider callback.
	first, err := store.Initialize(ctx)
	if err != nil {
		return err
	}
	logger.Info().Bool("restored", first != nil).Msg("session initialized")

	routeTable := guard.Table{
		{Name: c.GetLoginRoute(), Path: "/", RequiresGuest: true},
		{Name: c.GetLandingRoute(), Path: "/admin/dashboard", RequiresAuth: true},
		{Name: "UserManagement", Path: "/admin/user-management", RequiresAuth: true, AllowedRoles: []profiles.Role{profiles.RoleAdmin}},
	}

	return script(ctx, logger, controller, navGuard, source, routeTable)
}

func script(ctx context.Context, logger zerolog.Logger, controller *authctl.Controller, navGuard *guard.Guard, source *sourcefake.FakeSource, routes guard.Table) error {
	checkRoute := func(name string) {
		route, ok := routes.Lookup(name)
		if !ok {
			logger.Error().Str("route", name).Msg("unknown route")
			return
		}
		decision, err := navGuard.Check(ctx, route)
		switch {
		case err != nil:
			logger.Error().Err(err).Str("route", name).Msg("guard check failed")
		case decision.Allowed:
			logger.Info().Str("route", name).Msg("navigation allowed")
		default:
			logger.Info().Str("route", name).Str("to", decision.Redirect.Name).Interface("query", decision.Redirect.Query).Msg("navigation redirected")
		}
	}

	checkRoute("Dashboard") // signed out: redirected to login

	result := controller.Login(ctx, demoEmail, demoPassword, true)
	if !result.Success {
		return fmt.Errorf("demo login failed: %s", result.Error)
	}
	logger.Info().Str("email", result.User.Email).Str("role", string(controller.Role())).Msg("logged in")

	checkRoute("Dashboard")
	checkRoute("UserManagement")
	checkRoute("Login") // guest-only: redirected to landing

	source.Emit(activity.SignalPointerDown)
	logger.Info().Bool("can_manage_users", controller.CheckPermission("manage_users")).Msg("permission check")

	time.Sleep(100 * time.Millisecond)

	logoutResult, redirect := controller.Logout(ctx)
	logger.Info().Bool("success", logoutResult.Success).Str("route", redirect.Name).Msg("logged out")
	checkRoute("Dashboard") // signed out again: redirected to login
	return nil
}

func buildProfileRepo(ctx context.Context, c config.Config, adminID string) (profiles.Repo, error) {
	adminProfile := &profiles.Profile{
		Role:   profiles.RoleAdmin,
		Fields: map[string]any{"firstName": "Demo", "lastName": "Admin"},
	}

	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		repo := redisrepo.New(client, c.GetAppName())
		if err := repo.Put(ctx, adminID, adminProfile); err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo := repofake.NewFakeProfileRepo()
	repo.Put(adminID, adminProfile)
	return repo, nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
