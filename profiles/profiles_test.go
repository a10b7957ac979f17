package profiles_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/profiles"
)

func TestRoleValid(t *testing.T) {
	require.True(t, profiles.RoleAdmin.Valid())
	require.True(t, profiles.RoleManager.Valid())
	require.True(t, profiles.RoleUser.Valid())
	require.False(t, profiles.Role("").Valid())
	require.False(t, profiles.Role("superuser").Valid())
}

func TestRolePermissions(t *testing.T) {
	require.True(t, profiles.RoleAdmin.Can("manage_users"))
	require.True(t, profiles.RoleManager.Can("create"))
	require.False(t, profiles.RoleManager.Can("manage_users"))
	require.True(t, profiles.RoleUser.Can("read"))
	require.False(t, profiles.RoleUser.Can("delete"))

	// An absent role grants nothing.
	require.False(t, profiles.Role("").Can("read"))
}
