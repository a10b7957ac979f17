package profiles

// Role represents the authorization tier assigned to a principal in the
// profile store.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// rolePermissions maps each role to the operations it is allowed to perform.
var rolePermissions = map[Role][]string{
	RoleAdmin:   {"create", "read", "update", "delete", "manage_users"},
	RoleManager: {"create", "read", "update", "delete"},
	RoleUser:    {"read"},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// Can reports whether the role grants the named permission.
func (r Role) Can(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}

// Profile is the profile-store document for a principal. Fields carries the
// document's remaining key/value pairs verbatim.
type Profile struct {
	Role   Role
	Fields map[string]any
}
