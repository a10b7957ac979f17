package identity

import "context"

// PersistenceMode controls how long the provider keeps a signed-in identity
// around. Durable survives restarts of the host application, Session is
// scoped to the current run.
type PersistenceMode string

const (
	PersistenceDurable PersistenceMode = "durable"
	PersistenceSession PersistenceMode = "session"
)

// Identity is the opaque handle to a signed-in principal as delivered by the
// identity provider. Token is whatever artifact the provider issued for the
// session; the session controller never inspects it.
type Identity struct {
	ID       string // Provider-assigned unique identifier
	Email    string // Address the principal signed in with
	Verified bool   // Has the principal proven ownership of the address
	Token    string // Opaque session artifact (e.g. an ID token)
}

// Provider is the boundary to the external identity provider. Implementations
// own sign-in transport and token handling; the session controller only
// consumes state changes and coded errors.
type Provider interface {
	// Subscribe registers a long-lived state-change listener. The listener is
	// invoked immediately with the current identity (nil when signed out) and
	// again on every subsequent change. The returned cancel function detaches
	// the listener; calling it more than once is a no-op.
	Subscribe(fn func(*Identity)) (cancel func(), err error)

	// SignIn authenticates with email/password credentials under the given
	// persistence mode. Expected failures return a *CodedError.
	SignIn(ctx context.Context, email, password string, mode PersistenceMode) (*Identity, error)

	// SignOut terminates the current identity, notifying subscribers.
	SignOut(ctx context.Context) error

	// SendVerification asks the provider to re-send its verification artifact
	// for the given identity.
	SendVerification(ctx context.Context, id *Identity) error
}
