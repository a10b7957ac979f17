package providerfake

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-guard/identity"
	"golang.org/x/crypto/bcrypt"
)

const maxFailedAttempts = 5

var _ identity.Provider = (*FakeProvider)(nil)

type account struct {
	id           string
	email        string
	passwordHash string
	verified     bool
	disabled     bool
	failedLogins int
}

// FakeProvider is an in-memory identity.Provider used by tests and the demo
// binary. It stores bcrypt credential hashes, pushes state changes to
// subscribers the way a hosted provider would, and mints HS256-signed ID
// tokens that callers treat as opaque.
type FakeProvider struct {
	lock              sync.Mutex
	accounts          map[string]*account // email -> account
	subscribers       map[int]func(*identity.Identity)
	nextSubscriber    int
	current           *identity.Identity
	mode              identity.PersistenceMode
	signingKey        []byte
	signOutErr        error
	verificationsSent map[string]int // email -> count
	nowTime           func() time.Time
}

// New creates an empty FakeProvider with a random token-signing key.
func New() *FakeProvider {
	return &FakeProvider{
		accounts:          make(map[string]*account),
		subscribers:       make(map[int]func(*identity.Identity)),
		signingKey:        []byte(uuid.New().String()),
		verificationsSent: make(map[string]int),
		nowTime:           time.Now,
	}
}

// AddAccount registers an account and returns the identity the provider will
// deliver for it after a successful sign-in.
func (p *FakeProvider) AddAccount(email, password string, verified bool) *identity.Identity {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	acc := &account{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: string(hash),
		verified:     verified,
	}
	p.accounts[email] = acc
	return &identity.Identity{ID: acc.id, Email: acc.email, Verified: acc.verified}
}

// SetDisabled flips the disabled flag on an account.
func (p *FakeProvider) SetDisabled(email string, disabled bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if acc, ok := p.accounts[email]; ok {
		acc.disabled = disabled
	}
}

// SetVerified flips the verified flag on an account.
func (p *FakeProvider) SetVerified(email string, verified bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if acc, ok := p.accounts[email]; ok {
		acc.verified = verified
	}
}

// FailSignOut makes subsequent SignOut calls return err (nil restores normal
// behaviour).
func (p *FakeProvider) FailSignOut(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.signOutErr = err
}

// VerificationsSent reports how many verification artifacts were sent for an
// address.
func (p *FakeProvider) VerificationsSent(email string) int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.verificationsSent[email]
}

// PersistenceMode reports the mode selected by the most recent sign-in.
func (p *FakeProvider) PersistenceMode() identity.PersistenceMode {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.mode
}

// SignInDirect signs an account in without credentials and notifies
// subscribers, simulating a restored provider session.
func (p *FakeProvider) SignInDirect(email string) *identity.Identity {
	p.lock.Lock()
	acc, ok := p.accounts[email]
	if !ok {
		p.lock.Unlock()
		return nil
	}
	id := p.identityForLocked(acc)
	p.current = id
	subs := p.snapshotSubscribersLocked()
	p.lock.Unlock()

	for _, fn := range subs {
		fn(cloneIdentity(id))
	}
	return id
}

func (p *FakeProvider) Subscribe(fn func(*identity.Identity)) (func(), error) {
	p.lock.Lock()
	n := p.nextSubscriber
	p.nextSubscriber++
	p.subscribers[n] = fn
	current := cloneIdentity(p.current)
	p.lock.Unlock()

	// Providers deliver the current state immediately on subscription.
	fn(current)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.lock.Lock()
			delete(p.subscribers, n)
			p.lock.Unlock()
		})
	}
	return cancel, nil
}

func (p *FakeProvider) SignIn(ctx context.Context, email, password string, mode identity.PersistenceMode) (*identity.Identity, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, identity.NewCodedError(identity.CodeInvalidEmail, "malformed email address")
	}

	p.lock.Lock()
	acc, ok := p.accounts[email]
	if !ok {
		p.lock.Unlock()
		return nil, identity.NewCodedError(identity.CodeUserNotFound, "no account for "+email)
	}
	if acc.disabled {
		p.lock.Unlock()
		return nil, identity.NewCodedError(identity.CodeUserDisabled, "account disabled")
	}
	if acc.failedLogins >= maxFailedAttempts {
		p.lock.Unlock()
		return nil, identity.NewCodedError(identity.CodeTooManyRequests, "account temporarily locked")
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)) != nil {
		acc.failedLogins++
		p.lock.Unlock()
		return nil, identity.NewCodedError(identity.CodeWrongPassword, "wrong password")
	}
	acc.failedLogins = 0

	id := p.identityForLocked(acc)
	p.current = id
	p.mode = mode
	subs := p.snapshotSubscribersLocked()
	p.lock.Unlock()

	for _, fn := range subs {
		fn(cloneIdentity(id))
	}
	return cloneIdentity(id), nil
}

func (p *FakeProvider) SignOut(ctx context.Context) error {
	p.lock.Lock()
	if p.signOutErr != nil {
		err := p.signOutErr
		p.lock.Unlock()
		return err
	}
	p.current = nil
	subs := p.snapshotSubscribersLocked()
	p.lock.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
	return nil
}

func (p *FakeProvider) SendVerification(ctx context.Context, id *identity.Identity) error {
	if id == nil {
		return identity.NewCodedError(identity.CodeUserNotFound, "no identity")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.verificationsSent[id.Email]++
	return nil
}

// identityForLocked builds the delivered identity, minting a fresh signed
// token. Callers must hold p.lock.
func (p *FakeProvider) identityForLocked(acc *account) *identity.Identity {
	now := p.nowTime()
	claims := jwt.MapClaims{
		"sub":            acc.id,
		"email":          acc.email,
		"email_verified": acc.verified,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		panic(err)
	}
	return &identity.Identity{
		ID:       acc.id,
		Email:    acc.email,
		Verified: acc.verified,
		Token:    token,
	}
}

func (p *FakeProvider) snapshotSubscribersLocked() []func(*identity.Identity) {
	subs := make([]func(*identity.Identity), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func cloneIdentity(id *identity.Identity) *identity.Identity {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}
