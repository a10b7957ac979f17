package repofake

import (
	"context"
	"sync"

	interrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/profiles"
)

var _ profiles.Repo = (*FakeProfileRepo)(nil)

// FakeProfileRepo is an in-memory profiles.Repo for tests and local runs.
type FakeProfileRepo struct {
	lock      sync.RWMutex
	docs      map[string]*profiles.Profile
	getErr    error
	updateErr error
}

func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{
		docs: make(map[string]*profiles.Profile),
	}
}

// Put stores a profile document for a principal.
func (pr *FakeProfileRepo) Put(id string, profile *profiles.Profile) {
	pr.lock.Lock()
	defer pr.lock.Unlock()
	pr.docs[id] = profile
}

// FailGet makes subsequent Get calls return err (nil restores normal
// behaviour).
func (pr *FakeProfileRepo) FailGet(err error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()
	pr.getErr = err
}

// FailUpdate makes subsequent Update calls return err.
func (pr *FakeProfileRepo) FailUpdate(err error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()
	pr.updateErr = err
}

func (pr *FakeProfileRepo) Get(ctx context.Context, id string) (*profiles.Profile, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	if pr.getErr != nil {
		return nil, pr.getErr
	}
	doc, ok := pr.docs[id]
	if !ok {
		return nil, interrors.ErrProfileNotFound
	}
	clone := &profiles.Profile{Role: doc.Role, Fields: make(map[string]any, len(doc.Fields))}
	for k, v := range doc.Fields {
		clone.Fields[k] = v
	}
	return clone, nil
}

func (pr *FakeProfileRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if pr.updateErr != nil {
		return pr.updateErr
	}
	doc, ok := pr.docs[id]
	if !ok {
		return interrors.ErrProfileNotFound
	}
	if doc.Fields == nil {
		doc.Fields = make(map[string]any)
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	return nil
}
