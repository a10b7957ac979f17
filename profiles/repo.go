package profiles

import "context"

// Repo defines the interface to the external profile store.
type Repo interface {
	// Get retrieves the profile document for a principal.
	// Returns errors.ErrProfileNotFound when no document exists.
	Get(ctx context.Context, id string) (*Profile, error)

	// Update merges fields into the profile document. Callers treat failures
	// as best-effort only.
	Update(ctx context.Context, id string, fields map[string]any) error
}
