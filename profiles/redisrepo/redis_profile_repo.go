package redisrepo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	interrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/profiles"
)

const roleField = "role"

var _ profiles.Repo = (*RedisProfileRepo)(nil)

// RedisProfileRepo is a profiles.Repo backed by Redis hashes, one hash per
// principal keyed as "<prefix>:profile:<id>".
type RedisProfileRepo struct {
	client    *redis.Client
	keyPrefix string
}

// New creates a RedisProfileRepo using the given client and key prefix.
func New(client *redis.Client, keyPrefix string) *RedisProfileRepo {
	return &RedisProfileRepo{client: client, keyPrefix: keyPrefix}
}

func (r *RedisProfileRepo) key(id string) string {
	return fmt.Sprintf("%s:profile:%s", r.keyPrefix, id)
}

func (r *RedisProfileRepo) Get(ctx context.Context, id string) (*profiles.Profile, error) {
	values, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, interrors.Wrapf(err, "redisrepo.Get %q", id)
	}
	if len(values) == 0 {
		return nil, interrors.ErrProfileNotFound
	}

	profile := &profiles.Profile{Fields: make(map[string]any, len(values))}
	for field, value := range values {
		if field == roleField {
			profile.Role = profiles.Role(value)
			continue
		}
		profile.Fields[field] = value
	}
	return profile, nil
}

func (r *RedisProfileRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	flat := make([]any, 0, len(fields)*2)
	for field, value := range fields {
		flat = append(flat, field, fmt.Sprint(value))
	}
	if err := r.client.HSet(ctx, r.key(id), flat...).Err(); err != nil {
		return interrors.Wrapf(err, "redisrepo.Update %q", id)
	}
	return nil
}

// Put writes a full profile document, role included. Used for seeding.
func (r *RedisProfileRepo) Put(ctx context.Context, id string, profile *profiles.Profile) error {
	fields := make(map[string]any, len(profile.Fields)+1)
	for k, v := range profile.Fields {
		fields[k] = v
	}
	fields[roleField] = string(profile.Role)
	return r.Update(ctx, id, fields)
}
