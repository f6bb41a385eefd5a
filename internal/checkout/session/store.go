package session

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

// ErrNotFound signals that no draft is stored for the token, either because
// it was never written, expired, or was already consumed.
var ErrNotFound = errors.New("session draft not found")

// KV is the slice of the redis client the store needs.
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	OrderDataKey(token string) string
	CartSnapshotKey(token string) string
}

// Store persists a frozen order draft across the external payment redirect.
// The draft is written once before the redirect and consumed at most once on
// return; consumption removes the draft atomically so a second reader finds
// nothing.
type Store struct {
	kv  KV
	ttl time.Duration
}

// NewStore wires the store with its backing key-value client and entry TTL.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Write stores the serialized draft and cart snapshot under the token. The
// two entries share a TTL and are removed together on success. A failed
// second write rolls back the first so the pair is never half-present.
func (s *Store) Write(ctx context.Context, token string, orderData, cartSnapshot []byte) error {
	orderKey := s.kv.OrderDataKey(token)
	if err := s.kv.Set(ctx, orderKey, orderData, s.ttl); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.kv.CartSnapshotKey(token), cartSnapshot, s.ttl); err != nil {
		return multierr.Append(err, s.kv.Del(ctx, orderKey))
	}
	return nil
}

// ReadOnce returns the serialized draft for the token and removes it in the
// same operation, so only one caller can ever observe it.
func (s *Store) ReadOnce(ctx context.Context, token string) ([]byte, error) {
	raw, err := s.kv.GetDel(ctx, s.kv.OrderDataKey(token))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if raw == "" {
		return nil, ErrNotFound
	}
	return []byte(raw), nil
}

// Clear removes both entries for the token. Safe to call after ReadOnce;
// deleting an absent key is a no-op.
func (s *Store) Clear(ctx context.Context, token string) error {
	return multierr.Combine(
		s.kv.Del(ctx, s.kv.OrderDataKey(token)),
		s.kv.Del(ctx, s.kv.CartSnapshotKey(token)),
	)
}
