package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartRepository keeps one serialized cart blob per browsing session in Redis
type CartRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewCartRepository creates a new cart repository. A zero ttl keeps blobs forever.
func NewCartRepository(client *redis.Client, keyPrefix string, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *CartRepository) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

// Load returns the persisted blob, or nil when the session has none
func (r *CartRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return data, nil
}

// Save overwrites the session blob and refreshes its expiry
func (r *CartRepository) Save(ctx context.Context, sessionID string, data []byte) error {
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
