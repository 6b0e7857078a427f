package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked identifiers until they would have expired anyway.
type Denylist struct {
	client *redis.Client
	prefix string
}

// NewDenylist builds a Denylist whose keys live under prefix.
func NewDenylist(client *redis.Client, prefix string) *Denylist {
	return &Denylist{client: client, prefix: prefix}
}

// Add revokes id for ttl. Non-positive TTLs are ignored since the id is already dead.
func (d *Denylist) Add(ctx context.Context, id string, ttl time.Duration) error {
	if id == "" {
		return errors.New("platform/cache: denylist id required")
	}
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("platform/cache: denylist add: %w", err)
	}
	return nil
}

// Contains reports whether id has been revoked.
func (d *Denylist) Contains(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, d.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("platform/cache: denylist lookup: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) key(id string) string {
	return d.prefix + ":" + id
}
