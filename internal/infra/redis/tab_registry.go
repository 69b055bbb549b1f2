package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classpoll-client/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TabRegistry keeps tab identities in Redis so a client profile resumes
// the same session identity across process restarts, the way a browser
// tab holds its tabID across reloads. Each identity carries a TTL; an
// expired entry simply mints a fresh tab.
type TabRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTabRegistry(client *redis.Client, ttl time.Duration) *TabRegistry {
	return &TabRegistry{client: client, ttl: ttl}
}

func (r *TabRegistry) GetOrCreate(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", domain.ErrMissingTabID
	}

	key := r.key(name)
	id, err := r.client.Get(ctx, key).Result()
	if err == nil {
		// Refresh liveness on reuse.
		_ = r.client.Expire(ctx, key, r.ttl).Err()
		return id, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("load tab identity: %w", err)
	}

	id = uuid.NewString()
	// SetNX so two processes racing on the same profile agree on one tab.
	ok, err := r.client.SetNX(ctx, key, id, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store tab identity: %w", err)
	}
	if !ok {
		return r.client.Get(ctx, key).Result()
	}
	return id, nil
}

func (r *TabRegistry) Get(ctx context.Context, name string) (string, error) {
	id, err := r.client.Get(ctx, r.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrTabNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load tab identity: %w", err)
	}
	return id, nil
}

func (r *TabRegistry) Forget(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.key(name)).Err()
}

func (r *TabRegistry) key(name string) string {
	return "classpoll:tab:" + name
}
