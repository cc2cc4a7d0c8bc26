package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// idempotencyKeyPrefix namespaces posting idempotency keys away from the
// cached reports sharing the same Redis database.
const idempotencyKeyPrefix = "tallybooks:idempotency:"

// processingMarker parks a key while the first posting request is still in
// flight; concurrent duplicates see it instead of a final response.
const processingMarker = "processing"

// IdempotencyStore guards mutating ledger endpoints against duplicate
// submissions. Implements usecase.IdempotencyStore on Redis.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet reports a previously seen key together with whatever was
// recorded under it. A fresh key is claimed atomically: with a response it is
// stored outright, without one the processing marker holds the slot until
// Update records the outcome.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := idempotencyKeyPrefix + key

	recorded, err := s.client.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		return true, recorded, nil
	case !errors.Is(err, redis.Nil):
		return false, nil, err
	}

	if response != nil {
		return false, nil, s.client.Set(ctx, fullKey, response, ttl).Err()
	}

	claimed, err := s.client.SetNX(ctx, fullKey, processingMarker, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if claimed {
		return false, nil, nil
	}

	// Lost the race between Get and SetNX; surface what the winner wrote.
	recorded, err = s.client.Get(ctx, fullKey).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	return true, recorded, nil
}

// Update replaces the processing marker with the final response so replays
// of the key return it.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyKeyPrefix+key, response, ttl).Err()
}
