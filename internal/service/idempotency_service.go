package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	RedisIdempotencyKeyPrefix = "idempotency:book:"
	idempotencyPending        = "pending"
)

// IdempotencyStore remembers which appointment a client-supplied key
// produced so a retried booking returns the first result.
type IdempotencyStore interface {
	// Reserve claims key for userID. When the key was already claimed,
	// reserved is false and existing holds the appointment it produced, or
	// uuid.Nil while the first request is still running.
	Reserve(ctx context.Context, userID uuid.UUID, key string) (existing uuid.UUID, reserved bool, err error)
	Complete(ctx context.Context, userID uuid.UUID, key string, appointmentID uuid.UUID) error
	Release(ctx context.Context, userID uuid.UUID, key string) error
}

type redisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) IdempotencyStore {
	return &redisIdempotencyStore{
		client: client,
		ttl:    ttl,
	}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("%s%s:%s", RedisIdempotencyKeyPrefix, userID, key)
}

func (s *redisIdempotencyStore) Reserve(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	redisKey := idempotencyKey(userID, key)

	ok, err := s.client.SetNX(ctx, redisKey, idempotencyPending, s.ttl).Result()
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return uuid.Nil, true, nil
	}

	value, err := s.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET, try once more.
		ok, err = s.client.SetNX(ctx, redisKey, idempotencyPending, s.ttl).Result()
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		return uuid.Nil, ok, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if value == idempotencyPending {
		return uuid.Nil, false, nil
	}

	appointmentID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency value %q: %w", value, err)
	}
	return appointmentID, false, nil
}

func (s *redisIdempotencyStore) Complete(ctx context.Context, userID uuid.UUID, key string, appointmentID uuid.UUID) error {
	if err := s.client.Set(ctx, idempotencyKey(userID, key), appointmentID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *redisIdempotencyStore) Release(ctx context.Context, userID uuid.UUID, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
