package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khalsa-property/backend/models"
)

const redisKeyPrefix = "otp:"

// RedisRegistry stores pending verifications in redis with a real TTL, so
// expiry is enforced by the store and records survive process restarts.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Issue(ctx context.Context, key string, form models.LeadForm) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	rec := Pending{Code: code, Form: form, IssuedAt: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	// SET overwrites any pending record for the same email and resets the TTL.
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing pending verification: %v", err)
	}
	return code, nil
}

func (r *RedisRegistry) Peek(ctx context.Context, key string) (*Pending, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading pending verification: %v", err)
	}

	var rec Pending
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, false, fmt.Errorf("decoding pending verification: %v", err)
	}
	return &rec, true, nil
}

func (r *RedisRegistry) Consume(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKeyPrefix+key).Err()
}
