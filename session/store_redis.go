package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as redis keys that expire on their own, so
// DeleteExpired has nothing to do.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

type redisRecord struct {
	Payload   Payload `json:"payload"`
	ExpiresAt int64   `json:"expires_at"`
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a Store on an existing client.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = redisKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		// already expired; storing it would only let it linger
		return s.Delete(ctx, rec.Token)
	}
	b, err := json.Marshal(redisRecord{Payload: rec.Payload, ExpiresAt: rec.ExpiresAt.UnixMilli()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyPrefix+rec.Token, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (Record, bool, error) {
	b, err := s.client.Get(ctx, s.keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	var rr redisRecord
	if err := json.Unmarshal(b, &rr); err != nil {
		return Record{}, false, err
	}
	return Record{Token: token, Payload: rr.Payload, ExpiresAt: time.UnixMilli(rr.ExpiresAt)}, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.keyPrefix+token).Err()
}

func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
