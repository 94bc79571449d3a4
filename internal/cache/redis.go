package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN during pattern invalidation
const scanBatch = 100

// releaseScript deletes a key only when it still holds the expected
// value. GET and DEL must be one atomic step: between a plain GET and
// DEL the key could expire and be re-acquired by another caller, and
// the DEL would then release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisStore implements Store on a Redis connection
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using a redis:// URL and verifies the
// connection before returning.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Get returns the value for key and whether it exists
func (s *RedisStore) Get(key string) (string, bool, error) {
	value, err := s.client.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key with the given TTL
func (s *RedisStore) Set(key, value string, ttl time.Duration) error {
	return s.client.Set(context.Background(), key, value, ttl).Err()
}

// Delete removes the given keys
func (s *RedisStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Unlink(context.Background(), keys...).Err()
}

// DeletePattern removes every key matching a glob pattern. The scan
// runs to completion even if a batch fails, so one bad batch does not
// leave the later keys stale; the first error is still reported.
func (s *RedisStore) DeletePattern(pattern string) error {
	ctx := context.Background()
	var firstErr error

	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := s.client.Unlink(ctx, batch...).Err(); err != nil && firstErr == nil {
				firstErr = err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.client.Unlink(ctx, batch...).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := iter.Err(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// SetNX stores value under key only if the key does not exist
func (s *RedisStore) SetNX(key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(context.Background(), key, value, ttl).Result()
}

// CompareAndDelete removes key only if its current value equals value
func (s *RedisStore) CompareAndDelete(key, value string) (bool, error) {
	deleted, err := releaseScript.Run(context.Background(), s.client, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

// Close drains the connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
