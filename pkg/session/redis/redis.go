package redis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/rmax-ai/smoglight/pkg/session"
)

const readingKey = "smoglight:reading:latest"

// RedisReadingStore mirrors the latest session reading into Redis so
// external consumers (dashboards, other viewers) can observe the session
// without talking to the daemon. Only the latest value is kept.
type RedisReadingStore struct {
	client *redis.Client
}

func NewRedisReadingStore(client *redis.Client) *RedisReadingStore {
	return &RedisReadingStore{client: client}
}

func (s *RedisReadingStore) Set(r session.Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		log.Printf("Failed to marshal reading: %v", err)
		return
	}
	ctx := context.Background()
	if err := s.client.Set(ctx, readingKey, data, 0).Err(); err != nil {
		log.Printf("Failed to SET key %s: %v", readingKey, err)
	}
}

func (s *RedisReadingStore) Latest() (session.Reading, bool) {
	ctx := context.Background()
	data, err := s.client.Get(ctx, readingKey).Result()
	if err != nil {
		if err == redis.Nil {
			return session.Reading{}, false
		}
		log.Printf("Failed to GET key %s: %v", readingKey, err)
		return session.Reading{}, false
	}
	var r session.Reading
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		log.Printf("Failed to unmarshal reading from key %s: %v", readingKey, err)
		return session.Reading{}, false
	}
	return r, true
}

func (s *RedisReadingStore) Clear() {
	ctx := context.Background()
	if err := s.client.Del(ctx, readingKey).Err(); err != nil {
		log.Printf("Failed to DEL key %s: %v", readingKey, err)
	}
}
