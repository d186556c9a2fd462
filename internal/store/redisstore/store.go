// Package redisstore caches recommendation results keyed by a hash of
// the question. Entirely optional: a nil *Store disables caching.
package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(addr, password string, db int, ttl time.Duration) *Store {
	if addr == "" {
		return nil
	}
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func recommendKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return "recommend:" + hex.EncodeToString(sum[:])
}

// GetRecommendation returns the cached JSON payload for a question, or
// redis.Nil when absent.
func (s *Store) GetRecommendation(ctx context.Context, question string) (string, error) {
	if s == nil {
		return "", redis.Nil
	}
	return s.client.Get(ctx, recommendKey(question)).Result()
}

func (s *Store) SetRecommendation(ctx context.Context, question, payload string) error {
	if s == nil {
		return nil
	}
	return s.client.Set(ctx, recommendKey(question), payload, s.ttl).Err()
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}
