package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"quizboard-service/internal/domain"
)

// TokenStore is a Redis-backed implementation of auth.TokenStore, storing
// each identity as a JSON value with a sliding TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Put(ctx context.Context, token string, ident domain.Identity) error {
	data, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), data, s.ttl).Err()
}

func (s *TokenStore) Get(ctx context.Context, token string) (domain.Identity, bool, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, err
	}
	var ident domain.Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return domain.Identity{}, false, err
	}
	// sliding expiry: an active token stays bound
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return ident, true, nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *TokenStore) key(token string) string {
	return "quizboard:token:" + token
}
