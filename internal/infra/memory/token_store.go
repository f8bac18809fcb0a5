package memory

import (
	"context"
	"sync"

	"quizboard-service/internal/domain"
)

// TokenStore is an in-memory implementation of auth.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.Identity
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]domain.Identity)}
}

func (s *TokenStore) Put(_ context.Context, token string, ident domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = ident
	return nil
}

func (s *TokenStore) Get(_ context.Context, token string) (domain.Identity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.tokens[token]
	return ident, ok, nil
}

func (s *TokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
