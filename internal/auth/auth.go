package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"quizboard-service/internal/domain"
)

// TokenStore persists token-to-identity bindings (in-memory, Redis, etc).
type TokenStore interface {
	Put(ctx context.Context, token string, ident domain.Identity) error
	Get(ctx context.Context, token string) (domain.Identity, bool, error)
	Delete(ctx context.Context, token string) error
}

// Guard resolves a bearer token to an identity. It is the sole authorization
// primitive the engine relies on; nothing below it inspects transport state.
type Guard struct {
	store TokenStore
}

func NewGuard(store TokenStore) *Guard {
	return &Guard{store: store}
}

// Identify resolves any bound identity, including role-less ones.
func (g *Guard) Identify(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	ident, ok, err := g.store.Get(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return ident, nil
}

// Host resolves the token and requires the host role.
func (g *Guard) Host(ctx context.Context, token string) (domain.Identity, error) {
	ident, err := g.Identify(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if ident.Role != domain.RoleHost || ident.HostID == "" {
		return domain.Identity{}, domain.ErrHostRequired
	}
	return ident, nil
}

// Player resolves the token and requires the player role.
func (g *Guard) Player(ctx context.Context, token string) (domain.Identity, error) {
	ident, err := g.Identify(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if ident.Role != domain.RolePlayer || ident.PlayerID == "" {
		return domain.Identity{}, domain.ErrPlayerRequired
	}
	return ident, nil
}

// Service issues and rebinds tokens. Tokens are bound to at most one role for
// their lifetime: a host token can never become a player token.
type Service struct {
	store        TokenStore
	hostPassword string
}

func NewService(store TokenStore, hostPassword string) *Service {
	return &Service{store: store, hostPassword: hostPassword}
}

// LoginHost checks the shared host password and issues a fresh host token.
func (s *Service) LoginHost(ctx context.Context, password string) (string, domain.Identity, error) {
	if password == "" || password != s.hostPassword {
		return "", domain.Identity{}, domain.ErrInvalidPassword
	}
	ident := domain.Identity{Role: domain.RoleHost, HostID: newToken()}
	token := newToken()
	if err := s.store.Put(ctx, token, ident); err != nil {
		return "", domain.Identity{}, err
	}
	return token, ident, nil
}

// Logout discards the token binding.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// IssueAnonymous creates a role-less token for a fresh connection; a later
// player join upgrades it.
func (s *Service) IssueAnonymous(ctx context.Context) (string, error) {
	token := newToken()
	if err := s.store.Put(ctx, token, domain.Identity{}); err != nil {
		return "", err
	}
	return token, nil
}

// BindPlayer upgrades a role-less token to a player identity. A token already
// bound to the host role is rejected.
func (s *Service) BindPlayer(ctx context.Context, token, playerID, gameID, name string) (domain.Identity, error) {
	existing, ok, err := s.store.Get(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if ok && existing.Role == domain.RoleHost {
		return domain.Identity{}, domain.ErrHostCannotJoin
	}
	ident := domain.Identity{
		Role:     domain.RolePlayer,
		PlayerID: playerID,
		GameID:   gameID,
		Name:     name,
	}
	if err := s.store.Put(ctx, token, ident); err != nil {
		return domain.Identity{}, err
	}
	return ident, nil
}

// BindHostGame records the host's active game on the token. This is a
// non-critical session pointer; callers treat failures as best-effort.
func (s *Service) BindHostGame(ctx context.Context, token string, ident domain.Identity, gameID string) error {
	ident.HostGameID = gameID
	return s.store.Put(ctx, token, ident)
}

func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("auth: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
