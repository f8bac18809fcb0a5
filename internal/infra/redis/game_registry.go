package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quizboard-service/internal/app"
)

// GameRegistry is a Redis-aware implementation of app.GameRegistry.
// Notes:
//   - The aggregates themselves stay in a local map; the engine's per-game
//     locking assumes a single authoritative process.
//   - Redis carries liveness markers keyed by game id, refreshed on every
//     Upsert, so operators can see active games and a future multi-instance
//     layout has a hook for routing.
type GameRegistry struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameRegistry(client *redis.Client, ttl time.Duration) *GameRegistry {
	return &GameRegistry{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (r *GameRegistry) Put(game *app.Game) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[game.ID()]; exists {
		return false
	}
	r.games[game.ID()] = game
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(game.ID()), "1", r.ttl).Err()
	return true
}

func (r *GameRegistry) Get(gameID string) (*app.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[gameID]
	return game, ok
}

func (r *GameRegistry) FindByQuestion(qid string) (*app.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, game := range r.games {
		if game.HasCell(qid) {
			return game, true
		}
	}
	return nil, false
}

func (r *GameRegistry) Upsert(game *app.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID()] = game
	_ = r.client.Set(context.Background(), r.key(game.ID()), "1", r.ttl).Err()
}

func (r *GameRegistry) key(gameID string) string {
	return "quizboard:game:" + gameID
}
