package memory

import (
	"sync"

	"quizboard-service/internal/app"
)

// GameRegistry is the in-memory implementation of app.GameRegistry. Games
// live for the process lifetime; nothing removes them in this scope.
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{games: make(map[string]*app.Game)}
}

func (r *GameRegistry) Put(game *app.Game) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[game.ID()]; exists {
		return false
	}
	r.games[game.ID()] = game
	return true
}

func (r *GameRegistry) Get(gameID string) (*app.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[gameID]
	return game, ok
}

// FindByQuestion scans active games for the one holding qid. Question ids are
// unique per board but may repeat across games; the first match wins, which
// matches the one-bank-many-games layout where each qid is catalog-global.
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
}
