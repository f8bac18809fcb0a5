package app

import (
	"sort"
	"sync"

	"quizboard-service/internal/catalog"
	"quizboard-service/internal/domain"
)

// Game is the authoritative aggregate for one quiz session. All mutations go
// through methods that hold g.mu for their whole read-check-write span, so
// two operations on the same game never interleave.
type Game struct {
	id     string
	hostID string

	mu                sync.Mutex
	players           map[string]*domain.PlayerState
	board             map[string]*domain.BoardCell
	currentQuestionID string
}

func newGame(id, hostID string, questions []domain.Question) *Game {
	return &Game{
		id:      id,
		hostID:  hostID,
		players: make(map[string]*domain.PlayerState),
		board:   catalog.BuildBoard(questions),
	}
}

func (g *Game) ID() string     { return g.id }
func (g *Game) HostID() string { return g.hostID }

// HasCell reports whether qid is on this board. The board's key set is fixed
// at construction, so this needs no lock.
func (g *Game) HasCell(qid string) bool {
	_, ok := g.board[qid]
	return ok
}

// CurrentQuestionID returns the in-flight question id, or "" if none.
func (g *Game) CurrentQuestionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentQuestionID
}

// Player returns a copy of the player's state.
func (g *Game) Player(playerID string) (domain.PlayerState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	if !ok {
		return domain.PlayerState{}, false
	}
	return *p, true
}

// Players returns copies of all player states, sorted by name then id.
func (g *Game) Players() []domain.PlayerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playersLocked()
}

func (g *Game) playersLocked() []domain.PlayerState {
	out := make([]domain.PlayerState, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshot returns the board cells ordered by display index plus the current
// scoreboard. Both are copies taken under one lock acquisition.
func (g *Game) Snapshot() domain.BoardSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	cells := make([]domain.BoardCell, 0, len(g.board))
	for _, cell := range g.board {
		cells = append(cells, *cell)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Index < cells[j].Index })
	return domain.BoardSnapshot{GameID: g.id, Board: cells, Players: g.playersLocked()}
}

func (g *Game) registerPlayer(playerID, name string) domain.PlayerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	player := &domain.PlayerState{ID: playerID, Name: name, Score: 0}
	g.players[playerID] = player
	return *player
}

// selectQuestion marks qid as in flight. Selecting while another question is
// already in flight replaces it; only resolved cells are rejected.
func (g *Game) selectQuestion(qid, callerHostID string) error {
	if callerHostID != g.hostID {
		return domain.ErrAccessDenied
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	cell, ok := g.board[qid]
	if !ok {
		return domain.ErrCellNotFound
	}
	if cell.Status != domain.StatusUnplayed {
		return domain.ErrAlreadyCompleted
	}
	g.currentQuestionID = qid
	return nil
}

type answerOutcome struct {
	Correct    bool
	Status     domain.BoardStatus
	PlayerName string
	TotalScore int
}

// resolveAnswer is the race-resolution gate: preconditions and the terminal
// transition execute under one lock acquisition, so exactly one submission
// against an in-flight question can win. The answer key is fetched by the
// caller beforehand; keyErr is only surfaced once the preconditions pass.
func (g *Game) resolveAnswer(qid string, choice domain.AnswerLetter, playerID string, key domain.AnswerKey, keyErr error) (answerOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.players[playerID]
	if !ok {
		return answerOutcome{}, domain.ErrPlayerNotRegistered
	}
	cell, ok := g.board[qid]
	if !ok {
		return answerOutcome{}, domain.ErrCellNotFound
	}
	if cell.Status != domain.StatusUnplayed {
		return answerOutcome{}, domain.ErrAlreadyAnswered
	}
	if g.currentQuestionID != qid {
		return answerOutcome{}, domain.ErrQuestionNotActive
	}
	if keyErr != nil {
		return answerOutcome{}, domain.ErrQuestionNotFound
	}

	correct := key.Answer == choice
	if correct {
		cell.Status = domain.StatusCorrect
		player.Score += key.Points
	} else {
		cell.Status = domain.StatusWrong
	}
	g.currentQuestionID = ""

	return answerOutcome{
		Correct:    correct,
		Status:     cell.Status,
		PlayerName: player.Name,
		TotalScore: player.Score,
	}, nil
}
