package app

import (
	"context"
	"strings"

	"quizboard-service/internal/catalog"
	"quizboard-service/internal/domain"
)

const maxIDAttempts = 5

// GameRegistry abstracts how game aggregates are stored (in-memory, Redis-
// marked, etc). Implementations must be safe for concurrent use; per-game
// linearization is the aggregate's own job.
type GameRegistry interface {
	// Put stores a new game; it returns false if the id is already taken.
	Put(game *Game) bool
	Get(gameID string) (*Game, bool)
	// FindByQuestion locates the game whose board contains qid.
	FindByQuestion(qid string) (*Game, bool)
	// Upsert re-stores a mutated aggregate (refreshes liveness markers).
	Upsert(game *Game)
}

// CatalogRepository serves question bank content (from file, Postgres, or a
// cache in front of either).
type CatalogRepository interface {
	// Questions returns the full bank in stable source order.
	Questions(ctx context.Context) ([]domain.Question, error)
	QuestionByID(ctx context.Context, qid string) (domain.Question, error)
	// AnswerKey is the scoring hot path; implementations may serve it from a
	// lightweight cache.
	AnswerKey(ctx context.Context, qid string) (domain.AnswerKey, error)
}

// GameService contains the game session use cases.
type GameService struct {
	registry  GameRegistry
	catalog   CatalogRepository
	router    Broadcaster
	boardSize int
	newID     func() string
}

func NewGameService(registry GameRegistry, cat CatalogRepository, router Broadcaster, boardSize int) *GameService {
	if router == nil {
		router = NopBroadcaster{}
	}
	return &GameService{
		registry:  registry,
		catalog:   cat,
		router:    router,
		boardSize: boardSize,
		newID:     newGameID,
	}
}

// CreateGame builds a new game for hostID. The board is a deterministically
// shuffled slice of the bank seeded by the game id itself, so re-deriving the
// id reproduces the same board.
func (s *GameService) CreateGame(ctx context.Context, hostID string) (*Game, error) {
	questions, err := s.catalog.Questions(ctx)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		game := newGame(id, hostID, catalog.SelectForGame(questions, id, s.boardSize))
		if s.registry.Put(game) {
			return game, nil
		}
	}
	return nil, domain.ErrGameIDExhausted
}

// RegisterPlayer adds a named player to the game and returns the new state.
func (s *GameService) RegisterPlayer(ctx context.Context, gameID, displayName string) (domain.PlayerState, error) {
	game, ok := s.registry.Get(gameID)
	if !ok {
		return domain.PlayerState{}, domain.ErrGameNotFound
	}
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return domain.PlayerState{}, domain.ErrNameRequired
	}
	player := game.registerPlayer(newPlayerID(), trimmed)
	s.registry.Upsert(game)
	return player, nil
}

// SelectQuestion marks qid as the in-flight question and announces it to the
// player channel. The board cell itself is untouched until answered.
func (s *GameService) SelectQuestion(ctx context.Context, gameID, qid, callerHostID string) error {
	game, ok := s.registry.Get(gameID)
	if !ok {
		return domain.ErrGameNotFound
	}
	if err := game.selectQuestion(qid, callerHostID); err != nil {
		return err
	}
	s.registry.Upsert(game)
	s.router.ToPlayers(gameID, EventPlayerQuestion, QuestionPayload{QID: qid})
	return nil
}

// SubmitAnswer resolves a player's choice against the in-flight question.
// Exactly one submission can transition the cell; losers of the race get
// ErrAlreadyAnswered or ErrQuestionNotActive.
func (s *GameService) SubmitAnswer(ctx context.Context, gameID, qid string, choice string, callerPlayerID string) (bool, error) {
	if !domain.ValidLetter(choice) {
		return false, domain.ErrInvalidChoice
	}
	game, ok := s.registry.Get(gameID)
	if !ok {
		return false, domain.ErrGameNotFound
	}

	// The key is immutable reference data, so it is fetched outside the game
	// lock; a lookup failure only surfaces after the preconditions pass.
	key, keyErr := s.catalog.AnswerKey(ctx, qid)

	outcome, err := game.resolveAnswer(qid, domain.AnswerLetter(choice), callerPlayerID, key, keyErr)
	if err != nil {
		return false, err
	}
	s.registry.Upsert(game)

	s.router.ToPlayer(callerPlayerID, EventPlayerAnswerResult, AnswerResultPayload{QID: qid, Correct: outcome.Correct})
	s.router.ToHost(gameID, EventHostAnswerResult, HostAnswerResultPayload{
		QID:      qid,
		Correct:  outcome.Correct,
		PlayerID: callerPlayerID,
		Name:     outcome.PlayerName,
	})
	s.router.ToHost(gameID, EventHostBoardUpdate, BoardUpdatePayload{QID: qid, Status: outcome.Status})
	return outcome.Correct, nil
}

// Game returns the aggregate for read-side callers.
func (s *GameService) Game(gameID string) (*Game, bool) {
	return s.registry.Get(gameID)
}

// GameForHost validates existence and ownership for host-scoped reads.
func (s *GameService) GameForHost(gameID, hostID string) (*Game, error) {
	game, ok := s.registry.Get(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	if game.HostID() != hostID {
		return nil, domain.ErrAccessDenied
	}
	return game, nil
}

// Board returns the board snapshot for a game.
func (s *GameService) Board(gameID string) (domain.BoardSnapshot, error) {
	game, ok := s.registry.Get(gameID)
	if !ok {
		return domain.BoardSnapshot{}, domain.ErrGameNotFound
	}
	return game.Snapshot(), nil
}

// QuestionForHost returns full question detail, answer key included, for the
// host that owns the game the question sits on.
func (s *GameService) QuestionForHost(ctx context.Context, qid, hostID string) (domain.Question, error) {
	game, ok := s.registry.FindByQuestion(qid)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if game.HostID() != hostID {
		return domain.Question{}, domain.ErrAccessDenied
	}
	return s.catalog.QuestionByID(ctx, qid)
}

// QuestionForPlayer returns the player-safe question detail. The answer key
// is stripped at the transport layer; ownership is checked here.
func (s *GameService) QuestionForPlayer(ctx context.Context, qid, playerGameID string) (domain.Question, error) {
	question, err := s.catalog.QuestionByID(ctx, qid)
	if err != nil {
		return domain.Question{}, err
	}
	game, ok := s.registry.FindByQuestion(qid)
	if !ok || game.ID() != playerGameID {
		return domain.Question{}, domain.ErrAccessDenied
	}
	return question, nil
}

// CheckAnswer is the host-side console check: it grades a choice without
// touching any game state.
func (s *GameService) CheckAnswer(ctx context.Context, qid, hostID, choice string) (bool, domain.AnswerLetter, error) {
	game, ok := s.registry.FindByQuestion(qid)
	if !ok {
		return false, "", domain.ErrQuestionNotFound
	}
	if game.HostID() != hostID {
		return false, "", domain.ErrAccessDenied
	}
	if !domain.ValidLetter(choice) {
		return false, "", domain.ErrInvalidChoice
	}
	key, err := s.catalog.AnswerKey(ctx, qid)
	if err != nil {
		return false, "", domain.ErrQuestionNotFound
	}
	return key.Answer == domain.AnswerLetter(choice), key.Answer, nil
}
