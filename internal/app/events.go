package app

import "quizboard-service/internal/domain"

// Server-pushed event names. The player channel and host channel are disjoint
// audiences; the router decides membership, the engine only names the event.
const (
	EventPlayerQuestion     = "player:question"
	EventPlayerAnswerResult = "player:answerResult"
	EventHostAnswerResult   = "host:answerResult"
	EventHostBoardUpdate    = "host:boardUpdate"
)

// QuestionPayload announces the in-flight question to the player channel.
type QuestionPayload struct {
	QID string `json:"qid"`
}

// AnswerResultPayload is the private result pushed to the submitter.
type AnswerResultPayload struct {
	QID     string `json:"qid"`
	Correct bool   `json:"correct"`
}

// HostAnswerResultPayload tells the host who answered and how it went.
type HostAnswerResultPayload struct {
	QID      string `json:"qid"`
	Correct  bool   `json:"correct"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// BoardUpdatePayload reports a cell's terminal status to the host channel.
type BoardUpdatePayload struct {
	QID    string             `json:"qid"`
	Status domain.BoardStatus `json:"status"`
}

// Broadcaster fans events out to a game's two audiences and to a single
// player. Delivery is fire-and-forget, at most once per connected socket.
type Broadcaster interface {
	ToHost(gameID, event string, payload any)
	ToPlayers(gameID, event string, payload any)
	ToPlayer(playerID, event string, payload any)
}

// NopBroadcaster discards all events.
type NopBroadcaster struct{}

func (NopBroadcaster) ToHost(string, string, any)    {}
func (NopBroadcaster) ToPlayers(string, string, any) {}
func (NopBroadcaster) ToPlayer(string, string, any)  {}
