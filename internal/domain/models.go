package domain

// AnswerLetter identifies one of the four fixed answer options.
type AnswerLetter string

const (
	LetterA AnswerLetter = "A"
	LetterB AnswerLetter = "B"
	LetterC AnswerLetter = "C"
	LetterD AnswerLetter = "D"
)

// ValidLetter reports whether s is one of A, B, C, D.
func ValidLetter(s string) bool {
	switch AnswerLetter(s) {
	case LetterA, LetterB, LetterC, LetterD:
		return true
	}
	return false
}

// Question is an immutable record from the question bank. The engine treats
// it as read-only reference data.
type Question struct {
	ID      string                  `json:"id"`
	Points  int                     `json:"points"`
	Prompt  string                  `json:"prompt"`
	Options map[AnswerLetter]string `json:"options"`
	Answer  AnswerLetter            `json:"answer"`
}

// AnswerKey is the minimal scoring view of a question.
type AnswerKey struct {
	Answer AnswerLetter
	Points int
}

// BoardStatus is the resolution state of a board cell. Transitions are
// one-directional: unplayed moves to correct or wrong and never back.
type BoardStatus string

const (
	StatusUnplayed BoardStatus = "unplayed"
	StatusCorrect  BoardStatus = "correct"
	StatusWrong    BoardStatus = "wrong"
)

// BoardCell tracks a single question slot on a game board. Index is the
// cell's fixed display position, assigned once at board build time.
type BoardCell struct {
	QID    string      `json:"qid"`
	Points int         `json:"points"`
	Status BoardStatus `json:"status"`
	Index  int         `json:"index"`
}

// PlayerState holds a joined player and their accumulated score. Entries are
// never removed; disconnecting preserves the score.
type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// BoardSnapshot is a read-only view of a game board, cells ordered by index,
// with the current scoreboard.
type BoardSnapshot struct {
	GameID  string        `json:"gameId"`
	Board   []BoardCell   `json:"board"`
	Players []PlayerState `json:"players"`
}

// Role tags a connection's identity. A token is bound to at most one role
// for its lifetime.
type Role string

const (
	RoleNone   Role = ""
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Identity is the capability resolved from a token. Host identities carry
// HostID plus HostGameID as a convenience pointer to their active game;
// player identities carry PlayerID, GameID and Name.
type Identity struct {
	Role       Role   `json:"role"`
	HostID     string `json:"hostId,omitempty"`
	HostGameID string `json:"hostGameId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	GameID     string `json:"gameId,omitempty"`
	Name       string `json:"name,omitempty"`
}
