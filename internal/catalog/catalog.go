package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quizboard-service/internal/domain"
)

// Catalog is an ordered question bank with id lookup.
type Catalog struct {
	questions []domain.Question
	byID      map[string]domain.Question
}

func New(questions []domain.Question) *Catalog {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Catalog{questions: questions, byID: byID}
}

// Questions returns the bank in file order.
func (c *Catalog) Questions() []domain.Question {
	return c.questions
}

// QuestionByID looks a question up by id.
func (c *Catalog) QuestionByID(qid string) (domain.Question, bool) {
	q, ok := c.byID[qid]
	return q, ok
}

// SelectForGame returns up to count questions, deterministically shuffled by
// the game id. The same id always yields the same permutation.
func SelectForGame(questions []domain.Question, gameID string, count int) []domain.Question {
	if count < 0 {
		count = 0
	}
	n := count
	if n > len(questions) {
		n = len(questions)
	}
	selected := make([]domain.Question, n)
	copy(selected, questions[:n])
	shuffle(newSeededRand(gameID), selected)
	return selected
}

// BuildBoard assigns each selected question a cell with its shuffle position
// as the fixed display index.
func BuildBoard(questions []domain.Question) map[string]*domain.BoardCell {
	board := make(map[string]*domain.BoardCell, len(questions))
	for i, q := range questions {
		board[q.ID] = &domain.BoardCell{
			QID:    q.ID,
			Points: q.Points,
			Status: domain.StatusUnplayed,
			Index:  i,
		}
	}
	return board
}

// Parse reads the pipe-delimited question format:
//
//	id|points|prompt|option A|option B|option C|option D|answer
//
// Blank lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]domain.Question, error) {
	var questions []domain.Question
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("invalid question on line %d: %w", lineNo, err)
		}
		questions = append(questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func parseLine(line string) (domain.Question, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 8 {
		return domain.Question{}, fmt.Errorf("expected 8 fields, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return domain.Question{}, fmt.Errorf("missing question id")
	}
	points, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.Question{}, fmt.Errorf("points must be an integer: %q", parts[1])
	}
	if parts[2] == "" {
		return domain.Question{}, fmt.Errorf("missing question prompt")
	}
	for i, label := range []string{"A", "B", "C", "D"} {
		if parts[3+i] == "" {
			return domain.Question{}, fmt.Errorf("missing option %s", label)
		}
	}
	if !domain.ValidLetter(parts[7]) {
		return domain.Question{}, fmt.Errorf("answer must be A, B, C or D")
	}
	return domain.Question{
		ID:     parts[0],
		Points: points,
		Prompt: parts[2],
		Options: map[domain.AnswerLetter]string{
			domain.LetterA: parts[3],
			domain.LetterB: parts[4],
			domain.LetterC: parts[5],
			domain.LetterD: parts[6],
		},
		Answer: domain.AnswerLetter(parts[7]),
	}, nil
}

// FileSource loads the bank from a pipe-delimited text file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) ([]domain.Question, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// StaticSource serves a fixed bank (useful for tests and demos).
type StaticSource struct {
	questions []domain.Question
}

func NewStaticSource(questions []domain.Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) Load(_ context.Context) ([]domain.Question, error) {
	return s.questions, nil
}
