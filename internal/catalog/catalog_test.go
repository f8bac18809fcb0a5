package catalog

import (
	"fmt"
	"strings"
	"testing"

	"quizboard-service/internal/domain"
)

func TestParseQuestions(t *testing.T) {
	input := strings.Join([]string{
		"# comment line",
		"",
		"q1|100|What is 2 + 2?|3|4|5|6|B",
		"  q2|200|Largest ocean?|Atlantic|Indian|Pacific|Arctic|C  ",
	}, "\n")

	questions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	q := questions[0]
	if q.ID != "q1" || q.Points != 100 || q.Answer != domain.LetterB {
		t.Fatalf("unexpected first question: %+v", q)
	}
	if q.Options[domain.LetterC] != "5" {
		t.Fatalf("expected option C to be 5, got %q", q.Options[domain.LetterC])
	}
}

func TestParseRejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"too few fields", "q1|100|prompt|a|b|c|A"},
		{"bad points", "q1|ten|prompt|a|b|c|d|A"},
		{"bad answer", "q1|100|prompt|a|b|c|d|E"},
		{"empty prompt", "q1|100||a|b|c|d|A"},
		{"empty option", "q1|100|prompt|a||c|d|A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.line)); err == nil {
				t.Fatalf("expected error for %q", tc.line)
			}
		})
	}
}

func TestSelectForGameDeterminism(t *testing.T) {
	bank := numberedBank(40)

	first := SelectForGame(bank, "abc123", 25)
	second := SelectForGame(bank, "abc123", 25)
	if len(first) != 25 {
		t.Fatalf("expected 25 questions, got %d", len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different order at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	other := SelectForGame(bank, "def456", 25)
	same := true
	for i := range first {
		if first[i].ID != other[i].ID {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical permutations")
	}
}

func TestSelectForGameDrawsFromBankHead(t *testing.T) {
	bank := numberedBank(40)
	selected := SelectForGame(bank, "seed", 25)

	// selection works on the first 25 bank entries, then shuffles
	allowed := make(map[string]bool, 25)
	for _, q := range bank[:25] {
		allowed[q.ID] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, q := range selected {
		if !allowed[q.ID] {
			t.Fatalf("question %s drawn from outside the bank head", q.ID)
		}
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectForGameShortBank(t *testing.T) {
	bank := numberedBank(10)
	if got := len(SelectForGame(bank, "seed", 25)); got != 10 {
		t.Fatalf("expected 10 questions from a short bank, got %d", got)
	}
	if got := len(SelectForGame(bank, "seed", -1)); got != 0 {
		t.Fatalf("expected empty selection for negative count, got %d", got)
	}
}

func TestSelectForGameDoesNotMutateBank(t *testing.T) {
	bank := numberedBank(30)
	SelectForGame(bank, "seed", 25)
	for i, q := range bank {
		if q.ID != fmt.Sprintf("q%02d", i) {
			t.Fatalf("bank order mutated at %d: %s", i, q.ID)
		}
	}
}

func TestBuildBoard(t *testing.T) {
	questions := numberedBank(25)
	board := BuildBoard(questions)
	if len(board) != 25 {
		t.Fatalf("expected 25 cells, got %d", len(board))
	}
	for i, q := range questions {
		cell, ok := board[q.ID]
		if !ok {
			t.Fatalf("missing cell for %s", q.ID)
		}
		if cell.Index != i {
			t.Fatalf("cell %s index %d, want %d", q.ID, cell.Index, i)
		}
		if cell.Status != domain.StatusUnplayed {
			t.Fatalf("cell %s status %s, want unplayed", q.ID, cell.Status)
		}
		if cell.Points != q.Points {
			t.Fatalf("cell %s points %d, want %d", q.ID, cell.Points, q.Points)
		}
	}
}

func TestSeededRandSequence(t *testing.T) {
	a := newSeededRand("game-id")
	b := newSeededRand("game-id")
	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("sequences diverged at draw %d: %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, va)
		}
	}
}

// Board order is derivable from the game id, so the generator is an
// externally observable contract. These vectors were computed with an
// independent implementation of the same mixing hash; any change to the
// constants, the rotation, or the draw mixer must fail here.
func TestSeededRandGoldenVectors(t *testing.T) {
	vectors := []struct {
		seed  string
		state uint32
		draws []float64
	}{
		{
			seed:  "a1b2c3d4",
			state: 4166537773,
			draws: []float64{
				0.8743721230421215,
				0.3798889182507992,
				0.7172153163701296,
				0.7366349648218602,
				0.43753008847124875,
				0.4912381134927273,
			},
		},
		{
			seed:  "0f3c9a7e",
			state: 2003237068,
			draws: []float64{
				0.30320845637470484,
				0.8958665069658309,
				0.2939570960588753,
				0.5107865997124463,
				0.7467714932281524,
				0.829355237307027,
			},
		},
	}
	for _, v := range vectors {
		r := newSeededRand(v.seed)
		if r.h != v.state {
			t.Fatalf("seed %q hashed to %d, want %d", v.seed, r.h, v.state)
		}
		for i, want := range v.draws {
			if got := r.Float64(); got != want {
				t.Fatalf("seed %q draw %d = %v, want %v", v.seed, i, got, want)
			}
		}
	}
}

func TestSelectForGameGoldenPermutations(t *testing.T) {
	cases := []struct {
		seed  string
		count int
		order []int
	}{
		{"a1b2c3d4", 10, []int{1, 0, 4, 9, 6, 2, 7, 5, 3, 8}},
		{"a1b2c3d4", 5, []int{0, 3, 2, 1, 4}},
		{"0f3c9a7e", 10, []int{6, 1, 0, 7, 5, 4, 9, 2, 8, 3}},
		{"0f3c9a7e", 5, []int{2, 4, 0, 3, 1}},
	}
	bank := numberedBank(10)
	for _, tc := range cases {
		selected := SelectForGame(bank, tc.seed, tc.count)
		if len(selected) != len(tc.order) {
			t.Fatalf("seed %q count %d: got %d questions", tc.seed, tc.count, len(selected))
		}
		for i, idx := range tc.order {
			want := fmt.Sprintf("q%02d", idx)
			if selected[i].ID != want {
				t.Fatalf("seed %q count %d position %d = %s, want %s", tc.seed, tc.count, i, selected[i].ID, want)
			}
		}
	}
}

func numberedBank(n int) []domain.Question {
	bank := make([]domain.Question, n)
	for i := range bank {
		bank[i] = domain.Question{
			ID:     fmt.Sprintf("q%02d", i),
			Points: (i%5 + 1) * 100,
			Prompt: fmt.Sprintf("Question %d", i),
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "a", domain.LetterB: "b",
				domain.LetterC: "c", domain.LetterD: "d",
			},
			Answer: domain.LetterA,
		}
	}
	return bank
}
