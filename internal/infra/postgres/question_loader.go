package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quizboard-service/internal/domain"
)

// QuestionLoader reads the question bank from Postgres in stable id order.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) Load(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, points, prompt, option_a, option_b, option_c, option_d, answer
		FROM questions
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			a, b, c, d string
			answer     string
		)
		if err := rows.Scan(&q.ID, &q.Points, &q.Prompt, &a, &b, &c, &d, &answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = map[domain.AnswerLetter]string{
			domain.LetterA: a,
			domain.LetterB: b,
			domain.LetterC: c,
			domain.LetterD: d,
		}
		q.Answer = domain.AnswerLetter(answer)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}
