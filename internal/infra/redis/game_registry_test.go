package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"quizboard-service/internal/app"
	"quizboard-service/internal/catalog"
	"quizboard-service/internal/domain"
	memoryinfra "quizboard-service/internal/infra/memory"
)

func TestGameRegistryMarksLiveness(t *testing.T) {
	mr, client := newTestRedis(t)
	registry := NewGameRegistry(client, time.Minute)

	repo := memoryinfra.NewCatalogRepository(catalog.NewStaticSource(redisTestBank()), time.Minute)
	service := app.NewGameService(registry, repo, nil, 4)
	game, err := service.CreateGame(context.Background(), "host-1")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	if !mr.Exists("quizboard:game:" + game.ID()) {
		t.Fatalf("expected liveness key for new game")
	}
	if _, ok := registry.Get(game.ID()); !ok {
		t.Fatalf("expected game retrievable from local map")
	}

	qid := game.Snapshot().Board[0].QID
	found, ok := registry.FindByQuestion(qid)
	if !ok || found.ID() != game.ID() {
		t.Fatalf("expected FindByQuestion to locate the game")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func redisTestBank() []domain.Question {
	return []domain.Question{
		{
			ID: "q1", Points: 100, Prompt: "What is 2 + 2?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "3", domain.LetterB: "4",
				domain.LetterC: "5", domain.LetterD: "6",
			},
			Answer: domain.LetterB,
		},
		{
			ID: "q2", Points: 200, Prompt: "Largest ocean?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "Atlantic", domain.LetterB: "Indian",
				domain.LetterC: "Pacific", domain.LetterD: "Arctic",
			},
			Answer: domain.LetterC,
		},
	}
}
