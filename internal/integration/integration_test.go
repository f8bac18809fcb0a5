package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/domain"
	memoryinfra "quizboard-service/internal/infra/memory"
	pgloader "quizboard-service/internal/infra/postgres"
	pgmigrations "quizboard-service/internal/infra/postgres/migrations"
	redisinfra "quizboard-service/internal/infra/redis"
)

func TestGameFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL, sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgloader.NewQuestionLoader(pool)
	var catalogRepo app.CatalogRepository = memoryinfra.NewCatalogRepository(loader, 5*time.Minute)
	catalogRepo = redisinfra.NewCatalogRepository(redisClient, catalogRepo, 5*time.Minute)
	registry := redisinfra.NewGameRegistry(redisClient, 5*time.Minute)
	tokens := redisinfra.NewTokenStore(redisClient, 5*time.Minute)

	guard := auth.NewGuard(tokens)
	sessions := auth.NewService(tokens, "secret")
	service := app.NewGameService(registry, catalogRepo, app.NopBroadcaster{}, 3)

	token, hostIdent, err := sessions.LoginHost(ctx, "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := guard.Host(ctx, token); err != nil {
		t.Fatalf("guard host: %v", err)
	}

	game, err := service.CreateGame(ctx, hostIdent.HostID)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	snapshot := game.Snapshot()
	if len(snapshot.Board) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(snapshot.Board))
	}

	player, err := service.RegisterPlayer(ctx, game.ID(), "Ada")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cell := snapshot.Board[0]
	if err := service.SelectQuestion(ctx, game.ID(), cell.QID, hostIdent.HostID); err != nil {
		t.Fatalf("select: %v", err)
	}

	correct, err := service.SubmitAnswer(ctx, game.ID(), cell.QID, "B", player.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !correct {
		t.Fatalf("expected correct answer")
	}
	updated, _ := game.Player(player.ID)
	if updated.Score != cell.Points {
		t.Fatalf("score %d, want %d", updated.Score, cell.Points)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, bank []domain.Question) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for i, q := range bank {
		_, err := db.ExecContext(ctx, `
			INSERT INTO questions (id, position, points, prompt, option_a, option_b, option_c, option_d, answer)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, i, q.Points, q.Prompt,
			q.Options[domain.LetterA], q.Options[domain.LetterB],
			q.Options[domain.LetterC], q.Options[domain.LetterD],
			string(q.Answer),
		)
		if err != nil {
			t.Fatalf("insert question %s: %v", q.ID, err)
		}
	}
}

// sampleBank answers B on every question.
func sampleBank() []domain.Question {
	bank := make([]domain.Question, 3)
	for i := range bank {
		bank[i] = domain.Question{
			ID:     fmt.Sprintf("q%d", i),
			Points: 100 * (i + 1),
			Prompt: fmt.Sprintf("Question %d", i),
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "wrong", domain.LetterB: "right",
				domain.LetterC: "wrong", domain.LetterD: "wrong",
			},
			Answer: domain.LetterB,
		}
	}
	return bank
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
