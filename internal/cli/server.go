package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/catalog"
	"quizboard-service/internal/config"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/memory"
	pgloader "quizboard-service/internal/infra/postgres"
	redisinfra "quizboard-service/internal/infra/redis"
	transport "quizboard-service/internal/transport/http"
)

const defaultBoardSize = 25

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz board server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "4000"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}
	hostPassword := cfg.Host.Password
	if hostPassword == "" {
		hostPassword = os.Getenv("HOST_PASSWORD")
	}
	if hostPassword == "" {
		return fmt.Errorf("host password not configured (set host.password or HOST_PASSWORD)")
	}
	boardSize := cfg.Catalog.BoardSize
	if boardSize <= 0 {
		boardSize = defaultBoardSize
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 12*time.Hour)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.BankLoader = catalog.NewStaticSource(sampleQuestions())
	switch {
	case pool != nil:
		loader = pgloader.NewQuestionLoader(pool)
	case cfg.Catalog.File != "":
		loader = catalog.NewFileSource(cfg.Catalog.File)
	}

	var catalogRepo app.CatalogRepository = memory.NewCatalogRepository(loader, catalogTTL)
	if redisClient != nil {
		catalogRepo = redisinfra.NewCatalogRepository(redisClient, catalogRepo, catalogTTL)
	}

	var registry app.GameRegistry
	var tokens auth.TokenStore
	if redisClient != nil {
		registry = redisinfra.NewGameRegistry(redisClient, redisTTL)
		tokens = redisinfra.NewTokenStore(redisClient, redisTTL)
	} else {
		registry = memory.NewGameRegistry()
		tokens = memory.NewTokenStore()
	}

	guard := auth.NewGuard(tokens)
	sessions := auth.NewService(tokens, hostPassword)
	hub := transport.NewHub()
	service := app.NewGameService(registry, catalogRepo, hub, boardSize)
	wsHandler := transport.NewWSHandler(service, guard, sessions, hub)
	restHandler := transport.NewRESTHandler(service, guard, sessions, baseURL)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(restHandler, wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizboard service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions is a small built-in bank for demos and development; point
// catalog.file or postgres.url at a real bank in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: "geo-100", Points: 100, Prompt: "What is the capital of France?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "Paris", domain.LetterB: "Lyon",
				domain.LetterC: "Marseille", domain.LetterD: "Nice",
			},
			Answer: domain.LetterA,
		},
		{
			ID: "sci-200", Points: 200, Prompt: "Which planet is known as the Red Planet?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "Venus", domain.LetterB: "Mars",
				domain.LetterC: "Jupiter", domain.LetterD: "Saturn",
			},
			Answer: domain.LetterB,
		},
		{
			ID: "hist-300", Points: 300, Prompt: "In which year did the Berlin Wall fall?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "1987", domain.LetterB: "1991",
				domain.LetterC: "1989", domain.LetterD: "1990",
			},
			Answer: domain.LetterC,
		},
		{
			ID: "art-400", Points: 400, Prompt: "Who painted the Mona Lisa?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "Michelangelo", domain.LetterB: "Raphael",
				domain.LetterC: "Donatello", domain.LetterD: "Leonardo da Vinci",
			},
			Answer: domain.LetterD,
		},
		{
			ID: "mus-500", Points: 500, Prompt: "How many strings does a standard violin have?",
			Options: map[domain.AnswerLetter]string{
				domain.LetterA: "Four", domain.LetterB: "Five",
				domain.LetterC: "Six", domain.LetterD: "Seven",
			},
			Answer: domain.LetterA,
		},
	}
}
