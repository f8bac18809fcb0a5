package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizboard-service/internal/catalog"
	"quizboard-service/internal/config"
	pgmigrations "quizboard-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and optionally seeds the
// question bank from a pipe-delimited text file.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedFrom string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			if seedFrom != "" {
				return seedQuestions(cmd.Context(), cfg, seedFrom)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&seedFrom, "seed-from", "", "question bank text file to load into the questions table")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}

func seedQuestions(ctx context.Context, cfg config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	questions, err := catalog.Parse(f)
	if err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	for i, q := range questions {
		_, err := db.ExecContext(ctx, `
			INSERT INTO questions (id, position, points, prompt, option_a, option_b, option_c, option_d, answer)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				position = EXCLUDED.position,
				points = EXCLUDED.points,
				prompt = EXCLUDED.prompt,
				option_a = EXCLUDED.option_a,
				option_b = EXCLUDED.option_b,
				option_c = EXCLUDED.option_c,
				option_d = EXCLUDED.option_d,
				answer = EXCLUDED.answer`,
			q.ID, i, q.Points, q.Prompt,
			q.Options["A"], q.Options["B"], q.Options["C"], q.Options["D"],
			string(q.Answer),
		)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	log.Printf("seeded %d questions", len(questions))
	return nil
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
