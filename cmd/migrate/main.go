package main

import (
	"context"
	"database/sql"

	"dating-core/pkg/config"
	applogger "dating-core/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// migrationLockID is an arbitrary, fixed advisory lock key taken by every
// cmd/migrate process that might race to migrate on startup (spec.md §4.7:
// "migrations applied by a leader on startup, advisory lock so only one
// process runs migrations concurrently").
const migrationLockID = 872134

func main() {
	logger := applogger.New("migrate")
	cfg := config.Load("")

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		logger.Fatal("acquire connection", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("acquiring migration leader lock")
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		logger.Fatal("acquire advisory lock", zap.Error(err))
	}
	defer func() {
		if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			logger.Error("release advisory lock", zap.Error(err))
		}
	}()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal("set goose dialect", zap.Error(err))
	}

	logger.Info("running migrations", zap.String("dir", "migrations"))
	if err := goose.Up(db, "migrations"); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("migrations complete")
}
