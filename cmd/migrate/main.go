// Command migrate applies the SQL schema to the configured database.
// The schema file is idempotent (CREATE ... IF NOT EXISTS), so the
// command is safe to run on every deploy.
package main

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const defaultSchemaPath = "migrations/migrations.sql"

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer zl.Sync()
	log := zl.Sugar()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	path := strings.TrimSpace(os.Getenv("MIGRATIONS_PATH"))
	if path == "" {
		path = defaultSchemaPath
	}

	schema, err := os.ReadFile(path)
	if err != nil {
		log.Fatalw("error reading schema file", "path", path, "err", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalw("error opening database", "err", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalw("error pinging database", "err", err)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		log.Fatalw("error applying schema", "path", path, "err", err)
	}
	log.Infow("schema applied", "path", path)
}
