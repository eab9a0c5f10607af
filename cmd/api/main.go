package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/audit"
	"github.com/infoyupay/gang-comisiones-backend/internal/config"
	"github.com/infoyupay/gang-comisiones-backend/internal/server"
	"github.com/infoyupay/gang-comisiones-backend/internal/service"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage/memory"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("error building logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx := context.Background()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("error connecting to database", "err", err)
		}
		store = pg
	} else {
		logger.Warn("DATABASE_URL is not set, running on the in-memory store")
		store = memory.NewStore()
	}
	defer store.Close()

	recorder := audit.NewRecorder()
	pool := async.NewPool(cfg.Workers)
	services := service.New(store, recorder, pool, logger)

	if cfg.RootPassword != "" {
		if err := services.Users.EnsureRoot(ctx, cfg.RootUsername, cfg.RootPassword); err != nil {
			logger.Fatalw("error bootstrapping root user", "err", err)
		}
	}

	srv := server.New(cfg, services, store, logger)

	logger.Infow("listening", "port", cfg.Port)
	if err := srv.Listen(); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}
