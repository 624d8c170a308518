package main

import (
	"context"
	"log"
	"os"

	"shopping-matrix/internal/config"
	"shopping-matrix/internal/db"
	productrepo "shopping-matrix/internal/repository/product"
	"shopping-matrix/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if cfg.DBConnString == "" {
		logger.Fatalf("DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	count, err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger), logger)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied products=%d", count)
}
