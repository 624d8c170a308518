package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopping-matrix/internal/config"
	"shopping-matrix/internal/db"
	"shopping-matrix/internal/docstore"
	"shopping-matrix/internal/httpserver"
	"shopping-matrix/internal/mirror"
	"shopping-matrix/internal/qrindex"
	"shopping-matrix/internal/recommend"
	orderrepo "shopping-matrix/internal/repository/order"
	productrepo "shopping-matrix/internal/repository/product"
	"shopping-matrix/internal/seed"
	"shopping-matrix/internal/service/catalog"
	"shopping-matrix/internal/session"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var (
		dbpool   *pgxpool.Pool
		provider catalog.Provider
		sinks    []mirror.Sink
		deps     httpserver.Deps
	)
	deps.ReadyChecks = map[string]httpserver.Pinger{}

	if cfg.DBConnString != "" {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool

		productRepo := productrepo.NewPostgres(dbpool, logger)
		provider = catalog.RepositoryProvider{Repo: productRepo}
		sinks = append(sinks, orderrepo.NewSink(orderrepo.NewPostgres(dbpool, logger), productRepo))
	} else {
		logger.Printf("DB_DSN not set, serving the built-in catalog")
		provider = seed.NewCatalog(seed.DefaultProducts())
	}

	if cfg.MongoURI != "" {
		client, err := docstore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatalf("connect to mongo: %v", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Printf("disconnect mongo: %v", err)
			}
		}()
		store := docstore.New(client.Database(cfg.MongoDatabase), logger)
		deps.Documents = store
		sinks = append(sinks, docstore.NewSink(store))
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		index := qrindex.New(rdb, cfg.RedisQRTTL, logger)
		deps.QR = index
		deps.ReadyChecks["redis"] = index
		sinks = append(sinks, index)
	}

	if cfg.AIAPIKey != "" {
		ai := recommend.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout, logger)
		deps.AI = ai
		deps.Recommender = recommend.NewRecommender(ai, logger)
	}

	worker := mirror.NewWorker(logger, cfg.MirrorQueueSize, cfg.MirrorMaxRetries, sinks...)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	sessions := session.NewManager(session.Options{
		TaxRate:   &cfg.TaxRate,
		Location:  cfg.Location(),
		Publisher: worker,
		Logger:    logger,
	})
	deps.Sessions = sessions
	deps.Catalog = catalog.New(provider, logger)
	deps.CORSOrigins = cfg.CORSOrigins

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	sweepDone := make(chan struct{})
	go sweepSessions(sessions, cfg.SessionIdleTTL, sweepDone)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}

	if err := worker.Close(shutdownCtx); err != nil {
		logger.Printf("mirror drain incomplete: %v dropped=%d", err, worker.Dropped())
	} else if n := worker.Dropped(); n > 0 {
		logger.Printf("mirror stopped dropped=%d", n)
	}
}

func sweepSessions(sessions *session.Manager, idle time.Duration, done <-chan struct{}) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sessions.Sweep(idle)
		}
	}
}
