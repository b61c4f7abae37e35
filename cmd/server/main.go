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

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/api"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/database"
	"github.com/notedrop/backend/internal/game"
	"github.com/notedrop/backend/internal/migrations"
	"github.com/notedrop/backend/internal/redis"
	"github.com/notedrop/backend/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	stages, err := game.LoadStages(cfg.StagesFile)
	if err != nil {
		log.Fatalf("Failed to load stages: %v", err)
	}
	log.Printf("[GAME] %d stages loaded", len(stages))

	// Postgres only backs the run log and admin; the game runs without it.
	var db *sqlx.DB
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.Printf("[DB] Migrations failed: %v", err)
		}
	}
	if conn, err := database.Connect(cfg.DatabaseURL, connectTimeout); err != nil {
		log.Printf("[DB] Unavailable, run log and admin disabled: %v", err)
	} else {
		db = conn
		defer db.Close()
	}

	var rdb *goredis.Client
	if client, err := redis.Connect(cfg.RedisURL, connectTimeout); err != nil {
		log.Printf("[REDIS] Unavailable, cross-instance events and snapshots disabled: %v", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game.InitializeManager(db, rdb, cfg, stages)
	game.Manager.SetEventSink(ws.NewEventSink(ws.GameHub, rdb))
	game.Manager.SetFrameHandler(ws.BroadcastFrame)

	ws.SetRedisClient(rdb)
	ws.StartEventSubscriber(ctx)

	game.StartIdleWorker(ctx, game.Manager, rdb, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, game.Manager, db, rdb, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting notedrop server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
