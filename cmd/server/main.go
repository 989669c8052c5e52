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

	"chatstream-backend/internal/api"
	"chatstream-backend/internal/auth"
	"chatstream-backend/internal/config"
	"chatstream-backend/internal/handlers"
	"chatstream-backend/internal/provider"
	"chatstream-backend/internal/services"
	"chatstream-backend/internal/store"
	"chatstream-backend/internal/store/fallback"
	"chatstream-backend/internal/store/memory"
	pgstore "chatstream-backend/internal/store/postgres"
	redisstore "chatstream-backend/internal/store/redis"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting chatstream backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Select Persistence Backend
	dataStore, cleanup := buildStore(cfg)
	defer cleanup()

	// 3. Select Completion Provider
	var completions provider.Provider
	if cfg.OpenAIAPIKey != "" {
		completions = provider.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.MockStreamDelay)
		log.Println("OpenAI completion provider initialized.")
	} else {
		completions = provider.NewMockProvider(cfg.MockStreamDelay)
		log.Println("No OPENAI_API_KEY set; using mock completion provider.")
	}

	// 4. Initialize Services
	googleClient := auth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	authService := services.NewAuthService(dataStore, googleClient, cfg.JWTSecret, cfg.TokenExpiration, cfg.ClientURL)
	chatService := services.NewChatService(dataStore)
	streamService := services.NewStreamService(dataStore, completions)
	evalService := services.NewEvalService(services.NewMemoryEvalStore(), completions)
	log.Println("Services initialized.")

	// 5. Initialize Handlers & Router
	routerDeps := api.RouterDependencies{
		AuthHandlers: handlers.NewAuthHandlers(authService),
		ChatHandlers: handlers.NewChatHandlers(chatService, streamService),
		EvalHandlers: handlers.NewEvalHandlers(evalService),
		Config:       cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// No WriteTimeout: streamed turn responses stay open for the length
		// of the provider's fragment sequence.
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}

// buildStore selects the persistence backend from configuration: Postgres
// when DATABASE_URL is set, Redis when REDIS_ADDR is set, an in-process
// store otherwise. Real backends are wrapped in the fallback decorator so a
// store outage degrades to placeholder data instead of failed requests.
func buildStore(cfg *config.Config) (store.Store, func()) {
	if cfg.DatabaseURL != "" {
		dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dbCancel()

		dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
		}
		if err := dbpool.Ping(dbCtx); err != nil {
			log.Fatalf("FATAL: Unable to ping database: %v\n", err)
		}
		log.Println("Database connection pool established and pinged successfully.")
		return fallback.New(pgstore.NewPostgresStore(dbpool)), dbpool.Close
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		log.Printf("Redis store initialized at %s.", cfg.RedisAddr)
		return fallback.New(redisstore.NewRedisStore(rdb)), func() {
			if err := rdb.Close(); err != nil {
				log.Printf("WARN: Failed to close redis client: %v", err)
			}
		}
	}

	log.Println("No DATABASE_URL or REDIS_ADDR set; using in-memory store.")
	return memory.NewMemoryStore(), func() {}
}
