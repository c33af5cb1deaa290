package main

import (
	"alcyxob/climb-tracker/internal/api"
	"alcyxob/climb-tracker/internal/config"
	"alcyxob/climb-tracker/internal/recommend"
	"alcyxob/climb-tracker/internal/repository/kv"
	"alcyxob/climb-tracker/internal/repository/mongo"
	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/storage"
	"alcyxob/climb-tracker/internal/timer"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Climb Tracker API
// @version 1.0
// @description API for logging climbing sessions and getting the next session's parameters.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Climb Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded. Storage backend: %s", cfg.Storage.Backend)

	// --- Storage ---
	ctxInit, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(ctxInit, cfg)
	cancelInit()
	if err != nil {
		log.Fatalf("FATAL: Could not open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer closeStore()
	store = storage.WithQuota(store, cfg.Storage.QuotaBytes)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	sessionRepo := kv.NewSessionRepository(store, cfg.Storage.SessionsKey)
	settingsRepo := kv.NewSettingsRepository(store, cfg.Storage.ThemeKey)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	sessionService := service.NewSessionService(
		sessionRepo,
		recommend.VolumeRecommender{MaxLevel: cfg.Recommend.MaxLevel},
		service.SystemClock,
		service.UUIDGenerator{},
	)
	timerService := service.NewTimerService(sessionService, timer.Durations{
		Prep: cfg.Timer.Prep,
		Hang: cfg.Timer.Hang,
		Rest: cfg.Timer.Rest,
	}, cfg.Timer.Tick)
	settingsService := service.NewSettingsService(settingsRepo)
	authService := service.NewAuthService(cfg.Auth.PassphraseHash, cfg.JWT.Secret, cfg.JWT.Expiration, service.SystemClock)
	if !authService.Enabled() {
		log.Println("WARN: auth.passphrase_hash is empty, the API is open")
	}

	ctxTimer, stopTimer := context.WithCancel(context.Background())
	defer stopTimer()
	go timerService.Run(ctxTimer)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	log.Println("Setting up API routes...")
	api.SetupRoutes(router, authService, sessionService, timerService, settingsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}
	stopTimer()

	log.Println("Server exiting.")
}

// openStore connects the configured key-value backend. The returned func
// releases it.
func openStore(ctx context.Context, cfg config.Config) (storage.KeyValueStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Println("WARN: In-memory storage, sessions are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil

	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("ERROR: Failed to close SQLite: %v", err)
			}
		}, nil

	case config.BackendMongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewMongoKVStore(client.Database(cfg.Database.Name), cfg.Database.Collection)
		return store, func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}, nil

	case config.BackendS3:
		store, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
