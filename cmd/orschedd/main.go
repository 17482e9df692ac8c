package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"or-schedule-backend/config"
	"or-schedule-backend/internal/api"
	"or-schedule-backend/internal/db"
	"or-schedule-backend/internal/notify"
	"or-schedule-backend/internal/oracle"
	"or-schedule-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "orschedd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.Initialize(ctx, store.DefaultCases(), store.DefaultSurgeons(), store.DefaultRooms()); err != nil {
		logger.Fatalf("failed to seed default schedule data: %v", err)
	}
	logger.Println("data store initialized")

	// Without an oracle endpoint the service still runs with deterministic
	// local predictions.
	var provider oracle.Provider
	if cfg.Oracle.BaseURL != "" {
		provider = oracle.NewClient(&cfg.Oracle)
		logger.Printf("prediction oracle configured at %s", cfg.Oracle.BaseURL)
	} else {
		rooms, err := appStore.ListRooms(ctx)
		if err != nil {
			logger.Fatalf("failed to list rooms: %v", err)
		}
		provider = oracle.NewLocal(rooms)
		logger.Println("no oracle endpoint configured; using local deterministic provider")
	}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; schedule-change notifications disabled")
	}

	pool := notify.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
	pool.Start(ctx)

	handler := api.NewHandler(api.Options{
		Store:    appStore,
		Provider: provider,
		Grid:     cfg.Grid,
		DayFloor: cfg.Schedule.DayFloor,
		Pool:     pool,
		Cache:    api.NewCache(cfg.Server.CacheTTLSeconds),
		WebPush:  webpushOptions,
	})

	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
