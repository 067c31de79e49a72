package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"watchhub"
	"watchhub/internal/auth"
	"watchhub/internal/config"
	"watchhub/internal/database"
	"watchhub/internal/handlers"
	"watchhub/internal/logger"
	"watchhub/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration failed:", err)
	}

	zlog, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		log.Fatal("Logger setup failed:", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrationsFS, err := watchhub.GetMigrationsFS()
	if err != nil {
		zlog.Fatal("failed to load migrations", zap.Error(err))
	}
	if err := database.RunMigrations(db, migrationsFS); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	store := database.NewStore(db)
	authService := auth.NewService(cfg.AppSecret, cfg.BcryptCost)
	authHandler := auth.NewHandler(store, authService, zlog)

	// Realtime layer: registry, fan-out, command mux, websocket gateway
	registry := realtime.NewRegistry(zlog)
	notifier := realtime.NewNotifier(registry, zlog)
	mux := realtime.NewMux()
	handlers.Register(mux, store, notifier, zlog)
	gateway := realtime.NewGateway(mux, registry, authService.VerifyToken, zlog)

	// Setup router using standard library ServeMux
	router := http.NewServeMux()

	// Health check (no auth required)
	router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	router.HandleFunc("POST /auth/register", authHandler.Register)
	router.HandleFunc("POST /auth/login", authHandler.Login)
	router.HandleFunc("GET /auth/session", authHandler.Session)

	// Everything else flows over the websocket
	router.Handle("GET /ws", gateway)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
