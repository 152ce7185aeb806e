package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bus-tracker/internal/auth"
	"bus-tracker/internal/config"
	"bus-tracker/internal/database"
	"bus-tracker/internal/handlers"
	"bus-tracker/internal/moderation"
	"bus-tracker/internal/realtime"
	"bus-tracker/internal/services"
	"bus-tracker/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Optional shared last-position store
	var shared realtime.SharedPositions
	if cfg.Redis.Addr != "" {
		redisPositions, err := database.NewRedisPositions(cfg.Redis.Addr, 5*time.Minute)
		if err != nil {
			logger.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisPositions.Close()
		shared = redisPositions
		logger.Info("Using shared position store at %s", cfg.Redis.Addr)
	}

	// Initialize services
	authService := auth.NewService(db, cfg)
	routeService := services.NewRouteService(db)
	chatService := services.NewChatService(db)

	// Initialize realtime core
	cache := realtime.NewPositionCache()
	registry := realtime.NewRoomRegistry()
	gateway := realtime.NewGateway(db, shared, cfg.Realtime.PersistTimeout)
	router := realtime.NewRouter(cache, registry, gateway, moderation.ContainsBadWords, cfg.Realtime.AllowAnonymousChat)

	evictionCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	cache.StartEviction(evictionCtx, cfg.Realtime.PositionTTL)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	routeHandlers := handlers.NewRouteHandlers(routeService)
	chatHandlers := handlers.NewChatHandlers(chatService)
	feedbackHandlers := handlers.NewFeedbackHandlers(db)
	wsHandlers := handlers.NewWebSocketHandlers(authService, router, cfg)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, authService, authHandlers, routeHandlers, chatHandlers, feedbackHandlers, wsHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}

	// Let in-flight snapshot lookups and background writes finish
	// before closing the stores
	router.Drain()
	gateway.Flush()
	logger.Info("Server exited")
}

func setupRoutes(
	mux *http.ServeMux,
	authService *auth.Service,
	authHandlers *handlers.AuthHandlers,
	routeHandlers *handlers.RouteHandlers,
	chatHandlers *handlers.ChatHandlers,
	feedbackHandlers *handlers.FeedbackHandlers,
	wsHandlers *handlers.WebSocketHandlers,
) {
	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/password", handlers.RequireAuth(authService, authHandlers.ChangePassword))

	// Bus routes and positions
	mux.HandleFunc("GET /api/bus/routes", routeHandlers.ListRoutes)
	mux.HandleFunc("POST /api/bus/routes", handlers.RequireAuth(authService, routeHandlers.CreateRoute))
	mux.HandleFunc("GET /api/bus/positions", routeHandlers.LastPositions)

	// Chat
	mux.HandleFunc("GET /api/chat/{routeID}", chatHandlers.History)
	mux.HandleFunc("POST /api/chat/send", handlers.RequireAuth(authService, chatHandlers.Send))

	// Feedback
	mux.HandleFunc("POST /api/feedback", handlers.RequireAuth(authService, feedbackHandlers.Create))
	mux.HandleFunc("GET /api/feedback", feedbackHandlers.List)

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
