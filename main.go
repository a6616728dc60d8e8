package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"blogapi/config"
	"blogapi/database"
	"blogapi/handlers"
	"blogapi/middleware"
	"blogapi/repository"
	"blogapi/routes"
	"blogapi/security"
	"blogapi/services"
	"blogapi/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("🚀 Starting blog API...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("🔌 Connecting to MongoDB...")
	db, err := database.ConnectWithRetry(ctx, cfg.MongoURI, cfg.MongoDatabase, 3, 2*time.Second)
	if err != nil {
		log.Fatal("❌ Failed to connect to MongoDB: ", err)
	}
	log.Println("✅ MongoDB connected")

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		cancel()
		log.Fatal("❌ Failed to create indexes: ", err)
	}
	cancel()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	log.Printf("⚙️ Running in %s mode", gin.Mode())

	users := repository.NewMongoUserRepository(db.Users)
	categories := repository.NewMongoCategoryRepository(db.Categories)
	posts := repository.NewMongoPostRepository(db.Posts)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTExp)
	authService := services.NewAuthService(users, tokens)
	postService := services.NewPostService(posts, categories, users, hub)
	categoryService := services.NewCategoryService(categories)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)
	go sweep(ctx, limiter, authLimiter)

	router := routes.SetupRouter(routes.Deps{
		Handler:      handlers.New(authService, postService, categoryService, cfg.DBTimeout),
		Auth:         authService,
		DB:           db,
		Hub:          hub,
		Tokens:       tokens,
		AllowOrigins: cfg.CorsAllowedOrigins,
		RateLimiter:  limiter,
		AuthLimiter:  authLimiter,
		AuthTimeout:  cfg.DBTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Server error: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Println("❌ MongoDB disconnect:", err)
	}

	log.Println("👋 Server stopped gracefully")
}

func sweep(ctx context.Context, limiters ...*middleware.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Sweep()
			}
		}
	}
}
