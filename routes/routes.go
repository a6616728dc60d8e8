package routes

import (
	"net/http"
	"strings"
	"time"

	"blogapi/handlers"
	"blogapi/middleware"
	"blogapi/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps wires the router. AllowOrigins must not be empty; DB and Hub are
// optional and their routes are skipped when nil.
type Deps struct {
	Handler      *handlers.Handler
	Auth         middleware.Authenticator
	DB           handlers.Pinger
	Hub          *websocket.Hub
	Tokens       websocket.TokenParser
	AllowOrigins []string
	RateLimiter  *middleware.IPRateLimiter
	AuthLimiter  *middleware.IPRateLimiter
	AuthTimeout  time.Duration
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "ETag", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.Liveness)
	if d.DB != nil {
		router.GET("/api/health", handlers.Readiness(d.DB))
	}

	if d.Hub != nil {
		allowed := make(map[string]bool, len(d.AllowOrigins))
		for _, o := range d.AllowOrigins {
			allowed[o] = true
		}
		router.GET("/ws", gin.WrapF(websocket.Handler(d.Hub, d.Tokens, func(origin string) bool {
			return allowed["*"] || allowed[origin]
		})))
	}

	h := d.Handler
	protect := middleware.JWTAuth(d.Auth, d.AuthTimeout)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(d.RateLimiter))

	auth := api.Group("/auth")
	auth.POST("/register", middleware.RateLimit(d.AuthLimiter), h.Register)
	auth.POST("/login", middleware.RateLimit(d.AuthLimiter), h.Login)
	auth.GET("/profile", protect, h.Profile)

	posts := api.Group("/posts")
	posts.GET("", h.ListPosts)
	posts.GET("/search", h.SearchPosts)
	posts.GET("/:id", h.GetPost)
	posts.POST("", protect, h.CreatePost)
	posts.PUT("/:id", protect, h.UpdatePost)
	posts.DELETE("/:id", protect, h.DeletePost)
	posts.POST("/:id/comments", protect, h.AddComment)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", protect, middleware.AdminOnly(), h.CreateCategory)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router
}
