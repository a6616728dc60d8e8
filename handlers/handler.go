// Package handlers adapts the services to Gin routes.
package handlers

import (
	"context"
	"time"

	"blogapi/common"
	"blogapi/middleware"
	"blogapi/models"
	"blogapi/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidBody = common.NewError(common.ErrBadRequest, "Invalid request body")

type Handler struct {
	auth       *services.AuthService
	posts      *services.PostService
	categories *services.CategoryService
	dbTimeout  time.Duration
}

func New(auth *services.AuthService, posts *services.PostService, categories *services.CategoryService, dbTimeout time.Duration) *Handler {
	if dbTimeout <= 0 {
		dbTimeout = 10 * time.Second
	}
	return &Handler{auth: auth, posts: posts, categories: categories, dbTimeout: dbTimeout}
}

func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.dbTimeout)
}

// requester reads the caller set by middleware.JWTAuth.
func requester(c *gin.Context) services.Requester {
	id, _ := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	role := c.GetString(middleware.ContextUserRole)
	if role == "" {
		role = models.RoleUser
	}
	return services.Requester{ID: id, Role: role}
}
