package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogapi/common"
	"blogapi/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	user *models.User
	err  error
}

func (s stubAuth) Authenticate(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v[0])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	newRouter := func(auth Authenticator) *gin.Engine {
		r := gin.New()
		r.Use(JWTAuth(auth, time.Second))
		r.GET("/me", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(ContextUserID)+"|"+c.GetString(ContextUserRole))
		})
		r.OPTIONS("/me", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	t.Run("missing header", func(t *testing.T) {
		w := serve(newRouter(stubAuth{user: admin}), http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Not authorized, no token"}`, w.Body.String())
	})

	t.Run("malformed header", func(t *testing.T) {
		w := serve(newRouter(stubAuth{user: admin}), http.MethodGet, "/me", http.Header{"Authorization": {"Token abc"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		auth := stubAuth{err: common.NewError(common.ErrUnauthorized, "Not authorized, token failed")}
		w := serve(newRouter(auth), http.MethodGet, "/me", http.Header{"Authorization": {"Bearer bad"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Not authorized, token failed"}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		auth := stubAuth{err: context.DeadlineExceeded}
		w := serve(newRouter(auth), http.MethodGet, "/me", http.Header{"Authorization": {"Bearer ok"}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("valid token sets caller", func(t *testing.T) {
		w := serve(newRouter(stubAuth{user: admin}), http.MethodGet, "/me", http.Header{"Authorization": {"Bearer ok"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, admin.ID.Hex()+"|admin", w.Body.String())
	})

	t.Run("preflight skips auth", func(t *testing.T) {
		w := serve(newRouter(stubAuth{}), http.MethodOptions, "/me", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(ContextUserRole, role) }, AdminOnly())
		r.POST("/categories", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	assert.Equal(t, http.StatusCreated, serve(newRouter(models.RoleAdmin), http.MethodPost, "/categories", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(models.RoleUser), http.MethodPost, "/categories", nil).Code)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"), "window slides")

	now = now.Add(2 * time.Minute)
	rl.Sweep()
	assert.Equal(t, 0, rl.clients())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewIPRateLimiter(1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	w = serve(r, http.MethodGet, "/", http.Header{HeaderRequestID: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Body.String())
}
