package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"blogapi/common"
	"blogapi/services"

	"github.com/gin-gonic/gin"
)

type postRequest struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Content     string    `json:"content" validate:"required"`
	Excerpt     *string   `json:"excerpt" validate:"omitempty,max=200"`
	Category    *string   `json:"category" validate:"omitempty,objectid"`
	Tags        *[]string `json:"tags"`
	IsPublished *bool     `json:"isPublished"`
}

func (r *postRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	trimPtr(r.Excerpt)
	trimPtr(r.Category)
}

func (r *postRequest) input() services.PostInput {
	return services.PostInput{
		Title:       r.Title,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		Category:    r.Category,
		Tags:        r.Tags,
		IsPublished: r.IsPublished,
	}
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// bindPost writes the validation response itself and reports whether the
// handler may continue.
func bindPost(c *gin.Context, op string) (*postRequest, bool) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, op, errInvalidBody)
		return nil, false
	}
	req.normalize()
	if err := validateStruct(req); err != nil {
		common.RespondMessage(c, op, err)
		return nil, false
	}
	return &req, true
}

func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.posts.List(ctx, services.ListQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   c.Query("search"),
	})
	if err != nil {
		common.RespondError(c, "ListPosts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       res.Posts,
		"pagination": res.Pagination,
	})
}

func (h *Handler) SearchPosts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	posts, err := h.posts.Search(ctx, c.Query("q"))
	if err != nil {
		common.RespondError(c, "SearchPosts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.Get(ctx, c.Param("id"))
	if err != nil {
		common.RespondError(c, "GetPost", err)
		return
	}
	common.RespondData(c, http.StatusOK, post)
}

func (h *Handler) CreatePost(c *gin.Context) {
	req, ok := bindPost(c, "CreatePost")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.Create(ctx, requester(c).ID, req.input())
	if err != nil {
		common.RespondError(c, "CreatePost", err)
		return
	}
	common.RespondData(c, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	req, ok := bindPost(c, "UpdatePost")
	if !ok {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.Update(ctx, requester(c), c.Param("id"), req.input())
	if err != nil {
		common.RespondError(c, "UpdatePost", err)
		return
	}
	common.RespondData(c, http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.posts.Delete(ctx, requester(c), c.Param("id")); err != nil {
		common.RespondError(c, "DeletePost", err)
		return
	}
	common.RespondData(c, http.StatusOK, gin.H{})
}

func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, "AddComment", errInvalidBody)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		common.RespondMessage(c, "AddComment", err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.AddComment(ctx, c.Param("id"), requester(c).ID, req.Content)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondMessage(c, "AddComment", err)
			return
		}
		common.RespondError(c, "AddComment", err)
		return
	}
	common.RespondData(c, http.StatusCreated, post)
}

// queryInt returns 0 for a missing or unparsable value so the service
// applies its default.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}
