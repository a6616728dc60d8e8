package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"blogapi/common"
	"blogapi/services"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Slug        string `json:"slug" validate:"omitempty,max=60"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"omitempty,max=200"`
}

func (r *categoryRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Color = strings.TrimSpace(r.Color)
	r.Description = strings.TrimSpace(r.Description)
}

// ListCategories returns the bare array with a content hash ETag.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	categories, err := h.categories.List(ctx)
	if err != nil {
		common.RespondError(c, "ListCategories", err)
		return
	}

	body, err := json.Marshal(categories)
	if err != nil {
		common.RespondError(c, "ListCategories", err)
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, "CreateCategory", errInvalidBody)
		return
	}
	req.normalize()
	if err := validateStruct(req); err != nil {
		common.RespondMessage(c, "CreateCategory", err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	category, err := h.categories.Create(ctx, services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		common.RespondError(c, "CreateCategory", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}
