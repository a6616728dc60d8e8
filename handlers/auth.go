package handlers

import (
	"net/http"
	"strings"

	"blogapi/common"
	"blogapi/middleware"
	"blogapi/services"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondMessage(c, "Register", errInvalidBody)
		return
	}
	req.normalize()
	if err := validateStruct(req); err != nil {
		common.RespondMessage(c, "Register", err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.auth.Register(ctx, services.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		common.RespondMessage(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondMessage(c, "Login", errInvalidBody)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		common.RespondMessage(c, "Login", err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.auth.Login(ctx, services.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		common.RespondMessage(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Profile(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	profile, err := h.auth.Profile(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		common.RespondMessage(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
