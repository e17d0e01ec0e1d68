package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/service"
	resp "sweetshop/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type registerIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"     binding:"omitempty,oneof=USER ADMIN"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	// PasswordHash 带 json:"-"，不会出现在响应里
	c.JSON(http.StatusCreated, u)
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
