package handler

import (
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
	}
}

// Register handles user registration
// POST /accounts/register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	resp, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, resp)
}

// Login handles user login
// POST /accounts/login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, resp)
}

// Refresh exchanges a refresh token for a new access token
// POST /accounts/token/refresh/
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"access": access})
}

// RegisterRoutes registers the public account routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("/register/", h.Register)
		accounts.POST("/login/", h.Login)
		accounts.POST("/token/refresh/", h.Refresh)
	}
}
