package handler

import (
	"github.com/crowdfund-api/internal/middleware"
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles the authenticated account API
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GetProfile returns the caller's profile
// GET /accounts/profile/
func (h *AccountHandler) GetProfile(c *gin.Context) {
	user, err := h.accountService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, user.ToResponse())
}

// UpdateProfile applies a partial profile update
// PUT /accounts/profile/
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.accountService.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, user.ToResponse())
}

// ChangePassword replaces the caller's password
// POST /accounts/profile/change-password/
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), &req); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, "Password changed successfully")
}

// DeleteAccount removes the caller and all of their projects
// DELETE /accounts/delete-account/
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	var req service.DeleteAccountRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), middleware.CurrentUser(c), req.Password); err != nil {
		fail(c, err)
		return
	}

	response.Message(c, "Account deleted successfully")
}

// RegisterRoutes registers the authenticated account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	accounts := rg.Group("/accounts")
	accounts.Use(authMiddleware)
	{
		accounts.GET("/profile/", h.GetProfile)
		accounts.PUT("/profile/", h.UpdateProfile)
		accounts.POST("/profile/change-password/", h.ChangePassword)
		accounts.DELETE("/delete-account/", h.DeleteAccount)
	}
}
