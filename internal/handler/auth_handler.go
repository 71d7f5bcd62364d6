package handler

import (
	"net/http"
	"strings"

	"visa_referral/internal/model"
	"visa_referral/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	service   service.AuthService
	dashboard service.DashboardService
	log       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, dashboard service.DashboardService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{service: s, dashboard: dashboard, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payload, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err, "Failed to register user")
		return
	}
	respond(c, http.StatusCreated, payload, "Registration successful")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payload, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.log, err, "Failed to login")
		return
	}
	respond(c, http.StatusOK, payload, "Login successful")
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payload, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, h.log, err, "Failed to refresh token")
		return
	}
	respond(c, http.StatusOK, payload, "Token refreshed successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		fail(c, h.log, err, "Failed to load user")
		return
	}
	respond(c, http.StatusOK, user, "User retrieved successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	_ = h.service.Logout(c.Request.Context(), token)
	respond[any](c, http.StatusOK, nil, "Logout successful")
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.log, err, "Failed to update profile")
		return
	}
	respond(c, http.StatusOK, user, "Profile updated successfully")
}

func (h *AuthHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err, "Failed to load dashboard")
		return
	}
	respond(c, http.StatusOK, d, "Dashboard retrieved successfully")
}

// RegisterAuthRoutes registers the public auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}
}

// RegisterProtectedRoutes registers routes that need an authenticated user.
// users must already require ownership of :id.
func (h *AuthHandler) RegisterProtectedRoutes(protected, users *gin.RouterGroup) {
	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/logout", h.Logout)
	users.PATCH("", h.UpdateProfile)
	users.GET("/dashboard", h.Dashboard)
}
