package controllers

import (
	"net/http"
	"time"

	"stockwatch/config"
	"stockwatch/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 12 * time.Hour

// AuthController issues admin session tokens.
type AuthController struct {
	cfg     *config.Config
	limiter *middleware.RateLimiter
}

// NewAuthController creates a new auth controller
func NewAuthController(cfg *config.Config, limiter *middleware.RateLimiter) *AuthController {
	return &AuthController{cfg: cfg, limiter: limiter}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies the admin password and returns a session token.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	err := bcrypt.CompareHashAndPassword([]byte(ac.cfg.AdminPasswordHash), []byte(req.Password))
	if err != nil {
		ac.limiter.RecordAttempt(c.ClientIP(), false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	ac.limiter.RecordAttempt(c.ClientIP(), true)

	token, err := middleware.IssueAdminToken(ac.cfg.JWTSecret, req.Username, sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(sessionTTL.Seconds()),
	})
}
