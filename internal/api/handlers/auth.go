package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/session"
	pkgerrors "github.com/talentotech/storefront/pkg/errors"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// HandleLogin handles POST /session/login
func HandleLogin(sess *session.Session, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		if err := sess.Login(c.Request.Context(), req.Username, req.Password); err != nil {
			var unauthorized *pkgerrors.ErrUnauthorized
			if errors.As(err, &unauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Message})
				return
			}
			if errors.Is(err, inventory.ErrConnection) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "connection error"})
				return
			}
			logger.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": sess.User()})
	}
}

// HandleRegister handles POST /session/register
func HandleRegister(sess *session.Session, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		if err := sess.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
			var rejection *inventory.RejectionError
			if errors.As(err, &rejection) {
				c.JSON(http.StatusBadRequest, gin.H{"error": rejection.Reason()})
				return
			}
			if errors.Is(err, inventory.ErrConnection) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "connection error"})
				return
			}
			logger.Error("Registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "created"})
	}
}

// HandleLogout handles POST /session/logout
func HandleLogout(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess.Logout(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// HandleGetSession handles GET /session
func HandleGetSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := sess.User()
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
	}
}
