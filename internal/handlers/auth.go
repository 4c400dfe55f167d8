package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/auth"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"go.uber.org/zap"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string               `json:"token"`
	User  models.PublicProfile `json:"user"`
}

// Register creates an account and returns a token
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid registration payload: "+err.Error())
		return
	}

	user, token, err := h.auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			util.RespondWithAPIError(c, apierrors.AlreadyExists("email"))
		case errors.Is(err, auth.ErrUsernameExists):
			util.RespondWithAPIError(c, apierrors.AlreadyExists("username"))
		default:
			logger.ErrorWithFields("registration failed", err, zap.String("email", req.Email))
			util.RespondInternalError(c, "could not create account")
		}
		return
	}

	logger.InfoWithFields("user registered",
		zap.String("user_id", user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user.Public()})
}

// Login verifies credentials and returns a token
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid login payload")
		return
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			util.RespondUnauthorized(c, "invalid email or password")
		case errors.Is(err, auth.ErrAccountBanned):
			util.RespondWithAPIError(c, apierrors.Banned())
		default:
			logger.ErrorWithFields("login failed", err)
			util.RespondInternalError(c, "could not log in")
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: user.Public()})
}

// AuthMiddleware validates the bearer token, loads the user and stores it
// in the gin context. Banned users are rejected here so a ban takes effect
// on their next request.
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			util.RespondUnauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		userID, err := h.auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			util.RespondUnauthorized(c, "account no longer exists")
			c.Abort()
			return
		}
		if user.IsBanned {
			util.RespondWithAPIError(c, apierrors.Banned())
			c.Abort()
			return
		}

		// last_active_at is refreshed at most once a minute per user
		if user.LastActiveAt == nil || time.Since(*user.LastActiveAt) > time.Minute {
			database.DB.Model(&user).Update("last_active_at", time.Now().UTC())
		}

		c.Set(util.ContextUserKey, &user)
		c.Set(util.ContextUserIDKey, user.ID)
		c.Next()
	}
}
