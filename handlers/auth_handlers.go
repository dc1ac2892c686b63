package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"journeylens/api/middleware"
	"journeylens/api/models"
	"journeylens/api/store"
	"journeylens/api/utils"
)

// AnalystRepository is the subset of store.AnalystStore the auth handlers use.
type AnalystRepository interface {
	CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error)
	GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error)
}

type AuthHandlers struct {
	Analysts AnalystRepository
	Tokens   *utils.TokenManager
	logger   *zap.Logger
}

func NewAuthHandlers(analysts AnalystRepository, tokens *utils.TokenManager, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{Analysts: analysts, Tokens: tokens, logger: logger}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	_, err := h.Analysts.GetAnalystByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Analyst with this email already exists"})
		return
	}
	if !errors.Is(err, store.ErrAnalystNotFound) {
		h.logger.Error("database error during signup email check", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check analyst existence"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	analyst, err := h.Analysts.CreateAnalyst(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrAnalystExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Analyst with this email already exists"})
			return
		}
		h.logger.Error("failed to create analyst", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register analyst"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Analyst registered successfully", "email": analyst.Email})
}

// Login checks credentials and sets the session token cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	analyst, err := h.Analysts.GetAnalystByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Info("login failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(analyst.HashedPassword, []byte(req.Password)); err != nil {
		h.logger.Info("login failed: password mismatch", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.Tokens.Generate(analyst)
	if err != nil {
		h.logger.Error("failed to generate JWT", zap.Int("analyst_id", analyst.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(middleware.TokenCookie, tokenString, int(h.Tokens.TTL().Seconds()), "/", "", false, true)

	h.logger.Info("analyst logged in", zap.Int("analyst_id", analyst.ID))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"email":   analyst.Email,
		"token":   tokenString,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
