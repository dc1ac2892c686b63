package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"journeylens/api/utils"
)

const (
	TokenCookie    = "jwt_token"
	ContextAnalyst = "analyst_id"
	ContextEmail   = "analyst_email"
	apiKeyHeader   = "X-API-KEY"
	bearerPrefix   = "Bearer "
)

// AuthRequired accepts either the configured default API key or a valid JWT
// from the jwt_token cookie or the Authorization header.
func AuthRequired(tokens *utils.TokenManager, defaultKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if defaultKey != "" && c.GetHeader(apiKeyHeader) == defaultKey {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(TokenCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), bearerPrefix)
			if tokenString == "" {
				logger.Debug("no token in cookie or header", zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			logger.Info("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextAnalyst, claims.AnalystID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}
