package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/notedrop/backend/internal/config"
)

var errInvalidToken = errors.New("invalid token")

// IssueSessionToken signs a token granting control of one session.
func IssueSessionToken(cfg *config.Config, sessionID string) (string, time.Time, error) {
	minutes := cfg.SessionTimeoutMin
	if minutes <= 0 {
		minutes = 30
	}
	exp := time.Now().Add(time.Duration(minutes) * time.Minute)
	claims := jwt.MapClaims{"session_id": sessionID, "exp": jwt.NewNumericDate(exp).Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// ParseSessionToken validates a session token and returns its session id.
func ParseSessionToken(cfg *config.Config, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", errInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", errInvalidToken
	}
	return sessionID, nil
}

// SessionAuthMiddleware requires a bearer token granting the :id session.
func SessionAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sessionID, err := ParseSessionToken(cfg, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if sessionID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant this session"})
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}
