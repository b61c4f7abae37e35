package middleware

import (
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/notedrop/backend/internal/config"
)

// Vite dev server, both spellings of localhost.
var devOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// CORSMiddleware returns a CORS middleware configured for the environment.
// Browsers send the session token as a bearer header, so credentials stay off.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	log.Printf("[CORS] Environment: %s, allowed origins: %v", cfg.Environment, origins)

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Admin-Phone", "X-Admin-Token", "Accept", "Cache-Control",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour, // Cache preflight responses
		AllowOrigins:  origins,
	}
	if len(origins) == 0 {
		log.Printf("[CORS] no origins configured; cross-origin requests refused")
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(corsConfig)
}

// AllowedOrigins lists the browser origins allowed to call the API. Outside
// production the local dev server is always included.
func AllowedOrigins(cfg *config.Config) []string {
	var origins []string
	if !cfg.IsProduction() {
		origins = append(origins, devOrigins...)
	}
	if cfg.FrontendURL != "" && !slices.Contains(origins, cfg.FrontendURL) {
		origins = append(origins, cfg.FrontendURL)
	}
	return origins
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check for WebSocket upgrade requests
		if !strings.EqualFold(c.GetHeader("Connection"), "upgrade") ||
			!strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "WebSocket origin required"})
			return
		}
		if !originAllowed(cfg, origin) {
			log.Printf("[CORS] websocket origin %s rejected", origin)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
			return
		}
		c.Next()
	}
}

// originAllowed also admits any localhost port outside production, for
// dev servers other than Vite.
func originAllowed(cfg *config.Config, origin string) bool {
	if slices.Contains(AllowedOrigins(cfg), origin) {
		return true
	}
	if cfg.IsProduction() {
		return false
	}
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}
