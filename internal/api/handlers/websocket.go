package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/ws"
)

// HandleSessionWebSocket streams a session's frames and events.
func HandleSessionWebSocket(cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(func(token string) (string, error) {
		return ParseSessionToken(cfg, token)
	})
}
