package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/admin"
	"github.com/notedrop/backend/internal/game"
	"github.com/notedrop/backend/internal/models"
)

// AdminAuthMiddleware validates X-Admin-Phone / X-Admin-Token against the
// bcrypt hash stored for the account.
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin unavailable"})
			return
		}

		phone := c.GetHeader("X-Admin-Phone")
		token := c.GetHeader("X-Admin-Token")
		if phone == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		acc, err := admin.Authenticate(db, phone, token)
		if err != nil {
			if !errors.Is(err, admin.ErrAccountNotFound) && !errors.Is(err, admin.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			audit(c, db, phone, "auth", nil, false)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if !admin.IPAllowed(acc, c.ClientIP()) {
			log.Printf("[ADMIN] %s rejected from ip %s", phone, c.ClientIP())
			audit(c, db, phone, "ip_denied", nil, false)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "IP not allowed"})
			return
		}

		c.Set("admin_account", acc)
		c.Set("admin_phone", acc.Phone)
		c.Next()
	}
}

// RequireAdminRole lets the request through only for accounts holding role.
func RequireAdminRole(db *sqlx.DB, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("admin_account")
		acc, ok := v.(*models.AdminAccount)
		if !ok || !admin.HasRole(acc, role) {
			audit(c, db, c.GetString("admin_phone"), "role_denied", map[string]interface{}{"role": role}, false)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing role " + role})
			return
		}
		c.Next()
	}
}

func audit(c *gin.Context, db *sqlx.DB, phone, action string, details map[string]interface{}, success bool) {
	admin.Record(db, admin.Action{
		Phone:   phone,
		IP:      c.ClientIP(),
		Route:   c.FullPath(),
		Name:    action,
		Details: details,
		Success: success,
	})
}

// GetAdminSessions lists live sessions on this instance.
func GetAdminSessions(sm *game.SessionManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := sm.List()
		audit(c, db, c.GetString("admin_phone"), "get_sessions", map[string]interface{}{"count": len(sessions)}, true)
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
	}
}

// GetAdminRuns returns the finished-run audit log.
func GetAdminRuns(sm *game.SessionManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)
		adminPhone := c.GetString("admin_phone")

		runs, err := sm.RecentRuns(limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runs: %v", err)
			audit(c, db, adminPhone, "get_runs", nil, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
			return
		}

		audit(c, db, adminPhone, "get_runs", map[string]interface{}{"count": len(runs)}, true)
		c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
	}
}
