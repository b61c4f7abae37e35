package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/database"
	"github.com/notedrop/backend/internal/game"
	"github.com/notedrop/backend/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status. Postgres and redis are optional,
// so their state is reported but never fails the check.
func HealthCheck(sm *game.SessionManager, db *sqlx.DB, rdb *goredis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "notedrop-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": sm.Count(),
			"database": database.Status(ctx, db),
			"redis":    redis.Status(ctx, rdb),
		})
	}
}
