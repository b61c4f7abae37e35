package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/admin"
	"github.com/notedrop/backend/internal/api/handlers"
	"github.com/notedrop/backend/internal/audio"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/game"
	"github.com/notedrop/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes. db and rdb may be nil; admin routes
// then answer 503.
func SetupRoutes(router *gin.Engine, sm *game.SessionManager, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	tones := audio.NewToneCache(cfg.AudioSampleRate)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sm, db, rdb))
		v1.GET("/stages", handlers.ListStages(sm.Stages()))
		v1.GET("/types", handlers.ListTypes)
		v1.GET("/tones/:file", handlers.GetTone(tones))

		v1.POST("/sessions", handlers.CreateSession(sm, cfg))
		v1.GET("/sessions/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(cfg))

		session := v1.Group("/sessions/:id", handlers.SessionAuthMiddleware(cfg))
		{
			session.GET("", handlers.GetSession(sm))
			session.DELETE("", handlers.DeleteSession(sm))
			session.POST("/drop", handlers.DropToken(sm))
			session.POST("/restart", handlers.RestartSession(sm))
			session.POST("/stage", handlers.SelectStage(sm))
			session.POST("/next", handlers.NextStage(sm))
			session.POST("/stages/open", handlers.OpenStages(sm))
		}

		adminGroup := v1.Group("/admin", handlers.AdminAuthMiddleware(db))
		{
			operator := handlers.RequireAdminRole(db, admin.RoleOperator)
			adminGroup.GET("/sessions", operator, handlers.GetAdminSessions(sm, db))
			adminGroup.GET("/runs", operator, handlers.GetAdminRuns(sm, db))
			adminGroup.GET("/audit", handlers.RequireAdminRole(db, admin.RoleAuditor), handlers.GetAdminAuditLogs(db))
		}
	}
}
