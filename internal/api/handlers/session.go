package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/game"
)

// CreateSession starts a session, optionally straight into a stage, and
// returns the token that controls it.
func CreateSession(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StageIndex *int `json:"stage_index"`
		}
		// Empty body means "open on the stage list".
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		s, err := sm.CreateSession(req.StageIndex)
		if err != nil {
			respondSessionError(c, err)
			return
		}

		token, exp, err := IssueSessionToken(cfg, s.ID)
		if err != nil {
			log.Printf("[SESSION] Failed to sign token for %s: %v", s.ID, err)
			sm.Remove(s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"token":      token,
			"expires_at": exp,
			"snapshot":   s.Snapshot(),
		})
	}
}

// GetSession returns the current frame.
func GetSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sm.Get(c.Param("id"))
		if err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// DropToken drops the offered token at x. Drops outside Playing are not
// errors; they report accepted=false.
func DropToken(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			X *float64 `json:"x" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x is required"})
			return
		}

		id := c.Param("id")
		accepted, err := sm.Drop(id, *req.X)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": accepted})
	}
}

// RestartSession replays the current stage.
func RestartSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := sm.Restart(id); err != nil {
			respondSessionError(c, err)
			return
		}
		respondSnapshot(c, sm, id)
	}
}

// SelectStage starts the requested stage.
func SelectStage(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Index *int `json:"index" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
			return
		}

		id := c.Param("id")
		if err := sm.SelectStage(id, *req.Index); err != nil {
			respondSessionError(c, err)
			return
		}
		respondSnapshot(c, sm, id)
	}
}

// NextStage moves on from a cleared stage.
func NextStage(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		started, err := sm.NextStage(id)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		s, err := sm.Get(id)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"started": started, "snapshot": s.Snapshot()})
	}
}

// OpenStages returns the session to the stage list.
func OpenStages(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := sm.OpenStageSelect(id); err != nil {
			respondSessionError(c, err)
			return
		}
		respondSnapshot(c, sm, id)
	}
}

// DeleteSession ends a session.
func DeleteSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sm.Remove(c.Param("id")) {
			respondSessionError(c, game.ErrSessionNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondSnapshot(c *gin.Context, sm *game.SessionManager, id string) {
	s, err := sm.Get(id)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, game.ErrStageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
	case errors.Is(err, game.ErrStageUnplayable):
		c.JSON(http.StatusConflict, gin.H{"error": "stage is not playable yet"})
	case errors.Is(err, game.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many active sessions"})
	default:
		log.Printf("[SESSION] unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
