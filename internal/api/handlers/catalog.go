package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/notedrop/backend/internal/audio"
	"github.com/notedrop/backend/internal/game"
)

type stageGoal struct {
	TypeID game.TypeID `json:"type_id"`
	Name   string      `json:"name"`
	Target int         `json:"target"`
}

type stageResp struct {
	Index    int         `json:"index"`
	Title    string      `json:"title"`
	Playable bool        `json:"playable"`
	Goals    []stageGoal `json:"goals"`
}

// ListStages returns the stage table with goal names resolved.
func ListStages(stages []game.Stage) gin.HandlerFunc {
	resp := make([]stageResp, 0, len(stages))
	for i, st := range stages {
		r := stageResp{Index: i, Title: st.Title, Playable: st.Playable(), Goals: []stageGoal{}}
		for _, id := range st.GoalTypes() {
			r.Goals = append(r.Goals, stageGoal{TypeID: id, Name: game.NameOf(id), Target: st.Goals[id]})
		}
		resp = append(resp, r)
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"stages": resp})
	}
}

type typeResp struct {
	game.TokenType
	PromotesTo *game.TypeID `json:"promotes_to"`
	Tone       audio.Tone   `json:"tone"`
}

// ListTypes returns the token catalog.
func ListTypes(c *gin.Context) {
	types := game.Types()
	resp := make([]typeResp, 0, len(types))
	for _, tt := range types {
		r := typeResp{TokenType: tt, Tone: audio.ToneFor(tt.ID)}
		if next, ok := game.PromotionOf(tt.ID); ok {
			r.PromotesTo = &next
		}
		resp = append(resp, r)
	}
	c.JSON(http.StatusOK, gin.H{"types": resp})
}

// GetTone serves a type's reveal tone as WAV. The path segment is "<id>.wav".
func GetTone(cache *audio.ToneCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSuffix(c.Param("file"), ".wav")
		n, err := strconv.Atoi(raw)
		id := game.TypeID(n)
		if err != nil || !id.Valid() {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown type"})
			return
		}

		b, err := cache.WAV(id)
		if err != nil {
			log.Printf("[AUDIO] render failed for type %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "audio/wav", b)
	}
}
