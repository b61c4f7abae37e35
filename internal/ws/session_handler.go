package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/notedrop/backend/internal/game"
)

// TokenVerifier resolves a session token to the session id it grants.
type TokenVerifier func(token string) (string, error)

type dropData struct {
	X float64 `json:"x"`
}

type stageData struct {
	Index int `json:"index"`
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// HandleWebSocket upgrades a session's watcher connection. The token query
// parameter must grant the session named in the path.
func HandleWebSocket(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		granted, err := verify(token)
		if err != nil || granted != sessionID {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid session token"})
			return
		}

		s, err := game.Manager.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:      conn,
			hub:       GameHub,
			sessionID: sessionID,
			send:      make(chan []byte, 256),
		}

		// Current frame first so the client can draw before the next tick.
		if data, err := json.Marshal(frameMessage(s.Snapshot())); err == nil {
			client.send <- data
		}

		GameHub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func frameMessage(snap game.Snapshot) map[string]interface{} {
	return map[string]interface{}{"type": "snapshot", "data": snap}
}

// BroadcastFrame pushes a ticked frame to the session's watchers.
func BroadcastFrame(snap game.Snapshot) {
	GameHub.BroadcastToSession(snap.SessionID, frameMessage(snap))
}

// readPump reads commands from the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for session %s: %v", c.sessionID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(game.Manager, msg)
	}
}

// handleMessage applies one client command to the session.
func (c *Client) handleMessage(sm *game.SessionManager, msg WSMessage) {
	switch msg.Type {
	case "drop":
		var data dropData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid drop data")
			return
		}
		accepted, err := sm.Drop(c.sessionID, data.X)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.reply(map[string]interface{}{"type": "drop_result", "accepted": accepted})

	case "restart":
		if err := sm.Restart(c.sessionID); err != nil {
			c.sendError(err.Error())
			return
		}
		c.pushState(sm)

	case "select_stage":
		var data stageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid stage data")
			return
		}
		if err := sm.SelectStage(c.sessionID, data.Index); err != nil {
			c.sendError(stageErrorMessage(err))
			return
		}
		c.pushState(sm)

	case "next_stage":
		if _, err := sm.NextStage(c.sessionID); err != nil {
			c.sendError(err.Error())
			return
		}
		c.pushState(sm)

	case "open_stages":
		if err := sm.OpenStageSelect(c.sessionID); err != nil {
			c.sendError(err.Error())
			return
		}
		c.pushState(sm)

	case "get_state":
		c.pushState(sm)

	default:
		c.sendError("Unknown message type")
	}
}

// pushState broadcasts the current frame; a stopped session has no ticker to
// do it.
func (c *Client) pushState(sm *game.SessionManager) {
	s, err := sm.Get(c.sessionID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.BroadcastToSession(c.sessionID, frameMessage(s.Snapshot()))
}

func stageErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrStageUnplayable):
		return "stage is not playable yet"
	case errors.Is(err, game.ErrStageNotFound):
		return "stage not found"
	}
	return err.Error()
}
