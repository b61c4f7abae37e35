package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/notedrop/backend/internal/game"
)

// Helper to register a connectionless client and wait for the hub to apply it.
func joinClient(t *testing.T, hub *Hub, sessionID string) *Client {
	t.Helper()
	c := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 16)}
	before := hub.RoomSize(sessionID)
	hub.register <- c
	waitFor(t, func() bool { return hub.RoomSize(sessionID) == before+1 })
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func readMessage(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return nil
}

func TestBroadcastReachesOnlyItsSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a1 := joinClient(t, hub, "a")
	a2 := joinClient(t, hub, "a")
	b := joinClient(t, hub, "b")

	hub.BroadcastToSession("a", map[string]string{"type": "ping"})

	for _, c := range []*Client{a1, a2} {
		if msg := readMessage(t, c); msg["type"] != "ping" {
			t.Errorf("unexpected message %v", msg)
		}
	}
	select {
	case <-b.send:
		t.Error("client of another session received the broadcast")
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := joinClient(t, hub, "a")
	hub.unregister <- c
	waitFor(t, func() bool { return hub.RoomSize("a") == 0 })

	if _, ok := <-c.send; ok {
		t.Error("expected send channel closed after unregister")
	}
	// A late reply must not panic on the closed channel.
	c.reply(map[string]string{"type": "late"})
}

func TestEventSinkClosesExpiredSessions(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	c := joinClient(t, hub, "s1")

	sink := NewEventSink(hub, nil)
	if err := sink.Publish(game.Event{Type: game.EventReveal, SessionID: "s1", TypeID: game.Quarter}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, c); msg["type"] != "reveal" {
		t.Errorf("expected reveal, got %v", msg)
	}

	sink.Publish(game.Event{Type: game.EventSessionExpired, SessionID: "s1"})
	if msg := readMessage(t, c); msg["type"] != "session_expired" {
		t.Errorf("expected session_expired, got %v", msg)
	}
	if hub.RoomSize("s1") != 0 {
		t.Error("expected the room to be closed after expiry")
	}
}

func TestHandleMessage(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sm := game.NewSessionManager(nil, nil, nil, nil)
	s, err := sm.CreateSession(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sm.Remove(s.ID)
	c := joinClient(t, hub, s.ID)

	c.handleMessage(sm, WSMessage{Type: "drop", Data: json.RawMessage(`{"x":100}`)})
	msg := readMessage(t, c)
	if msg["type"] != "drop_result" || msg["accepted"] != false {
		t.Errorf("expected rejected drop on the stage list, got %v", msg)
	}

	c.handleMessage(sm, WSMessage{Type: "select_stage", Data: json.RawMessage(`{"index":5}`)})
	if msg := readMessage(t, c); msg["type"] != "error" || msg["message"] != "stage is not playable yet" {
		t.Errorf("expected unplayable error, got %v", msg)
	}

	c.handleMessage(sm, WSMessage{Type: "get_state"})
	msg = readMessage(t, c)
	if msg["type"] != "snapshot" {
		t.Fatalf("expected snapshot, got %v", msg)
	}
	data := msg["data"].(map[string]any)
	if data["phase"] != string(game.PhaseSelecting) {
		t.Errorf("expected SELECTING, got %v", data["phase"])
	}

	c.handleMessage(sm, WSMessage{Type: "dance"})
	if msg := readMessage(t, c); msg["type"] != "error" {
		t.Errorf("expected error for unknown type, got %v", msg)
	}
}

func TestInstanceIDRequiresRandomness(t *testing.T) {
	if id := newInstanceID(); len(id) != 12 || id == newInstanceID() {
		t.Errorf("expected distinct 12 char ids, got %q", id)
	}

	orig := randRead
	randRead = func([]byte) (int, error) { return 0, errors.New("entropy unavailable") }
	defer func() { randRead = orig }()

	defer func() {
		if recover() == nil {
			t.Error("expected a panic on a failed random read")
		}
	}()
	newInstanceID()
}
