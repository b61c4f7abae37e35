package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"

	"github.com/notedrop/backend/internal/game"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the redis pub/sub channel shared by all instances.
const EventsChannel = "game_events"

var rdbClient *redis.Client

// instanceID tags published events so an instance skips its own echoes.
var instanceID = newInstanceID()

func newInstanceID() string {
	b := make([]byte, 6)
	if _, err := randRead(b); err != nil {
		log.Panicf("[WS] random source failed: %v", err)
	}
	return hex.EncodeToString(b)
}

var randRead = rand.Read

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

type envelope struct {
	Origin string     `json:"origin"`
	Event  game.Event `json:"event"`
}

// EventSink delivers session events to local watchers and, when redis is
// configured, to the other instances.
type EventSink struct {
	hub *Hub
	rdb *redis.Client
}

// NewEventSink builds a sink over hub. rdb may be nil.
func NewEventSink(hub *Hub, rdb *redis.Client) *EventSink {
	return &EventSink{hub: hub, rdb: rdb}
}

func (s *EventSink) Publish(ev game.Event) error {
	deliverLocal(s.hub, ev)
	if s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(envelope{Origin: instanceID, Event: ev})
	if err != nil {
		return err
	}
	return s.rdb.Publish(context.Background(), EventsChannel, b).Err()
}

func deliverLocal(hub *Hub, ev game.Event) {
	hub.BroadcastToSession(ev.SessionID, map[string]interface{}{"type": string(ev.Type), "data": ev})
	if ev.Type == game.EventSessionExpired {
		hub.CloseSession(ev.SessionID)
	}
}

// StartEventSubscriber forwards events published by other instances to the
// local hub.
func StartEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started (instance=%s)", EventsChannel, instanceID)
		for msg := range ch {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			if env.Origin == instanceID {
				continue
			}
			if GameHub.RoomSize(env.Event.SessionID) == 0 {
				continue
			}
			log.Printf("[WS] remote event %s for session %s", env.Event.Type, env.Event.SessionID)
			deliverLocal(GameHub, env.Event)
		}
	}()
}
