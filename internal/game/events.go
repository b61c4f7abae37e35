package game

import (
	"fmt"
	"log"
	"time"
)

// EventType names the notifications a session emits to its collaborators.
type EventType string

const (
	EventReveal         EventType = "reveal"
	EventGoalProgress   EventType = "goal_progress"
	EventStageStarted   EventType = "stage_started"
	EventStageComplete  EventType = "stage_complete"
	EventGameOver       EventType = "game_over"
	EventSessionExpired EventType = "session_expired"
)

// Event is delivered to an EventSink after the step or command that caused it.
type Event struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"session_id"`
	TypeID    TypeID           `json:"type_id"`
	TypeName  string           `json:"type_name,omitempty"`
	Score     int              `json:"score"`
	Phase     Phase            `json:"phase"`
	Progress  *ProgressSummary `json:"progress,omitempty"`
	At        time.Time        `json:"at"`
}

// EventSink receives session events. Implementations must not block for long;
// returned errors are logged by the caller and otherwise ignored.
type EventSink interface {
	Publish(ev Event) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event) error

func (f EventSinkFunc) Publish(ev Event) error { return f(ev) }

// MultiSink fans an event out to every sink, continuing past failures.
type MultiSink []EventSink

func (m MultiSink) Publish(ev Event) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := safePublish(s, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// safePublish converts a panicking sink into an error.
func safePublish(sink EventSink, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event sink panic: %v", r)
		}
	}()
	return sink.Publish(ev)
}

// deliver publishes events and logs any failure; the simulation never sees it.
func deliver(sink EventSink, events []Event) {
	if sink == nil {
		return
	}
	for _, ev := range events {
		if err := safePublish(sink, ev); err != nil {
			log.Printf("[EVENTS] %s for session %s failed: %v", ev.Type, ev.SessionID, err)
		}
	}
}
