package playback

import (
	"testing"

	"github.com/notedrop/backend/internal/game"
)

func TestPlayerIgnoresNonReveal(t *testing.T) {
	p := NewPlayer(0)
	// Not initialized: nothing plays and nothing fails.
	if err := p.Publish(game.Event{Type: game.EventGameOver}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Publish(game.Event{Type: game.EventReveal, TypeID: game.Quarter}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultSampleRate(t *testing.T) {
	if p := NewPlayer(-1); p.rate != 44100 {
		t.Errorf("expected 44100, got %d", p.rate)
	}
}
