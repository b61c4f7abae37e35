// Package playback sends reveal tones to the local sound device. Only the
// terminal client links it; the server renders tones without a device.
package playback

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/notedrop/backend/internal/audio"
	"github.com/notedrop/backend/internal/game"
)

// Player plays reveal tones on the local speaker.
type Player struct {
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	mu          sync.Mutex
}

func NewPlayer(sampleRate int) *Player {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &Player{rate: beep.SampleRate(sampleRate), mixer: &beep.Mixer{}}
}

// Initialize opens the speaker. Safe to call more than once.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences anything still sounding.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// PlayType starts the reveal tone of id without waiting for it.
func (p *Player) PlayType(id game.TypeID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized || !id.Valid() {
		return
	}
	speaker.Lock()
	p.mixer.Add(audio.NewToneStreamer(audio.ToneFor(id), p.rate))
	speaker.Unlock()
}

// Publish plays reveal events; every other event is ignored.
func (p *Player) Publish(ev game.Event) error {
	if ev.Type != game.EventReveal {
		return nil
	}
	log.Printf("[AUDIO] reveal %s", ev.TypeName)
	p.PlayType(ev.TypeID)
	return nil
}
