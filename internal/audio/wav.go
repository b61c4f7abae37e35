package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/notedrop/backend/internal/game"
)

// memFile is an in-memory io.WriteSeeker; wav.Encode seeks back to patch
// the RIFF header sizes.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}

// RenderWAV encodes t as 16-bit mono PCM.
func RenderWAV(t Tone, rate beep.SampleRate) ([]byte, error) {
	f := &memFile{}
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, NewToneStreamer(t, rate), format); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	return f.buf, nil
}

// ToneCache renders each type's WAV once per sample rate.
type ToneCache struct {
	rate  beep.SampleRate
	cache map[game.TypeID][]byte
	mu    sync.RWMutex
}

func NewToneCache(sampleRate int) *ToneCache {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &ToneCache{
		rate:  beep.SampleRate(sampleRate),
		cache: make(map[game.TypeID][]byte),
	}
}

// WAV returns the rendered reveal tone for id.
func (c *ToneCache) WAV(id game.TypeID) ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("unknown type %d", id)
	}

	c.mu.RLock()
	b, ok := c.cache[id]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.cache[id]; ok {
		return b, nil
	}
	b, err := RenderWAV(ToneFor(id), c.rate)
	if err != nil {
		return nil, err
	}
	c.cache[id] = b
	return b, nil
}
