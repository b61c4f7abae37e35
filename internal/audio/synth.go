package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// sine is a fixed-length sine oscillator.
type sine struct {
	freq     float64
	phase    float64
	position int
	duration int
	rate     beep.SampleRate
}

func newSine(freq float64, samples int, rate beep.SampleRate) *sine {
	return &sine{freq: freq, duration: samples, rate: rate}
}

func (o *sine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = v
		samples[i][1] = v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *sine) Err() error { return nil }

// expEnvelope ramps gain exponentially from floor to peak over the attack,
// then back down to floor by decayEnd, and holds floor afterwards.
type expEnvelope struct {
	streamer beep.Streamer
	rate     beep.SampleRate
	position int
	peak     float64
	attack   float64 // seconds
	decayEnd float64 // seconds
}

func (e *expEnvelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := e.gainAt(float64(e.position) / float64(e.rate))
		samples[i][0] *= g
		samples[i][1] *= g
		e.position++
	}
	return n, ok
}

func (e *expEnvelope) Err() error { return e.streamer.Err() }

func (e *expEnvelope) gainAt(t float64) float64 {
	switch {
	case t < e.attack:
		return floor * math.Pow(e.peak/floor, t/e.attack)
	case t < e.decayEnd:
		return e.peak * math.Pow(floor/e.peak, (t-e.attack)/(e.decayEnd-e.attack))
	default:
		return floor
	}
}

// NewToneStreamer synthesizes t at rate.
func NewToneStreamer(t Tone, rate beep.SampleRate) beep.Streamer {
	total := int(math.Round(t.Length() * float64(rate)))
	return &expEnvelope{
		streamer: newSine(t.Hz(), total, rate),
		rate:     rate,
		peak:     t.Peak,
		attack:   attackSeconds,
		decayEnd: math.Max(minDecaySeconds, t.Seconds),
	}
}
