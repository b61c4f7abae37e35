package audio

import (
	"bytes"
	"go/parser"
	"go/token"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopxl/beep"
	"github.com/notedrop/backend/internal/game"
)

func TestMIDIFromPitch(t *testing.T) {
	cases := map[string]int{
		"A4":  69,
		"C4":  60,
		"C#4": 61,
		"Bb3": 58,
		"G5":  79,
		"C2":  36,
		"H9":  69,
		"":    69,
	}
	for pitch, want := range cases {
		if got := MIDIFromPitch(pitch); got != want {
			t.Errorf("MIDIFromPitch(%q) = %d, want %d", pitch, got, want)
		}
	}
}

func TestHzFromMIDI(t *testing.T) {
	if got := HzFromMIDI(69); got != 440 {
		t.Errorf("A4 should be 440Hz, got %.3f", got)
	}
	if got := HzFromMIDI(81); math.Abs(got-880) > 1e-9 {
		t.Errorf("A5 should be 880Hz, got %.3f", got)
	}
	if got := HzFromMIDI(60); math.Abs(got-261.6256) > 1e-3 {
		t.Errorf("C4 should be ~261.63Hz, got %.3f", got)
	}
}

func TestToneForNotesAndRests(t *testing.T) {
	note := ToneFor(game.Quarter)
	rest := ToneFor(game.QuarterRest)

	if note.Pitch != "C5" || note.Peak != notePeak {
		t.Errorf("unexpected quarter note tone %+v", note)
	}
	if rest.Pitch != "C3" || rest.Peak != restPeak {
		t.Errorf("expected rest two octaves down and quieter, got %+v", rest)
	}
	if MIDIFromPitch(note.Pitch)-MIDIFromPitch(rest.Pitch) != 24 {
		t.Error("rest should sit exactly two octaves below its note")
	}
}

func TestDottedLastsLonger(t *testing.T) {
	plain := SecondsFor(game.TypeOf(game.Quarter))
	dotted := SecondsFor(game.TypeOf(game.DottedQuarter))
	if math.Abs(dotted-plain*1.5) > 1e-9 {
		t.Errorf("dotted should last 1.5× plain: %.3f vs %.3f", dotted, plain)
	}
	if SecondsFor(game.TypeOf(game.Whole)) <= SecondsFor(game.TypeOf(game.Half)) {
		t.Error("whole should outlast half")
	}
}

func TestToneLengthHasFloor(t *testing.T) {
	short := Tone{Seconds: 0.05}
	if got := short.Length(); math.Abs(got-(minStopSeconds+tailSeconds)) > 1e-9 {
		t.Errorf("short tone should stop no earlier than %.2fs, got %.3f", minStopSeconds+tailSeconds, got)
	}
	long := Tone{Seconds: 1}
	if got := long.Length(); math.Abs(got-1.02) > 1e-9 {
		t.Errorf("expected 1.02s, got %.3f", got)
	}
}

func TestEnvelopeShape(t *testing.T) {
	e := &expEnvelope{peak: 0.18, attack: attackSeconds, decayEnd: 0.3}

	if g := e.gainAt(0); math.Abs(g-floor) > 1e-12 {
		t.Errorf("expected floor gain at start, got %g", g)
	}
	if g := e.gainAt(attackSeconds); math.Abs(g-0.18) > 1e-9 {
		t.Errorf("expected peak at end of attack, got %g", g)
	}
	if g := e.gainAt(0.15); g >= 0.18 || g <= floor {
		t.Errorf("expected decaying gain mid-way, got %g", g)
	}
	if g := e.gainAt(0.5); g != floor {
		t.Errorf("expected floor after decay, got %g", g)
	}
}

func TestToneStreamerLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	tone := ToneFor(game.Sixteenth)
	want := int(math.Round(tone.Length() * float64(rate)))

	s := NewToneStreamer(tone, rate)
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			break
		}
	}
	if total != want {
		t.Errorf("expected %d samples, got %d", want, total)
	}
	if peak > tone.Peak+1e-9 {
		t.Errorf("sample exceeded peak %.2f: %.4f", tone.Peak, peak)
	}
}

func TestRenderWAV(t *testing.T) {
	rate := beep.SampleRate(8000)
	tone := ToneFor(game.Eighth)
	b, err := RenderWAV(tone, rate)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("RIFF")) || !bytes.Equal(b[8:12], []byte("WAVE")) {
		t.Fatalf("missing RIFF/WAVE header: %q", b[:12])
	}
	samples := int(math.Round(tone.Length() * float64(rate)))
	if len(b) < samples*2 {
		t.Errorf("expected at least %d data bytes, got %d", samples*2, len(b))
	}
}

func TestToneCache(t *testing.T) {
	c := NewToneCache(8000)

	first, err := c.WAV(game.Half)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := c.WAV(game.Half)
	if &first[0] != &second[0] {
		t.Error("expected the cached render to be reused")
	}
	if _, err := c.WAV(game.TypeID(42)); err == nil {
		t.Error("expected an error for an unknown type")
	}
}

// The server imports this package to render WAVs; it must not link the
// sound device driver.
func TestNoDeviceImports(t *testing.T) {
	matches, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, name := range matches {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range f.Imports {
			if imp.Path.Value == `"github.com/gopxl/beep/speaker"` {
				t.Errorf("%s imports the speaker package", name)
			}
		}
	}
}
