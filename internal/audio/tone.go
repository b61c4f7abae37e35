package audio

import (
	"math"
	"regexp"
	"strconv"

	"github.com/notedrop/backend/internal/game"
)

const (
	notePeak = 0.18
	restPeak = 0.06
	floor    = 0.0001

	attackSeconds   = 0.02
	minDecaySeconds = 0.12
	minStopSeconds  = 0.14
	tailSeconds     = 0.02
)

// Tone describes the reveal sound of one token type.
type Tone struct {
	Pitch   string  `json:"pitch"`
	Seconds float64 `json:"seconds"`
	Peak    float64 `json:"peak"`
}

// Length is the full rendered duration in seconds.
func (t Tone) Length() float64 {
	return math.Max(minStopSeconds, t.Seconds) + tailSeconds
}

// Hz returns the tone's frequency.
func (t Tone) Hz() float64 {
	return HzFromMIDI(MIDIFromPitch(t.Pitch))
}

// Longer values sit lower on the staff.
var notePitches = map[game.Duration]string{
	game.DurSixteenth:     "G5",
	game.DurEighth:        "E5",
	game.DurDottedEighth:  "D5",
	game.DurQuarter:       "C5",
	game.DurDottedQuarter: "A4",
	game.DurHalf:          "G4",
	game.DurDottedHalf:    "F4",
	game.DurWhole:         "C4",
}

var baseSeconds = map[game.Duration]float64{
	game.DurSixteenth:     0.22,
	game.DurEighth:        0.32,
	game.DurDottedEighth:  0.32,
	game.DurQuarter:       0.48,
	game.DurDottedQuarter: 0.48,
	game.DurHalf:          0.78,
	game.DurDottedHalf:    0.78,
	game.DurWhole:         1.10,
}

// SecondsFor returns how long a note value sounds; dotted values last half
// again as long.
func SecondsFor(tt game.TokenType) float64 {
	s, ok := baseSeconds[tt.Duration]
	if !ok {
		s = 0.45
	}
	if tt.IsDotted {
		s *= 1.5
	}
	return s
}

// ToneFor derives the reveal tone of a type. Rests are two octaves down and
// quieter.
func ToneFor(id game.TypeID) Tone {
	tt := game.TypeOf(id)
	pitch := notePitches[tt.Duration]
	peak := notePeak
	if tt.IsRest {
		pitch = transposeOctaves(pitch, -2)
		peak = restPeak
	}
	return Tone{Pitch: pitch, Seconds: SecondsFor(tt), Peak: peak}
}

var pitchPattern = regexp.MustCompile(`^([A-G])([#b]?)([0-9])$`)

var stepSemitones = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// MIDIFromPitch parses scientific pitch notation such as "C#4". Anything
// unparseable is A4 (69).
func MIDIFromPitch(pitch string) int {
	m := pitchPattern.FindStringSubmatch(pitch)
	if m == nil {
		return 69
	}
	octave, _ := strconv.Atoi(m[3])
	alter := 0
	switch m[2] {
	case "#":
		alter = 1
	case "b":
		alter = -1
	}
	return (octave+1)*12 + stepSemitones[m[1]] + alter
}

// HzFromMIDI converts a MIDI note number to equal-tempered frequency.
func HzFromMIDI(m int) float64 {
	return 440 * math.Pow(2, float64(m-69)/12)
}

func transposeOctaves(pitch string, n int) string {
	m := pitchPattern.FindStringSubmatch(pitch)
	if m == nil {
		return pitch
	}
	octave, _ := strconv.Atoi(m[3])
	octave += n
	if octave < 0 {
		octave = 0
	}
	return m[1] + m[2] + strconv.Itoa(octave)
}
