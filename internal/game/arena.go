package game

import "time"

// Physics and arena constants. These are fixed at compile time; sessions
// cannot override them.
const (
	ArenaWidth  = 400.0
	ArenaHeight = 600.0
	DropLineY   = 150.0
	SpawnY      = 50.0

	Gravity         = 0.3
	Friction        = 0.99
	WallRestitution = -0.8
	FloorDamping    = 0.95
	SettleSpeed     = 0.3

	MergeCooldown = 180 * time.Millisecond
	VanishDelay   = 220 * time.Millisecond
	DropGrace     = 1000 * time.Millisecond

	// FrameInterval is one display frame at 60 Hz; the runner steps once per frame.
	FrameInterval = time.Second / 60
)

// MergePopVelocity is applied to a token that just absorbed its partner.
var MergePopVelocity = Vec2{X: 0, Y: -2}

// Arena describes the container bounds tokens are clamped to.
type Arena struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	DropLineY float64 `json:"drop_line_y"`
	SpawnY    float64 `json:"spawn_y"`
}

// StandardArena returns the arena every session plays in.
func StandardArena() Arena {
	return Arena{
		Width:     ArenaWidth,
		Height:    ArenaHeight,
		DropLineY: DropLineY,
		SpawnY:    SpawnY,
	}
}

// ClampX keeps a token of radius r fully inside the side walls.
func (a Arena) ClampX(x, r float64) float64 {
	if x < r {
		return r
	}
	if x > a.Width-r {
		return a.Width - r
	}
	return x
}
