package game

import (
	"math"
	"time"
)

// Token is a live, simulated piece on the field.
type Token struct {
	ID            int       `json:"id"`
	Type          TypeID    `json:"type_id"`
	Position      Vec2      `json:"position"`
	Velocity      Vec2      `json:"velocity"`
	Radius        float64   `json:"radius"`
	DropTime      time.Time `json:"drop_time"`
	CooldownUntil time.Time `json:"cooldown_until,omitempty"` // zero when not cooling down
	VanishAt      time.Time `json:"vanish_at,omitempty"`      // zero when not vanishing
}

// Vanishing reports whether the token is scheduled for removal.
func (t *Token) Vanishing() bool {
	return !t.VanishAt.IsZero()
}

// CoolingDown reports whether the token merged too recently to merge again.
func (t *Token) CoolingDown(now time.Time) bool {
	return !t.CooldownUntil.IsZero() && now.Before(t.CooldownUntil)
}

// Opacity fades linearly to zero over the final VanishDelay before removal.
func (t *Token) Opacity(now time.Time) float64 {
	if !t.Vanishing() {
		return 1
	}
	o := float64(t.VanishAt.Sub(now)) / float64(VanishDelay)
	return math.Max(0, math.Min(1, o))
}

// CollisionEvent records something that happened during a step.
type CollisionEvent struct {
	Type     string  `json:"type"` // "merge", "bounce", "expire"
	TokenID  int     `json:"token_id"`
	TargetID int     `json:"target_id,omitempty"`
	Speed    float64 `json:"speed"`
}

// StepResult summarises one world step.
type StepResult struct {
	Merges  int
	Expired int
	Lost    bool
}

// MergeFunc is invoked for an overlapping promotable pair. The world removes
// secondary from the field after it returns.
type MergeFunc func(primary, secondary *Token)

// World owns the live token set.
type World struct {
	Arena  Arena
	Tokens []*Token
	Events []CollisionEvent
	nextID int
}

func NewWorld(arena Arena) *World {
	return &World{
		Arena:  arena,
		Tokens: make([]*Token, 0, 32),
		Events: make([]CollisionEvent, 0),
	}
}

// Reset clears the field and restarts token ids.
func (w *World) Reset() {
	w.Tokens = w.Tokens[:0]
	w.Events = w.Events[:0]
	w.nextID = 0
}

// Drop adds a token of type id at the spawn height, clamped inside the walls.
func (w *World) Drop(id TypeID, x float64, now time.Time) *Token {
	r := RadiusOf(id)
	t := &Token{
		ID:       w.nextID,
		Type:     id,
		Position: NewVec2(w.Arena.ClampX(x, r), w.Arena.SpawnY),
		Radius:   r,
		DropTime: now,
	}
	w.nextID++
	w.Tokens = append(w.Tokens, t)
	return t
}

// Find returns the live token with the given id.
func (w *World) Find(id int) *Token {
	for _, t := range w.Tokens {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Step advances the simulation by one frame.
func (w *World) Step(now time.Time, onMerge MergeFunc) StepResult {
	w.Events = w.Events[:0]
	var res StepResult

	w.integrate()
	res.Expired = w.expire(now)
	res.Merges = w.collide(now, onMerge)
	res.Lost = w.overLine(now)
	return res
}

func (w *World) integrate() {
	for _, t := range w.Tokens {
		if t.Vanishing() {
			continue
		}
		t.Velocity.Y += Gravity
		t.Velocity = t.Velocity.Times(Friction)
		t.Position = t.Position.Plus(t.Velocity)

		if t.Position.X-t.Radius < 0 {
			t.Position.X = t.Radius
			t.Velocity.X *= WallRestitution
		}
		if t.Position.X+t.Radius > w.Arena.Width {
			t.Position.X = w.Arena.Width - t.Radius
			t.Velocity.X *= WallRestitution
		}
		if t.Position.Y+t.Radius > w.Arena.Height {
			t.Position.Y = w.Arena.Height - t.Radius
			t.Velocity.Y *= WallRestitution
			t.Velocity.X *= FloorDamping
		}
	}
}

func (w *World) expire(now time.Time) int {
	kept := w.Tokens[:0]
	removed := 0
	for _, t := range w.Tokens {
		if t.Vanishing() && !now.Before(t.VanishAt) {
			w.Events = append(w.Events, CollisionEvent{Type: "expire", TokenID: t.ID})
			removed++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(w.Tokens); i++ {
		w.Tokens[i] = nil
	}
	w.Tokens = kept
	return removed
}

// collide checks every unordered pair in index order.
func (w *World) collide(now time.Time, onMerge MergeFunc) int {
	merges := 0
	for i := 0; i < len(w.Tokens); i++ {
		for j := i + 1; j < len(w.Tokens); j++ {
			a, b := w.Tokens[i], w.Tokens[j]
			if a.Vanishing() || b.Vanishing() {
				continue
			}
			if a.CoolingDown(now) || b.CoolingDown(now) {
				continue
			}

			delta := b.Position.Minus(a.Position)
			dist := delta.Magnitude()
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}

			if _, ok := PromotionOf(a.Type); ok && a.Type == b.Type {
				w.Events = append(w.Events, CollisionEvent{
					Type:     "merge",
					TokenID:  a.ID,
					TargetID: b.ID,
					Speed:    a.Velocity.Minus(b.Velocity).Magnitude(),
				})
				if onMerge != nil {
					onMerge(a, b)
				}
				w.remove(j)
				merges++
				break
			}

			bounce(a, b, delta, dist, minDist)
			w.Events = append(w.Events, CollisionEvent{
				Type:     "bounce",
				TokenID:  a.ID,
				TargetID: b.ID,
				Speed:    a.Velocity.Minus(b.Velocity).Magnitude(),
			})
		}
	}
	return merges
}

// bounce applies an equal-mass elastic response: both velocities are rotated
// into the collision-normal frame, their normal components swapped, and
// rotated back. The pair is then pushed apart by half the overlap each.
func bounce(a, b *Token, delta Vec2, dist, minDist float64) {
	angle := math.Atan2(delta.Y, delta.X)
	sin, cos := math.Sin(angle), math.Cos(angle)

	va := a.Velocity.Rotate(-sin, cos)
	vb := b.Velocity.Rotate(-sin, cos)
	va.X, vb.X = vb.X, va.X

	a.Velocity = va.Rotate(sin, cos)
	b.Velocity = vb.Rotate(sin, cos)

	push := NewVec2(cos, sin).Times((minDist - dist) * 0.5)
	a.Position = a.Position.Minus(push)
	b.Position = b.Position.Plus(push)
}

func (w *World) remove(i int) {
	copy(w.Tokens[i:], w.Tokens[i+1:])
	w.Tokens[len(w.Tokens)-1] = nil
	w.Tokens = w.Tokens[:len(w.Tokens)-1]
}

// overLine reports a settled token poking above the drop line after its
// grace period.
func (w *World) overLine(now time.Time) bool {
	for _, t := range w.Tokens {
		if t.Vanishing() {
			continue
		}
		if t.Position.Y-t.Radius >= w.Arena.DropLineY {
			continue
		}
		if !t.Velocity.Settled(SettleSpeed) {
			continue
		}
		if now.Sub(t.DropTime) > DropGrace {
			return true
		}
	}
	return false
}

// KineticEnergy sums v² over live tokens, treating masses as equal.
func (w *World) KineticEnergy() float64 {
	e := 0.0
	for _, t := range w.Tokens {
		e += t.Velocity.MagnitudeSquared()
	}
	return e / 2
}
