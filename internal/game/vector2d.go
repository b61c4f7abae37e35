package game

import "math"

// Vec2 is a 2D vector in arena coordinates (pixels, y grows downward).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

// Rotate turns v by the angle whose sine and cosine are given. Passing -sin
// rotates into a frame aligned with that angle; passing sin rotates back.
func (v Vec2) Rotate(sin, cos float64) Vec2 {
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.Y*cos + v.X*sin,
	}
}

// Settled reports whether both velocity components are under threshold.
func (v Vec2) Settled(threshold float64) bool {
	return math.Abs(v.X) < threshold && math.Abs(v.Y) < threshold
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
