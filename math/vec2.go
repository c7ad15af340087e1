package math

import "github.com/chewxy/math32"

// Vec2 is a point or offset in texel space.
type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// MulVec multiplies component-wise.
func (v Vec2) MulVec(other Vec2) Vec2 {
	return Vec2{X: v.X * other.X, Y: v.Y * other.Y}
}

func (v Vec2) Floor() Vec2 {
	return Vec2{X: math32.Floor(v.X), Y: math32.Floor(v.Y)}
}

// Fract returns the fractional part of each component, v - floor(v).
func (v Vec2) Fract() Vec2 {
	return v.Sub(v.Floor())
}
