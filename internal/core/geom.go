// Package core provides fundamental types shared by the simulation and the
// platform layers. It has no external dependencies so game logic stays pure
// and testable.
package core

import "math"

// Vec2 is an integer grid coordinate. X grows to the right, Y grows downward
// (row 0 is the top of a well).
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// V is shorthand for constructing a Vec2.
func V(x, y int) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Neg returns -v.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Float converts the vector to its continuous counterpart.
func (v Vec2) Float() Vec2F {
	return Vec2F{X: float64(v.X), Y: float64(v.Y)}
}

// Vec2F is a continuous coordinate, used for rotation pivots that may sit
// between cells.
type Vec2F struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2F) Add(o Vec2F) Vec2F {
	return Vec2F{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2F) Sub(o Vec2F) Vec2F {
	return Vec2F{X: v.X - o.X, Y: v.Y - o.Y}
}

// Rot90R rotates a quarter turn clockwise on a y-down grid.
func (v Vec2F) Rot90R() Vec2F {
	return Vec2F{X: -v.Y, Y: v.X}
}

// Rot90L rotates a quarter turn counter-clockwise on a y-down grid.
func (v Vec2F) Rot90L() Vec2F {
	return Vec2F{X: v.Y, Y: -v.X}
}

// Round snaps the vector to the nearest grid cell, halves away from zero.
func (v Vec2F) Round() Vec2 {
	return Vec2{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Rect represents an axis-aligned box on the screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// EuclidMod returns a mod m in [0, m) for positive m.
func EuclidMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
