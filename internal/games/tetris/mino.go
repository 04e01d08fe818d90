// Package tetris implements the deterministic simulation of one player's
// falling-block game: pieces, the well, piece generation, input translation
// and the command engine that mutates a Unit.
package tetris

import (
	"github.com/vovakirdan/tui-tetris/internal/core"
)

// Shape identifies one of the seven tetromino kinds.
type Shape uint8

const (
	ShapeL Shape = iota
	ShapeJ
	ShapeO
	ShapeZ
	ShapeS
	ShapeT
	ShapeI
)

// Shapes lists every kind in constructor order. The fair randomizer refills
// its bag in this order before shuffling.
var Shapes = [...]Shape{ShapeL, ShapeJ, ShapeO, ShapeZ, ShapeS, ShapeT, ShapeI}

func (s Shape) String() string {
	switch s {
	case ShapeL:
		return "L"
	case ShapeJ:
		return "J"
	case ShapeO:
		return "O"
	case ShapeZ:
		return "Z"
	case ShapeS:
		return "S"
	case ShapeT:
		return "T"
	case ShapeI:
		return "I"
	default:
		return "?"
	}
}

// Mino is a tetromino instance: four absolute cells plus the pivot they
// rotate around.
type Mino struct {
	Shape    Shape         `json:"shape"`
	Origin   core.Vec2F    `json:"origin"`
	Rotation int           `json:"rotation"`
	Blocks   [4]core.Vec2  `json:"blocks"`
	Colors   [4]core.Color `json:"colors"`
}

type shapeDef struct {
	origin core.Vec2F
	color  core.Color
	blocks [4]core.Vec2
}

// Spawn layouts, top-left anchored at (0, 0).
var shapeDefs = [...]shapeDef{
	ShapeL: {core.Vec2F{X: 0, Y: 1}, core.ColorBlue, [4]core.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}}},
	ShapeJ: {core.Vec2F{X: 1, Y: 1}, core.ColorOrange, [4]core.Vec2{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}},
	ShapeO: {core.Vec2F{X: 0.5, Y: 0.5}, core.ColorYellow, [4]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}},
	ShapeZ: {core.Vec2F{X: 1, Y: 1}, core.ColorGreen, [4]core.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 2, Y: 0}}},
	ShapeS: {core.Vec2F{X: 1, Y: 1}, core.ColorPurple, [4]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
	ShapeT: {core.Vec2F{X: 1, Y: 1}, core.ColorPink, [4]core.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 0}}},
	ShapeI: {core.Vec2F{X: 1.5, Y: 0.5}, core.ColorCyan, [4]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}},
}

// NewMino returns a piece of the given shape in spawn orientation.
func NewMino(s Shape) Mino {
	def := shapeDefs[s]
	m := Mino{
		Shape:  s,
		Origin: def.origin,
		Blocks: def.blocks,
	}
	for i := range m.Colors {
		m.Colors[i] = def.color
	}
	return m
}

// Translate moves the piece and its pivot by d.
func (m *Mino) Translate(d core.Vec2) {
	m.Origin = m.Origin.Add(d.Float())
	for i := range m.Blocks {
		m.Blocks[i] = m.Blocks[i].Add(d)
	}
}

// RotR rotates a quarter turn clockwise about the pivot.
func (m *Mino) RotR() {
	m.Rotation = core.EuclidMod(m.Rotation+1, 4)
	for i, b := range m.Blocks {
		m.Blocks[i] = b.Float().Sub(m.Origin).Rot90R().Add(m.Origin).Round()
	}
}

// RotL rotates a quarter turn counter-clockwise about the pivot.
func (m *Mino) RotL() {
	m.Rotation = core.EuclidMod(m.Rotation-1, 4)
	for i, b := range m.Blocks {
		m.Blocks[i] = b.Float().Sub(m.Origin).Rot90L().Add(m.Origin).Round()
	}
}

// Shadow returns a recolored copy used only for the landing preview.
func (m Mino) Shadow() Mino {
	for i := range m.Colors {
		m.Colors[i] = core.ColorShadow
	}
	return m
}

// Bounds returns the smallest and largest block coordinates.
func (m Mino) Bounds() (lo, hi core.Vec2) {
	lo, hi = m.Blocks[0], m.Blocks[0]
	for _, b := range m.Blocks[1:] {
		lo.X = core.Min(lo.X, b.X)
		lo.Y = core.Min(lo.Y, b.Y)
		hi.X = core.Max(hi.X, b.X)
		hi.Y = core.Max(hi.Y, b.Y)
	}
	return lo, hi
}

// Size returns the width and height of the bounding box in cells.
func (m Mino) Size() core.Vec2 {
	lo, hi := m.Bounds()
	return core.V(hi.X-lo.X+1, hi.Y-lo.Y+1)
}

// Reset returns the piece to spawn orientation with its bounding box at (0, 0).
func (m *Mino) Reset() {
	for range m.Rotation {
		m.RotL()
	}
	lo, _ := m.Bounds()
	m.Translate(lo.Neg())
}

// Center shifts a piece sitting at column 0 to the middle of a well.
func (m *Mino) Center(cols int) {
	m.Translate(core.V((cols-m.Size().X)/2, 0))
}
