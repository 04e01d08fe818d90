package tetris

import (
	"testing"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

func TestRotationRoundTrip(t *testing.T) {
	for _, s := range Shapes {
		m := NewMino(s)
		m.Translate(core.V(3, 7))
		want := m

		for range 4 {
			m.RotR()
		}
		if m != want {
			t.Errorf("%s: four RotR = %v, expected %v", s, m.Blocks, want.Blocks)
		}

		m.RotR()
		m.RotL()
		if m != want {
			t.Errorf("%s: RotR+RotL = %v, expected %v", s, m.Blocks, want.Blocks)
		}
	}
}

func TestResetRestoresSpawn(t *testing.T) {
	for _, s := range Shapes {
		m := NewMino(s)
		m.Translate(core.V(5, 9))
		m.RotR()
		m.RotR()
		m.RotR()
		m.Reset()

		spawn := NewMino(s)
		if m.Blocks != spawn.Blocks {
			t.Errorf("%s: Reset() blocks = %v, expected %v", s, m.Blocks, spawn.Blocks)
		}
		if m.Origin != spawn.Origin {
			t.Errorf("%s: Reset() origin = %v, expected %v", s, m.Origin, spawn.Origin)
		}
		if m.Rotation != 0 {
			t.Errorf("%s: Reset() rotation = %d, expected 0", s, m.Rotation)
		}
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		shape Shape
		cols  int
		lo    int
	}{
		{ShapeO, 10, 4},
		{ShapeI, 10, 3},
		{ShapeT, 10, 3},
		{ShapeL, 10, 4},
		{ShapeI, 4, 0},
	}

	for _, tt := range tests {
		m := NewMino(tt.shape)
		m.Center(tt.cols)
		lo, _ := m.Bounds()
		if lo.X != tt.lo {
			t.Errorf("Center(%d) %s: left = %d, expected %d", tt.cols, tt.shape, lo.X, tt.lo)
		}
	}
}

func TestIRotationIsExact(t *testing.T) {
	m := NewMino(ShapeI)
	m.Translate(core.V(0, 5))
	m.RotR()

	want := [4]core.Vec2{{X: 2, Y: 4}, {X: 2, Y: 5}, {X: 2, Y: 6}, {X: 2, Y: 7}}
	if m.Blocks != want {
		t.Errorf("RotR() = %v, expected %v", m.Blocks, want)
	}
	if m.Rotation != 1 {
		t.Errorf("Rotation = %d, expected 1", m.Rotation)
	}
}
