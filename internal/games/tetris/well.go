package tetris

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// ErrDesync reports a command whose preconditions do not hold on this
// instance. Replicated state has diverged from the peer that issued it.
var ErrDesync = errors.New("tetris: desync")

// Well is the playfield grid. Cells[row][col] holds ColorNone for empty
// cells; row 0 is the top.
type Well struct {
	Cols  int            `json:"cols"`
	Rows  int            `json:"rows"`
	Cells [][]core.Color `json:"cells"`
}

// NewWell creates an empty well.
func NewWell(cols, rows int) *Well {
	w := &Well{Cols: cols, Rows: rows, Cells: make([][]core.Color, rows)}
	for y := range w.Cells {
		w.Cells[y] = make([]core.Color, cols)
	}
	return w
}

// Clone returns a deep copy of the well.
func (w *Well) Clone() *Well {
	c := &Well{Cols: w.Cols, Rows: w.Rows, Cells: make([][]core.Color, w.Rows)}
	for y, row := range w.Cells {
		c.Cells[y] = append([]core.Color(nil), row...)
	}
	return c
}

// InBounds reports whether v lies inside the grid.
func (w *Well) InBounds(v core.Vec2) bool {
	return v.X >= 0 && v.X < w.Cols && v.Y >= 0 && v.Y < w.Rows
}

// At returns the color at v, or ColorNone outside the grid.
func (w *Well) At(v core.Vec2) core.Color {
	if !w.InBounds(v) {
		return core.ColorNone
	}
	return w.Cells[v.Y][v.X]
}

// Occupied reports whether the cell at v holds a block.
func (w *Well) Occupied(v core.Vec2) bool {
	return w.At(v) != core.ColorNone
}

// Collides reports whether m overlaps a wall, the floor or a block. Blocks
// above the top row are only checked against the side walls so pieces can
// rotate and spawn partially outside the well.
func (w *Well) Collides(m *Mino) bool {
	for _, b := range m.Blocks {
		if b.X < 0 || b.X >= w.Cols {
			return true
		}
		if b.Y < 0 {
			continue
		}
		if b.Y >= w.Rows || w.Cells[b.Y][b.X] != core.ColorNone {
			return true
		}
	}
	return false
}

// Fits reports whether m can be locked: every block inside the grid and on
// an empty cell.
func (w *Well) Fits(m *Mino) bool {
	for _, b := range m.Blocks {
		if !w.InBounds(b) || w.Occupied(b) {
			return false
		}
	}
	return true
}

// Place writes the piece into the grid. The caller must check Fits first; a
// violated precondition is reported as a desync and leaves the well unchanged.
func (w *Well) Place(m *Mino) error {
	if !w.Fits(m) {
		return fmt.Errorf("%w: cannot place %s at %v", ErrDesync, m.Shape, m.Blocks)
	}
	for i, b := range m.Blocks {
		w.Cells[b.Y][b.X] = m.Colors[i]
	}
	return nil
}

// RowFull reports whether every cell of row y is occupied.
func (w *Well) RowFull(y int) bool {
	for _, c := range w.Cells[y] {
		if c == core.ColorNone {
			return false
		}
	}
	return true
}

// CheckClearable marks full rows in animate and counts them. Full rows that
// contain garbage are clearable but not sendable.
func (w *Well) CheckClearable(animate []bool) (clearable, sendable int) {
	for y, row := range w.Cells {
		if !w.RowFull(y) {
			continue
		}
		if y < len(animate) {
			animate[y] = true
		}
		clearable++

		garbage := false
		for _, c := range row {
			if c == core.ColorGarbage {
				garbage = true
				break
			}
		}
		if !garbage {
			sendable++
		}
	}
	return clearable, sendable
}

// ClearFullRows removes every full row, compacting the rows above it
// downward, and returns how many rows were removed.
func (w *Well) ClearFullRows() int {
	dy := 0
	for y := w.Rows - 1; y >= 0; y-- {
		full := w.RowFull(y)
		if dy > 0 {
			w.Cells[y+dy], w.Cells[y] = w.Cells[y], w.Cells[y+dy]
			clear(w.Cells[y])
		}
		if full {
			dy++
		}
	}
	return dy
}

// InsertGarbage pushes the stack up by count rows and fills the bottom rows
// with garbage, leaving column gap open in each.
func (w *Well) InsertGarbage(count, gap int) {
	if count <= 0 {
		return
	}
	count = core.Min(count, w.Rows)

	// The discarded top rows are reused as the new bottom rows.
	rows := make([][]core.Color, 0, w.Rows)
	rows = append(rows, w.Cells[count:]...)
	w.Cells = append(rows, w.Cells[:count]...)
	for y := w.Rows - count; y < w.Rows; y++ {
		for x := range w.Cells[y] {
			if x == gap {
				w.Cells[y][x] = core.ColorNone
			} else {
				w.Cells[y][x] = core.ColorGarbage
			}
		}
	}
}

// DropShadow returns the shadow of m at the lowest row it can fall to.
func (w *Well) DropShadow(m Mino) Mino {
	s := m.Shadow()
	for {
		next := s
		next.Translate(core.V(0, 1))
		if w.Collides(&next) {
			return s
		}
		s = next
	}
}
