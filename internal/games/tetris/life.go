package tetris

import "github.com/vovakirdan/tui-tetris/internal/core"

var lifeNeighbors = [...]core.Vec2{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// lifeNeighbors counts occupied orthogonal neighbors; cells outside the
// well count as empty.
func (w *Well) liveNeighbors(v core.Vec2) int {
	n := 0
	for _, d := range lifeNeighbors {
		if w.Occupied(v.Add(d)) {
			n++
		}
	}
	return n
}

// lifeNext returns the color cell v takes after one automaton step: a cell
// is occupied next exactly when it has three occupied neighbors. Survivors
// keep their color, births use ColorLife.
func (w *Well) lifeNext(v core.Vec2) core.Color {
	if w.liveNeighbors(v) != 3 {
		return core.ColorNone
	}
	if c := w.At(v); c != core.ColorNone {
		return c
	}
	return core.ColorLife
}

// LifeChanges marks in rows every row the next automaton step will change
// and returns how many rows that is.
func (w *Well) LifeChanges(rows []bool) int {
	changed := 0
	for y := range w.Rows {
		for x := range w.Cols {
			v := core.V(x, y)
			if (w.lifeNext(v) == core.ColorNone) != (w.At(v) == core.ColorNone) {
				if y < len(rows) {
					rows[y] = true
				}
				changed++
				break
			}
		}
	}
	return changed
}

// LifeStep replaces the whole grid with its next automaton generation.
func (w *Well) LifeStep() {
	next := NewWell(w.Cols, w.Rows)
	for y := range w.Rows {
		for x := range w.Cols {
			next.Cells[y][x] = w.lifeNext(core.V(x, y))
		}
	}
	w.Cells = next.Cells
}
