package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorNone:    lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorPurple:  lipgloss.NewStyle().Foreground(lipgloss.Color("93")),
	core.ColorPink:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorShadow:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	core.ColorLife:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorNone]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Board layout, in screen cells.
const (
	cellW      = 2
	panelWidth = 14
	boardGap   = 2
)

// boardSize is the footprint of one unit: the framed well plus its panel.
func boardSize(cols, rows int) (w, h int) {
	return cols*cellW + 2 + 1 + panelWidth, rows + 2
}

// boardView is what drawBoard needs to know about one seat.
type boardView struct {
	Unit   *tetris.Unit
	Name   string
	Target string // versus opponent receiving our garbage
	Paused bool
}

// drawBoard renders one unit at (x0, y0). It only reads the unit.
func drawBoard(s *core.Screen, x0, y0 int, v boardView) {
	b := &v.Unit.Base
	w := b.Well
	s.DrawBox(core.NewRect(x0, y0, w.Cols*cellW+2, w.Rows+2))

	clearing := b.State.Phase == tetris.PhaseLineClear
	for y := range w.Rows {
		for x := range w.Cols {
			sx, sy := x0+1+x*cellW, y0+1+y
			c := w.Cells[y][x]
			switch {
			case clearing && y < len(b.AnimateLines) && b.AnimateLines[y]:
				drawCell(s, sx, sy, "▓▓", core.ColorWhite)
			case c != core.ColorNone:
				drawCell(s, sx, sy, "[]", c)
			default:
				drawCell(s, sx, sy, " ·", core.ColorShadow)
			}
		}
	}

	if shadow := b.Shadow(); shadow != nil {
		drawMino(s, x0+1, y0+1, *shadow, "::")
	}
	if b.Falling != nil {
		drawMino(s, x0+1, y0+1, *b.Falling, "[]")
	}

	if banner := stateBanner(b.State.Phase, v.Paused); banner != "" {
		bx := x0 + 1 + (w.Cols*cellW-len(banner))/2
		s.DrawTextColor(bx, y0+w.Rows/2, banner, core.ColorWhite)
	}

	drawPanel(s, x0+w.Cols*cellW+3, y0, v)
}

func stateBanner(p tetris.Phase, paused bool) string {
	switch {
	case p == tetris.PhaseLose:
		return " GAME OVER "
	case p == tetris.PhaseWin:
		return " WINNER "
	case paused:
		return " PAUSED "
	}
	return ""
}

func drawCell(s *core.Screen, x, y int, glyph string, c core.Color) {
	s.DrawTextColor(x, y, glyph, c)
}

// drawMino draws m in well coordinates offset by (x0, y0). Cells above the
// well are clipped.
func drawMino(s *core.Screen, x0, y0 int, m tetris.Mino, glyph string) {
	for i, p := range m.Blocks {
		if p.Y < 0 {
			continue
		}
		drawCell(s, x0+p.X*cellW, y0+p.Y, glyph, m.Colors[i])
	}
}

// drawPreview draws m in spawn orientation with its top-left at (x, y).
func drawPreview(s *core.Screen, x, y int, m tetris.Mino) {
	m.Reset()
	drawMino(s, x, y, m, "[]")
}

func drawPanel(s *core.Screen, x, y int, v boardView) {
	b := &v.Unit.Base
	line := y
	text := func(format string, args ...any) {
		s.DrawText(x, line, truncate(fmt.Sprintf(format, args...), panelWidth))
		line++
	}

	s.DrawTextColor(x, line, truncate(v.Name, panelWidth), core.ColorYellow)
	line++
	text("Lines %d", b.LinesCleared)
	switch m := b.Mode.(type) {
	case *tetris.Marathon:
		text("Level %d", m.Level)
		if m.LevelTarget > 0 {
			text("Goal  %d", m.LevelTarget)
		}
	case *tetris.Sprint:
		if m.LinesTarget > 0 {
			text("Left  %d", max(0, m.LinesTarget-b.LinesCleared))
		}
	case *tetris.Versus:
		text("Incoming %d", m.PendingSum)
		if v.Target != "" {
			text("> %s", v.Target)
		}
	case *tetris.GameOfLife:
		if m.Period > 0 {
			text("Life in %d", m.Period-m.TickCount)
		}
	}
	line++

	text("Hold")
	if b.Stored != nil {
		drawPreview(s, x, line, *b.Stored)
	}
	line += 3

	local, ok := v.Unit.Local()
	if !ok {
		return
	}
	text("Next")
	for _, m := range local.Queue.Peek() {
		if line+2 > y+b.Well.Rows+2 {
			break
		}
		drawPreview(s, x, line, m)
		line += 3
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// drawRoom lays out every unit side by side and reports whether the screen
// was large enough.
func drawRoom(s *core.Screen, y0 int, r *room.Room, paused bool) bool {
	if len(r.Units) == 0 {
		return true
	}
	well := r.Units[0].Base.Well
	bw, bh := boardSize(well.Cols, well.Rows)
	total := len(r.Units)*bw + (len(r.Units)-1)*boardGap
	if total > s.Width() || y0+bh > s.Height() {
		return false
	}

	x := (s.Width() - total) / 2
	for id, u := range r.Units {
		v := boardView{Unit: u, Paused: paused}
		if id < len(r.Players) {
			v.Name = r.Players[id].Name
		}
		if vs, ok := u.Base.Mode.(*tetris.Versus); ok && vs.Target != id && vs.Target < len(r.Players) {
			v.Target = r.Players[vs.Target].Name
		}
		drawBoard(s, x, y0, v)
		x += bw + boardGap
	}
	return true
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}
