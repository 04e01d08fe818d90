package tui

import (
	"time"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// softdropHold keeps soft drop active between the repeats of a held key.
// Terminals only report presses, so a key counts as released once no repeat
// arrived for this long.
const softdropHold = 300 * time.Millisecond

type holdKey struct {
	src    core.InputMethod
	action core.Action
}

// holds synthesizes release edges for a terminal that never sends them.
// Every action except soft drop is a tap, released after the tick that saw
// the press.
type holds struct {
	left map[holdKey]time.Duration
}

func newHolds() *holds {
	return &holds{left: make(map[holdKey]time.Duration)}
}

// Press records a press and returns the edges to deliver now. A repeated
// soft drop only refreshes its window.
func (h *holds) Press(src core.InputMethod, a core.Action) []core.InputEvent {
	k := holdKey{src, a}
	if a == core.ActionSoftDrop {
		_, held := h.left[k]
		h.left[k] = softdropHold
		if held {
			return nil
		}
		return []core.InputEvent{core.Press(src, a)}
	}
	h.left[k] = 0
	return []core.InputEvent{core.Press(src, a)}
}

// Advance ages every held key by dt and returns the releases that are due.
// Call it after the simulation tick so each press is seen at least once.
func (h *holds) Advance(dt time.Duration) []core.InputEvent {
	var out []core.InputEvent
	for k, left := range h.left {
		left -= dt
		if left > 0 {
			h.left[k] = left
			continue
		}
		delete(h.left, k)
		out = append(out, core.Release(k.src, k.action))
	}
	return out
}

// Reset forgets every held key without releasing it.
func (h *holds) Reset() {
	clear(h.left)
}
