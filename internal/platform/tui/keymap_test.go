package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMapGameplay(t *testing.T) {
	km := NewKeyMap(config.DefaultConfig())

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		src    core.InputMethod
		action core.Action
		ok     bool
	}{
		{"p1 left", tea.KeyMsg{Type: tea.KeyLeft}, core.Keyboard(0), core.ActionMoveLeft, true},
		{"p1 rotate up", tea.KeyMsg{Type: tea.KeyUp}, core.Keyboard(0), core.ActionRotateRight, true},
		{"p1 hard drop", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.Keyboard(0), core.ActionHardDrop, true},
		{"p1 store", runes("c"), core.Keyboard(0), core.ActionStore, true},
		{"p2 left", runes("a"), core.Keyboard(1), core.ActionMoveLeft, true},
		{"p2 rotate left", runes("q"), core.Keyboard(1), core.ActionRotateLeft, true},
		{"p2 hard drop", tea.KeyMsg{Type: tea.KeyTab}, core.Keyboard(1), core.ActionHardDrop, true},
		{"pause is not gameplay", runes("p"), core.InputMethod{}, core.ActionNone, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, action, ok := km.Gameplay(tc.msg)
			if ok != tc.ok || src != tc.src || action != tc.action {
				t.Errorf("Gameplay(%q) = %v, %v, %v, expected %v, %v, %v",
					tc.msg.String(), src, action, ok, tc.src, tc.action, tc.ok)
			}
		})
	}
}

func TestKeyLabel(t *testing.T) {
	if got := keyLabel([]string{"x", " "}); got != "x/space" {
		t.Errorf("keyLabel() = %q, expected %q", got, "x/space")
	}
}

func TestFullHelpHasColumnPerPlayer(t *testing.T) {
	km := NewKeyMap(config.DefaultConfig())
	cols := km.FullHelp()
	if len(cols) != 3 {
		t.Fatalf("FullHelp() has %d columns, expected 3", len(cols))
	}
	if len(cols[1]) != len(gameplayActions) {
		t.Errorf("player column has %d bindings, expected %d", len(cols[1]), len(gameplayActions))
	}
}
