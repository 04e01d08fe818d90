package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
)

// gameplayActions lists the bindable actions in help order.
var gameplayActions = []core.Action{
	core.ActionMoveLeft,
	core.ActionMoveRight,
	core.ActionRotateLeft,
	core.ActionRotateRight,
	core.ActionSoftDrop,
	core.ActionHardDrop,
	core.ActionStore,
}

var actionHelp = map[core.Action]string{
	core.ActionMoveLeft:    "left",
	core.ActionMoveRight:   "right",
	core.ActionRotateLeft:  "rotate ccw",
	core.ActionRotateRight: "rotate cw",
	core.ActionSoftDrop:    "soft drop",
	core.ActionHardDrop:    "hard drop",
	core.ActionStore:       "hold",
}

// PlayerKeys are the gameplay bindings of one keyboard slot.
type PlayerKeys struct {
	Input    core.InputMethod
	Bindings map[core.Action]key.Binding
}

// KeyMap holds the global keys and one set of gameplay keys per configured
// player.
type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Confirm key.Binding
	Pause   key.Binding
	Restart key.Binding
	Help    key.Binding

	// Lobby only.
	NextMode   key.Binding
	PrevMode   key.Binding
	AddPlayer  key.Binding
	DropPlayer key.Binding
	Scores     key.Binding

	Players []PlayerKeys
}

// NewKeyMap builds the key map from the configured players' bindings.
func NewKeyMap(cfg config.Config) KeyMap {
	km := KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
		NextMode:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "mode")),
		PrevMode:   key.NewBinding(key.WithKeys("left", "h")),
		AddPlayer:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add player")),
		DropPlayer: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "remove player")),
		Scores:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "scores")),
	}

	for slot, p := range cfg.Players {
		pk := PlayerKeys{
			Input:    core.Keyboard(slot),
			Bindings: make(map[core.Action]key.Binding),
		}
		for action, keys := range p.Keys.Actions() {
			if len(keys) == 0 {
				continue
			}
			pk.Bindings[action] = key.NewBinding(
				key.WithKeys(keys...),
				key.WithHelp(keyLabel(keys), actionHelp[action]),
			)
		}
		km.Players = append(km.Players, pk)
	}
	return km
}

func keyLabel(keys []string) string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		labels[i] = k
	}
	return strings.Join(labels, "/")
}

// Gameplay finds the player binding a key press belongs to. The first slot
// that binds the key wins.
func (km KeyMap) Gameplay(msg tea.KeyMsg) (core.InputMethod, core.Action, bool) {
	for _, p := range km.Players {
		for _, action := range gameplayActions {
			b, ok := p.Bindings[action]
			if ok && key.Matches(msg, b) {
				return p.Input, action, true
			}
		}
	}
	return core.InputMethod{}, core.ActionNone, false
}

// ShortHelp returns key bindings for the short help view.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Pause, km.Restart, km.Back, km.Help, km.Quit}
}

// FullHelp lists the global keys, then one column per player.
func (km KeyMap) FullHelp() [][]key.Binding {
	cols := [][]key.Binding{{km.Pause, km.Restart, km.Back, km.Quit}}
	for _, p := range km.Players {
		var col []key.Binding
		for _, action := range gameplayActions {
			if b, ok := p.Bindings[action]; ok {
				col = append(col, b)
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// lobbyHelp adapts the lobby keys to help.KeyMap.
type lobbyHelp struct{ km KeyMap }

func (l lobbyHelp) ShortHelp() []key.Binding {
	return []key.Binding{l.km.Confirm, l.km.NextMode, l.km.AddPlayer, l.km.DropPlayer, l.km.Scores, l.km.Back}
}

func (l lobbyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{l.ShortHelp()}
}
