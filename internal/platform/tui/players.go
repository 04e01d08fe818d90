package tui

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

// LocalPlayer seats a player on keyboard slot with that slot's timing. An
// empty name falls back to the configured one.
func LocalPlayer(cfg config.Config, slot int, name string) room.Player {
	if name == "" {
		if slot < len(cfg.Players) && cfg.Players[slot].Name != "" {
			name = cfg.Players[slot].Name
		} else {
			name = fmt.Sprintf("Player %d", slot+1)
		}
	}
	return room.Player{
		Name: name,
		Kind: room.LocalPlayer{Input: core.Keyboard(slot), Timing: cfg.Timing(slot)},
	}
}

// freeSlot returns the first keyboard slot no local player uses, or -1 when
// every configured slot is taken.
func freeSlot(cfg config.Config, r *room.Room) int {
	used := make(map[int]bool)
	for _, p := range r.Players {
		if lp, ok := p.Local(); ok && lp.Input.Device == core.DeviceKeyboard {
			used[lp.Input.Index] = true
		}
	}
	for slot := range cfg.Players {
		if !used[slot] {
			return slot
		}
	}
	return -1
}

// lastLocal is the index of the last local player, or -1.
func lastLocal(r *room.Room) int {
	for i := len(r.Players) - 1; i >= 0; i-- {
		if _, ok := r.Players[i].Local(); ok {
			return i
		}
	}
	return -1
}

// soloModes drops modes that need more than one player.
func soloModes(modes []registry.ModeInfo) []registry.ModeInfo {
	out := modes[:0:0]
	for _, m := range modes {
		if m.MinPlayers <= 1 {
			out = append(out, m)
		}
	}
	return out
}

// cycleMode returns the mode after (or before) current.
func cycleMode(modes []registry.ModeInfo, current string, step int) string {
	if len(modes) == 0 {
		return current
	}
	i := 0
	for j, m := range modes {
		if m.ID == current {
			i = j
		}
	}
	i = core.EuclidMod(i+step, len(modes))
	return modes[i].ID
}
