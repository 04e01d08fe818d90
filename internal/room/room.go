// Package room holds the shared state of one match: the players, the
// selected mode and one unit per player. A Driver advances it tick by tick
// and keeps every connected instance in step by replicating commands.
package room

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// PlayerKind is LocalPlayer or NetworkPlayer.
type PlayerKind interface {
	playerKind()
}

// LocalPlayer is controlled from this instance through one input method.
type LocalPlayer struct {
	Input  core.InputMethod
	Timing tetris.Timing
}

func (LocalPlayer) playerKind() {}

// NetworkPlayer is controlled by another instance. Kinds never travel over
// the wire: every player received from a peer is a NetworkPlayer.
type NetworkPlayer struct{}

func (NetworkPlayer) playerKind() {}

// Player is a seat in the room. Players[i] owns Units[i].
type Player struct {
	Name string
	Kind PlayerKind
}

// Local returns the local kind data when the player is local.
func (p Player) Local() (LocalPlayer, bool) {
	lp, ok := p.Kind.(LocalPlayer)
	return lp, ok
}

// Events are one-tick flags for the UI.
type Events struct {
	AddedPlayer   bool
	RemovedPlayer bool
	Started       bool
}

// Room is the replicated match state.
type Room struct {
	Mode    string
	Players []Player
	Units   []*tetris.Unit
	Started bool
	Events  Events
}

// New creates an empty room with the given mode selected.
func New(mode string) *Room {
	return &Room{Mode: mode}
}

// HasNetworkPlayers reports whether any seat belongs to another instance.
func (r *Room) HasNetworkPlayers() bool {
	for _, p := range r.Players {
		if _, ok := p.Kind.(NetworkPlayer); ok {
			return true
		}
	}
	return false
}

// LocalUnits returns the indices of units driven by this instance.
func (r *Room) LocalUnits() []int {
	var ids []int
	for i, u := range r.Units {
		if _, ok := u.Local(); ok {
			ids = append(ids, i)
		}
	}
	return ids
}

// Unit returns unit id or a desync error when it does not exist here.
func (r *Room) Unit(id int) (*tetris.Unit, error) {
	if id < 0 || id >= len(r.Units) {
		return nil, fmt.Errorf("%w: no unit %d in a room of %d", tetris.ErrDesync, id, len(r.Units))
	}
	return r.Units[id], nil
}

// RoomOp is the kind of a RoomCommand.
type RoomOp uint8

const (
	RoomInit RoomOp = iota + 1
	RoomStartGame
	RoomStartGameFromSave
	RoomAddPlayer
	RoomRemovePlayer
	RoomSelectMode
)

func (o RoomOp) String() string {
	switch o {
	case RoomInit:
		return "Init"
	case RoomStartGame:
		return "StartGame"
	case RoomStartGameFromSave:
		return "StartGameFromSave"
	case RoomAddPlayer:
		return "AddPlayer"
	case RoomRemovePlayer:
		return "RemovePlayer"
	case RoomSelectMode:
		return "SelectMode"
	}
	return fmt.Sprintf("RoomOp(%d)", uint8(o))
}

// InitState is the lobby a host hands to a peer that just connected.
type InitState struct {
	Mode    string
	Players []string
}

// RoomCommand changes the room itself rather than a unit.
type RoomCommand struct {
	Op     RoomOp
	Init   *InitState   // Init
	Unit   *tetris.Unit // StartGameFromSave
	Player *Player      // AddPlayer
	Index  int          // RemovePlayer
	Mode   string       // SelectMode
}

func InitCmd(s InitState) RoomCommand { return RoomCommand{Op: RoomInit, Init: &s} }
func StartGameCmd() RoomCommand       { return RoomCommand{Op: RoomStartGame} }
func SelectModeCmd(mode string) RoomCommand {
	return RoomCommand{Op: RoomSelectMode, Mode: mode}
}
func AddPlayerCmd(p Player) RoomCommand { return RoomCommand{Op: RoomAddPlayer, Player: &p} }
func RemovePlayerCmd(index int) RoomCommand {
	return RoomCommand{Op: RoomRemovePlayer, Index: index}
}

// StartGameFromSaveCmd resumes a saved single-player unit.
func StartGameFromSaveCmd(u *tetris.Unit) RoomCommand {
	return RoomCommand{Op: RoomStartGameFromSave, Unit: u}
}

// Snapshot returns the Init payload describing this room.
func (r *Room) Snapshot() InitState {
	s := InitState{Mode: r.Mode, Players: make([]string, len(r.Players))}
	for i, p := range r.Players {
		s.Players[i] = p.Name
	}
	return s
}
