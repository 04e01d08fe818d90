package tetris

import (
	"encoding/json"
	"fmt"
	"time"
)

// Phase is the simulation state tag of a unit.
type Phase uint8

const (
	PhasePlay Phase = iota
	PhaseLineClear
	PhaseGameOfLife
	PhaseLose
	PhaseWin
)

func (p Phase) String() string {
	switch p {
	case PhasePlay:
		return "play"
	case PhaseLineClear:
		return "line-clear"
	case PhaseGameOfLife:
		return "game-of-life"
	case PhaseLose:
		return "lose"
	case PhaseWin:
		return "win"
	default:
		return "unknown"
	}
}

// State is the phase plus the animation countdown for the timed phases.
type State struct {
	Phase     Phase         `json:"phase"`
	Countdown time.Duration `json:"countdown"`
}

// Terminal reports whether the unit has won or lost.
func (s State) Terminal() bool {
	return s.Phase == PhaseLose || s.Phase == PhaseWin
}

// Animating reports whether the unit is in a timed animation phase.
func (s State) Animating() bool {
	return s.Phase == PhaseLineClear || s.Phase == PhaseGameOfLife
}

// Events are one-frame flags raised by the engine and cleared by the room
// driver after the UI has observed them.
type Events struct {
	ChangedMino  bool `json:"changed_mino"`
	ClearedLines bool `json:"cleared_lines"`
	Lost         bool `json:"lost"`
	Won          bool `json:"won"`
	ChangedLevel bool `json:"changed_level"`
}

// Any reports whether any flag is raised.
func (e Events) Any() bool {
	return e.ChangedMino || e.ClearedLines || e.Lost || e.Won || e.ChangedLevel
}

// Base is the state shared by every kind of unit. Rendering reads it and
// never writes it.
type Base struct {
	Well         *Well  `json:"well"`
	Falling      *Mino  `json:"falling"`
	Stored       *Mino  `json:"stored"`
	CanStore     bool   `json:"can_store"`
	AnimateLines []bool `json:"animate_lines"`
	State        State  `json:"state"`
	LinesCleared int    `json:"lines_cleared"`
	Mode         Mode   `json:"-"`
	Events       Events `json:"events"`
}

func newBase(cfg SimConfig, mode Mode) Base {
	return Base{
		Well:         NewWell(cfg.Cols, cfg.Rows),
		CanStore:     true,
		AnimateLines: make([]bool, cfg.Rows),
		Mode:         mode,
	}
}

// Shadow returns the landing preview of the falling piece, if any.
func (b *Base) Shadow() *Mino {
	if b.Falling == nil {
		return nil
	}
	s := b.Well.DropShadow(*b.Falling)
	return &s
}

// Level returns the marathon level, or 1 for other modes.
func (b *Base) Level() int {
	if m, ok := b.Mode.(*Marathon); ok {
		return m.Level
	}
	return 1
}

func (b Base) MarshalJSON() ([]byte, error) {
	type plain Base
	mode, err := MarshalMode(b.Mode)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Mode json.RawMessage `json:"mode"`
	}{plain(b), mode})
}

func (b *Base) UnmarshalJSON(data []byte) error {
	type plain Base
	aux := struct {
		*plain
		Mode json.RawMessage `json:"mode"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	mode, err := UnmarshalMode(aux.Mode)
	if err != nil {
		return err
	}
	b.Mode = mode
	if b.Well == nil {
		return fmt.Errorf("tetris: unit without well")
	}
	if len(b.AnimateLines) != b.Well.Rows {
		b.AnimateLines = make([]bool, b.Well.Rows)
	}
	return nil
}

// Kind distinguishes units simulated here from mirrors of remote units. The
// two variants are *Local and *Network.
type Kind interface {
	kind() string
}

// Local units are authoritative: they own the piece generator and read input.
type Local struct {
	Queue      *Queue      `json:"queue"`
	Controller *Controller `json:"controller"`
}

func (*Local) kind() string { return "local" }

// Network units only apply commands received from their owning instance.
type Network struct{}

func (*Network) kind() string { return "network" }

// Unit is one player's complete game state.
type Unit struct {
	Base Base
	Kind Kind
}

// NewLocalUnit creates a unit driven by this instance.
func NewLocalUnit(cfg SimConfig, mode Mode, queue *Queue, ctrl *Controller) *Unit {
	return &Unit{
		Base: newBase(cfg, mode),
		Kind: &Local{Queue: queue, Controller: ctrl},
	}
}

// NewNetworkUnit creates a mirror of a unit driven elsewhere.
func NewNetworkUnit(cfg SimConfig, mode Mode) *Unit {
	return &Unit{
		Base: newBase(cfg, mode),
		Kind: &Network{},
	}
}

// Local returns the local kind data when the unit is Local.
func (u *Unit) Local() (*Local, bool) {
	l, ok := u.Kind.(*Local)
	return l, ok
}

type unitJSON struct {
	Base  Base   `json:"base"`
	Kind  string `json:"kind"`
	Local *Local `json:"local,omitempty"`
}

func (u Unit) MarshalJSON() ([]byte, error) {
	aux := unitJSON{Base: u.Base}
	switch k := u.Kind.(type) {
	case *Local:
		aux.Kind = k.kind()
		aux.Local = k
	case *Network:
		aux.Kind = k.kind()
	default:
		return nil, fmt.Errorf("tetris: unit has no kind")
	}
	return json.Marshal(aux)
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var aux unitJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.Base = aux.Base
	switch aux.Kind {
	case "local":
		if aux.Local == nil || aux.Local.Queue == nil || aux.Local.Controller == nil {
			return fmt.Errorf("tetris: local unit without queue or controller")
		}
		u.Kind = aux.Local
	case "network":
		u.Kind = &Network{}
	default:
		return fmt.Errorf("tetris: unknown unit kind %q", aux.Kind)
	}
	return nil
}
