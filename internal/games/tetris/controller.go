package tetris

import (
	"math"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// HardDrop is the gravity magnitude meaning "fall until blocked".
const HardDrop int32 = math.MaxInt32

type MoveDirection uint8

const (
	MoveNone MoveDirection = iota
	MoveLeft
	MoveRight
)

// MoveState is the auto-repeat phase of a held direction.
type MoveState uint8

const (
	MoveStill MoveState = iota
	MoveInstant
	MovePrepeat
	MoveRepeat
)

type RotateDirection uint8

const (
	RotateNone RotateDirection = iota
	RotateLeft
	RotateRight
)

type FallState uint8

const (
	FallNormal FallState = iota
	FallSoftdrop
	FallHarddrop
)

// Timing is a player's horizontal auto-repeat tuning: one instant move, a
// Prepeat delay, then one move every Repeat.
type Timing struct {
	Prepeat time.Duration `json:"prepeat"`
	Repeat  time.Duration `json:"repeat"`
}

// DefaultTiming returns the stock auto-repeat tuning.
func DefaultTiming() Timing {
	return Timing{Prepeat: 150 * time.Millisecond, Repeat: 50 * time.Millisecond}
}

// Controller turns input edges for one input method into commands for a
// Local unit.
type Controller struct {
	Input            core.InputMethod `json:"input"`
	Timing           Timing           `json:"timing"`
	SoftdropDuration time.Duration    `json:"softdrop_duration"`
	FallDuration     time.Duration    `json:"fall_duration"`

	MoveDir        MoveDirection   `json:"move_dir"`
	MoveState      MoveState       `json:"move_state"`
	RotDir         RotateDirection `json:"rot_dir"`
	Fall           FallState       `json:"fall"`
	StoreRequested bool            `json:"store_requested"`

	FallCountdown time.Duration `json:"fall_countdown"`
	MoveCountdown time.Duration `json:"move_countdown"`
}

// NewController binds a controller to an input method.
func NewController(input core.InputMethod, timing Timing, softdrop, fall time.Duration) *Controller {
	return &Controller{
		Input:            input,
		Timing:           timing,
		SoftdropDuration: softdrop,
		FallDuration:     fall,
	}
}

// HandleEvent applies an input edge. Events from other input methods and
// non-gameplay actions are ignored; the return value reports whether the
// event was consumed.
func (c *Controller) HandleEvent(ev core.InputEvent) bool {
	if ev.Source != c.Input || !ev.Action.Gameplay() {
		return false
	}

	switch ev.Action {
	case core.ActionMoveLeft:
		c.handleMove(MoveLeft, ev.Pressed)
	case core.ActionMoveRight:
		c.handleMove(MoveRight, ev.Pressed)
	case core.ActionRotateLeft:
		if ev.Pressed {
			c.RotDir = RotateLeft
		}
	case core.ActionRotateRight:
		if ev.Pressed {
			c.RotDir = RotateRight
		}
	case core.ActionSoftDrop:
		if ev.Pressed {
			c.Fall = FallSoftdrop
		} else if c.Fall == FallSoftdrop {
			c.Fall = FallNormal
		}
	case core.ActionHardDrop:
		if ev.Pressed {
			c.Fall = FallHarddrop
		}
	case core.ActionStore:
		if ev.Pressed {
			c.StoreRequested = true
		}
	}
	return true
}

func (c *Controller) handleMove(dir MoveDirection, pressed bool) {
	if pressed {
		c.MoveDir = dir
		c.MoveState = MoveInstant
		c.MoveCountdown = 0
		return
	}
	if c.MoveDir == dir {
		c.MoveDir = MoveNone
		c.MoveState = MoveStill
		c.MoveCountdown = 0
	}
}

// ResetFall restarts the gravity timer; called when a new piece appears.
func (c *Controller) ResetFall() {
	c.FallCountdown = 0
}

// AppendCommands advances the controller by dt and appends the resulting
// commands for unit in order: moves, one rotation, gravity, store.
func (c *Controller) AppendCommands(unit int, dt time.Duration, out []Command) []Command {
	out = c.appendMoves(unit, dt, out)

	switch c.RotDir {
	case RotateLeft:
		out = append(out, RotateLeftCmd(unit))
	case RotateRight:
		out = append(out, RotateRightCmd(unit))
	}
	c.RotDir = RotateNone

	out = c.appendGravity(unit, dt, out)

	if c.StoreRequested {
		out = append(out, StoreCmd(unit))
		c.StoreRequested = false
	}
	return out
}

func (c *Controller) appendMoves(unit int, dt time.Duration, out []Command) []Command {
	if c.MoveDir == MoveNone {
		return out
	}
	move := MoveLeftCmd(unit)
	if c.MoveDir == MoveRight {
		move.Op = OpMoveRight
	}

	switch c.MoveState {
	case MoveInstant:
		out = append(out, move)
		c.MoveState = MovePrepeat
		c.MoveCountdown = 0
	case MovePrepeat:
		c.MoveCountdown += dt
		if c.MoveCountdown < c.Timing.Prepeat {
			break
		}
		c.MoveCountdown -= c.Timing.Prepeat
		c.MoveState = MoveRepeat
		out = append(out, move)
		out = c.appendRepeats(move, out)
	case MoveRepeat:
		c.MoveCountdown += dt
		out = c.appendRepeats(move, out)
	}
	return out
}

func (c *Controller) appendRepeats(move Command, out []Command) []Command {
	if c.Timing.Repeat <= 0 {
		// No repeat delay: one move per tick.
		c.MoveCountdown = 0
		return append(out, move)
	}
	for c.MoveCountdown >= c.Timing.Repeat {
		c.MoveCountdown -= c.Timing.Repeat
		out = append(out, move)
	}
	return out
}

func (c *Controller) appendGravity(unit int, dt time.Duration, out []Command) []Command {
	if c.Fall == FallHarddrop {
		c.Fall = FallNormal
		c.FallCountdown = 0
		return append(out, GravityCmd(unit, HardDrop))
	}

	duration := c.FallDuration
	if c.Fall == FallSoftdrop && (duration <= 0 || c.SoftdropDuration < duration) {
		duration = c.SoftdropDuration
	}
	if duration <= 0 {
		return out
	}

	c.FallCountdown += dt
	n := c.FallCountdown / duration
	if n <= 0 {
		return out
	}
	c.FallCountdown -= n * duration
	return append(out, GravityCmd(unit, int32(min(n, time.Duration(HardDrop)))))
}
