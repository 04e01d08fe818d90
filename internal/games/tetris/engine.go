package tetris

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// Execute applies cmd to the unit and returns the follow-up commands it
// causes, in the order they must be queued. Follow-ups may target other
// units (SendLines). Illegal moves are ignored; an error is only returned
// when the command cannot apply to this state, which means the instances
// have diverged.
func (u *Unit) Execute(cmd Command) ([]Command, error) {
	b := &u.Base
	if b.State.Terminal() {
		return nil, nil
	}

	switch cmd.Op {
	case OpMoveLeft:
		u.shift(-1)
	case OpMoveRight:
		u.shift(1)
	case OpRotateLeft:
		u.rotate(false)
	case OpRotateRight:
		u.rotate(true)
	case OpApplyGravity:
		return u.applyGravity(cmd)
	case OpStore:
		return u.store(cmd), nil
	case OpClearLines:
		return nil, u.clearLines()
	case OpNextMino:
		if cmd.Mino == nil {
			return nil, fmt.Errorf("%w: NextMino without a piece", ErrDesync)
		}
		m := *cmd.Mino
		b.Falling = &m
		b.Events.ChangedMino = true
	case OpSendLines:
		if v, ok := b.Mode.(*Versus); ok {
			v.Receive(cmd.Count)
		}
	case OpAddLines:
		return nil, u.addLines(cmd)
	case OpPreGameOfLife:
		return nil, u.preGameOfLife()
	case OpGameOfLife:
		return nil, u.gameOfLife()
	default:
		return nil, fmt.Errorf("%w: unknown command %s", ErrDesync, cmd.Op)
	}
	return nil, nil
}

// playing returns the falling piece when movement commands may apply.
func (u *Unit) playing() *Mino {
	if u.Base.State.Phase != PhasePlay {
		return nil
	}
	return u.Base.Falling
}

func (u *Unit) shift(dx int) {
	falling := u.playing()
	if falling == nil {
		return
	}
	m := *falling
	m.Translate(core.V(dx, 0))
	if !u.Base.Well.Collides(&m) {
		*falling = m
	}
}

func (u *Unit) rotate(right bool) {
	falling := u.playing()
	if falling == nil {
		return
	}
	m := *falling
	if right {
		m.RotR()
	} else {
		m.RotL()
	}

	// Kick back inside the side walls.
	lo, _ := m.Bounds()
	m.Translate(core.V(-min(0, lo.X), 0))
	_, hi := m.Bounds()
	m.Translate(core.V(min(0, u.Base.Well.Cols-hi.X-1), 0))

	if !u.Base.Well.Collides(&m) {
		*falling = m
	}
}

func (u *Unit) applyGravity(cmd Command) ([]Command, error) {
	falling := u.playing()
	if falling == nil {
		return nil, nil
	}
	n := cmd.N
	for n > 0 {
		m := *falling
		m.Translate(core.V(0, 1))
		if u.Base.Well.Collides(&m) {
			break
		}
		*falling = m
		n--
	}
	if n <= 0 {
		return nil, nil
	}
	return u.lock(cmd.Unit)
}

// lock commits the falling piece into the well and schedules everything
// that follows from it.
func (u *Unit) lock(id int) ([]Command, error) {
	b := &u.Base
	if !b.Well.Fits(b.Falling) {
		b.State = State{Phase: PhaseLose}
		b.Events.Lost = true
		return nil, nil
	}
	if err := b.Well.Place(b.Falling); err != nil {
		return nil, err
	}
	b.Falling = nil
	b.CanStore = true

	clearable, sendable := b.Well.CheckClearable(b.AnimateLines)
	local, isLocal := u.Local()

	var out []Command
	if v, ok := b.Mode.(*Versus); ok && isLocal {
		// One command per row so every row gets its own gap.
		for range v.PendingSum {
			out = append(out, AddLinesCmd(id, 1, local.Queue.Gap(b.Well.Cols)))
		}
	}

	if clearable > 0 {
		b.Events.ClearedLines = true
		b.State = State{Phase: PhaseLineClear}
		b.LinesCleared += clearable

		switch mode := b.Mode.(type) {
		case *Marathon:
			if mode.AddLines(clearable) {
				b.Events.ChangedLevel = true
			}
		case *Versus:
			if isLocal {
				out = append(out, SendLinesCmd(mode.Target, sendable))
			}
		}
	} else if life, ok := b.Mode.(*GameOfLife); ok {
		if life.Tick() && isLocal {
			out = append(out, PreGameOfLifeCmd(id))
		}
	}

	if isLocal {
		out = append(out, NextMinoCmd(id, local.Queue.NextCentered(b.Well)))
	}
	return out, nil
}

func (u *Unit) store(cmd Command) []Command {
	b := &u.Base
	falling := u.playing()
	if falling == nil || !b.CanStore {
		return nil
	}
	b.CanStore = false

	held := *falling
	held.Reset()

	var out []Command
	if b.Stored != nil {
		next := *b.Stored
		next.Center(b.Well.Cols)
		b.Falling = &next
		b.Events.ChangedMino = true
	} else {
		b.Falling = nil
		if local, ok := u.Local(); ok {
			out = append(out, NextMinoCmd(cmd.Unit, local.Queue.NextCentered(b.Well)))
		}
	}
	b.Stored = &held
	return out
}

func (u *Unit) clearLines() error {
	b := &u.Base
	if b.State.Phase != PhaseLineClear {
		return fmt.Errorf("%w: ClearLines in phase %s", ErrDesync, b.State.Phase)
	}
	clear(b.AnimateLines)
	b.Well.ClearFullRows()
	b.State = State{Phase: PhasePlay}

	won := false
	switch mode := b.Mode.(type) {
	case *Marathon:
		won = mode.LevelTarget > 0 && mode.Level >= mode.LevelTarget
	case *Sprint:
		won = mode.LinesTarget > 0 && b.LinesCleared >= mode.LinesTarget
	}
	if won {
		b.State = State{Phase: PhaseWin}
		b.Events.Won = true
	}
	return nil
}

func (u *Unit) addLines(cmd Command) error {
	b := &u.Base
	v, ok := b.Mode.(*Versus)
	if !ok {
		return nil
	}
	if cmd.Gap < 0 || cmd.Gap >= b.Well.Cols {
		return fmt.Errorf("%w: garbage gap %d outside well", ErrDesync, cmd.Gap)
	}
	if err := v.Consume(cmd.Count); err != nil {
		return err
	}
	if cmd.Count <= 0 {
		return nil
	}
	b.Well.InsertGarbage(cmd.Count, cmd.Gap)

	// Keep animation flags attached to the rows they mark.
	n := min(cmd.Count, len(b.AnimateLines))
	copy(b.AnimateLines, b.AnimateLines[n:])
	clear(b.AnimateLines[len(b.AnimateLines)-n:])
	return nil
}

func (u *Unit) preGameOfLife() error {
	b := &u.Base
	if b.State.Phase != PhasePlay {
		return fmt.Errorf("%w: PreGameOfLife in phase %s", ErrDesync, b.State.Phase)
	}
	b.Well.LifeChanges(b.AnimateLines)
	b.State = State{Phase: PhaseGameOfLife}
	return nil
}

func (u *Unit) gameOfLife() error {
	b := &u.Base
	if b.State.Phase != PhaseGameOfLife {
		return fmt.Errorf("%w: GameOfLife in phase %s", ErrDesync, b.State.Phase)
	}
	b.Well.LifeStep()
	clear(b.AnimateLines)
	b.State = State{Phase: PhasePlay}
	return nil
}
