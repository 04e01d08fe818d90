package tetris

import (
	"encoding/json"
	"fmt"
)

// Mode identifiers, also used as registry and score-table keys.
const (
	ModeMarathon   = "marathon"
	ModeSprint     = "sprint"
	ModeVersus     = "versus"
	ModeGameOfLife = "life"
)

// Mode is the per-unit rule variant. The set of implementations is closed;
// callers switch on the concrete type.
type Mode interface {
	ID() string
	clone() Mode
}

// Marathon levels up every 10*level lines and is won at LevelTarget.
type Marathon struct {
	Level                int `json:"level"`
	LevelTarget          int `json:"level_target"`
	LinesBeforeNextLevel int `json:"lines_before_next_level"`
}

// NewMarathon starts a marathon at the given level.
func NewMarathon(start, target int) *Marathon {
	start = max(start, 1)
	return &Marathon{
		Level:                start,
		LevelTarget:          target,
		LinesBeforeNextLevel: 10 * start,
	}
}

func (*Marathon) ID() string { return ModeMarathon }

func (m *Marathon) clone() Mode {
	c := *m
	return &c
}

// AddLines counts cleared lines toward the next level and reports whether
// the level changed.
func (m *Marathon) AddLines(n int) bool {
	m.LinesBeforeNextLevel -= n
	changed := false
	for m.LinesBeforeNextLevel <= 0 {
		m.Level++
		m.LinesBeforeNextLevel += 10 * m.Level
		changed = true
	}
	return changed
}

// Sprint is won once LinesTarget lines have been cleared.
type Sprint struct {
	LinesTarget int `json:"lines_target"`
}

// NewSprint creates a sprint with the given line target.
func NewSprint(target int) *Sprint {
	return &Sprint{LinesTarget: target}
}

func (*Sprint) ID() string { return ModeSprint }

func (s *Sprint) clone() Mode {
	c := *s
	return &c
}

// Versus exchanges garbage: Pending holds incoming batches, oldest first, and
// PendingSum always equals their total.
type Versus struct {
	Pending    []int `json:"pending"`
	PendingSum int   `json:"pending_sum"`
	Target     int   `json:"target"`
}

// NewVersus creates a versus record targeting no one yet.
func NewVersus() *Versus {
	return &Versus{}
}

func (*Versus) ID() string { return ModeVersus }

func (v *Versus) clone() Mode {
	c := *v
	c.Pending = append([]int(nil), v.Pending...)
	return &c
}

// Receive queues an incoming batch of garbage lines.
func (v *Versus) Receive(n int) {
	if n <= 0 {
		return
	}
	v.Pending = append(v.Pending, n)
	v.PendingSum += n
}

// Consume removes n lines from the oldest pending batches.
func (v *Versus) Consume(n int) error {
	if n > v.PendingSum {
		return fmt.Errorf("%w: consume %d garbage lines with %d pending", ErrDesync, n, v.PendingSum)
	}
	v.PendingSum -= n
	for n > 0 {
		take := min(n, v.Pending[0])
		v.Pending[0] -= take
		n -= take
		if v.Pending[0] == 0 {
			v.Pending = v.Pending[1:]
		}
	}
	if len(v.Pending) == 0 {
		v.Pending = nil
	}
	return nil
}

// GameOfLife runs the cellular automaton over the well every Period locks.
type GameOfLife struct {
	TickCount int `json:"tick_count"`
	Period    int `json:"period"`
}

// NewGameOfLife creates the mode with the given lock period.
func NewGameOfLife(period int) *GameOfLife {
	if period <= 0 {
		period = 4
	}
	return &GameOfLife{Period: period}
}

func (*GameOfLife) ID() string { return ModeGameOfLife }

func (g *GameOfLife) clone() Mode {
	c := *g
	return &c
}

// Tick counts one lock and reports whether the automaton is due.
func (g *GameOfLife) Tick() bool {
	g.TickCount++
	period := g.Period
	if period <= 0 {
		period = 4
	}
	return g.TickCount%period == 0
}

// CloneMode returns an independent copy of m.
func CloneMode(m Mode) Mode {
	if m == nil {
		return nil
	}
	return m.clone()
}

type modeJSON struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// MarshalMode encodes a mode together with its identifier.
func MarshalMode(m Mode) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(modeJSON{ID: m.ID(), Data: data})
}

// UnmarshalMode decodes the output of MarshalMode.
func UnmarshalMode(data []byte) (Mode, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var aux modeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, err
	}

	var m Mode
	switch aux.ID {
	case ModeMarathon:
		m = &Marathon{}
	case ModeSprint:
		m = &Sprint{}
	case ModeVersus:
		m = &Versus{}
	case ModeGameOfLife:
		m = &GameOfLife{}
	default:
		return nil, fmt.Errorf("tetris: unknown mode %q", aux.ID)
	}
	if err := json.Unmarshal(aux.Data, m); err != nil {
		return nil, fmt.Errorf("tetris: decode %s mode: %w", aux.ID, err)
	}
	return m, nil
}
