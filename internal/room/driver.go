package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/metrics"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

// Options configures a Driver. Zero values for Transport and Logger mean an
// offline game and a discarding logger.
type Options struct {
	Sim       tetris.SimConfig
	Modes     config.ModesConfig
	Seed      uint64
	Transport Transport
	Logger    *log.Logger
	Metrics   *metrics.Metrics
	Saver     ResultSaver
}

// TickReport summarizes one tick for the UI.
type TickReport struct {
	Events   Events
	Lost     []int // units that lost this tick
	Won      []int // units that won this tick
	Cleared  int   // lines cleared this tick, all units
	Joined   []string
	Left     []string
	Desyncs  int
	GameOver bool
	Result   *MatchResult
}

// Driver owns a room and the room-wide command FIFO. All of its methods must
// be called from one goroutine.
type Driver struct {
	room  *Room
	opts  Options
	net   Transport
	log   *log.Logger
	games uint64

	roomQueue []Wrapped[RoomCommand]
	queue     []Wrapped[tetris.Command]

	report  TickReport
	elapsed time.Duration
	over    bool
	paused  bool
}

// NewDriver creates a driver for r.
func NewDriver(r *Room, opts Options) *Driver {
	if opts.Transport == nil {
		opts.Transport = Offline{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(discard{})
	}
	return &Driver{room: r, opts: opts, net: opts.Transport, log: opts.Logger}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Room returns the driven room. Callers must treat it as read-only.
func (d *Driver) Room() *Room {
	return d.room
}

// Over reports whether the current match has ended.
func (d *Driver) Over() bool {
	return d.over
}

// Elapsed returns the playing time of the current match.
func (d *Driver) Elapsed() time.Duration {
	return d.elapsed
}

// Submit queues a room command issued on this instance.
func (d *Driver) Submit(cmd RoomCommand) {
	d.roomQueue = append(d.roomQueue, Wrapped[RoomCommand]{Cmd: cmd, Local: true})
}

// HandleInput forwards an input edge to the controllers of local units.
func (d *Driver) HandleInput(ev core.InputEvent) {
	if !d.room.Started || d.paused {
		return
	}
	for _, id := range d.room.LocalUnits() {
		local, _ := d.room.Units[id].Local()
		if local.Controller.HandleEvent(ev) {
			return
		}
	}
}

// CanPause reports whether pausing is allowed: never with network players.
func (d *Driver) CanPause() bool {
	return !d.net.Online() && !d.room.HasNetworkPlayers()
}

// SetPaused pauses or resumes an offline match.
func (d *Driver) SetPaused(p bool) bool {
	if p && !d.CanPause() {
		return false
	}
	d.paused = p
	return true
}

// Paused reports whether the match is paused.
func (d *Driver) Paused() bool {
	return d.paused
}

// Tick advances the room by dt.
func (d *Driver) Tick(dt time.Duration) TickReport {
	d.report = TickReport{}
	d.room.Events = Events{}

	d.poll()
	d.drainRoom()
	if !d.room.Started || d.paused {
		d.drainUnits()
		d.report.Events = d.room.Events
		return d.report
	}

	d.animate(dt)
	for _, id := range d.room.LocalUnits() {
		u := d.room.Units[id]
		if u.Base.State.Phase != tetris.PhasePlay {
			continue
		}
		local, _ := u.Local()
		for _, cmd := range local.Controller.AppendCommands(id, dt, nil) {
			d.enqueue(Wrapped[tetris.Command]{Cmd: cmd, Local: true})
		}
	}
	d.drainUnits()
	d.observe()
	if !d.over {
		d.elapsed += dt
		d.checkGameOver()
	}

	d.report.Events = d.room.Events
	return d.report
}

// poll turns received frames into wrapped commands. A room command first
// drains the unit commands received before it so each peer's order holds.
func (d *Driver) poll() {
	for _, in := range d.net.Poll() {
		switch {
		case in.Joined:
			d.log.Info("peer connected", "peer", in.From)
			d.report.Joined = append(d.report.Joined, in.From)
			d.net.SendTo(in.From, Message{Room: ptr(InitCmd(d.room.Snapshot()))})
		case in.Left:
			d.log.Info("peer disconnected", "peer", in.From)
			d.report.Left = append(d.report.Left, in.From)
		case in.Msg.Room != nil:
			d.drainUnits()
			d.applyRoom(Wrapped[RoomCommand]{Cmd: *in.Msg.Room, From: in.From})
		case in.Msg.Unit != nil:
			if !d.room.Started {
				// Joined between matches: nothing to mirror yet.
				continue
			}
			d.enqueue(Wrapped[tetris.Command]{Cmd: *in.Msg.Unit, From: in.From})
		}
	}
}

func ptr[T any](v T) *T { return &v }

func (d *Driver) drainRoom() {
	for len(d.roomQueue) > 0 {
		w := d.roomQueue[0]
		d.roomQueue = d.roomQueue[1:]
		d.applyRoom(w)
	}
}

func (d *Driver) enqueue(w Wrapped[tetris.Command]) {
	d.queue = append(d.queue, w)
}

// drainUnits executes the FIFO until it is empty; follow-ups go to the back.
func (d *Driver) drainUnits() {
	for len(d.queue) > 0 {
		w := d.queue[0]
		d.queue = d.queue[1:]
		d.execute(w)
	}
}

func (d *Driver) execute(w Wrapped[tetris.Command]) {
	if w.Local {
		d.net.Broadcast(Message{Unit: &w.Cmd})
		d.opts.Metrics.Broadcast()
	}

	u, err := d.room.Unit(w.Cmd.Unit)
	if err == nil && !w.Local {
		err = remoteAllowed(u, w.Cmd)
	}
	var out []tetris.Command
	if err == nil {
		out, err = u.Execute(w.Cmd)
	}
	d.opts.Metrics.CommandExecuted(w.Cmd.Op.String())
	if err != nil {
		d.fail(w.From, w.Cmd.String(), err)
		return
	}

	for _, f := range out {
		d.enqueue(Wrapped[tetris.Command]{Cmd: f, Local: w.Local, From: w.From})
	}
}

// remoteAllowed enforces unit authority: a local unit decides its own moves,
// gravity and pieces, so peers may only send it garbage.
func remoteAllowed(u *tetris.Unit, cmd tetris.Command) error {
	if _, local := u.Local(); local && cmd.Op != tetris.OpSendLines {
		return fmt.Errorf("%w: peer sent %s for a local unit", tetris.ErrDesync, cmd)
	}
	return nil
}

// fail handles a command that could not apply. A remote sender is cut off:
// its state can no longer be trusted.
func (d *Driver) fail(from, what string, err error) {
	if errors.Is(err, tetris.ErrDesync) {
		d.report.Desyncs++
		d.opts.Metrics.Desync()
	}
	if from == "" {
		d.log.Error("local command rejected", "cmd", what, "err", err)
		return
	}
	d.log.Warn("dropping peer after bad command", "peer", from, "cmd", what, "err", err)
	d.net.Disconnect(from, err)
}

func (d *Driver) applyRoom(w Wrapped[RoomCommand]) {
	cmd := w.Cmd
	switch cmd.Op {
	case RoomInit, RoomStartGameFromSave:
		// Point to point or offline only.
	default:
		if w.Local {
			d.net.Broadcast(Message{Room: &w.Cmd})
			d.opts.Metrics.Broadcast()
		}
	}

	if err := d.roomCommand(w); err != nil {
		d.fail(w.From, cmd.Op.String(), err)
	}
}

func (d *Driver) roomCommand(w Wrapped[RoomCommand]) error {
	r := d.room
	cmd := w.Cmd

	switch cmd.Op {
	case RoomInit:
		if cmd.Init == nil {
			return fmt.Errorf("room: Init without state")
		}
		d.init(*cmd.Init)
	case RoomSelectMode:
		if !registry.Exists(cmd.Mode) {
			return fmt.Errorf("%w: unknown mode %q", tetris.ErrDesync, cmd.Mode)
		}
		r.Mode = cmd.Mode
	case RoomAddPlayer:
		if cmd.Player == nil {
			return fmt.Errorf("room: AddPlayer without player")
		}
		p := *cmd.Player
		if !w.Local || p.Kind == nil {
			p.Kind = NetworkPlayer{}
		}
		r.Players = append(r.Players, p)
		r.Events.AddedPlayer = true
	case RoomRemovePlayer:
		if cmd.Index < 0 || cmd.Index >= len(r.Players) {
			return fmt.Errorf("%w: no player %d", tetris.ErrDesync, cmd.Index)
		}
		r.Players = append(r.Players[:cmd.Index], r.Players[cmd.Index+1:]...)
		r.Events.RemovedPlayer = true
		if r.Started {
			d.endMatch(EndAbandoned)
			r.Started = false
			r.Units = nil
			d.queue = d.queue[:0]
		}
	case RoomStartGame:
		return d.startGame()
	case RoomStartGameFromSave:
		return d.startFromSave(cmd.Unit)
	default:
		return fmt.Errorf("%w: unknown room command %d", tetris.ErrDesync, cmd.Op)
	}
	return nil
}

// init replaces the room with the host's lobby and re-announces the players
// this instance had already seated.
func (d *Driver) init(s InitState) {
	var locals []Player
	for _, p := range d.room.Players {
		if _, ok := p.Local(); ok {
			locals = append(locals, p)
		}
	}

	d.room.Mode = s.Mode
	d.room.Players = d.room.Players[:0]
	for _, name := range s.Players {
		d.room.Players = append(d.room.Players, Player{Name: name, Kind: NetworkPlayer{}})
	}
	d.room.Units = nil
	d.room.Started = false
	d.queue = d.queue[:0]
	d.over = false

	for _, p := range locals {
		d.roomQueue = append(d.roomQueue, Wrapped[RoomCommand]{Cmd: AddPlayerCmd(p), Local: true})
	}
}

func (d *Driver) startGame() error {
	r := d.room
	info, ok := registry.Info(r.Mode)
	if !ok {
		return fmt.Errorf("%w: unknown mode %q", tetris.ErrDesync, r.Mode)
	}
	if len(r.Players) < info.MinPlayers || len(r.Players) == 0 {
		d.log.Warn("not enough players to start", "mode", r.Mode, "players", len(r.Players))
		return nil
	}

	sim := d.opts.Sim
	units := make([]*tetris.Unit, len(r.Players))
	for i, p := range r.Players {
		mode, err := registry.Create(r.Mode, d.opts.Modes)
		if err != nil {
			return err
		}
		if v, ok := mode.(*tetris.Versus); ok {
			v.Target = (i + 1) % len(r.Players)
		}

		lp, local := p.Local()
		if !local {
			units[i] = tetris.NewNetworkUnit(sim, mode)
			continue
		}
		seed := d.opts.Seed + d.games<<32 + uint64(i)
		queue := tetris.NewQueue(tetris.NewRandomizer(sim.Policy, seed), sim.QueueDepth)
		level := 1
		if m, ok := mode.(*tetris.Marathon); ok {
			level = m.Level
		}
		ctrl := tetris.NewController(lp.Input, lp.Timing, sim.SoftdropDuration, sim.FallDuration(level))
		units[i] = tetris.NewLocalUnit(sim, mode, queue, ctrl)
	}
	d.games++

	r.Units = units
	r.Started = true
	r.Events.Started = true
	d.queue = d.queue[:0]
	d.elapsed = 0
	d.over = false
	d.paused = false

	for _, id := range r.LocalUnits() {
		local, _ := units[id].Local()
		next := local.Queue.NextCentered(units[id].Base.Well)
		d.enqueue(Wrapped[tetris.Command]{Cmd: tetris.NextMinoCmd(id, next), Local: true})
	}
	d.log.Info("match started", "mode", r.Mode, "players", len(r.Players))
	return nil
}

func (d *Driver) startFromSave(u *tetris.Unit) error {
	r := d.room
	if d.net.Online() || len(r.Players) != 1 {
		return fmt.Errorf("room: a saved game needs exactly one offline player")
	}
	lp, ok := r.Players[0].Local()
	if !ok {
		return fmt.Errorf("room: a saved game needs a local player")
	}
	if u == nil || u.Base.Mode == nil {
		return fmt.Errorf("room: empty save")
	}
	local, ok := u.Local()
	if !ok {
		return fmt.Errorf("room: saved unit is not local")
	}
	local.Controller.Input = lp.Input
	local.Controller.Timing = lp.Timing

	r.Mode = u.Base.Mode.ID()
	r.Units = []*tetris.Unit{u}
	r.Started = true
	r.Events.Started = true
	d.queue = d.queue[:0]
	d.elapsed = 0
	d.over = u.Base.State.Terminal()
	d.paused = false

	if u.Base.Falling == nil && u.Base.State.Phase == tetris.PhasePlay {
		next := local.Queue.NextCentered(u.Base.Well)
		d.enqueue(Wrapped[tetris.Command]{Cmd: tetris.NextMinoCmd(0, next), Local: true})
	}
	return nil
}

// animate advances line-clear and life countdowns. Local units decide when
// an animation ends; mirrors wait for the owner's command.
func (d *Driver) animate(dt time.Duration) {
	sim := d.opts.Sim
	for id, u := range d.room.Units {
		st := &u.Base.State
		if !st.Animating() {
			continue
		}
		st.Countdown += dt
		if _, ok := u.Local(); !ok {
			continue
		}
		switch {
		case st.Phase == tetris.PhaseLineClear && st.Countdown >= sim.LineClearDuration:
			d.enqueue(Wrapped[tetris.Command]{Cmd: tetris.ClearLinesCmd(id), Local: true})
		case st.Phase == tetris.PhaseGameOfLife && st.Countdown >= sim.LifeDuration:
			d.enqueue(Wrapped[tetris.Command]{Cmd: tetris.GameOfLifeCmd(id), Local: true})
		}
	}
}

// observe reacts to the unit flags raised this tick and clears them.
func (d *Driver) observe() {
	for id, u := range d.room.Units {
		ev := u.Base.Events
		if local, ok := u.Local(); ok {
			if ev.ChangedMino {
				local.Controller.ResetFall()
			}
			if ev.ChangedLevel {
				local.Controller.FallDuration = d.opts.Sim.FallDuration(u.Base.Level())
			}
		}
		if ev.Lost {
			d.report.Lost = append(d.report.Lost, id)
		}
		if ev.Won {
			d.report.Won = append(d.report.Won, id)
		}
		if ev.ClearedLines {
			d.report.Cleared += countTrue(u.Base.AnimateLines)
		}
		u.Base.Events = tetris.Events{}
	}
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func (d *Driver) checkGameOver() {
	units := d.room.Units
	if len(units) == 0 {
		return
	}
	finished := 0
	alive := 0
	for _, u := range units {
		if u.Base.State.Terminal() {
			finished++
		}
		if u.Base.State.Phase != tetris.PhaseLose {
			alive++
		}
	}

	over := finished == len(units)
	if d.room.Mode == tetris.ModeVersus && len(units) > 1 {
		over = alive <= 1
	}
	if over {
		d.endMatch(EndCompleted)
	}
}

func (d *Driver) endMatch(reason EndReason) {
	if d.over {
		return
	}
	d.over = true
	res := buildResult(d.room, reason, d.net.Online() || d.room.HasNetworkPlayers(), d.elapsed)
	d.report.GameOver = true
	d.report.Result = &res
	d.opts.Metrics.MatchFinished(res.Mode)
	d.log.Info("match over", "mode", res.Mode, "reason", res.Reason, "winner", res.Winner, "duration", res.Duration)

	if d.opts.Saver == nil {
		return
	}
	if err := d.opts.Saver.SaveMatchResult(res); err != nil {
		d.log.Error("failed to save match result", "err", err)
	}
}
