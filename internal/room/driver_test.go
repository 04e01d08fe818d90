package room

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

const dt = 250 * time.Millisecond

// link is an in-memory Transport. Messages are copied the way the wire
// codec would: no shared pointers and no player kinds.
type link struct {
	name    string
	peer    *link
	inbox   []Incoming
	dropped []string
	online  bool
}

func newLinks() (*link, *link) {
	a := &link{name: "a", online: true}
	b := &link{name: "b", online: true}
	a.peer, b.peer = b, a
	return a, b
}

func wire(m Message) Message {
	if m.Unit != nil {
		c := *m.Unit
		if c.Mino != nil {
			mino := *c.Mino
			c.Mino = &mino
		}
		return Message{Unit: &c}
	}
	rc := *m.Room
	if rc.Player != nil {
		rc.Player = &Player{Name: rc.Player.Name}
	}
	if rc.Init != nil {
		s := InitState{Mode: rc.Init.Mode, Players: slices.Clone(rc.Init.Players)}
		rc.Init = &s
	}
	return Message{Room: &rc}
}

func (l *link) Broadcast(m Message) {
	if l.peer != nil {
		l.peer.inbox = append(l.peer.inbox, Incoming{From: l.name, Msg: wire(m)})
	}
}

func (l *link) SendTo(peer string, m Message) {
	if l.peer != nil && l.peer.name == peer {
		l.Broadcast(m)
	}
}

func (l *link) Poll() []Incoming {
	in := l.inbox
	l.inbox = nil
	return in
}

func (l *link) Disconnect(peer string, _ error) { l.dropped = append(l.dropped, peer) }
func (l *link) Online() bool                    { return l.online }

type memSaver struct {
	results []MatchResult
}

func (m *memSaver) SaveMatchResult(r MatchResult) error {
	m.results = append(m.results, r)
	return nil
}

func testOptions(tr Transport, saver ResultSaver) Options {
	sim := tetris.DefaultSimConfig()
	sim.BaseFallDuration = time.Hour
	return Options{
		Sim:       sim,
		Modes:     config.DefaultConfig().Modes,
		Seed:      1,
		Transport: tr,
		Saver:     saver,
	}
}

func localPlayer(name string) Player {
	return Player{Name: name, Kind: LocalPlayer{Input: core.Keyboard(0), Timing: tetris.DefaultTiming()}}
}

func fillRows(w *tetris.Well, rows ...int) {
	for _, y := range rows {
		for x := range w.Cols {
			if x != 4 && x != 5 {
				w.Cells[y][x] = core.ColorRed
			}
		}
	}
}

func dropO(u *tetris.Unit) {
	m := tetris.NewMino(tetris.ShapeO)
	m.Center(u.Base.Well.Cols)
	u.Base.Falling = &m
}

func startSolo(t *testing.T, mode string, saver ResultSaver) *Driver {
	t.Helper()
	d := NewDriver(New(mode), testOptions(nil, saver))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.Submit(StartGameCmd())
	rep := d.Tick(time.Millisecond)
	require.True(t, d.Room().Started)
	require.True(t, rep.Events.Started)
	require.True(t, rep.Events.AddedPlayer)
	return d
}

func TestSoloStartDealsPiece(t *testing.T) {
	d := startSolo(t, tetris.ModeMarathon, nil)

	require.Len(t, d.Room().Units, 1)
	u := d.Room().Units[0]
	assert.NotNil(t, u.Base.Falling)
	_, local := u.Local()
	assert.True(t, local)
}

func TestHardDropFromInput(t *testing.T) {
	d := startSolo(t, tetris.ModeMarathon, nil)
	u := d.Room().Units[0]
	first := u.Base.Falling.Shape

	d.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	d.Tick(time.Millisecond)

	occupied := 0
	for _, row := range u.Base.Well.Cells {
		for _, c := range row {
			if c != core.ColorNone {
				occupied++
			}
		}
	}
	assert.Equal(t, 4, occupied, "locked %s should occupy four cells", first)
	assert.NotNil(t, u.Base.Falling)
	assert.Equal(t, time.Duration(0), u.Kind.(*tetris.Local).Controller.FallCountdown)
}

func TestLineClearAnimationEndsLocally(t *testing.T) {
	d := startSolo(t, tetris.ModeSprint, nil)
	u := d.Room().Units[0]
	fillRows(u.Base.Well, 18, 19)
	dropO(u)

	d.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	rep := d.Tick(time.Millisecond)
	assert.Equal(t, 2, rep.Cleared)
	assert.Equal(t, tetris.PhaseLineClear, u.Base.State.Phase)

	d.Tick(dt)
	assert.Equal(t, tetris.PhasePlay, u.Base.State.Phase)
	assert.Equal(t, 2, u.Base.LinesCleared)
}

func TestGameOverSavesResult(t *testing.T) {
	saver := &memSaver{}
	d := startSolo(t, tetris.ModeMarathon, saver)
	u := d.Room().Units[0]
	for y := range u.Base.Well.Rows {
		for x := range u.Base.Well.Cols {
			u.Base.Well.Cells[y][x] = core.ColorRed
		}
	}

	d.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	rep := d.Tick(time.Millisecond)

	assert.Equal(t, []int{0}, rep.Lost)
	require.True(t, rep.GameOver)
	require.NotNil(t, rep.Result)
	require.Len(t, saver.results, 1)

	res := saver.results[0]
	assert.Equal(t, tetris.ModeMarathon, res.Mode)
	assert.Equal(t, EndCompleted, res.Reason)
	assert.Equal(t, -1, res.Winner)
	assert.False(t, res.Online)
	assert.NotEmpty(t, res.ID)
	require.Len(t, res.Players, 1)
	assert.Equal(t, "alice", res.Players[0].Name)
	assert.True(t, res.Players[0].Finished)

	d.Tick(time.Millisecond)
	assert.Len(t, saver.results, 1, "a match is saved once")
}

func TestPauseStopsTheClock(t *testing.T) {
	d := startSolo(t, tetris.ModeMarathon, nil)
	require.True(t, d.SetPaused(true))

	before := d.Elapsed()
	d.Tick(time.Second)
	assert.Equal(t, before, d.Elapsed())

	d.SetPaused(false)
	d.Tick(time.Second)
	assert.Equal(t, before+time.Second, d.Elapsed())
}

func TestPauseRefusedOnline(t *testing.T) {
	a, _ := newLinks()
	d := NewDriver(New(tetris.ModeMarathon), testOptions(a, nil))
	assert.False(t, d.SetPaused(true))
	assert.False(t, d.Paused())
}

func TestVersusNeedsTwoPlayers(t *testing.T) {
	d := NewDriver(New(tetris.ModeVersus), testOptions(nil, nil))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.Submit(StartGameCmd())
	d.Tick(time.Millisecond)
	assert.False(t, d.Room().Started)
}

func TestRemovePlayerAbandonsMatch(t *testing.T) {
	saver := &memSaver{}
	d := startSolo(t, tetris.ModeMarathon, saver)

	d.Submit(RemovePlayerCmd(0))
	rep := d.Tick(time.Millisecond)

	assert.True(t, rep.Events.RemovedPlayer)
	assert.False(t, d.Room().Started)
	assert.Empty(t, d.Room().Players)
	require.Len(t, saver.results, 1)
	assert.Equal(t, EndAbandoned, saver.results[0].Reason)
}

func TestRemoteAddPlayerIsNetwork(t *testing.T) {
	d := NewDriver(New(tetris.ModeMarathon), testOptions(nil, nil))
	d.applyRoom(Wrapped[RoomCommand]{Cmd: AddPlayerCmd(localPlayer("mallory")), From: "x"})

	require.Len(t, d.Room().Players, 1)
	assert.Equal(t, NetworkPlayer{}, d.Room().Players[0].Kind)
}

func TestDesyncDropsPeer(t *testing.T) {
	a, _ := newLinks()
	d := NewDriver(New(tetris.ModeMarathon), testOptions(a, nil))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.Submit(StartGameCmd())
	d.Tick(time.Millisecond)

	bad := tetris.ClearLinesCmd(0)
	a.inbox = append(a.inbox, Incoming{From: "x", Msg: Message{Unit: &bad}})
	rep := d.Tick(time.Millisecond)

	assert.Equal(t, 1, rep.Desyncs)
	assert.Equal(t, []string{"x"}, a.dropped)
}

func TestPeerCannotDriveLocalUnit(t *testing.T) {
	a, _ := newLinks()
	d := NewDriver(New(tetris.ModeMarathon), testOptions(a, nil))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.Submit(StartGameCmd())
	d.Tick(time.Millisecond)

	u := d.Room().Units[0]
	require.NotNil(t, u.Base.Falling)
	falling := *u.Base.Falling
	well := u.Base.Well.Clone()

	left := tetris.MoveLeftCmd(0)
	drop := tetris.GravityCmd(0, tetris.HardDrop)
	a.inbox = append(a.inbox,
		Incoming{From: "b", Msg: Message{Unit: &left}},
		Incoming{From: "b", Msg: Message{Unit: &drop}},
	)
	rep := d.Tick(time.Millisecond)

	assert.Equal(t, 2, rep.Desyncs)
	assert.Contains(t, a.dropped, "b")
	require.NotNil(t, u.Base.Falling)
	assert.Equal(t, falling, *u.Base.Falling)
	assert.Equal(t, well.Cells, u.Base.Well.Cells)
}

func TestPeerMaySendGarbageToLocalUnit(t *testing.T) {
	a, _ := newLinks()
	d := NewDriver(New(tetris.ModeVersus), testOptions(a, nil))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.applyRoom(Wrapped[RoomCommand]{Cmd: AddPlayerCmd(Player{Name: "bob"}), From: "b"})
	d.Submit(StartGameCmd())
	d.Tick(time.Millisecond)
	require.True(t, d.Room().Started)

	send := tetris.SendLinesCmd(0, 2)
	a.inbox = append(a.inbox, Incoming{From: "b", Msg: Message{Unit: &send}})
	rep := d.Tick(time.Millisecond)

	assert.Zero(t, rep.Desyncs)
	assert.Empty(t, a.dropped)
	vs, ok := d.Room().Units[0].Base.Mode.(*tetris.Versus)
	require.True(t, ok)
	assert.Equal(t, 2, vs.PendingSum)
}

func TestStartFromSave(t *testing.T) {
	d := startSolo(t, tetris.ModeSprint, nil)
	d.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	d.Tick(time.Millisecond)

	data, err := json.Marshal(d.Room().Units[0])
	require.NoError(t, err)
	var saved tetris.Unit
	require.NoError(t, json.Unmarshal(data, &saved))

	resumed := NewDriver(New(tetris.ModeMarathon), testOptions(nil, nil))
	resumed.Submit(AddPlayerCmd(localPlayer("alice")))
	resumed.Submit(StartGameFromSaveCmd(&saved))
	resumed.Tick(time.Millisecond)

	require.True(t, resumed.Room().Started)
	assert.Equal(t, tetris.ModeSprint, resumed.Room().Mode)
	assert.Equal(t, d.Room().Units[0].Base.Well.Cells, resumed.Room().Units[0].Base.Well.Cells)
}

func TestStartFromSaveRefusedOnline(t *testing.T) {
	a, _ := newLinks()
	d := NewDriver(New(tetris.ModeMarathon), testOptions(a, nil))
	d.Submit(AddPlayerCmd(localPlayer("alice")))
	d.Tick(time.Millisecond)

	u := tetris.NewNetworkUnit(tetris.DefaultSimConfig(), tetris.NewSprint(40))
	d.Submit(StartGameFromSaveCmd(u))
	d.Tick(time.Millisecond)
	assert.False(t, d.Room().Started)
}

// tickBoth lets every in-flight message settle.
func tickBoth(da, db *Driver, n int) {
	for range n {
		da.Tick(dt)
		db.Tick(dt)
	}
}

func TestVersusReplication(t *testing.T) {
	la, lb := newLinks()
	host := NewDriver(New(tetris.ModeMarathon), testOptions(la, nil))
	client := NewDriver(New(tetris.ModeMarathon), testOptions(lb, nil))

	// Both seat a player before they are connected.
	host.Submit(AddPlayerCmd(localPlayer("alice")))
	host.Tick(dt)
	lb.inbox = nil
	client.Submit(AddPlayerCmd(localPlayer("bob")))
	client.Tick(dt)
	la.inbox = nil

	// The client connects: the host answers with Init and the client
	// re-announces bob.
	la.inbox = append(la.inbox, Incoming{From: "b", Joined: true})
	host.Tick(dt)
	client.Tick(dt)
	host.Tick(dt)

	require.Equal(t, []string{"alice", "bob"}, names(host.Room()))
	require.Equal(t, []string{"alice", "bob"}, names(client.Room()))
	assert.Equal(t, NetworkPlayer{}, host.Room().Players[1].Kind)
	assert.Equal(t, NetworkPlayer{}, client.Room().Players[0].Kind)

	host.Submit(SelectModeCmd(tetris.ModeVersus))
	host.Submit(StartGameCmd())
	tickBoth(host, client, 2)

	require.True(t, client.Room().Started)
	assert.Equal(t, tetris.ModeVersus, client.Room().Mode)
	for _, d := range []*Driver{host, client} {
		for i, u := range d.Room().Units {
			require.NotNil(t, u.Base.Falling, "unit %d has no piece", i)
		}
	}

	// Alice clears two clean lines and sends them to bob.
	for _, d := range []*Driver{host, client} {
		alice := d.Room().Units[0]
		fillRows(alice.Base.Well, 18, 19)
		dropO(alice)
	}
	host.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	tickBoth(host, client, 1)

	bobVersus := client.Room().Units[1].Base.Mode.(*tetris.Versus)
	assert.Equal(t, 2, bobVersus.PendingSum)

	// Bob's next lock pulls the garbage into his well.
	client.HandleInput(core.Press(core.Keyboard(0), core.ActionHardDrop))
	tickBoth(host, client, 3)

	for i := range 2 {
		ua, ub := host.Room().Units[i], client.Room().Units[i]
		assert.Equal(t, ua.Base.Well.Cells, ub.Base.Well.Cells, "unit %d well", i)
		assert.Equal(t, ua.Base.Falling, ub.Base.Falling, "unit %d falling piece", i)
		assert.Equal(t, ua.Base.LinesCleared, ub.Base.LinesCleared, "unit %d lines", i)
		assert.Equal(t, ua.Base.State.Phase, ub.Base.State.Phase, "unit %d phase", i)
		assert.Equal(t, ua.Base.Mode.(*tetris.Versus).PendingSum, ub.Base.Mode.(*tetris.Versus).PendingSum)
	}

	bob := client.Room().Units[1]
	garbage := 0
	for _, c := range bob.Base.Well.Cells[19] {
		if c == core.ColorGarbage {
			garbage++
		}
	}
	assert.Equal(t, bob.Base.Well.Cols-1, garbage)
	assert.Equal(t, 0, bobVersus.PendingSum)
	assert.Equal(t, 2, host.Room().Units[0].Base.LinesCleared)
	assert.Empty(t, la.dropped)
	assert.Empty(t, lb.dropped)
}

func names(r *Room) []string {
	out := make([]string, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.Name
	}
	return out
}
