package tui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

func newTestModel(t *testing.T, solo bool) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	sim, err := cfg.SimConfig()
	if err != nil {
		t.Fatalf("SimConfig() error = %v", err)
	}
	d := room.NewDriver(room.New(tetris.ModeMarathon), room.Options{
		Sim:   sim,
		Modes: cfg.Modes,
		Seed:  7,
	})
	d.Submit(room.AddPlayerCmd(LocalPlayer(cfg, 0, "ann")))
	return NewModel(Options{
		Config:  cfg,
		Runtime: core.RuntimeConfig{ScreenW: 120, ScreenH: 40, TickRate: 60},
		Driver:  d,
		Solo:    solo,
	})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", next)
	}
	return got
}

func TestModelStartsMatchFromLobby(t *testing.T) {
	m := newTestModel(t, true)
	m = step(t, m, TickMsg(time.Now()))
	if m.view != viewLobby {
		t.Fatalf("view = %v, expected lobby", m.view)
	}
	if !strings.Contains(m.View(), "ann") {
		t.Errorf("lobby view should list the seated player")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, TickMsg(time.Now()))
	if m.view != viewGame {
		t.Fatalf("view = %v, expected game", m.view)
	}
	if !m.driver.Room().Started {
		t.Errorf("room should be started")
	}
}

func TestModelVersusNeedsTwoPlayers(t *testing.T) {
	m := newTestModel(t, false)
	m.driver.Submit(room.SelectModeCmd(tetris.ModeVersus))
	m = step(t, m, TickMsg(time.Now()))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, TickMsg(time.Now()))
	if m.view != viewLobby {
		t.Errorf("view = %v, expected lobby", m.view)
	}
	if m.message == "" {
		t.Errorf("expected a message explaining why the match did not start")
	}
}

func TestModelAddPlayerPrompt(t *testing.T) {
	m := newTestModel(t, false)
	m = step(t, m, TickMsg(time.Now()))

	m = step(t, m, runes("n"))
	if m.view != viewPrompt {
		t.Fatalf("view = %v, expected prompt", m.view)
	}
	m = step(t, m, runes("bo"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, TickMsg(time.Now()))

	players := m.driver.Room().Players
	if len(players) != 2 || players[1].Name != "bo" {
		t.Fatalf("players = %+v, expected bo in the second seat", players)
	}
	lp, _ := players[1].Local()
	if lp.Input != core.Keyboard(1) {
		t.Errorf("new player input = %v, expected %v", lp.Input, core.Keyboard(1))
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = step(t, m, TickMsg(time.Now()))
	if got := len(m.driver.Room().Players); got != 1 {
		t.Errorf("players after removal = %d, expected 1", got)
	}
}

func TestModelSoloRefusesSecondPlayer(t *testing.T) {
	m := newTestModel(t, true)
	m = step(t, m, TickMsg(time.Now()))
	m = step(t, m, runes("n"))
	if m.view != viewLobby {
		t.Errorf("view = %v, expected lobby", m.view)
	}
}

func TestModelPauseOffline(t *testing.T) {
	m := newTestModel(t, true)
	m.driver.Submit(room.StartGameCmd())
	m = step(t, m, TickMsg(time.Now()))

	m = step(t, m, runes("p"))
	if !m.driver.Paused() {
		t.Fatalf("driver should be paused")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Errorf("game view should show the pause banner")
	}
	m = step(t, m, runes("p"))
	if m.driver.Paused() {
		t.Errorf("driver should be resumed")
	}
}

func TestModelScoreboardRoundTrip(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()
	if _, err := store.SaveScore(storage.ScoreEntry{MatchID: "m1", Mode: tetris.ModeMarathon, Player: "ann", Lines: 14, Level: 2}); err != nil {
		t.Fatalf("SaveScore() error = %v", err)
	}

	m := newTestModel(t, true)
	m.opts.Store = store
	m = step(t, m, TickMsg(time.Now()))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view != viewScores {
		t.Fatalf("view = %v, expected scores", m.view)
	}
	if !strings.Contains(m.View(), "ann") {
		t.Errorf("scoreboard should list the saved score")
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != viewLobby {
		t.Errorf("view = %v, expected lobby after esc", m.view)
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newTestModel(t, true)
	opts := m.opts
	opts.Context = ctx
	cancel()

	var out bytes.Buffer
	p := newProgram(opts, tea.WithInput(nil), tea.WithOutput(&out))
	_, err := p.Run()
	if !errors.Is(err, tea.ErrProgramKilled) {
		t.Errorf("Run() error = %v, expected %v", err, tea.ErrProgramKilled)
	}
}
