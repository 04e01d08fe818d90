package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/room"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// Options configures a Model.
type Options struct {
	// Context stops the program when cancelled; nil means run until quit.
	Context context.Context

	Config  config.Config
	Runtime core.RuntimeConfig
	Driver  *room.Driver
	Store   *storage.Store // optional, enables the scoreboard
	Logger  *log.Logger

	// SavePath is where a single-player match is saved on quit; empty
	// disables saving.
	SavePath string
	// Status is shown under the lobby title, e.g. the hosting address.
	Status string
	// Solo restricts the lobby to one player and single-player modes.
	Solo bool
}

type view int

const (
	viewLobby view = iota
	viewPrompt
	viewScores
	viewGame
)

// Model is the Bubble Tea model of one instance: a lobby that seats players
// and picks the mode, and the match view. The room driver is ticked here.
type Model struct {
	opts   Options
	driver *room.Driver
	log    *log.Logger
	keys   KeyMap
	help   help.Model
	holds  *holds
	screen *core.Screen
	modes  []registry.ModeInfo

	view     view
	prompt   textinput.Model
	scores   ScoreboardModel
	width    int
	height   int
	message  string
	result   *room.MatchResult
	quitting bool
}

// NewModel creates the model. Players may already be submitted to the driver;
// the match view opens on the tick the room starts.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	modes := registry.List()
	if opts.Solo {
		modes = soloModes(modes)
	}

	prompt := textinput.New()
	prompt.Placeholder = "name"
	prompt.CharLimit = 16

	return Model{
		opts:   opts,
		driver: opts.Driver,
		log:    logger,
		keys:   NewKeyMap(opts.Config),
		help:   help.New(),
		holds:  newHolds(),
		screen: core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		modes:  modes,
		prompt: prompt,
		width:  opts.Runtime.ScreenW,
		height: opts.Runtime.ScreenH,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		if m.view == viewScores {
			var cmd tea.Cmd
			m.scores, cmd = m.updateScores(msg)
			return m, cmd
		}
		return m, nil

	case TickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		switch m.view {
		case viewPrompt:
			return m.handlePrompt(msg)
		case viewScores:
			var cmd tea.Cmd
			m.scores, cmd = m.updateScores(msg)
			if m.scores.IsQuitting() {
				return m.quit()
			}
			if m.scores.IsGoingBack() {
				m.view = viewLobby
			}
			return m, cmd
		case viewGame:
			return m.handleGameKey(msg)
		default:
			return m.handleLobbyKey(msg)
		}
	}
	return m, nil
}

func (m Model) updateScores(msg tea.Msg) (ScoreboardModel, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		return sb, cmd
	}
	return m.scores, cmd
}

// handleTick advances the room by one frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	dt := m.opts.Runtime.FrameDuration()
	report := m.driver.Tick(dt)
	for _, ev := range m.holds.Advance(dt) {
		m.driver.HandleInput(ev)
	}

	for _, peer := range report.Joined {
		m.message = fmt.Sprintf("peer %s connected", shortID(peer))
	}
	for _, peer := range report.Left {
		m.message = fmt.Sprintf("peer %s disconnected", shortID(peer))
	}
	if report.Desyncs > 0 {
		m.message = "dropped a peer that went out of sync"
	}

	r := m.driver.Room()
	if report.Events.Started {
		m.holds.Reset()
		m.result = nil
		m.message = ""
		m.view = viewGame
	}
	if report.Result != nil {
		m.result = report.Result
		m.message = resultLine(*report.Result)
		if m.solo() && m.opts.SavePath != "" {
			if err := storage.RemoveSave(m.opts.SavePath); err != nil {
				m.log.Warn("could not remove save", "err", err)
			}
		}
	}
	if m.view == viewGame && !r.Started {
		// The match was abandoned by a departing player.
		m.view = viewLobby
	}
	return m, tickCmd(m.opts.Runtime.TickRate)
}

func (m Model) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.driver.Room()
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.quit()

	case key.Matches(msg, m.keys.Confirm):
		info, _ := registry.Info(r.Mode)
		if len(r.Players) < max(1, info.MinPlayers) {
			m.message = fmt.Sprintf("%s needs %d players", info.Title, info.MinPlayers)
			return m, nil
		}
		m.driver.Submit(room.StartGameCmd())

	case key.Matches(msg, m.keys.NextMode):
		m.driver.Submit(room.SelectModeCmd(cycleMode(m.modes, r.Mode, 1)))
	case key.Matches(msg, m.keys.PrevMode):
		m.driver.Submit(room.SelectModeCmd(cycleMode(m.modes, r.Mode, -1)))

	case key.Matches(msg, m.keys.AddPlayer):
		if m.opts.Solo || freeSlot(m.opts.Config, r) < 0 {
			m.message = "no free keyboard slot"
			return m, nil
		}
		m.prompt.SetValue("")
		m.prompt.Focus()
		m.view = viewPrompt
		return m, textinput.Blink

	case key.Matches(msg, m.keys.DropPlayer):
		if i := lastLocal(r); i >= 0 && (!m.opts.Solo || len(r.Players) > 1) {
			m.driver.Submit(room.RemovePlayerCmd(i))
		}

	case key.Matches(msg, m.keys.Scores):
		if m.opts.Store == nil {
			m.message = "no score database"
			return m, nil
		}
		m.scores = NewScoreboardModel(m.opts.Store, m.modes, r.Mode, m.width, m.height)
		m.view = viewScores
	}
	return m, nil
}

func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		slot := freeSlot(m.opts.Config, m.driver.Room())
		if slot >= 0 {
			name := strings.TrimSpace(m.prompt.Value())
			m.driver.Submit(room.AddPlayerCmd(LocalPlayer(m.opts.Config, slot, name)))
		}
		m.prompt.Blur()
		m.view = viewLobby
		return m, nil
	case tea.KeyEsc:
		m.prompt.Blur()
		m.view = viewLobby
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if src, action, ok := m.keys.Gameplay(msg); ok {
		for _, ev := range m.holds.Press(src, action) {
			m.driver.HandleInput(ev)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		if m.driver.Over() {
			break
		}
		if !m.driver.SetPaused(!m.driver.Paused()) {
			m.message = "pause is only available offline"
		}
	case key.Matches(msg, m.keys.Restart):
		if m.driver.Over() {
			m.driver.Submit(room.StartGameCmd())
		}
	case key.Matches(msg, m.keys.Back):
		switch {
		case m.driver.Over():
			m.view = viewLobby
		case m.solo():
			return m.quit()
		default:
			m.message = "finish the match first, ctrl+c quits"
		}
	}
	return m, nil
}

// solo reports whether this is an offline single-player match.
func (m Model) solo() bool {
	r := m.driver.Room()
	if len(r.Units) != 1 || !m.driver.CanPause() {
		return false
	}
	_, ok := r.Units[0].Local()
	return ok
}

// quit saves an unfinished single-player match and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.opts.SavePath != "" && m.driver.Room().Started && !m.driver.Over() && m.solo() {
		if err := storage.SaveUnit(m.opts.SavePath, m.driver.Room().Units[0]); err != nil {
			m.log.Error("could not save game", "err", err)
		} else {
			m.log.Info("game saved", "path", m.opts.SavePath)
		}
	}
	m.quitting = true
	return m, tea.Quit
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.view {
	case viewScores:
		return m.scores.View()
	case viewGame:
		return m.gameView()
	}
	return m.lobbyView()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
)

func (m Model) lobbyView() string {
	r := m.driver.Room()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  T E T R I S  "), m.width))
	b.WriteString("\n")
	if m.opts.Status != "" {
		b.WriteString(centerText(dimStyle.Render(m.opts.Status), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	tabs := make([]string, len(m.modes))
	for i, info := range m.modes {
		if info.ID == r.Mode {
			tabs[i] = activeStyle.Render(info.Title)
		} else {
			tabs[i] = dimStyle.Render(" " + info.Title + " ")
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n")
	if info, ok := registry.Info(r.Mode); ok {
		b.WriteString(centerText(dimStyle.Render(info.Description), m.width))
	}
	b.WriteString("\n\n")

	b.WriteString(centerText("Players", m.width))
	b.WriteString("\n")
	if len(r.Players) == 0 {
		b.WriteString(centerText(dimStyle.Render("(none)"), m.width))
		b.WriteString("\n")
	}
	for i, p := range r.Players {
		where := "remote"
		if lp, ok := p.Local(); ok {
			where = lp.Input.String()
		}
		b.WriteString(centerText(fmt.Sprintf("%d. %-16s %s", i+1, p.Name, dimStyle.Render(where)), m.width))
		b.WriteString("\n")
	}

	if m.view == viewPrompt {
		b.WriteString("\n")
		b.WriteString(centerText("New player: "+m.prompt.View(), m.width))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(centerText(m.message, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.help.View(lobbyHelp{m.keys}), m.width))
	b.WriteString("\n")
	return b.String()
}

func (m Model) gameView() string {
	r := m.driver.Room()
	m.screen.Clear()

	title := r.Mode
	if info, ok := registry.Info(r.Mode); ok {
		title = info.Title
	}
	header := fmt.Sprintf("%s  %s", title, formatDuration(m.driver.Elapsed()))
	if m.message != "" {
		header += "  " + m.message
	}
	m.screen.DrawTextCentered(0, header)

	if !drawRoom(m.screen, 1, r, m.driver.Paused()) {
		m.screen.Clear()
		m.screen.DrawTextCentered(m.screen.Height()/2, "Enlarge the terminal to see the match")
	}
	if m.driver.Over() {
		m.screen.DrawTextCentered(m.screen.Height()-1, "r: play again   esc: lobby   ctrl+c: quit")
	}

	return RenderScreen(m.screen) + "\n" + dimStyle.Render(m.help.View(m.keys))
}

func resultLine(res room.MatchResult) string {
	switch {
	case res.Reason == room.EndAbandoned:
		return "match abandoned"
	case res.Winner >= 0 && res.Winner < len(res.Players):
		return fmt.Sprintf("%s wins in %s", res.Players[res.Winner].Name, formatDuration(res.Duration))
	case len(res.Players) == 1:
		return fmt.Sprintf("%d lines in %s", res.Players[0].Lines, formatDuration(res.Duration))
	}
	return "match over"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run starts the Bubble Tea program and blocks until it exits or
// opts.Context is cancelled.
func Run(opts Options) error {
	_, err := newProgram(opts).Run()
	return err
}

func newProgram(opts Options, extra ...tea.ProgramOption) *tea.Program {
	popts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		popts = append(popts, tea.WithContext(opts.Context))
	}
	return tea.NewProgram(NewModel(opts), append(popts, extra...)...)
}
