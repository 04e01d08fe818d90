// tetris is a terminal Tetris with local and networked multiplayer.
//
// Usage:
//
//	tetris play              - Open the lobby and play on this terminal
//	tetris host              - Host a networked lobby
//	tetris join <addr>       - Join a networked lobby
//	tetris serve             - Start SSH server for remote solo play
//	tetris scores <mode>     - Show the leaderboard of a mode
//	tetris modes             - List available modes
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible piece sequences
//	--db <path>         - Set database path (default: ~/.tetris/scores.db)
//	--config <path>     - Load settings from a YAML file
//	--log-level <level> - Log verbosity, written to ~/.tetris/tetris.log
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/metrics"
	"github.com/vovakirdan/tui-tetris/internal/room"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Tetris in your terminal, alone or against friends",
	Long: `A terminal Tetris with Marathon, Sprint, Versus and Game of Life modes.
Several players can share one keyboard, and lobbies can be hosted and
joined over TCP.

Available commands:
  play     - Open the lobby on this terminal
  host     - Host a networked lobby
  join     - Join a networked lobby
  serve    - Start SSH server for remote solo play
  scores   - View a mode's leaderboard
  modes    - List available modes

Examples:
  tetris play
  tetris play --mode sprint --difficulty hard
  tetris host --port 7777
  tetris join 192.168.1.20:7777
  tetris scores marathon`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.tetris/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (default: ~/.tetris/tetris.log)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(modesCmd)
}

// loadConfig reads the config file and applies the difficulty preset.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)
	return cfg, cfg.Validate()
}

// openLog writes logs to a file so they do not tear the alternate screen.
func openLog() (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, err
	}
	path := flagLogFile
	if path == "" {
		path = filepath.Join(config.DataDir(), "tetris.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "tetris",
	})
	return logger, func() { _ = f.Close() }, nil
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the score database. The game still works without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "path", flagDBPath, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

type driverDeps struct {
	Transport room.Transport
	Logger    *log.Logger
	Metrics   *metrics.Metrics
	Store     *storage.Store
}

// newDriver builds the room driver for mode from the loaded settings.
func newDriver(cfg config.Config, rt core.RuntimeConfig, mode string, deps driverDeps) (*room.Driver, error) {
	sim, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	opts := room.Options{
		Sim:       sim,
		Modes:     cfg.Modes,
		Seed:      uint64(rt.SeedOrNow()),
		Transport: deps.Transport,
		Logger:    deps.Logger,
		Metrics:   deps.Metrics,
	}
	if deps.Store != nil {
		opts.Saver = deps.Store
	}
	return room.NewDriver(room.New(mode), opts), nil
}
