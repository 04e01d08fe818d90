package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/room"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagMode     string
	flagContinue bool
	flagSavePath string
	flagPlayers  int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play on this terminal",
	Long: `Open the lobby on this terminal. Pick a mode with the arrow keys, seat
more players on the same keyboard with n, and start with enter.

Player 1 controls:
  Left/Right  - Move
  Z / X, Up   - Rotate left / right
  Down        - Soft drop
  Space       - Hard drop
  C           - Hold

Player 2 controls:
  A/D  - Move
  Q/E  - Rotate
  S    - Soft drop
  Tab  - Hard drop
  F    - Hold

P pauses, R plays again after a match, Esc leaves, Ctrl+C quits.
A single-player match is saved on quit and can be resumed with --continue.

Examples:
  tetris play
  tetris play --mode sprint
  tetris play --players 2 --mode versus
  tetris play --continue`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Mode selected in the lobby (default from config)")
	playCmd.Flags().BoolVar(&flagContinue, "continue", false, "Resume the saved single-player game")
	playCmd.Flags().StringVar(&flagSavePath, "save", "", "Save file (default: ~/.tetris/save.ttrs)")
	playCmd.Flags().IntVar(&flagPlayers, "players", 1, "Local players seated at start")
}

func savePath() string {
	if flagSavePath != "" {
		return flagSavePath
	}
	return filepath.Join(config.DataDir(), "save.ttrs")
}

// lobbyMode picks the flag, then the config default.
func lobbyMode(cfg config.Config) (string, error) {
	mode := flagMode
	if mode == "" {
		mode = cfg.Modes.Default
	}
	if !registry.Exists(mode) {
		return "", fmt.Errorf("unknown mode %q, run 'tetris modes' to see available modes", mode)
	}
	return mode, nil
}

// loadSave returns the saved unit when --continue asks for one.
func loadSave(path string) (*tetris.Unit, error) {
	if !flagContinue {
		return nil, nil
	}
	saved, err := storage.LoadUnit(path)
	if err != nil {
		return nil, fmt.Errorf("no usable save at %s: %w", path, err)
	}
	return saved, nil
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mode, err := lobbyMode(cfg)
	if err != nil {
		return err
	}
	if flagPlayers < 1 || flagPlayers > len(cfg.Players) {
		return fmt.Errorf("--players must be between 1 and %d", len(cfg.Players))
	}

	logger, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	rt := runtimeConfig()
	driver, err := newDriver(cfg, rt, mode, driverDeps{Logger: logger, Store: store})
	if err != nil {
		return err
	}

	path := savePath()
	saved, err := loadSave(path)
	if err != nil {
		logger.Warn("no usable save, starting fresh", "path", path, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: %v, starting a new game\n", err)
	}
	if saved != nil {
		driver.Submit(room.AddPlayerCmd(tui.LocalPlayer(cfg, 0, "")))
		driver.Submit(room.StartGameFromSaveCmd(saved))
		logger.Info("resuming saved game", "path", path)
	} else {
		for slot := range flagPlayers {
			driver.Submit(room.AddPlayerCmd(tui.LocalPlayer(cfg, slot, "")))
		}
	}

	return tui.Run(tui.Options{
		Config:   cfg,
		Runtime:  rt,
		Driver:   driver,
		Store:    store,
		Logger:   logger,
		SavePath: path,
	})
}
