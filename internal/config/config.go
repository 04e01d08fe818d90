// Package config provides YAML-based configuration loading for the game:
// simulation tuning, mode targets, local players and their key bindings, and
// network settings.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// Config is the whole tetris.yaml file.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Modes      ModesConfig      `yaml:"modes"`
	Players    []PlayerConfig   `yaml:"players"`
	Network    NetworkConfig    `yaml:"network"`
}

// SimulationConfig tunes the engine and the room driver.
type SimulationConfig struct {
	Cols              int           `yaml:"cols"`
	Rows              int           `yaml:"rows"`
	QueueDepth        int           `yaml:"queue_depth"`
	Randomizer        string        `yaml:"randomizer"` // "fair" or "hard"
	LineClearDuration time.Duration `yaml:"line_clear_duration"`
	LifeDuration      time.Duration `yaml:"life_duration"`
	FallDuration      time.Duration `yaml:"fall_duration"` // at level 1
	LevelSpeedup      float64       `yaml:"level_speedup"`
	SoftdropDuration  time.Duration `yaml:"softdrop_duration"`
}

// ModesConfig holds per-mode targets.
type ModesConfig struct {
	Default  string         `yaml:"default"`
	Marathon MarathonConfig `yaml:"marathon"`
	Sprint   SprintConfig   `yaml:"sprint"`
	Life     LifeConfig     `yaml:"life"`
}

type MarathonConfig struct {
	StartLevel  int `yaml:"start_level"`
	LevelTarget int `yaml:"level_target"` // 0 plays forever
}

type SprintConfig struct {
	LinesTarget int `yaml:"lines_target"`
}

type LifeConfig struct {
	Period int `yaml:"period"` // locks between automaton steps
}

// PlayerConfig is one local player sharing the keyboard.
type PlayerConfig struct {
	Name    string        `yaml:"name"`
	Prepeat time.Duration `yaml:"prepeat"`
	Repeat  time.Duration `yaml:"repeat"`
	Keys    KeyBindings   `yaml:"keys"`
}

// KeyBindings lists the key names (as reported by Bubble Tea) per action.
type KeyBindings struct {
	MoveLeft    []string `yaml:"move_left"`
	MoveRight   []string `yaml:"move_right"`
	RotateLeft  []string `yaml:"rotate_left"`
	RotateRight []string `yaml:"rotate_right"`
	SoftDrop    []string `yaml:"soft_drop"`
	HardDrop    []string `yaml:"hard_drop"`
	Store       []string `yaml:"store"`
}

// Actions returns the bindings keyed by gameplay action.
func (k KeyBindings) Actions() map[core.Action][]string {
	return map[core.Action][]string{
		core.ActionMoveLeft:    k.MoveLeft,
		core.ActionMoveRight:   k.MoveRight,
		core.ActionRotateLeft:  k.RotateLeft,
		core.ActionRotateRight: k.RotateRight,
		core.ActionSoftDrop:    k.SoftDrop,
		core.ActionHardDrop:    k.HardDrop,
		core.ActionStore:       k.Store,
	}
}

// NetworkConfig holds host and client settings.
type NetworkConfig struct {
	Port         int           `yaml:"port"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MetricsAddr  string        `yaml:"metrics_addr"`
}

// SimConfig builds the engine configuration.
func (c Config) SimConfig() (tetris.SimConfig, error) {
	s := c.Simulation
	policy, err := tetris.ParsePolicy(s.Randomizer)
	if err != nil {
		return tetris.SimConfig{}, err
	}
	return tetris.SimConfig{
		Cols:              s.Cols,
		Rows:              s.Rows,
		QueueDepth:        s.QueueDepth,
		Policy:            policy,
		LineClearDuration: s.LineClearDuration,
		LifeDuration:      s.LifeDuration,
		BaseFallDuration:  s.FallDuration,
		LevelSpeedup:      s.LevelSpeedup,
		SoftdropDuration:  s.SoftdropDuration,
	}, nil
}

// Timing returns the auto-repeat tuning of player slot i.
func (c Config) Timing(i int) tetris.Timing {
	if i < 0 || i >= len(c.Players) {
		return tetris.DefaultTiming()
	}
	return tetris.Timing{Prepeat: c.Players[i].Prepeat, Repeat: c.Players[i].Repeat}
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	s := c.Simulation
	switch {
	case s.Cols < 4 || s.Rows < 4:
		return fmt.Errorf("config: well %dx%d is too small", s.Cols, s.Rows)
	case s.Cols > 40 || s.Rows > 40:
		return fmt.Errorf("config: well %dx%d is too large", s.Cols, s.Rows)
	case s.QueueDepth < 1:
		return fmt.Errorf("config: queue_depth must be positive")
	case s.FallDuration <= 0 || s.SoftdropDuration <= 0:
		return fmt.Errorf("config: fall and softdrop durations must be positive")
	case s.LevelSpeedup < 0:
		return fmt.Errorf("config: level_speedup must not be negative")
	case c.Network.Port < 0 || c.Network.Port > 65535:
		return fmt.Errorf("config: invalid port %d", c.Network.Port)
	}
	if _, err := tetris.ParsePolicy(s.Randomizer); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("config: at least one player is required")
	}
	return nil
}
