package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name; empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	}
	return DifficultyNormal, fmt.Errorf("config: unknown difficulty %q", s)
}

// ApplyPreset modifies the config based on a difficulty preset. Normal keeps
// the loaded values.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Simulation.FallDuration = cfg.Simulation.FallDuration * 3 / 2
		cfg.Simulation.LevelSpeedup /= 2
		cfg.Modes.Sprint.LinesTarget = min(cfg.Modes.Sprint.LinesTarget, 20)
	case DifficultyHard:
		cfg.Simulation.Randomizer = "hard"
		cfg.Modes.Marathon.StartLevel = max(cfg.Modes.Marathon.StartLevel, 5)
		cfg.Simulation.LineClearDuration /= 2
	}
}
