package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultConfig returns the hardcoded configuration used when no YAML is
// available.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Cols:              10,
			Rows:              20,
			QueueDepth:        5,
			Randomizer:        "fair",
			LineClearDuration: 200 * time.Millisecond,
			LifeDuration:      250 * time.Millisecond,
			FallDuration:      400 * time.Millisecond,
			LevelSpeedup:      0.15,
			SoftdropDuration:  30 * time.Millisecond,
		},
		Modes: ModesConfig{
			Default:  "marathon",
			Marathon: MarathonConfig{StartLevel: 1, LevelTarget: 15},
			Sprint:   SprintConfig{LinesTarget: 40},
			Life:     LifeConfig{Period: 4},
		},
		Players: []PlayerConfig{
			{
				Name:    "Player 1",
				Prepeat: 150 * time.Millisecond,
				Repeat:  50 * time.Millisecond,
				Keys: KeyBindings{
					MoveLeft:    []string{"left"},
					MoveRight:   []string{"right"},
					RotateLeft:  []string{"z"},
					RotateRight: []string{"x", "up"},
					SoftDrop:    []string{"down"},
					HardDrop:    []string{" "},
					Store:       []string{"c"},
				},
			},
			{
				Name:    "Player 2",
				Prepeat: 150 * time.Millisecond,
				Repeat:  50 * time.Millisecond,
				Keys: KeyBindings{
					MoveLeft:    []string{"a"},
					MoveRight:   []string{"d"},
					RotateLeft:  []string{"q"},
					RotateRight: []string{"e", "w"},
					SoftDrop:    []string{"s"},
					HardDrop:    []string{"tab"},
					Store:       []string{"f"},
				},
			},
		},
		Network: NetworkConfig{
			Port:         7777,
			WriteTimeout: 2 * time.Second,
			MetricsAddr:  ":2112",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultTetrisYAML
}
