package tetris

import "time"

// SimConfig holds every tuning value the engine and the room driver need.
// It is built once at startup and passed down explicitly.
type SimConfig struct {
	Cols       int
	Rows       int
	QueueDepth int
	Policy     Policy

	LineClearDuration time.Duration
	LifeDuration      time.Duration

	// Fall duration at level 1, divided by 1 + (level-1)*LevelSpeedup.
	BaseFallDuration time.Duration
	LevelSpeedup     float64
	SoftdropDuration time.Duration
}

// DefaultSimConfig returns the standard 10x20 setup.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Cols:              10,
		Rows:              20,
		QueueDepth:        5,
		Policy:            PolicyFair,
		LineClearDuration: 200 * time.Millisecond,
		LifeDuration:      250 * time.Millisecond,
		BaseFallDuration:  400 * time.Millisecond,
		LevelSpeedup:      0.15,
		SoftdropDuration:  30 * time.Millisecond,
	}
}

// FallDuration returns the time a piece takes to fall one row at level.
func (c SimConfig) FallDuration(level int) time.Duration {
	level = max(level, 1)
	return time.Duration(float64(c.BaseFallDuration) / (1 + float64(level-1)*c.LevelSpeedup))
}
