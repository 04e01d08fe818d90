// Package registry provides a global registry of game modes. The CLI lists
// it, the lobby offers it, and the room builds each unit's mode through it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// ModeInfo contains metadata about a registered mode.
type ModeInfo struct {
	ID          string
	Title       string
	Description string
	// Versus needs an opponent; solo modes accept any player count.
	MinPlayers int
}

// Factory creates fresh per-unit mode state from the mode settings.
type Factory func(cfg config.ModesConfig) tetris.Mode

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]ModeInfo)
	mu        sync.RWMutex
)

func init() {
	Register(ModeInfo{
		ID:          tetris.ModeMarathon,
		Title:       "Marathon",
		Description: "Level up every 10 x level lines until the target level",
		MinPlayers:  1,
	}, func(cfg config.ModesConfig) tetris.Mode {
		return tetris.NewMarathon(cfg.Marathon.StartLevel, cfg.Marathon.LevelTarget)
	})
	Register(ModeInfo{
		ID:          tetris.ModeSprint,
		Title:       "Sprint",
		Description: "Clear the line target as fast as possible",
		MinPlayers:  1,
	}, func(cfg config.ModesConfig) tetris.Mode {
		return tetris.NewSprint(cfg.Sprint.LinesTarget)
	})
	Register(ModeInfo{
		ID:          tetris.ModeVersus,
		Title:       "Versus",
		Description: "Cleared lines become garbage in the next player's well",
		MinPlayers:  2,
	}, func(config.ModesConfig) tetris.Mode {
		return tetris.NewVersus()
	})
	Register(ModeInfo{
		ID:          tetris.ModeGameOfLife,
		Title:       "Game of Life",
		Description: "The well evolves as a cellular automaton every few pieces",
		MinPlayers:  1,
	}, func(cfg config.ModesConfig) tetris.Mode {
		return tetris.NewGameOfLife(cfg.Life.Period)
	})
}

// Register adds a mode factory to the registry.
// Panics if a mode with the same ID is already registered.
func Register(info ModeInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", info.ID))
	}
	factories[info.ID] = f
	infos[info.ID] = info
}

// List returns information about all registered modes, sorted by ID.
func List() []ModeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModeInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Info returns the metadata of a registered mode.
func Info(id string) (ModeInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()
	info, ok := infos[id]
	return info, ok
}

// Create builds a new mode instance by its ID.
// Returns an error if the mode ID is not registered.
func Create(id string, cfg config.ModesConfig) (tetris.Mode, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown mode %q", id)
	}
	return f(cfg), nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
