package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// EndReason describes why a match ended.
type EndReason int

const (
	EndCompleted EndReason = iota // every unit finished, or one survivor in versus
	EndAbandoned                  // a player left mid-match
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	Name     string
	Local    bool
	Lines    int
	Level    int
	Won      bool
	Finished bool
}

// MatchResult is handed to the ResultSaver when a match ends.
type MatchResult struct {
	ID       string
	Mode     string
	Reason   EndReason
	Online   bool
	Players  []PlayerResult
	Winner   int // seat index, -1 if nobody won
	Duration time.Duration
	EndedAt  time.Time
}

// ResultSaver persists finished matches. It lets the room record results
// without depending on the storage package.
type ResultSaver interface {
	SaveMatchResult(result MatchResult) error
}

func newMatchID() string {
	return uuid.NewString()
}

// buildResult summarizes the room after its match ended.
func buildResult(r *Room, reason EndReason, online bool, elapsed time.Duration) MatchResult {
	res := MatchResult{
		ID:       newMatchID(),
		Mode:     r.Mode,
		Reason:   reason,
		Online:   online,
		Winner:   -1,
		Duration: elapsed,
		EndedAt:  time.Now(),
	}

	alive := -1
	aliveCount := 0
	best := -1
	for i, u := range r.Units {
		p := PlayerResult{
			Lines:    u.Base.LinesCleared,
			Level:    u.Base.Level(),
			Won:      u.Base.State.Phase == tetris.PhaseWin,
			Finished: u.Base.State.Terminal(),
		}
		if i < len(r.Players) {
			p.Name = r.Players[i].Name
			_, p.Local = r.Players[i].Local()
		}
		res.Players = append(res.Players, p)

		if u.Base.State.Phase != tetris.PhaseLose {
			alive = i
			aliveCount++
		}
		if p.Won && (best < 0 || p.Lines > res.Players[best].Lines) {
			best = i
		}
	}

	if r.Mode == tetris.ModeVersus {
		if aliveCount == 1 {
			res.Winner = alive
			res.Players[alive].Won = true
		}
	} else {
		res.Winner = best
	}
	return res
}
