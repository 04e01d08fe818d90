package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreTopScoresByLines(t *testing.T) {
	store := openTest(t)

	for _, e := range []ScoreEntry{
		{Mode: tetris.ModeMarathon, Player: "a", Lines: 40, Level: 5},
		{Mode: tetris.ModeMarathon, Player: "b", Lines: 120, Level: 13},
		{Mode: tetris.ModeMarathon, Player: "c", Lines: 75, Level: 8},
		{Mode: tetris.ModeGameOfLife, Player: "d", Lines: 500},
	} {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores(tetris.ModeMarathon, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}
	want := []string{"b", "c", "a"}
	for i, p := range want {
		if scores[i].Player != p {
			t.Errorf("scores[%d].Player = %s, expected %s", i, scores[i].Player, p)
		}
	}

	top, err := store.TopScores(tetris.ModeMarathon, 2)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("Expected 2 scores with limit, got %d", len(top))
	}
}

func TestStoreSprintRanksByTime(t *testing.T) {
	store := openTest(t)

	for _, e := range []ScoreEntry{
		{Mode: tetris.ModeSprint, Player: "slow", Lines: 40, Won: true, Duration: 95 * time.Second},
		{Mode: tetris.ModeSprint, Player: "quit", Lines: 12, Duration: 20 * time.Second},
		{Mode: tetris.ModeSprint, Player: "fast", Lines: 41, Won: true, Duration: 62500 * time.Millisecond},
	} {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores(tetris.ModeSprint, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 finished sprints, got %d", len(scores))
	}
	if scores[0].Player != "fast" || scores[0].Duration != 62500*time.Millisecond {
		t.Errorf("scores[0] = %s in %v, expected fast in 1m2.5s", scores[0].Player, scores[0].Duration)
	}
	if !scores[0].Won {
		t.Error("sprint entry lost its won flag")
	}
}

func TestStoreBest(t *testing.T) {
	store := openTest(t)

	best, err := store.Best(tetris.ModeMarathon)
	if err != nil {
		t.Fatalf("Best() failed: %v", err)
	}
	if best != nil {
		t.Errorf("Best() = %v for an empty mode, expected nil", best)
	}

	store.SaveScore(ScoreEntry{Mode: tetris.ModeMarathon, Player: "a", Lines: 10})
	store.SaveScore(ScoreEntry{Mode: tetris.ModeMarathon, Player: "b", Lines: 30})

	best, err = store.Best(tetris.ModeMarathon)
	if err != nil {
		t.Fatalf("Best() failed: %v", err)
	}
	if best == nil || best.Lines != 30 {
		t.Errorf("Best() = %v, expected 30 lines", best)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTest(t)

	store.SaveScore(ScoreEntry{Mode: tetris.ModeMarathon, Player: "a", Lines: 1})
	store.SaveScore(ScoreEntry{Mode: tetris.ModeMarathon, Player: "a", Lines: 2})
	store.SaveScore(ScoreEntry{Mode: tetris.ModeGameOfLife, Player: "a", Lines: 3})

	if err := store.ClearScores(tetris.ModeMarathon); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	marathon, _ := store.TopScores(tetris.ModeMarathon, 10)
	if len(marathon) != 0 {
		t.Errorf("Expected 0 marathon scores after clear, got %d", len(marathon))
	}
	life, _ := store.TopScores(tetris.ModeGameOfLife, 10)
	if len(life) != 1 {
		t.Errorf("Game of life scores should not be affected by clearing marathon")
	}
}

func versusResult(reason room.EndReason) room.MatchResult {
	return room.MatchResult{
		ID:     "match-1",
		Mode:   tetris.ModeVersus,
		Reason: reason,
		Online: true,
		Players: []room.PlayerResult{
			{Name: "alice", Local: true, Lines: 14, Level: 1, Won: true, Finished: false},
			{Name: "bob", Local: false, Lines: 9, Level: 1, Finished: true},
		},
		Winner:   0,
		Duration: 3 * time.Minute,
		EndedAt:  time.Now(),
	}
}

func TestStoreSaveMatchResult(t *testing.T) {
	store := openTest(t)

	if err := store.SaveMatchResult(versusResult(room.EndCompleted)); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	m, err := store.MatchByID("match-1")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if m == nil {
		t.Fatal("MatchByID() = nil, expected the saved match")
	}
	if m.Winner != "alice" || m.Reason != "completed" || !m.Online || m.Players != 2 {
		t.Errorf("MatchByID() = %+v", *m)
	}
	if m.Duration != 3*time.Minute {
		t.Errorf("Duration = %v, expected 3m", m.Duration)
	}

	// Only the local seat gets a leaderboard entry.
	scores, _ := store.TopScores(tetris.ModeVersus, 10)
	if len(scores) != 1 || scores[0].Player != "alice" || scores[0].MatchID != "match-1" {
		t.Errorf("TopScores() = %+v, expected alice's game only", scores)
	}

	// Match IDs are unique.
	if err := store.SaveMatchResult(versusResult(room.EndCompleted)); err == nil {
		t.Error("SaveMatchResult() accepted a duplicate match")
	}
	scores, _ = store.TopScores(tetris.ModeVersus, 10)
	if len(scores) != 1 {
		t.Errorf("a rejected match left %d scores, expected 1", len(scores))
	}
}

func TestStoreAbandonedMatchHasNoScores(t *testing.T) {
	store := openTest(t)

	res := versusResult(room.EndAbandoned)
	res.Winner = -1
	if err := store.SaveMatchResult(res); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	m, _ := store.MatchByID(res.ID)
	if m == nil || m.Winner != "" || m.Reason != "abandoned" {
		t.Errorf("MatchByID() = %+v, expected an abandoned match without winner", m)
	}
	scores, _ := store.TopScores(tetris.ModeVersus, 10)
	if len(scores) != 0 {
		t.Errorf("abandoned match saved %d scores", len(scores))
	}

	missing, err := store.MatchByID("nope")
	if err != nil || missing != nil {
		t.Errorf("MatchByID(unknown) = %v, %v; expected nil, nil", missing, err)
	}
}

func TestStoreRecentMatchesAndStats(t *testing.T) {
	store := openTest(t)

	for i, id := range []string{"m1", "m2", "m3"} {
		res := versusResult(room.EndCompleted)
		res.ID = id
		res.Players[0].Lines = 10 * (i + 1)
		if err := store.SaveMatchResult(res); err != nil {
			t.Fatalf("SaveMatchResult() failed: %v", err)
		}
	}

	recent, err := store.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].MatchID != "m3" {
		t.Errorf("RecentMatches() = %+v, expected m3 first", recent)
	}

	stats, err := store.GetModeStats(tetris.ModeVersus)
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if stats.Games != 3 || stats.BestLines != 30 || stats.TotalLines != 60 {
		t.Errorf("GetModeStats() = %+v", *stats)
	}

	all, err := store.GetAllModesStats()
	if err != nil {
		t.Fatalf("GetAllModesStats() failed: %v", err)
	}
	if len(all) != 1 || all[tetris.ModeVersus] == nil {
		t.Errorf("GetAllModesStats() = %v, expected versus only", all)
	}

	history, err := store.PlayerScores("alice", 10)
	if err != nil {
		t.Fatalf("PlayerScores() failed: %v", err)
	}
	if len(history) != 3 || history[0].Lines != 30 {
		t.Errorf("PlayerScores() = %+v, expected newest first", history)
	}
}
