// Package storage persists finished matches and the leaderboard in SQLite,
// and single-player save files on disk.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is one local player's finished game.
type ScoreEntry struct {
	ID        int64
	MatchID   string
	Mode      string
	Player    string
	Lines     int
	Level     int
	Won       bool
	Duration  time.Duration
	CreatedAt time.Time
}

// MatchRecord is a finished match as stored.
type MatchRecord struct {
	ID        int64
	MatchID   string
	Mode      string
	Reason    string
	Online    bool
	Players   int
	Winner    string // empty if nobody won
	Duration  time.Duration
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			player TEXT NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			won INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_mode ON scores(mode);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(mode, lines DESC);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			online INTEGER NOT NULL DEFAULT 0,
			players INTEGER NOT NULL DEFAULT 0,
			winner TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_mode ON matches(mode);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records one finished game and returns its ID.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO scores (match_id, mode, player, lines, level, won, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.MatchID, e.Mode, e.Player, e.Lines, e.Level, e.Won, e.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// rankOrder is the leaderboard order of a mode. Sprint is a race, so only
// finished runs count and the fastest wins.
func rankOrder(mode string) (where, order string) {
	if mode == tetris.ModeSprint {
		return "AND won = 1", "duration_ms ASC, created_at ASC"
	}
	return "", "lines DESC, level DESC, created_at ASC"
}

const scoreColumns = `id, match_id, mode, player, lines, level, won, duration_ms, created_at`

// TopScores returns the leaderboard of a mode.
func (s *Store) TopScores(mode string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	where, order := rankOrder(mode)
	rows, err := s.db.Query(
		`SELECT `+scoreColumns+`
		 FROM scores
		 WHERE mode = ? `+where+`
		 ORDER BY `+order+`
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return scanScores(rows)
}

// PlayerScores returns a player's games across modes, newest first.
func (s *Store) PlayerScores(player string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+scoreColumns+`
		 FROM scores
		 WHERE player = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		player, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player scores: %w", err)
	}
	return scanScores(rows)
}

func scanScores(rows *sql.Rows) ([]ScoreEntry, error) {
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var ms int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Mode, &e.Player, &e.Lines, &e.Level, &e.Won, &ms, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// Best returns the top leaderboard entry of a mode, nil if there is none.
func (s *Store) Best(mode string) (*ScoreEntry, error) {
	top, err := s.TopScores(mode, 1)
	if err != nil || len(top) == 0 {
		return nil, err
	}
	return &top[0], nil
}

// ClearScores deletes all scores for the given mode.
func (s *Store) ClearScores(mode string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE mode = ?", mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// SaveMatchResult records a match and, when it ran to completion, a score
// for every seat played on this instance.
func (s *Store) SaveMatchResult(res room.MatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin: %w", err)
	}
	defer tx.Rollback()

	var winner sql.NullString
	if res.Winner >= 0 && res.Winner < len(res.Players) {
		winner = sql.NullString{String: res.Players[res.Winner].Name, Valid: true}
	}
	_, err = tx.Exec(
		`INSERT INTO matches (match_id, mode, end_reason, online, players, winner, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.Mode, res.Reason.String(), res.Online, len(res.Players), winner, res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}

	if res.Reason == room.EndCompleted {
		for _, p := range res.Players {
			if !p.Local {
				continue
			}
			_, err := tx.Exec(
				`INSERT INTO scores (match_id, mode, player, lines, level, won, duration_ms)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				res.ID, res.Mode, p.Name, p.Lines, p.Level, p.Won, res.Duration.Milliseconds(),
			)
			if err != nil {
				return fmt.Errorf("storage: cannot save score: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return nil
}

var _ room.ResultSaver = (*Store)(nil)

const matchColumns = `id, match_id, mode, end_reason, online, players, winner, duration_ms, created_at`

// MatchByID returns a stored match, nil if unknown.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	rows, err := s.db.Query(`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	records, err := scanMatches(rows)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// RecentMatches returns the latest matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+matchColumns+`
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]MatchRecord, error) {
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		var winner sql.NullString
		var ms int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.MatchID, &r.Mode, &r.Reason, &r.Online, &r.Players, &winner, &ms, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Winner = winner.String
		r.Duration = time.Duration(ms) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// ModeStats aggregates the scores of one mode.
type ModeStats struct {
	Mode       string
	Games      int
	BestLines  int
	TotalLines int64
	LastPlayed time.Time
}

// GetModeStats returns statistics for one mode.
func (s *Store) GetModeStats(mode string) (*ModeStats, error) {
	stats := &ModeStats{Mode: mode}
	var last any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(lines), 0), COALESCE(SUM(lines), 0), MAX(created_at)
		 FROM scores WHERE mode = ?`,
		mode,
	).Scan(&stats.Games, &stats.BestLines, &stats.TotalLines, &last)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	stats.LastPlayed = parseTime(last)
	return stats, nil
}

// GetAllModesStats returns statistics for every mode that has been played.
func (s *Store) GetAllModesStats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), MAX(lines), SUM(lines), MAX(created_at)
		 FROM scores
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all modes stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var m ModeStats
		var last any
		if err := rows.Scan(&m.Mode, &m.Games, &m.BestLines, &m.TotalLines, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.LastPlayed = parseTime(last)
		stats[m.Mode] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
