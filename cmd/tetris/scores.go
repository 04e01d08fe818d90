package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagLimit   int
	flagPlayer  string
	flagMatches bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show the leaderboard of a mode",
	Long: `Display the top scores for the specified mode. Marathon, Versus and
Game of Life rank by lines cleared; Sprint ranks finished runs by time.

Examples:
  tetris scores marathon
  tetris scores sprint --limit 20
  tetris scores --player alice
  tetris scores --matches`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().StringVar(&flagPlayer, "player", "", "Show one player's recent games instead")
	scoresCmd.Flags().BoolVar(&flagMatches, "matches", false, "Show recent matches instead")
}

func runScores(_ *cobra.Command, args []string) error {
	if len(args) == 0 && flagPlayer == "" && !flagMatches {
		return fmt.Errorf("give a mode, --player or --matches")
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open scores database: %w", err)
	}
	defer store.Close()

	switch {
	case flagMatches:
		return printMatches(os.Stdout, store)
	case flagPlayer != "":
		return printPlayer(os.Stdout, store, flagPlayer)
	}

	mode := args[0]
	info, ok := registry.Info(mode)
	if !ok {
		return fmt.Errorf("unknown mode %q, run 'tetris modes' to see available modes", mode)
	}
	return printLeaderboard(os.Stdout, store, info)
}

func printLeaderboard(w io.Writer, store *storage.Store, info registry.ModeInfo) error {
	scores, err := store.TopScores(info.ID, flagLimit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "High Scores - %s\n\n", info.Title)
	if len(scores) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Play 'tetris play --mode %s' to set the first one!\n", info.ID)
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-16s  %5s  %5s  %8s  %s\n", "Rank", "Player", "Lines", "Level", "Time", "Date")
	fmt.Fprintf(w, "  %-4s  %-16s  %5s  %5s  %8s  %s\n", "----", "------", "-----", "-----", "----", "----")
	for i, e := range scores {
		fmt.Fprintf(w, "  %-4d  %-16s  %5d  %5d  %8s  %s\n",
			i+1, e.Player, e.Lines, e.Level, formatDuration(e.Duration), e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetModeStats(info.ID)
	if err == nil && stats != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Games: %d   Total lines: %d\n", stats.Games, stats.TotalLines)
	}
	return nil
}

func printPlayer(w io.Writer, store *storage.Store, player string) error {
	scores, err := store.PlayerScores(player, flagLimit)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Recent games - %s\n\n", player)
	if len(scores) == 0 {
		fmt.Fprintln(w, "No games recorded yet.")
		return nil
	}
	for _, e := range scores {
		result := ""
		if e.Won {
			result = "won"
		}
		fmt.Fprintf(w, "  %-10s  %5d lines  %8s  %-3s  %s\n",
			e.Mode, e.Lines, formatDuration(e.Duration), result, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func printMatches(w io.Writer, store *storage.Store) error {
	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Recent matches")
	fmt.Fprintln(w)
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches recorded yet.")
		return nil
	}
	for _, m := range matches {
		where := "local"
		if m.Online {
			where = "online"
		}
		winner := m.Winner
		if winner == "" {
			winner = "-"
		}
		fmt.Fprintf(w, "  %-10s  %-9s  %-6s  %d players  winner %-16s  %8s  %s\n",
			m.Mode, m.Reason, where, m.Players, winner, formatDuration(m.Duration), m.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	return fmt.Sprintf("%d:%04.1f", minutes, d.Seconds())
}
