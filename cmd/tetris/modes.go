package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/registry"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List all available modes",
	Long:  `Shows every game mode the lobby offers.`,
	Args:  cobra.NoArgs,
	Run:   runModes,
}

func runModes(_ *cobra.Command, _ []string) {
	modes := registry.List()

	fmt.Println("Available modes:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, m := range modes {
		maxIDLen = max(maxIDLen, len(m.ID))
	}

	fmt.Printf("  %-*s  %-14s  %s\n", maxIDLen, "ID", "Title", "Description")
	fmt.Printf("  %-*s  %-14s  %s\n", maxIDLen, "--", "-----", "-----------")
	for _, m := range modes {
		title := m.Title
		if m.MinPlayers > 1 {
			title += fmt.Sprintf(" (%d+)", m.MinPlayers)
		}
		fmt.Printf("  %-*s  %-14s  %s\n", maxIDLen, m.ID, title, m.Description)
	}

	fmt.Println()
	fmt.Println("Run 'tetris play --mode <id>' to play a mode.")
}
