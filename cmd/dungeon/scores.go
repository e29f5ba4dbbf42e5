package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-dungeon/internal/registry"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

var (
	flagScoresClear   bool
	flagScoresMatches bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <mode>",
	Short: "Show top runs for a mode",
	Long: `Display the top 10 runs for the specified mode.

Besides the playable modes, 'race' shows runs recorded during
head-to-head races over SSH.

Examples:
  dungeon scores campaign
  dungeon scores arena
  dungeon scores race --matches
  dungeon scores campaign --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded runs for the mode")
	scoresCmd.Flags().BoolVar(&flagScoresMatches, "matches", false, "Show recent race matches instead of runs (race mode only)")
}

func runScores(cmd *cobra.Command, args []string) {
	mode := args[0]

	// Check if mode exists; "race" has no registry entry but owns
	// a page on the board
	if mode != "race" && !registry.Exists(mode) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", mode)
		fmt.Fprintln(os.Stderr, "Run 'dungeon list' to see playable modes, or use 'race'.")
		os.Exit(1)
	}

	// Get mode title
	title := "Race"
	if mode != "race" {
		game, err := registry.Create(mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			os.Exit(1)
		}
		title = game.Title()
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearRuns(mode); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared all %s runs.\n", mode)
		return
	}

	if flagScoresMatches {
		if mode != "race" {
			fmt.Fprintln(os.Stderr, "Error: --matches applies to the race mode")
			os.Exit(1)
		}
		showMatches(store)
		return
	}

	// Get top runs
	runs, err := store.TopRuns(mode, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	// Display runs
	fmt.Printf("Top Runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		if mode == "race" {
			fmt.Println("Race a friend over SSH ('dungeon serve') to get on the board!")
		} else {
			fmt.Printf("Play 'dungeon play %s' to set the first score!\n", mode)
		}
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-10s  %-10s  %-14s  %s\n", "Rank", "Score", "Outcome", "Stage", "Date")
	fmt.Printf("  %-4s  %-10s  %-10s  %-14s  %s\n", "----", "-----", "-------", "-----", "----")

	// Print runs
	for i, entry := range runs {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %-10s  %-14s  %s\n", i+1, entry.Score, entry.Outcome, entry.Stage, dateStr)
	}

	// Show aggregate stats
	fmt.Println()
	stats, err := store.GetModeStats(mode)
	if err == nil && stats.RunCount > 0 {
		fmt.Printf("Runs: %d  Best: %d  Avg: %.1f  Escapes: %d\n",
			stats.RunCount, stats.HighScore, stats.AvgScore, stats.Escapes)
	}
}

func showMatches(store *storage.Store) {
	races, err := store.RecentRaces(10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving races: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recent Races")
	fmt.Println()

	if len(races) == 0 {
		fmt.Println("No races recorded yet.")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-9s  %-22s  %s\n", "Date", "Score", "Reason", "Winner")
	fmt.Printf("  %-16s  %-9s  %-22s  %s\n", "----", "-----", "------", "------")

	// Print matches
	for _, rec := range races {
		dateStr := rec.CreatedAt.Format("2006-01-02 15:04")
		scoreStr := fmt.Sprintf("%d-%d", rec.Score1, rec.Score2)
		winner := rec.WinnerSession
		if winner == "" {
			winner = "draw"
		}
		fmt.Printf("  %-16s  %-9s  %-22s  %s\n", dateStr, scoreStr, rec.EndReason, winner)
	}
}
