// dungeon is a TUI dungeon crawl platform for the terminal.
//
// Usage:
//
//	dungeon list              - List available modes
//	dungeon play <mode>       - Start a run
//	dungeon menu              - Start menu to pick modes interactively
//	dungeon serve             - Start SSH server for remote play and races
//	dungeon scores <mode>     - Show top runs for a mode
//	dungeon stages            - Inspect the stage catalog
//	dungeon config            - Print the default config YAML
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible runs
//	--db <path>     - Set database path (default: ~/.dungeon/runs.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import the game to register its modes
	_ "github.com/vovakirdan/tui-dungeon/internal/games/dungeon"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dungeon",
	Short: "TUI Dungeon - fight through a dungeon in your terminal",
	Long: `TUI Dungeon is a terminal-based dungeon crawl: fight through
connected stages, clear each one to unlock its doors, and escape
through the final gate.

Available commands:
  list     - Show all available modes
  play     - Start a run directly
  menu     - Interactive mode picker menu
  serve    - Start SSH server for remote play and head-to-head races
  scores   - View top runs
  stages   - Inspect and validate the stage catalog
  config   - Print the default config YAML

Examples:
  dungeon list
  dungeon play campaign
  dungeon play arena --stage crypt --difficulty hard
  dungeon menu
  dungeon serve --ssh :2222
  dungeon scores campaign`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dungeon/runs.db", "Path to runs database")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(configCmd)
}
