package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon"
	"github.com/vovakirdan/tui-dungeon/internal/platform/tui"
	"github.com/vovakirdan/tui-dungeon/internal/registry"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagStage      string
	flagStagesDir  string
)

var playCmd = &cobra.Command{
	Use:   "play <mode>",
	Short: "Start a run",
	Long: `Start a run in the specified mode.

Modes:
  campaign - Fight from the entry hall to the final gate
  arena    - Start on a chosen stage

Controls:
  WASD/Arrows - Move
  Space/F     - Attack
  E/Enter     - Interact with doors and objects
  P           - Pause
  R           - Restart (after the run ends)
  Q/Ctrl+C    - Quit

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  dungeon play campaign
  dungeon play campaign --difficulty easy
  dungeon play arena --stage crypt
  dungeon play arena --stage guard-room --difficulty hard
  dungeon play campaign --config ./my-dungeon.yaml
  dungeon play campaign --stages-dir ./my-stages`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagStage, "stage", "", "Starting stage for arena mode")
	playCmd.Flags().StringVar(&flagStagesDir, "stages-dir", "", "Extra stage directory, overrides the config")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]

	// Check if mode exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'dungeon list' to see available modes.")
		os.Exit(1)
	}

	// Get terminal size early for the stage selector
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Create runtime config
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	// Apply selections before the game is created
	dungeon.SetConfigPath(flagConfig)
	dungeon.SetDifficultyPreset(flagDifficulty)
	dungeon.SetStagesDir(flagStagesDir)

	if gameID == "arena" {
		if flagStage != "" {
			if err := checkStage(flagStage); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			dungeon.SetStartStage(flagStage)
		} else {
			// No stage given; show the selector
			selection, updatedCfg, selErr := tui.RunDungeonSelector(true, cfg)
			if selErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", selErr)
				os.Exit(1)
			}
			cfg = updatedCfg

			// User pressed back or quit
			if selection == nil {
				return
			}

			dungeon.SetStartStage(selection.StartStage)
			if selection.Difficulty != "" {
				dungeon.SetDifficultyPreset(selection.Difficulty)
			}
		}
	}

	// Create game instance
	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the run still works
		store = nil
	}

	// Run the game
	runErr := tui.Run(game, store, cfg)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// checkStage verifies a stage ID against the catalog so a typo fails
// here instead of inside the run.
func checkStage(id string) error {
	infos, err := dungeon.StageList()
	if err != nil {
		return fmt.Errorf("cannot load stage catalog: %w", err)
	}

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.ID == id {
			return nil
		}
		ids = append(ids, info.ID)
	}
	return fmt.Errorf("unknown stage %q (have: %s)", id, strings.Join(ids, ", "))
}
