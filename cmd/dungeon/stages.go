package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

var flagStagesValidate bool

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Inspect the stage catalog",
	Long: `List the stages the dungeon is built from.

The embedded catalog is always available; --stages-dir adds or
overrides stages from a directory, and --config can point at a
config that sets its own stage directory.

With --validate, every stage is checked (dimensions, spawn point,
door placement, enemy and item kinds) along with the links between
stages: each door must lead to a stage that exists.

Examples:
  dungeon stages
  dungeon stages --stages-dir ./my-stages
  dungeon stages --stages-dir ./my-stages --validate`,
	Run: runStages,
}

func init() {
	stagesCmd.Flags().BoolVar(&flagStagesValidate, "validate", false, "Validate all stages and the doors between them")
	stagesCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	stagesCmd.Flags().StringVar(&flagStagesDir, "stages-dir", "", "Extra stage directory, overrides the config")
}

func runStages(cmd *cobra.Command, args []string) {
	// Resolve the stage directory the same way a run would
	dcfg, err := config.LoadDungeon(flagConfig)
	if err != nil {
		dcfg = config.DefaultDungeonConfig()
	}
	dir := dcfg.Stages.Dir
	if flagStagesDir != "" {
		dir = flagStagesDir
	}

	all, err := stages.NewCatalog(dir).LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stages: %v\n", err)
		os.Exit(1)
	}

	if flagStagesValidate {
		kinds := stages.KnownKinds{
			Enemies: dungeon.EnemyKinds(),
			Items:   dungeon.ItemKinds(),
		}
		if err := stages.ValidateCatalog(all, kinds); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog OK: %d stages, all doors resolve.\n", len(all))
		return
	}

	if len(all) == 0 {
		fmt.Println("No stages found.")
		return
	}

	if dir != "" {
		fmt.Printf("Stage catalog (%d stages, extra dir %s):\n", len(all), dir)
	} else {
		fmt.Printf("Stage catalog (%d stages):\n", len(all))
	}
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxNameLen := 4
	for _, s := range all {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
		if len(s.Name) > maxNameLen {
			maxNameLen = len(s.Name)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %-7s  %-5s  %-7s  %-5s  %s\n",
		maxIDLen, "ID", maxNameLen, "Name", "Size", "Doors", "Enemies", "Items", "Walls")
	fmt.Printf("  %-*s  %-*s  %-7s  %-5s  %-7s  %-5s  %s\n",
		maxIDLen, "--", maxNameLen, "----", "----", "-----", "-------", "-----", "-----")

	// Print stages
	for _, s := range all {
		st := stages.ComputeStageStats(s)
		size := fmt.Sprintf("%dx%d", st.Width, st.Height)
		fmt.Printf("  %-*s  %-*s  %-7s  %-5d  %-7d  %-5d  %.0f%%\n",
			maxIDLen, s.ID, maxNameLen, s.Name, size, st.Doors, st.Enemies, st.Items, st.WallRatio*100)
	}

	fmt.Println()
	fmt.Println("Run 'dungeon play arena --stage <id>' to start on a stage.")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default config YAML",
	Long: `Print the embedded default configuration.

Save it to a file, edit it, and pass it back with --config:

  dungeon config > my-dungeon.yaml
  dungeon play campaign --config ./my-dungeon.yaml`,
	Run: runConfig,
}

func runConfig(_ *cobra.Command, _ []string) {
	os.Stdout.Write(config.GetDefaultYAML("dungeon"))
}
