// pyoro is a terminal remake of the bean-eating bird game.
//
// Usage:
//
//	pyoro                    - Open the title screen (last played variant)
//	pyoro play [game]        - Start a round of pyoro or pyoro2 directly
//	pyoro list               - List available variants
//	pyoro scores [game]      - Show high scores
//	pyoro serve              - Start SSH server for remote play
//	pyoro config             - Show or write the settings file
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: from settings)
//	--seed <value>   - Set RNG seed for reproducible gameplay
//	--db <path>      - Set database path (default: ~/.pyoro/scores.db)
//	--config <path>  - Use a specific settings file
//	--mute           - Disable audio output
//	--audio <kind>   - Audio backend: auto, pipe, speaker, none
//	--assets <dir>   - Directory holding sounds/ and music/
//	--debug          - Write a debug log to ~/.pyoro/pyoro.log
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tui-pyoro/internal/games/pyoro"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfigPath string
	flagMute       bool
	flagAudio      string
	flagAssets     string
	flagDebug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pyoro",
	Short: "Pyoro - eat the beans, save the floor",
	Long: `Pyoro is a terminal remake of the bean-eating bird game.

Walk along the floor and catch falling beans with your tongue before they
break the ground under your feet. Pink beans send an angel to repair a
tile; flashing beans clear the sky and repair up to ten tiles. Score
10000 points to unlock Pyoro 2, where the bird spits seeds instead.

Controls:
  Left/Right, A/D  - Walk
  Space/Up/W       - Tongue (Pyoro) or shoot (Pyoro 2)
  P/Esc            - Pause
  B                - Back to the menu
  R/Enter          - Restart after game over
  Ctrl+S           - Save a text screenshot
  Q/Ctrl+C         - Quit

Examples:
  pyoro
  pyoro play pyoro2 --seed 42
  pyoro scores
  pyoro serve --ssh :2222`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGame(cmd, "", false)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from settings)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.pyoro/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to settings YAML")
	rootCmd.PersistentFlags().BoolVar(&flagMute, "mute", false, "Disable audio output")
	rootCmd.PersistentFlags().StringVar(&flagAudio, "audio", "", "Audio backend: auto, pipe, speaker, none (default from settings)")
	rootCmd.PersistentFlags().StringVar(&flagAssets, "assets", "", "Asset directory with sounds/ and music/ (default from settings)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write a debug log to ~/.pyoro/pyoro.log")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
