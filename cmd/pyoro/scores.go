package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pyoro/internal/platform/tui"
	"github.com/vovakirdan/tui-pyoro/internal/registry"
	"github.com/vovakirdan/tui-pyoro/internal/storage"
)

var (
	flagClear bool
	flagTable bool
	flagLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores",
	Long: `Display the best rounds of a game, or of both variants when no game
is given.

Examples:
  pyoro scores
  pyoro scores pyoro2 --limit 20
  pyoro scores --table
  pyoro scores pyoro --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded scores")
	scoresCmd.Flags().BoolVar(&flagTable, "table", false, "Browse scores in an interactive table")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rounds to show")
}

func runScores(_ *cobra.Command, args []string) error {
	ids := variantIDs[:]
	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return fmt.Errorf("%w %q (run 'pyoro list' to see available games)", registry.ErrUnknownGame, args[0])
		}
		ids = args[:1]
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	if flagClear {
		for _, id := range ids {
			if err := store.ClearScores(id); err != nil {
				return err
			}
			fmt.Printf("Cleared scores for %s.\n", id)
		}
		return nil
	}

	if flagTable {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		_, err := tui.RunScoreboard(store, width, height)
		return err
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Println()
		}
		if err := printScores(store, id); err != nil {
			return err
		}
	}
	return nil
}

func printScores(store *storage.Store, gameID string) error {
	game, err := registry.Create(gameID, registry.Env{})
	if err != nil {
		return err
	}

	runs, err := store.TopScores(gameID, flagLimit)
	if err != nil {
		return fmt.Errorf("error retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Printf("Play 'pyoro play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-6s  %-7s  %s\n", "Rank", "Score", "Speed", "Time", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-7s  %s\n", "----", "-----", "-----", "----", "----")
	for i, r := range runs {
		fmt.Printf("  %-4d  %-8d  x%-5.2f  %-7s  %s\n",
			i+1, r.Score, r.Speed, r.Duration.Round(time.Second).String(), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(gameID)
	if err == nil {
		fmt.Println()
		fmt.Printf("Best: %d  Rounds: %d  Average: %.0f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
	return nil
}
