package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/games/pyoro"
	"github.com/vovakirdan/tui-pyoro/internal/platform/tui"
	"github.com/vovakirdan/tui-pyoro/internal/registry"
)

// variantIDs lists the game ids in settings last_game order.
var variantIDs = [2]string{"pyoro", "pyoro2"}

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Start a round directly",
	Long: `Skip the title screen and start a round of the given game.
Without an argument the last played variant is used.

Pyoro 2 must be unlocked by scoring 10000 points in Pyoro.

Examples:
  pyoro play
  pyoro play pyoro2
  pyoro play --seed 42 --mute`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameID := ""
		if len(args) == 1 {
			gameID = args[0]
		}
		return runGame(cmd, gameID, true)
	},
}

// runGame runs one interactive session. An empty gameID picks the last
// played variant.
func runGame(_ *cobra.Command, gameID string, skipMenu bool) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return core.ErrNoDisplay
	}

	a, err := openApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.close()

	if gameID == "" {
		gameID = variantIDs[a.settings.LastGame]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("%w %q (run 'pyoro list' to see available games)", registry.ErrUnknownGame, gameID)
	}
	if gameID == variantIDs[1] && skipMenu && a.highScores()[0] < pyoro.ShootUnlockScore {
		return fmt.Errorf("pyoro2 is locked: score %d in pyoro first", pyoro.ShootUnlockScore)
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(fd); termErr == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.settings.FPS,
		Seed:     flagSeed,
	}

	game, err := registry.Create(gameID, registry.Env{
		Sounds:      a.bank,
		Logger:      a.logger.WithPrefix("game"),
		Speed:       a.mixer,
		FollowSpeed: a.settings.Audio.FollowLevelSpeed,
		HighScores:  a.highScores,
		SkipMenu:    skipMenu,
	})
	if err != nil {
		return err
	}
	if c, ok := game.(interface{ Close() }); ok {
		defer c.Close()
	}

	a.logger.Info("session started", "game", gameID, "width", width, "height", height, "fps", cfg.TickRate)
	runErr := tui.Run(game, cfg, tui.Options{
		Store:      a.store,
		Keyboard:   a.settings.Keyboard,
		Logger:     a.logger.WithPrefix("tui"),
		Settings:   a.settingsUpdates(),
		OnSettings: a.applySettings,
	})
	if runErr != nil {
		return fmt.Errorf("error running game: %w", runErr)
	}

	for i, id := range variantIDs {
		if id == game.ID() {
			a.saveLastGame(i)
		}
	}
	return nil
}
