package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-pyoro/internal/config"
)

var (
	flagInit  bool
	flagForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the settings file",
	Long: `Print the settings in effect and the file they were loaded from.

With --init, write the default settings to ~/.pyoro/settings.yaml (or the
--config path) so they can be edited. Edits to the file are picked up
while a game is running.

Examples:
  pyoro config
  pyoro config --init
  pyoro config --init --force --config ./pyoro.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagInit, "init", false, "Write the default settings file")
	configCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file with --init")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagInit {
		path := flagConfigPath
		if path == "" {
			path = config.UserPath()
		}
		if _, err := os.Stat(path); err == nil && !flagForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := config.Save(path, config.DefaultSettings()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	settings, path, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	if path == "" {
		path = "(built-in defaults)"
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("cannot encode settings: %w", err)
	}
	fmt.Printf("# %s\n%s", path, data)
	return nil
}
