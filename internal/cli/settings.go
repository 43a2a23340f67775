package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/breakreminder/breakreminder/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show the effective settings",
	Long: `Show the settings file location and the effective settings: defaults,
overridden by settings.yaml, overridden by BREAKREMINDER_* environment
variables (for example BREAKREMINDER_NOTIFICATIONS__MUTED=true).

The daemon reloads settings.yaml automatically when it changes.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}

	state := "exists"
	if !config.FileExists(path) {
		state = "not created yet, showing defaults"
	}
	fmt.Printf("%s %s %s\n\n", styleLabel.Render("Settings file:"), path, styleHint.Render("("+state+")"))
	fmt.Print(string(data))
	return nil
}
