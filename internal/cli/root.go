// Package cli implements the breakreminder CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "breakreminder",
	Short: "Periodic break reminders from the system tray",
	Long: `Break Reminder shows a desktop notification every time one of your
reminders comes due. Reminders live in the breakreminderd daemon, which
this command starts automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(focusAssistCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(versionCmd)
}
