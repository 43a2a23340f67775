package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/breakreminder/breakreminder/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styleBrand.Render("Break Reminder"), styleVersion.Render(buildinfo.Version))
		printField("Commit", buildinfo.CommitHash)
		printField("Built", buildinfo.BuildDate)
		printField("OS/Arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
		printField("Go", runtime.Version())
	},
}
