package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/breakreminder/breakreminder/internal/daemon/server"
)

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute all reminder notifications",
	Long:  `Mute all notifications. Reminders keep their schedule while muted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMuted(true)
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute reminder notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMuted(false)
	},
}

var focusAssistCmd = &cobra.Command{
	Use:       "focus-assist on|off",
	Short:     "Follow the OS Focus Assist / Do Not Disturb state",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runFocusAssist,
}

func setMuted(muted bool) error {
	return withClient(func(ctx context.Context, c *server.Client) error {
		st, err := c.SetMuted(ctx, muted)
		if err != nil {
			return err
		}
		printMuteStatus(st)
		return nil
	})
}

func runFocusAssist(cmd *cobra.Command, args []string) error {
	follow, err := parseOnOff(args[0])
	if err != nil {
		return err
	}

	return withClient(func(ctx context.Context, c *server.Client) error {
		st, err := c.SetFollowFocusAssist(ctx, follow)
		if err != nil {
			return err
		}
		printMuteStatus(st)
		return nil
	})
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func printMuteStatus(st *server.MuteStatus) {
	if st.Effective {
		fmt.Println(styleWarning.Render("Notifications muted") + " " + styleHint.Render(muteSummary(st)))
	} else {
		fmt.Println(styleSuccess.Render("Notifications on") + " " + styleHint.Render(muteSummary(st)))
	}
}
