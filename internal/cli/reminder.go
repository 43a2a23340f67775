package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/breakreminder/breakreminder/internal/config"
	"github.com/breakreminder/breakreminder/internal/daemon/server"
)

var (
	addEvery    string
	listJSON    bool
	editMessage string
	editEvery   string
	snoozeFor   string
)

var addCmd = &cobra.Command{
	Use:   "add MESSAGE",
	Short: "Add a reminder",
	Long: `Add a reminder that fires every --every interval.

The interval accepts Go durations (45m, 1h30m) or a bare number of minutes.
Without --every the configured default interval is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reminders",
	RunE:    runList,
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a reminder's message or interval",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var pauseCmd = &cobra.Command{
	Use:   "pause ID",
	Short: "Pause a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reminderAction("Paused", args[0], (*server.Client).Pause)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume ID",
	Short: "Resume a paused reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reminderAction("Resumed", args[0], (*server.Client).Resume)
	},
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze ID",
	Short: "Snooze a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnooze,
}

var triggerCmd = &cobra.Command{
	Use:   "trigger [ID]",
	Short: "Show a reminder now (all reminders without an ID)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTrigger,
}

var removeCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm", "terminate"},
	Short:   "Remove a reminder",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	addCmd.Flags().StringVarP(&addEvery, "every", "e", "", "Interval between reminders (e.g. 30m)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print reminders as JSON")
	editCmd.Flags().StringVarP(&editMessage, "message", "m", "", "New message")
	editCmd.Flags().StringVarP(&editEvery, "every", "e", "", "New interval (e.g. 45m)")
	snoozeCmd.Flags().StringVarP(&snoozeFor, "for", "f", "", "Snooze duration (default: first configured snooze option)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	var interval time.Duration
	if addEvery != "" {
		d, err := parseInterval(addEvery)
		if err != nil {
			return err
		}
		interval = d
	} else {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		interval = settings.DefaultInterval()
	}

	return withClient(func(ctx context.Context, c *server.Client) error {
		r, err := c.Add(ctx, message, interval)
		if err != nil {
			return err
		}
		printReminder("Added", r)
		return nil
	})
}

func runList(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, c *server.Client) error {
		list, err := c.List(ctx)
		if err != nil {
			return err
		}

		if listJSON {
			out := make([]reminderJSON, 0, len(list))
			for _, r := range list {
				out = append(out, toReminderJSON(r))
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printReminders(list, time.Now())
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	var message *string
	if cmd.Flags().Changed("message") {
		message = &editMessage
	}

	var interval *time.Duration
	if cmd.Flags().Changed("every") {
		d, err := parseInterval(editEvery)
		if err != nil {
			return err
		}
		interval = &d
	}

	if message == nil && interval == nil {
		return fmt.Errorf("nothing to change: pass --message and/or --every")
	}

	return withClient(func(ctx context.Context, c *server.Client) error {
		r, err := c.Edit(ctx, args[0], message, interval)
		if err != nil {
			return err
		}
		printReminder("Updated", r)
		return nil
	})
}

func runSnooze(cmd *cobra.Command, args []string) error {
	var d time.Duration
	if snoozeFor != "" {
		parsed, err := parseInterval(snoozeFor)
		if err != nil {
			return err
		}
		d = parsed
	} else {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		opts := settings.SnoozeOptions()
		if len(opts) == 0 {
			return fmt.Errorf("no snooze options configured: pass --for")
		}
		d = opts[0]
	}

	return withClient(func(ctx context.Context, c *server.Client) error {
		r, err := c.Snooze(ctx, args[0], d)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s for %s (%s)\n", styleSuccess.Render("Snoozed"), styleID.Render(r.ID), formatEvery(d), r.Label)
		return nil
	})
}

func runTrigger(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return reminderAction("Triggered", args[0], (*server.Client).Trigger)
	}

	return withClient(func(ctx context.Context, c *server.Client) error {
		n, err := c.TriggerAll(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println(styleHint.Render("No active reminders to trigger."))
			return nil
		}
		fmt.Printf("%s %d reminder(s).\n", styleSuccess.Render("Triggered"), n)
		return nil
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, c *server.Client) error {
		if err := c.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", styleSuccess.Render("Removed"), styleID.Render(args[0]))
		return nil
	})
}

// reminderAction runs a single-ID client call and prints the result.
func reminderAction(verb, id string, call func(*server.Client, context.Context, string) (*server.Reminder, error)) error {
	return withClient(func(ctx context.Context, c *server.Client) error {
		r, err := call(c, ctx, id)
		if err != nil {
			return err
		}
		printReminder(verb, r)
		return nil
	})
}
