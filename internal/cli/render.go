package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/breakreminder/breakreminder/internal/daemon/server"
	"github.com/breakreminder/breakreminder/internal/reminder"
)

// parseInterval accepts Go durations ("45m", "1h30m") and bare minutes ("30").
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use e.g. 30m, 1h30m or 30)", s)
	}
	return d, nil
}

// formatEvery renders 1h30m0s as "1h30m".
func formatEvery(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

// formatNextDue describes when a reminder fires next relative to now.
func formatNextDue(r *server.Reminder, now time.Time) string {
	if !r.Enabled {
		return "paused"
	}
	if r.TriggerPending || r.NextDue == nil {
		return "now"
	}
	next := r.NextDue.AsTime()
	if !next.After(now) {
		return "now"
	}
	return humanize.RelTime(next, now, "ago", "from now")
}

func renderStatus(r *server.Reminder) string {
	switch {
	case !r.Enabled:
		return badgePaused.Render(r.Label)
	case r.Status == string(reminder.StatusDue):
		return badgeDue.Render("due")
	case r.SnoozedUntil != nil && r.Status == string(reminder.StatusSnoozed):
		return badgeSnoozed.Render(r.Label)
	default:
		return badgeActive.Render(r.Label)
	}
}

func printReminders(list []*server.Reminder, now time.Time) {
	if len(list) == 0 {
		fmt.Println("No reminders. Run 'breakreminder add MESSAGE --every 30m' to create one.")
		return
	}

	for _, r := range list {
		fmt.Printf("%s  %s\n", styleID.Render(r.ID), r.Message)
		fmt.Printf("    %s every %s · %s · next %s · fired %s\n",
			styleLabel.Render("└"),
			formatEvery(r.Interval.AsDuration()),
			renderStatus(r),
			formatNextDue(r, now),
			english.Plural(int(r.FireCount), "time", ""),
		)
	}
}

func printReminder(verb string, r *server.Reminder) {
	fmt.Printf("%s %s (%s, every %s)\n", styleSuccess.Render(verb), styleID.Render(r.ID), r.Message, formatEvery(r.Interval.AsDuration()))
}

// reminderJSON is the stable --json shape of a reminder.
type reminderJSON struct {
	ID           string     `json:"id"`
	Message      string     `json:"message"`
	Interval     string     `json:"interval"`
	Enabled      bool       `json:"enabled"`
	Status       string     `json:"status"`
	Label        string     `json:"label"`
	FireCount    int32      `json:"fire_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastFiredAt  time.Time  `json:"last_fired_at"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	NextDue      *time.Time `json:"next_due,omitempty"`
}

func toReminderJSON(r *server.Reminder) reminderJSON {
	out := reminderJSON{
		ID:          r.ID,
		Message:     r.Message,
		Interval:    r.Interval.AsDuration().String(),
		Enabled:     r.Enabled,
		Status:      r.Status,
		Label:       r.Label,
		FireCount:   r.FireCount,
		CreatedAt:   r.CreatedAt.AsTime(),
		LastFiredAt: r.LastFiredAt.AsTime(),
	}
	if r.SnoozedUntil != nil {
		t := r.SnoozedUntil.AsTime()
		out.SnoozedUntil = &t
	}
	if r.NextDue != nil {
		t := r.NextDue.AsTime()
		out.NextDue = &t
	}
	return out
}

func muteSummary(m *server.MuteStatus) string {
	switch {
	case m.Muted:
		return "yes (manual)"
	case m.Effective:
		return "yes (Focus Assist)"
	case m.FollowFocusAssist:
		return "no (following Focus Assist)"
	default:
		return "no"
	}
}

// PrintError prints a command error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err)
}
