package tray

import (
	"fmt"
	"strings"
	"time"

	"github.com/breakreminder/breakreminder/internal/reminder"
)

const maxTitleRunes = 20

func formatTooltip(total, active int, muted bool) string {
	tip := fmt.Sprintf("Break Reminder — %d reminders, %d active", total, active)
	if muted {
		tip += " (muted)"
	}
	return tip
}

func formatReminderTitle(v reminder.View) string {
	bullet := "●"
	if !v.Enabled {
		bullet = "○"
	}
	return fmt.Sprintf("%s %s — every %s — %s", bullet, truncate(v.Message, maxTitleRunes), shortDuration(v.Interval), v.Label)
}

func formatSnoozeTitle(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("Snooze %d sec", int(d/time.Second))
	}
	return fmt.Sprintf("Snooze %d min", int(d/time.Minute))
}

// visibleSnoozeOptions caps options to the pre-allocated snooze items.
func visibleSnoozeOptions(options []time.Duration) []time.Duration {
	if len(options) > maxSnoozeSlots {
		return options[:maxSnoozeSlots]
	}
	return options
}

func pauseTitle(enabled bool) string {
	if enabled {
		return "Pause"
	}
	return "Resume"
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// shortDuration renders 1h30m0s as "1h30m" and 1h0m0s as "1h".
func shortDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

func countActive(views []reminder.View) int {
	n := 0
	for _, v := range views {
		if v.Enabled {
			n++
		}
	}
	return n
}
