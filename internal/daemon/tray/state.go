// Package tray implements the system tray icon and menu for the daemon.
package tray

import (
	"time"

	"github.com/breakreminder/breakreminder/internal/reminder"
)

// DaemonState is the command and query surface the tray drives.
type DaemonState interface {
	Port() int
	Reminders() []reminder.View
	MuteState() reminder.MuteState
	SnoozeOptions() []time.Duration

	AddDefaultReminder() error
	TriggerAll() int
	TriggerNow(id string) error
	TogglePause(id string) error
	Snooze(id string, d time.Duration) error
	Remove(id string) error
	SetMuted(muted bool) error
	SetFollowFocusAssist(follow bool) error
	RequestShutdown()
}
