package models

import (
	"fmt"
	"strings"
	"time"
)

// NotificationsConfig holds toast and mute settings.
type NotificationsConfig struct {
	Title             string `yaml:"title" koanf:"title"`
	Muted             bool   `yaml:"muted" koanf:"muted"`
	FollowFocusAssist bool   `yaml:"follow_focus_assist" koanf:"follow_focus_assist"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// SchedulerConfig holds scheduler loop timing.
type SchedulerConfig struct {
	TickSeconds      int `yaml:"tick_seconds" koanf:"tick_seconds"`
	FocusPollSeconds int `yaml:"focus_poll_seconds" koanf:"focus_poll_seconds"`
}

// DefaultsConfig holds the values used when adding a reminder from the tray.
type DefaultsConfig struct {
	Message         string `yaml:"message" koanf:"message"`
	IntervalMinutes int    `yaml:"interval_minutes" koanf:"interval_minutes"`
	SnoozeMinutes   []int  `yaml:"snooze_minutes" koanf:"snooze_minutes"`
}

// ReminderSeed is a reminder created when the daemon starts.
type ReminderSeed struct {
	Message         string `yaml:"message" koanf:"message"`
	IntervalMinutes int    `yaml:"interval_minutes" koanf:"interval_minutes"`
}

// Interval returns the seed interval as a duration.
func (r ReminderSeed) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// Settings represents global application settings.
// This corresponds to ~/.breakreminder/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version" koanf:"version"`
	Notifications NotificationsConfig `yaml:"notifications" koanf:"notifications"`
	Scheduler     SchedulerConfig     `yaml:"scheduler" koanf:"scheduler"`
	Defaults      DefaultsConfig      `yaml:"defaults" koanf:"defaults"`
	Reminders     []ReminderSeed      `yaml:"reminders,omitempty" koanf:"reminders"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Notifications: NotificationsConfig{
			Title:             "Break Reminder",
			Muted:             false,
			FollowFocusAssist: false,
			TimeoutSeconds:    10,
		},
		Scheduler: SchedulerConfig{
			TickSeconds:      1,
			FocusPollSeconds: 5,
		},
		Defaults: DefaultsConfig{
			Message:         "Don't forget to take a break",
			IntervalMinutes: 30,
			SnoozeMinutes:   []int{5, 15, 30},
		},
	}
}

// Validate checks that every duration is positive and required text is set.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Notifications.Title) == "" {
		return fmt.Errorf("notifications.title must not be empty")
	}
	if s.Notifications.TimeoutSeconds <= 0 {
		return fmt.Errorf("notifications.timeout_seconds must be positive")
	}
	if s.Scheduler.TickSeconds <= 0 {
		return fmt.Errorf("scheduler.tick_seconds must be positive")
	}
	if s.Scheduler.FocusPollSeconds <= 0 {
		return fmt.Errorf("scheduler.focus_poll_seconds must be positive")
	}
	if strings.TrimSpace(s.Defaults.Message) == "" {
		return fmt.Errorf("defaults.message must not be empty")
	}
	if s.Defaults.IntervalMinutes <= 0 {
		return fmt.Errorf("defaults.interval_minutes must be positive")
	}
	for _, m := range s.Defaults.SnoozeMinutes {
		if m <= 0 {
			return fmt.Errorf("defaults.snooze_minutes must be positive, got %d", m)
		}
	}
	for i, r := range s.Reminders {
		if strings.TrimSpace(r.Message) == "" {
			return fmt.Errorf("reminders[%d].message must not be empty", i)
		}
		if r.IntervalMinutes <= 0 {
			return fmt.Errorf("reminders[%d].interval_minutes must be positive", i)
		}
	}
	return nil
}

// TickInterval returns the scheduler tick period.
func (s *Settings) TickInterval() time.Duration {
	return time.Duration(s.Scheduler.TickSeconds) * time.Second
}

// FocusPollInterval returns how often the Focus Assist signal is queried.
func (s *Settings) FocusPollInterval() time.Duration {
	return time.Duration(s.Scheduler.FocusPollSeconds) * time.Second
}

// NotifyTimeout bounds a single notification call.
func (s *Settings) NotifyTimeout() time.Duration {
	return time.Duration(s.Notifications.TimeoutSeconds) * time.Second
}

// DefaultInterval returns the interval for reminders added from the tray.
func (s *Settings) DefaultInterval() time.Duration {
	return time.Duration(s.Defaults.IntervalMinutes) * time.Minute
}

// SnoozeOptions returns the snooze choices offered in the tray.
func (s *Settings) SnoozeOptions() []time.Duration {
	opts := make([]time.Duration, 0, len(s.Defaults.SnoozeMinutes))
	for _, m := range s.Defaults.SnoozeMinutes {
		opts = append(opts, time.Duration(m)*time.Minute)
	}
	return opts
}
