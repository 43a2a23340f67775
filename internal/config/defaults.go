package config

import (
	"github.com/knadh/koanf/providers/confmap"

	"github.com/breakreminder/breakreminder/internal/models"
)

// DefaultSettingsMap mirrors models.NewSettings as a koanf map.
func DefaultSettingsMap() map[string]interface{} {
	d := models.NewSettings()
	return map[string]interface{}{
		"version": d.Version,
		"notifications": map[string]interface{}{
			"title":               d.Notifications.Title,
			"muted":               d.Notifications.Muted,
			"follow_focus_assist": d.Notifications.FollowFocusAssist,
			"timeout_seconds":     d.Notifications.TimeoutSeconds,
		},
		"scheduler": map[string]interface{}{
			"tick_seconds":       d.Scheduler.TickSeconds,
			"focus_poll_seconds": d.Scheduler.FocusPollSeconds,
		},
		"defaults": map[string]interface{}{
			"message":          d.Defaults.Message,
			"interval_minutes": d.Defaults.IntervalMinutes,
			"snooze_minutes":   d.Defaults.SnoozeMinutes,
		},
	}
}

// NewDefaultProvider returns the lowest koanf layer.
func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultSettingsMap(), ".")
}
