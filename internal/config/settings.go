package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/breakreminder/breakreminder/internal/models"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. BREAKREMINDER_NOTIFICATIONS__MUTED=true.
const EnvPrefix = "BREAKREMINDER_"

// envKey maps BREAKREMINDER_NOTIFICATIONS__MUTED to notifications.muted.
// Variables that don't name a settings key (such as BREAKREMINDER_HOME) are
// dropped by returning an empty key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// LoadSettings loads the global settings from ~/.breakreminder/settings.yaml,
// layered over defaults and under environment overrides.
// If the file doesn't exist, defaults (plus overrides) are returned.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path, true)
}

// LoadSettingsFile loads settings from path. withEnv controls whether
// BREAKREMINDER_* variables are applied on top.
func LoadSettingsFile(path string, withEnv bool) (*models.Settings, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if FileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
	}

	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	}

	var settings models.Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return &settings, nil
}

// SaveSettings saves the global settings to ~/.breakreminder/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// UpdateSettings applies fn to the settings stored on disk and saves them.
// Environment overrides are not applied so they never get persisted.
func UpdateSettings(fn func(s *models.Settings)) (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettingsFile(path, false)
	if err != nil {
		return nil, err
	}
	fn(settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := SaveYAML(path, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
