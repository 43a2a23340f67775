//go:build windows

package focus

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	notificationsKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Notifications\Settings`
	toastsValue      = "NOC_GLOBAL_SETTING_TOASTS_ENABLED"
)

type registrySignal struct{}

// System returns the Focus Assist signal read from the current user's registry.
func System() Signal {
	return registrySignal{}
}

// Suppressing reports true when toasts are globally disabled (value 0).
// A missing value means toasts were never disabled.
func (registrySignal) Suppressing() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, notificationsKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open notification settings: %w", err)
	}
	defer key.Close()

	val, _, err := key.GetIntegerValue(toastsValue)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", toastsValue, err)
	}
	return val == 0, nil
}
