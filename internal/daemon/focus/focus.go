// Package focus reports whether the operating system is currently
// suppressing notifications (Windows Focus Assist).
package focus

import "errors"

// ErrUnsupported is returned on platforms without a focus signal.
var ErrUnsupported = errors.New("focus assist detection not supported on this platform")

// Signal reports whether OS notifications are being suppressed.
// An error means the state is unknown.
type Signal interface {
	Suppressing() (bool, error)
}

// SignalFunc adapts a plain function to Signal.
type SignalFunc func() (bool, error)

// Suppressing calls f.
func (f SignalFunc) Suppressing() (bool, error) {
	return f()
}
