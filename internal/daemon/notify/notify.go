// Package notify delivers toast notifications for fired reminders.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
)

// DefaultTimeout bounds a single platform notification call.
const DefaultTimeout = 10 * time.Second

// Notifier renders a notification. Implementations should return once ctx is done.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, title, body string) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}

// DeliveryError reports a notification that could not be shown.
type DeliveryError struct {
	Title string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver notification %q: %v", e.Title, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Desktop shows notifications through the OS notification center.
type Desktop struct {
	// Icon is a path or raw image bytes; empty uses the platform default.
	Icon any

	show func(title, body string, icon any) error
}

// NewDesktop creates a desktop notifier. appName is shown as the sender
// on platforms that support it.
func NewDesktop(appName string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{Icon: "", show: beeep.Notify}
}

// Notify shows the toast. The platform call runs on its own goroutine so a
// hung notification service cannot hold the caller past ctx's deadline.
func (d *Desktop) Notify(ctx context.Context, title, body string) error {
	done := make(chan error, 1)
	go func() {
		done <- d.show(title, body, d.Icon)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &DeliveryError{Title: title, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &DeliveryError{Title: title, Err: ctx.Err()}
	}
}
