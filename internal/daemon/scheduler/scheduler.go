// Package scheduler runs the reminder loop: on every tick it evaluates the
// registry, fires due reminders and hands their notifications to a single
// ordered dispatcher so a slow notification service never stalls a tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/breakreminder/breakreminder/internal/daemon/focus"
	"github.com/breakreminder/breakreminder/internal/daemon/notify"
	"github.com/breakreminder/breakreminder/internal/reminder"
)

// Defaults for Config fields left zero.
const (
	DefaultTitle             = "Break Reminder"
	DefaultTickInterval      = time.Second
	DefaultFocusPollInterval = 5 * time.Second
	DefaultQueueSize         = 64
)

// Config holds loop timing and notification settings.
type Config struct {
	Title             string
	TickInterval      time.Duration
	FocusPollInterval time.Duration
	NotifyTimeout     time.Duration
	QueueSize         int
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.FocusPollInterval <= 0 {
		c.FocusPollInterval = DefaultFocusPollInterval
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = notify.DefaultTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// Loop is the scheduler loop.
type Loop struct {
	registry *reminder.Registry
	notifier notify.Notifier
	signal   focus.Signal
	cfg      Config
	queue    chan reminder.Firing

	mu           sync.Mutex
	lastPoll     time.Time
	lastFocusErr string
}

// New creates a loop over registry. signal may be nil when Focus Assist
// following is not available.
func New(registry *reminder.Registry, notifier notify.Notifier, signal focus.Signal, cfg Config) *Loop {
	cfg = cfg.withDefaults()
	return &Loop{
		registry: registry,
		notifier: notifier,
		signal:   signal,
		cfg:      cfg,
		queue:    make(chan reminder.Firing, cfg.QueueSize),
	}
}

// Run ticks until ctx is cancelled, then waits for the dispatcher to exit.
// The dispatcher's in-flight notification is cancelled with ctx, so Run
// returns within one tick period plus whatever the notifier needs to honor
// the cancellation.
func (l *Loop) Run(ctx context.Context) error {
	log.Printf("[scheduler] Started. Tick: %s", l.cfg.TickInterval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.dispatch(ctx)
	}()

	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			log.Println("[scheduler] Shutting down...")
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one evaluation pass and queues notifications for the reminders
// that fired. It returns the firings, including those silenced by mute.
func (l *Loop) Tick(ctx context.Context) []reminder.Firing {
	now := l.registry.Clock().Now()
	l.pollFocus(now)

	fired, muted := l.registry.CollectDue(now)
	for _, f := range fired {
		if muted {
			log.Printf("[scheduler] Reminder %s fired while muted", f.ID)
			continue
		}
		l.enqueue(ctx, f)
	}
	return fired
}

func (l *Loop) enqueue(ctx context.Context, f reminder.Firing) {
	select {
	case l.queue <- f:
	case <-ctx.Done():
	default:
		log.Printf("[scheduler] Warning: notification queue full, dropping reminder %s", f.ID)
	}
}

// dispatch delivers queued notifications one at a time, in queue order.
func (l *Loop) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-l.queue:
			if err := l.deliver(ctx, f); err != nil {
				log.Printf("[scheduler] Error: %v", err)
			}
		}
	}
}

func (l *Loop) deliver(ctx context.Context, f reminder.Firing) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &notify.DeliveryError{Title: l.cfg.Title, Err: fmt.Errorf("notifier panic: %v", p)}
		}
	}()

	nctx, cancel := context.WithTimeout(ctx, l.cfg.NotifyTimeout)
	defer cancel()

	if err := l.notifier.Notify(nctx, l.cfg.Title, f.Message); err != nil {
		var derr *notify.DeliveryError
		if !errors.As(err, &derr) {
			err = &notify.DeliveryError{Title: l.cfg.Title, Err: err}
		}
		return fmt.Errorf("reminder %s: %w", f.ID, err)
	}
	return nil
}

// pollFocus refreshes the Focus Assist signal while following is enabled.
// Failures leave the mute state unchanged and are logged once per distinct error.
func (l *Loop) pollFocus(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.signal == nil || !l.registry.MuteState().FollowFocusAssist {
		l.lastPoll = time.Time{}
		return
	}
	if !l.lastPoll.IsZero() && now.Sub(l.lastPoll) < l.cfg.FocusPollInterval {
		return
	}
	l.lastPoll = now

	suppressing, err := l.querySignal()
	if err != nil {
		if msg := err.Error(); msg != l.lastFocusErr {
			log.Printf("[scheduler] Warning: focus assist query failed: %v", err)
			l.lastFocusErr = msg
		}
		return
	}
	l.lastFocusErr = ""
	l.registry.SetFocusSuppressed(suppressing)
}

func (l *Loop) querySignal() (suppressing bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("focus signal panic: %v", p)
		}
	}()
	return l.signal.Suppressing()
}
