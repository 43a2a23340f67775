// Package daemon wires the reminder registry, scheduler loop, control server,
// and settings watcher into the running breakreminderd process.
package daemon

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/breakreminder/breakreminder/internal/config"
	"github.com/breakreminder/breakreminder/internal/daemon/focus"
	"github.com/breakreminder/breakreminder/internal/daemon/notify"
	"github.com/breakreminder/breakreminder/internal/daemon/scheduler"
	"github.com/breakreminder/breakreminder/internal/daemon/server"
	"github.com/breakreminder/breakreminder/internal/daemon/watcher"
	"github.com/breakreminder/breakreminder/internal/models"
	"github.com/breakreminder/breakreminder/internal/reminder"
)

// Options configures a Daemon. Zero values select the production defaults.
type Options struct {
	Port     int
	Listener net.Listener // Overrides Port when set
	Settings *models.Settings
	Notifier notify.Notifier
	Signal   focus.Signal
	Clock    reminder.Clock

	// WatchDir is watched for settings.yaml changes. Empty disables watching.
	WatchDir string
	// LoadSettings reloads settings after a change. Defaults to config.LoadSettings.
	LoadSettings func() (*models.Settings, error)
	// Persist saves a toggle to disk. Defaults to config.UpdateSettings.
	Persist func(fn func(s *models.Settings)) error
}

// Daemon is the running reminder service.
type Daemon struct {
	registry *reminder.Registry
	loop     *scheduler.Loop
	server   *server.Server
	watcher  *watcher.Watcher

	loadSettings func() (*models.Settings, error)
	persist      func(fn func(s *models.Settings)) error

	settingsMu    sync.RWMutex
	settings      *models.Settings
	reloadedHooks []func()

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
}

// New builds a daemon and binds its control listener. Nothing runs until Start.
func New(opts Options) (*Daemon, error) {
	settings := opts.Settings
	if settings == nil {
		settings = models.NewSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	d := &Daemon{
		settings:     settings,
		loadSettings: opts.LoadSettings,
		persist:      opts.Persist,
		shutdownCh:   make(chan struct{}),
	}
	if d.loadSettings == nil {
		d.loadSettings = config.LoadSettings
	}
	if d.persist == nil {
		d.persist = func(fn func(s *models.Settings)) error {
			_, err := config.UpdateSettings(fn)
			return err
		}
	}

	regOpts := []reminder.Option{
		reminder.WithMuteState(reminder.MuteState{
			Muted:             settings.Notifications.Muted,
			FollowFocusAssist: settings.Notifications.FollowFocusAssist,
		}),
	}
	if opts.Clock != nil {
		regOpts = append(regOpts, reminder.WithClock(opts.Clock))
	}
	d.registry = reminder.NewRegistry(regOpts...)

	for _, seed := range settings.Reminders {
		rem, err := d.registry.Add(seed.Message, seed.Interval())
		if err != nil {
			return nil, fmt.Errorf("failed to add startup reminder %q: %w", seed.Message, err)
		}
		log.Printf("Added startup reminder %s (every %s)", rem.ID, rem.Interval)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewDesktop(settings.Notifications.Title)
	}
	d.loop = scheduler.New(d.registry, notifier, opts.Signal, scheduler.Config{
		Title:             settings.Notifications.Title,
		TickInterval:      settings.TickInterval(),
		FocusPollInterval: settings.FocusPollInterval(),
		NotifyTimeout:     settings.NotifyTimeout(),
	})

	if opts.Listener != nil {
		d.server = server.NewWithListener(opts.Listener, d)
	} else {
		srv, err := server.New(opts.Port, d)
		if err != nil {
			return nil, err
		}
		d.server = srv
	}

	if opts.WatchDir != "" {
		w, err := watcher.New(opts.WatchDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create settings watcher: %w", err)
		}
		d.watcher = w
	}

	return d, nil
}

// Start runs the control server, scheduler loop, and settings watcher in the
// background. Call Stop to shut them down.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	if d.watcher != nil {
		if err := d.watcher.Start(); err != nil {
			// Hot reload is optional; keep running with the loaded settings.
			log.Printf("[watcher] Warning: failed to watch settings: %v", err)
			d.watcher = nil
		}
	}

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		if err := d.server.Serve(); err != nil {
			log.Printf("Server error: %v", err)
			d.RequestShutdown()
		}
	}()
	go func() {
		defer d.wg.Done()
		_ = d.loop.Run(ctx)
	}()

	if d.watcher != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.watchSettings(ctx)
		}()
	}

	log.Printf("Daemon started on port %d", d.server.Port())
	return nil
}

// Stop cancels the loop, stops the server and watcher, and waits for them.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		if d.watcher != nil {
			d.watcher.Stop()
		}
		d.server.Stop()
		d.wg.Wait()
	})
}

// Done is closed once a shutdown has been requested.
func (d *Daemon) Done() <-chan struct{} {
	return d.shutdownCh
}

// RequestShutdown asks the process to exit. Safe to call more than once.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() {
		log.Println("Shutdown requested")
		close(d.shutdownCh)
	})
}

// Port returns the control server port.
func (d *Daemon) Port() int {
	return d.server.Port()
}

// Registry returns the reminder registry.
func (d *Daemon) Registry() *reminder.Registry {
	return d.registry
}

// Settings returns the current settings. The returned value is never
// modified in place, so callers may keep it.
func (d *Daemon) Settings() *models.Settings {
	d.settingsMu.RLock()
	defer d.settingsMu.RUnlock()
	return d.settings
}

// SetMuted sets the manual mute toggle and saves it.
func (d *Daemon) SetMuted(muted bool) error {
	d.registry.SetMuted(muted)
	log.Printf("Notifications muted: %v", muted)
	return d.save(func(s *models.Settings) { s.Notifications.Muted = muted })
}

// SetFollowFocusAssist sets Focus Assist following and saves it.
func (d *Daemon) SetFollowFocusAssist(follow bool) error {
	d.registry.SetFollowFocusAssist(follow)
	log.Printf("Follow Focus Assist: %v", follow)
	return d.save(func(s *models.Settings) { s.Notifications.FollowFocusAssist = follow })
}

func (d *Daemon) save(fn func(s *models.Settings)) error {
	d.settingsMu.Lock()
	next := *d.settings
	fn(&next)
	d.settings = &next
	d.settingsMu.Unlock()

	if err := d.persist(fn); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// watchSettings applies settings file changes until ctx is cancelled.
func (d *Daemon) watchSettings(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.watcher.Events():
			if ev.Type == watcher.EventSettingsRemoved {
				log.Printf("[watcher] %s removed, keeping current settings", ev.Path)
				continue
			}
			d.reloadSettings()
		}
	}
}

// reloadSettings re-reads settings and applies the hot-reloadable parts:
// mute toggles, reminder defaults, and snooze options.
func (d *Daemon) reloadSettings() {
	s, err := d.loadSettings()
	if err != nil {
		log.Printf("[watcher] Warning: ignoring settings change: %v", err)
		return
	}

	d.settingsMu.Lock()
	d.settings = s
	d.settingsMu.Unlock()

	d.registry.SetMuted(s.Notifications.Muted)
	d.registry.SetFollowFocusAssist(s.Notifications.FollowFocusAssist)
	d.settingsReloaded()
	log.Printf("[watcher] Settings reloaded (muted: %v, follow focus assist: %v)",
		s.Notifications.Muted, s.Notifications.FollowFocusAssist)
}

// OnSettingsReload registers fn to run after every applied settings reload.
func (d *Daemon) OnSettingsReload(fn func()) {
	d.settingsMu.Lock()
	d.reloadedHooks = append(d.reloadedHooks, fn)
	d.settingsMu.Unlock()
}

func (d *Daemon) settingsReloaded() {
	d.settingsMu.RLock()
	hooks := make([]func(), len(d.reloadedHooks))
	copy(hooks, d.reloadedHooks)
	d.settingsMu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

// ============================================================================
// Tray commands
// ============================================================================

// Reminders returns display views of every reminder.
func (d *Daemon) Reminders() []reminder.View {
	return d.registry.Views(d.registry.Clock().Now())
}

// MuteState returns the global mute state.
func (d *Daemon) MuteState() reminder.MuteState {
	return d.registry.MuteState()
}

// SnoozeOptions returns the configured snooze choices.
func (d *Daemon) SnoozeOptions() []time.Duration {
	return d.Settings().SnoozeOptions()
}

// AddDefaultReminder adds a reminder with the configured default message and interval.
func (d *Daemon) AddDefaultReminder() error {
	s := d.Settings()
	rem, err := d.registry.Add(s.Defaults.Message, s.DefaultInterval())
	if err != nil {
		return err
	}
	log.Printf("Added reminder %s (every %s)", rem.ID, rem.Interval)
	return nil
}

// TriggerAll triggers reminders immediately, returning how many.
func (d *Daemon) TriggerAll() int {
	return d.registry.TriggerAll()
}

// TriggerNow makes one reminder fire on the next tick.
func (d *Daemon) TriggerNow(id string) error {
	_, err := d.registry.TriggerNow(id)
	return err
}

// TogglePause pauses an enabled reminder or resumes a paused one.
func (d *Daemon) TogglePause(id string) error {
	rem, err := d.registry.Get(id)
	if err != nil {
		return err
	}
	if rem.Enabled {
		_, err = d.registry.Pause(id)
	} else {
		_, err = d.registry.Resume(id)
	}
	return err
}

// Snooze postpones a reminder by dur.
func (d *Daemon) Snooze(id string, dur time.Duration) error {
	_, err := d.registry.Snooze(id, dur)
	return err
}

// Remove terminates a reminder.
func (d *Daemon) Remove(id string) error {
	return d.registry.Remove(id)
}
