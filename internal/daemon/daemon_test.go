package daemon

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/breakreminder/breakreminder/internal/config"
	"github.com/breakreminder/breakreminder/internal/daemon/notify"
	"github.com/breakreminder/breakreminder/internal/models"
	"github.com/breakreminder/breakreminder/internal/reminder"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type persistRecorder struct {
	mu    sync.Mutex
	saved []models.Settings
	err   error
}

func (p *persistRecorder) persist(fn func(s *models.Settings)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	s := models.NewSettings()
	fn(s)
	p.saved = append(p.saved, *s)
	return nil
}

func silentNotifier() notify.Notifier {
	return notify.Func(func(ctx context.Context, title, body string) error { return nil })
}

func localListener(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = lis.Close() })
	return lis
}

func newTestDaemon(t *testing.T, settings *models.Settings, p *persistRecorder) *Daemon {
	t.Helper()
	if p == nil {
		p = &persistRecorder{}
	}
	d, err := New(Options{
		Listener: localListener(t),
		Settings: settings,
		Notifier: silentNotifier(),
		Clock:    reminder.NewManualClock(t0),
		Persist:  p.persist,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func TestNewSeedsRemindersAndMute(t *testing.T) {
	s := models.NewSettings()
	s.Notifications.Muted = true
	s.Notifications.FollowFocusAssist = true
	s.Reminders = []models.ReminderSeed{
		{Message: "Stretch", IntervalMinutes: 20},
		{Message: "Drink water", IntervalMinutes: 60},
	}

	d := newTestDaemon(t, s, nil)

	views := d.Reminders()
	if len(views) != 2 || views[0].Message != "Stretch" || views[1].Message != "Drink water" {
		t.Fatalf("Reminders = %+v, want the two seeds in order", views)
	}
	if views[0].Interval != 20*time.Minute {
		t.Errorf("Interval = %v, want 20m", views[0].Interval)
	}
	mute := d.MuteState()
	if !mute.Muted || !mute.FollowFocusAssist {
		t.Errorf("MuteState = %+v, want muted and following", mute)
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	s := models.NewSettings()
	s.Scheduler.TickSeconds = 0
	if _, err := New(Options{Listener: localListener(t), Settings: s, Notifier: silentNotifier()}); err == nil {
		t.Fatal("New accepted invalid settings")
	}
}

func TestAddDefaultReminder(t *testing.T) {
	d := newTestDaemon(t, nil, nil)

	if err := d.AddDefaultReminder(); err != nil {
		t.Fatalf("AddDefaultReminder: %v", err)
	}
	views := d.Reminders()
	if len(views) != 1 {
		t.Fatalf("got %d reminders, want 1", len(views))
	}
	want := models.NewSettings()
	if views[0].Message != want.Defaults.Message || views[0].Interval != want.DefaultInterval() {
		t.Errorf("reminder = %q every %v, want defaults", views[0].Message, views[0].Interval)
	}
}

func TestTrayCommands(t *testing.T) {
	d := newTestDaemon(t, nil, nil)
	rem, _ := d.Registry().Add("Stretch", time.Minute)

	if err := d.TogglePause(rem.ID); err != nil {
		t.Fatalf("TogglePause: %v", err)
	}
	if got, _ := d.Registry().Get(rem.ID); got.Enabled {
		t.Error("first toggle did not pause")
	}
	if err := d.TogglePause(rem.ID); err != nil {
		t.Fatalf("TogglePause: %v", err)
	}
	if got, _ := d.Registry().Get(rem.ID); !got.Enabled {
		t.Error("second toggle did not resume")
	}

	if err := d.Snooze(rem.ID, 5*time.Minute); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if err := d.TriggerNow(rem.ID); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if got, _ := d.Registry().Get(rem.ID); !got.TriggerPending() || got.SnoozedUntil != nil {
		t.Error("TriggerNow did not set pending and clear snooze")
	}
	if n := d.TriggerAll(); n != 1 {
		t.Errorf("TriggerAll = %d, want 1", n)
	}
	if err := d.Remove(rem.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	for name, err := range map[string]error{
		"pause":   d.TogglePause(rem.ID),
		"snooze":  d.Snooze(rem.ID, time.Minute),
		"trigger": d.TriggerNow(rem.ID),
		"remove":  d.Remove(rem.ID),
	} {
		if !errors.Is(err, reminder.ErrNotFound) {
			t.Errorf("%s after remove: err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestTogglesPersist(t *testing.T) {
	p := &persistRecorder{}
	d := newTestDaemon(t, nil, p)

	if err := d.SetMuted(true); err != nil {
		t.Fatalf("SetMuted: %v", err)
	}
	if err := d.SetFollowFocusAssist(true); err != nil {
		t.Fatalf("SetFollowFocusAssist: %v", err)
	}

	mute := d.MuteState()
	if !mute.Muted || !mute.FollowFocusAssist {
		t.Errorf("MuteState = %+v", mute)
	}
	if len(p.saved) != 2 || !p.saved[0].Notifications.Muted || !p.saved[1].Notifications.FollowFocusAssist {
		t.Errorf("persisted = %+v", p.saved)
	}
	if s := d.Settings(); !s.Notifications.Muted || !s.Notifications.FollowFocusAssist {
		t.Errorf("in-memory settings not updated: %+v", s.Notifications)
	}
}

func TestToggleAppliesEvenWhenSaveFails(t *testing.T) {
	p := &persistRecorder{err: errors.New("read-only")}
	d := newTestDaemon(t, nil, p)

	if err := d.SetMuted(true); err == nil {
		t.Fatal("SetMuted returned nil despite save failure")
	}
	if !d.MuteState().Muted {
		t.Error("mute not applied in process")
	}
}

func TestReloadSettingsAppliesMute(t *testing.T) {
	reloaded := models.NewSettings()
	reloaded.Notifications.Muted = true
	reloaded.Defaults.SnoozeMinutes = []int{10}

	d := newTestDaemon(t, nil, nil)
	d.loadSettings = func() (*models.Settings, error) { return reloaded, nil }
	d.reloadSettings()

	if !d.MuteState().Muted {
		t.Error("reload did not apply mute")
	}
	if opts := d.SnoozeOptions(); len(opts) != 1 || opts[0] != 10*time.Minute {
		t.Errorf("SnoozeOptions = %v, want [10m]", opts)
	}

	d.loadSettings = func() (*models.Settings, error) { return nil, errors.New("bad yaml") }
	d.reloadSettings()
	if !d.MuteState().Muted {
		t.Error("failed reload changed the mute state")
	}
}

func TestReloadSettingsNotifiesSnoozeOptions(t *testing.T) {
	d := newTestDaemon(t, nil, nil)

	var seen [][]time.Duration
	d.OnSettingsReload(func() { seen = append(seen, d.SnoozeOptions()) })

	reloaded := models.NewSettings()
	reloaded.Defaults.SnoozeMinutes = []int{2, 45}
	d.loadSettings = func() (*models.Settings, error) { return reloaded, nil }
	d.reloadSettings()

	if len(seen) != 1 {
		t.Fatalf("expected 1 reload notification, got %d", len(seen))
	}
	if got := seen[0]; len(got) != 2 || got[0] != 2*time.Minute || got[1] != 45*time.Minute {
		t.Errorf("SnoozeOptions at reload = %v, want [2m 45m]", got)
	}

	d.loadSettings = func() (*models.Settings, error) { return nil, errors.New("bad yaml") }
	d.reloadSettings()
	if len(seen) != 1 {
		t.Errorf("failed reload notified hooks")
	}
}

func TestStartStopAndShutdownRequest(t *testing.T) {
	d := newTestDaemon(t, nil, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	d.RequestShutdown()
	d.RequestShutdown()
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after RequestShutdown")
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSettingsHotReload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.HomeEnvVar, dir)

	d, err := New(Options{
		Listener: localListener(t),
		Notifier: silentNotifier(),
		WatchDir: dir,
		Persist:  (&persistRecorder{}).persist,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Stop)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s := models.NewSettings()
	s.Notifications.Muted = true
	if err := config.SaveYAML(filepath.Join(dir, config.SettingsFileName), s); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !d.MuteState().Muted {
		if time.Now().After(deadline) {
			t.Fatal("settings change was not applied")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
