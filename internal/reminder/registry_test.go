package reminder

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) (*Registry, *ManualClock) {
	t.Helper()
	clock := NewManualClock(t0)
	n := 0
	reg := NewRegistry(WithClock(clock), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}))
	return reg, clock
}

func mustAdd(t *testing.T, reg *Registry, message string, interval time.Duration) Reminder {
	t.Helper()
	rem, err := reg.Add(message, interval)
	if err != nil {
		t.Fatalf("Add(%q, %v) failed: %v", message, interval, err)
	}
	return rem
}

func firedIDs(fired []Firing) []string {
	ids := make([]string, 0, len(fired))
	for _, f := range fired {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		interval time.Duration
	}{
		{name: "empty message", message: "", interval: time.Minute},
		{name: "blank message", message: "   ", interval: time.Minute},
		{name: "zero interval", message: "Stretch", interval: 0},
		{name: "negative interval", message: "Stretch", interval: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(t)
			_, err := reg.Add(tt.message, tt.interval)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if reg.Len() != 0 {
				t.Errorf("expected empty registry, got %d reminders", reg.Len())
			}
		})
	}
}

func TestAddDefaults(t *testing.T) {
	reg := NewRegistry(WithClock(NewManualClock(t0)))
	rem, err := reg.Add("Drink water", 20*time.Minute)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(rem.ID) != 8 {
		t.Errorf("expected 8-char id, got %q", rem.ID)
	}
	if !rem.Enabled {
		t.Error("expected new reminder to be enabled")
	}
	if !rem.LastFiredAt.Equal(t0) {
		t.Errorf("expected LastFiredAt %v, got %v", t0, rem.LastFiredAt)
	}
	if rem.SnoozedUntil != nil {
		t.Errorf("expected no snooze, got %v", *rem.SnoozedUntil)
	}
}

func TestStretchScenario(t *testing.T) {
	reg, clock := newTestRegistry(t)

	rem := mustAdd(t, reg, "Stretch", 30*time.Minute)
	if rem.ID != "r1" {
		t.Fatalf("expected id r1, got %s", rem.ID)
	}

	list := reg.List()
	if len(list) != 1 || !list[0].Enabled {
		t.Fatalf("expected one enabled reminder, got %+v", list)
	}

	clock.Advance(30 * time.Minute)
	fired, muted := reg.CollectDue(clock.Now())
	if muted {
		t.Error("expected not muted")
	}
	if len(fired) != 1 || fired[0].Message != "Stretch" {
		t.Fatalf("expected one Stretch firing, got %+v", fired)
	}

	got, _ := reg.Get("r1")
	if !got.LastFiredAt.Equal(clock.Now()) {
		t.Errorf("expected LastFiredAt %v, got %v", clock.Now(), got.LastFiredAt)
	}
	if got.FireCount != 1 {
		t.Errorf("expected FireCount 1, got %d", got.FireCount)
	}
}

func TestFiresOncePerInterval(t *testing.T) {
	reg, clock := newTestRegistry(t)
	mustAdd(t, reg, "Look away", 10*time.Second)

	var fireTimes []time.Duration
	for i := 0; i < 35; i++ {
		clock.Advance(time.Second)
		fired, _ := reg.CollectDue(clock.Now())
		for range fired {
			fireTimes = append(fireTimes, clock.Now().Sub(t0))
		}
	}

	expected := []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}
	if len(fireTimes) != len(expected) {
		t.Fatalf("expected %d fires, got %v", len(expected), fireTimes)
	}
	for i := range expected {
		if fireTimes[i] != expected[i] {
			t.Errorf("fire %d: expected at %v, got %v", i, expected[i], fireTimes[i])
		}
	}
}

func TestEditIntervalAppliesOnNextTick(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", 60*time.Second)

	clock.Advance(50 * time.Second)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
		t.Fatalf("expected no fire at 50s, got %v", firedIDs(fired))
	}

	interval := 5 * time.Second
	if _, err := reg.Edit(rem.ID, EditOptions{Interval: &interval}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	clock.Advance(time.Second)
	fired, _ := reg.CollectDue(clock.Now())
	if len(fired) != 1 {
		t.Fatalf("expected fire on the tick after edit, got %v", firedIDs(fired))
	}
}

func TestEditValidationLeavesStateUnchanged(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	tests := []struct {
		name string
		opts EditOptions
	}{
		{name: "zero interval", opts: EditOptions{Interval: durationPtr(0)}},
		{name: "negative interval", opts: EditOptions{Interval: durationPtr(-time.Minute)}},
		{name: "empty message", opts: EditOptions{Message: stringPtr("")}},
		{name: "valid message with bad interval", opts: EditOptions{Message: stringPtr("Walk"), Interval: durationPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Edit(rem.ID, tt.opts); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			got, _ := reg.Get(rem.ID)
			if got.Interval != time.Minute || got.Message != "Stretch" {
				t.Errorf("reminder changed after rejected edit: %+v", got)
			}
		})
	}
}

func TestEditPartialUpdate(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	got, err := reg.Edit(rem.ID, EditOptions{Message: stringPtr("Walk around")})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got.Message != "Walk around" {
		t.Errorf("expected message updated, got %q", got.Message)
	}
	if got.Interval != time.Minute {
		t.Errorf("expected interval unchanged, got %v", got.Interval)
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	ops := map[string]func() error{
		"remove":  func() error { return reg.Remove("nope") },
		"pause":   func() error { _, err := reg.Pause("nope"); return err },
		"resume":  func() error { _, err := reg.Resume("nope"); return err },
		"snooze":  func() error { _, err := reg.Snooze("nope", time.Minute); return err },
		"trigger": func() error { _, err := reg.TriggerNow("nope"); return err },
		"edit":    func() error { _, err := reg.Edit("nope", EditOptions{}); return err },
		"get":     func() error { _, err := reg.Get("nope"); return err },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestRemoveIsPermanent(t *testing.T) {
	reg, clock := newTestRegistry(t)
	a := mustAdd(t, reg, "A", time.Minute)
	b := mustAdd(t, reg, "B", time.Minute)

	if err := reg.Remove(a.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := reg.Remove(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected second remove to report not found, got %v", err)
	}

	clock.Advance(time.Minute)
	fired, _ := reg.CollectDue(clock.Now())
	if ids := firedIDs(fired); len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("expected only %s to fire, got %v", b.ID, ids)
	}
}

func TestDisabledNeverFires(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	if _, err := reg.Pause(rem.ID); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if _, err := reg.Snooze(rem.ID, time.Second); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if _, err := reg.TriggerNow(rem.ID); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		clock.Advance(time.Hour)
		if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
			t.Fatalf("paused reminder fired: %v", firedIDs(fired))
		}
	}
}

func TestResumeAfterElapsedFiresImmediately(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", 30*time.Minute)

	if _, err := reg.Pause(rem.ID); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	clock.Advance(45 * time.Minute)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
		t.Fatalf("paused reminder fired")
	}

	if _, err := reg.Resume(rem.ID); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	clock.Advance(time.Second)
	fired, _ := reg.CollectDue(clock.Now())
	if len(fired) != 1 {
		t.Fatalf("expected resumed reminder to fire on next tick, got %d", len(fired))
	}
}

func TestSnoozeSuppressesUntilDeadline(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	if _, err := reg.Snooze(rem.ID, 5*time.Minute); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		clock.Advance(time.Minute)
		if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
			t.Fatalf("snoozed reminder fired at +%v", clock.Now().Sub(t0))
		}
	}

	clock.Advance(time.Minute)
	fired, _ := reg.CollectDue(clock.Now())
	if len(fired) != 1 {
		t.Fatalf("expected fire once snooze deadline reached, got %d", len(fired))
	}

	got, _ := reg.Get(rem.ID)
	if got.SnoozedUntil != nil {
		t.Errorf("expected snooze cleared after fire, got %v", *got.SnoozedUntil)
	}
}

func TestSnoozeOverwritesPreviousDeadline(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	if _, err := reg.Snooze(rem.ID, 30*time.Minute); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	got, err := reg.Snooze(rem.ID, 5*time.Minute)
	if err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if want := clock.Now().Add(5 * time.Minute); !got.SnoozedUntil.Equal(want) {
		t.Errorf("expected deadline %v, got %v", want, *got.SnoozedUntil)
	}
}

func TestSnoozeRejectsNonPositiveDuration(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	if _, err := reg.Snooze(rem.ID, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestTriggerNowFiresOnNextTick(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Hour)

	if _, err := reg.Snooze(rem.ID, 30*time.Minute); err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	clock.Advance(time.Minute)

	got, err := reg.TriggerNow(rem.ID)
	if err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	if got.SnoozedUntil != nil {
		t.Error("expected TriggerNow to clear the snooze")
	}

	clock.Advance(time.Second)
	fired, _ := reg.CollectDue(clock.Now())
	if len(fired) != 1 {
		t.Fatalf("expected triggered reminder to fire, got %d", len(fired))
	}

	got, _ = reg.Get(rem.ID)
	if !got.LastFiredAt.Equal(clock.Now()) {
		t.Errorf("expected LastFiredAt reset to %v, got %v", clock.Now(), got.LastFiredAt)
	}
	if got.TriggerPending() {
		t.Error("expected pending trigger cleared")
	}

	clock.Advance(time.Second)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
		t.Errorf("expected no second fire, got %d", len(fired))
	}
}

func TestTriggerNowSurvivesIntervalIncrease(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)

	if _, err := reg.TriggerNow(rem.ID); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	interval := 2 * time.Hour
	if _, err := reg.Edit(rem.ID, EditOptions{Interval: &interval}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	clock.Advance(time.Second)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 1 {
		t.Fatalf("expected pending trigger to fire, got %d", len(fired))
	}
}

func TestSnoozeAfterTriggerNowHoldsUntilDeadline(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", 30*time.Minute)

	if _, err := reg.TriggerNow(rem.ID); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	got, err := reg.Snooze(rem.ID, 5*time.Minute)
	if err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if want := clock.Now().Add(5 * time.Minute); !got.NextDue(clock.Now()).Equal(want) {
		t.Errorf("expected next due %v, got %v", want, got.NextDue(clock.Now()))
	}

	clock.Advance(time.Second)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 0 {
		t.Fatalf("snoozed reminder fired before deadline")
	}
	got, _ = reg.Get(rem.ID)
	if got.SnoozedUntil == nil {
		t.Fatal("expected snooze deadline to survive the tick")
	}
	if label := StatusLabel(&got, clock.Now()); label == "active" {
		t.Errorf("expected snoozed label, got %q", label)
	}

	clock.Advance(5 * time.Minute)
	if fired, _ := reg.CollectDue(clock.Now()); len(fired) != 1 {
		t.Fatalf("expected fire once snooze deadline passed, got %d", len(fired))
	}
}

func TestTriggerAll(t *testing.T) {
	t.Run("single paused reminder", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		rem := mustAdd(t, reg, "Only", time.Hour)
		if _, err := reg.Pause(rem.ID); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if n := reg.TriggerAll(); n != 1 {
			t.Errorf("expected 1 triggered, got %d", n)
		}
	})

	t.Run("several reminders skip paused", func(t *testing.T) {
		reg, clock := newTestRegistry(t)
		a := mustAdd(t, reg, "A", time.Hour)
		b := mustAdd(t, reg, "B", time.Hour)
		c := mustAdd(t, reg, "C", time.Hour)
		if _, err := reg.Pause(b.ID); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}

		if n := reg.TriggerAll(); n != 2 {
			t.Errorf("expected 2 triggered, got %d", n)
		}

		clock.Advance(time.Second)
		fired, _ := reg.CollectDue(clock.Now())
		ids := firedIDs(fired)
		if len(ids) != 2 || ids[0] != a.ID || ids[1] != c.ID {
			t.Errorf("expected [%s %s], got %v", a.ID, c.ID, ids)
		}
	})

	t.Run("empty registry", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		if n := reg.TriggerAll(); n != 0 {
			t.Errorf("expected 0 triggered, got %d", n)
		}
	})
}

func TestDueRemindersFireInInsertionOrder(t *testing.T) {
	reg, clock := newTestRegistry(t)
	var want []string
	for _, msg := range []string{"C", "A", "B"} {
		want = append(want, mustAdd(t, reg, msg, time.Minute).ID)
	}

	clock.Advance(time.Minute)
	fired, _ := reg.CollectDue(clock.Now())
	got := firedIDs(fired)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestMuteKeepsTimersRunning(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)
	reg.SetMuted(true)

	clock.Advance(time.Minute)
	fired, muted := reg.CollectDue(clock.Now())
	if !muted {
		t.Error("expected muted")
	}
	if len(fired) != 1 {
		t.Fatalf("expected muted reminder to still advance, got %d firings", len(fired))
	}

	got, _ := reg.Get(rem.ID)
	if !got.LastFiredAt.Equal(clock.Now()) {
		t.Errorf("expected LastFiredAt advanced while muted")
	}
}

func TestMuteState(t *testing.T) {
	reg, _ := newTestRegistry(t)

	reg.SetFocusSuppressed(true)
	if reg.MuteState().Effective() {
		t.Error("focus signal must be ignored while not following")
	}

	reg.SetFollowFocusAssist(true)
	reg.SetFocusSuppressed(true)
	if !reg.MuteState().Effective() {
		t.Error("expected focus signal to mute while following")
	}

	reg.SetFollowFocusAssist(false)
	state := reg.MuteState()
	if state.FocusSuppressed || state.Effective() {
		t.Errorf("expected focus state cleared when following stops, got %+v", state)
	}

	reg.SetMuted(true)
	if !reg.MuteState().Effective() {
		t.Error("expected manual mute honored")
	}
}

func TestOnChangeHook(t *testing.T) {
	reg, clock := newTestRegistry(t)
	calls := 0
	reg.OnChange(func() { calls++ })

	rem := mustAdd(t, reg, "Stretch", time.Minute)
	if calls != 1 {
		t.Fatalf("expected 1 call after add, got %d", calls)
	}

	reg.SetMuted(false) // unchanged state
	if calls != 1 {
		t.Errorf("expected no call for unchanged mute state, got %d", calls)
	}

	clock.Advance(time.Second)
	reg.CollectDue(clock.Now())
	if calls != 1 {
		t.Errorf("expected no call for a tick without firings, got %d", calls)
	}

	clock.Advance(time.Minute)
	reg.CollectDue(clock.Now())
	if calls != 2 {
		t.Errorf("expected call after a firing tick, got %d", calls)
	}

	_ = reg.Remove(rem.ID)
	if calls != 3 {
		t.Errorf("expected call after remove, got %d", calls)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Minute)
	snoozed, _ := reg.Snooze(rem.ID, time.Minute)

	*snoozed.SnoozedUntil = t0.Add(24 * time.Hour)

	got, _ := reg.Get(rem.ID)
	if got.SnoozedUntil.Equal(t0.Add(24 * time.Hour)) {
		t.Error("mutating a snapshot changed the registry")
	}
}

func TestConcurrentCommandsAndTicks(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rem := mustAdd(t, reg, "Stretch", time.Second)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			clock.Advance(100 * time.Millisecond)
			reg.CollectDue(clock.Now())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			interval := time.Duration(i%5+1) * time.Second
			_, _ = reg.Edit(rem.ID, EditOptions{Interval: &interval})
			_, _ = reg.Snooze(rem.ID, time.Second)
			_ = reg.Views(clock.Now())
		}
	}()
	wg.Wait()

	got, _ := reg.Get(rem.ID)
	if got.Interval <= 0 {
		t.Errorf("expected positive interval, got %v", got.Interval)
	}
}

func durationPtr(d time.Duration) *time.Duration { return &d }

func stringPtr(s string) *string { return &s }
