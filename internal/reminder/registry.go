package reminder

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MuteState is the process-wide notification suppression state.
type MuteState struct {
	Muted             bool // Manual toggle, always honored
	FollowFocusAssist bool // Let the OS focus signal mute notifications
	FocusSuppressed   bool // Last known focus signal, only meaningful when following
}

// Effective reports whether notifications are currently suppressed.
func (m MuteState) Effective() bool {
	return m.Muted || (m.FollowFocusAssist && m.FocusSuppressed)
}

// Firing describes a reminder that fired during a tick.
type Firing struct {
	ID      string
	Message string
	FiredAt time.Time
}

// EditOptions contains the fields to change on a reminder. Nil fields are left as is.
type EditOptions struct {
	Message  *string
	Interval *time.Duration
}

// Registry owns every reminder of the process together with the mute state.
// All reads and writes are serialized by one mutex, so a command issued while
// a tick is evaluating is observed either entirely or not at all.
type Registry struct {
	mu    sync.Mutex
	clock Clock
	order []string
	items map[string]*Reminder
	mute  MuteState
	newID func() string
	hooks []func()
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used for timestamps. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithMuteState sets the initial mute state.
func WithMuteState(m MuteState) Option {
	return func(r *Registry) { r.mute = m }
}

// WithIDGenerator overrides ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		clock: SystemClock{},
		items: make(map[string]*Reminder),
		newID: generateID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// generateID returns the first 8 hex characters of a random UUID.
func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Clock returns the registry's clock.
func (r *Registry) Clock() Clock {
	return r.clock
}

// OnChange registers fn to be called after every mutation and after every
// tick that fired at least one reminder. Hooks run outside the lock.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

func (r *Registry) changed() {
	r.mu.Lock()
	hooks := make([]func(), len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Add creates an enabled reminder whose interval starts now.
func (r *Registry) Add(message string, interval time.Duration) (Reminder, error) {
	if err := validateMessage(message); err != nil {
		return Reminder{}, err
	}
	if err := validateInterval(interval); err != nil {
		return Reminder{}, err
	}

	r.mu.Lock()
	id := r.newID()
	for tries := 0; r.items[id] != nil; tries++ {
		if tries >= 10 {
			r.mu.Unlock()
			return Reminder{}, fmt.Errorf("failed to allocate reminder id")
		}
		id = r.newID()
	}

	now := r.clock.Now()
	rem := &Reminder{
		ID:          id,
		Message:     message,
		Interval:    interval,
		Enabled:     true,
		CreatedAt:   now,
		LastFiredAt: now,
	}
	r.items[id] = rem
	r.order = append(r.order, id)
	snapshot := rem.clone()
	r.mu.Unlock()

	r.changed()
	return snapshot, nil
}

// Remove deletes a reminder permanently.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	if _, ok := r.items[id]; !ok {
		r.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.changed()
	return nil
}

// Edit updates the provided fields. Validation happens before any change is
// applied, so a rejected edit leaves the reminder untouched.
func (r *Registry) Edit(id string, opts EditOptions) (Reminder, error) {
	if opts.Message != nil {
		if err := validateMessage(*opts.Message); err != nil {
			return Reminder{}, err
		}
	}
	if opts.Interval != nil {
		if err := validateInterval(*opts.Interval); err != nil {
			return Reminder{}, err
		}
	}

	return r.mutate(id, func(rem *Reminder, _ time.Time) error {
		if opts.Message != nil {
			rem.Message = *opts.Message
		}
		if opts.Interval != nil {
			rem.Interval = *opts.Interval
		}
		return nil
	})
}

// Pause stops a reminder from firing. Its elapsed time keeps counting.
func (r *Registry) Pause(id string) (Reminder, error) {
	return r.mutate(id, func(rem *Reminder, _ time.Time) error {
		rem.Enabled = false
		return nil
	})
}

// Resume re-enables a reminder without resetting LastFiredAt, so a reminder
// whose interval elapsed while paused fires on the next tick.
func (r *Registry) Resume(id string) (Reminder, error) {
	return r.mutate(id, func(rem *Reminder, _ time.Time) error {
		rem.Enabled = true
		return nil
	})
}

// Snooze suppresses a reminder until now+d, replacing any earlier deadline.
func (r *Registry) Snooze(id string, d time.Duration) (Reminder, error) {
	if d <= 0 {
		return Reminder{}, &ValidationError{Field: "snooze duration", Reason: "must be positive"}
	}
	return r.mutate(id, func(rem *Reminder, now time.Time) error {
		until := now.Add(d)
		rem.SnoozedUntil = &until
		return nil
	})
}

// TriggerNow makes a reminder fire on the next tick regardless of its
// interval and clears any snooze. A later Snooze holds the trigger until the
// new deadline. Paused reminders keep the trigger until resumed.
func (r *Registry) TriggerNow(id string) (Reminder, error) {
	return r.mutate(id, func(rem *Reminder, now time.Time) error {
		trigger(rem, now)
		return nil
	})
}

// TriggerAll triggers the only reminder when exactly one exists, otherwise
// every enabled reminder. It returns the number of reminders triggered.
func (r *Registry) TriggerAll() int {
	r.mu.Lock()
	now := r.clock.Now()
	count := 0
	for _, id := range r.order {
		rem := r.items[id]
		if len(r.order) > 1 && !rem.Enabled {
			continue
		}
		trigger(rem, now)
		count++
	}
	r.mu.Unlock()

	if count > 0 {
		r.changed()
	}
	return count
}

func trigger(rem *Reminder, now time.Time) {
	rem.LastFiredAt = now.Add(-rem.Interval)
	rem.SnoozedUntil = nil
	rem.triggerPending = true
}

// mutate applies fn to the reminder under the lock and returns a snapshot.
func (r *Registry) mutate(id string, fn func(rem *Reminder, now time.Time) error) (Reminder, error) {
	r.mu.Lock()
	rem, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return Reminder{}, &NotFoundError{ID: id}
	}
	if err := fn(rem, r.clock.Now()); err != nil {
		r.mu.Unlock()
		return Reminder{}, err
	}
	snapshot := rem.clone()
	r.mu.Unlock()

	r.changed()
	return snapshot, nil
}

// Get returns a snapshot of one reminder.
func (r *Registry) Get(id string) (Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.items[id]
	if !ok {
		return Reminder{}, &NotFoundError{ID: id}
	}
	return rem.clone(), nil
}

// List returns snapshots of every reminder in insertion order.
func (r *Registry) List() []Reminder {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Reminder, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.items[id].clone())
	}
	return list
}

// Len returns the number of reminders.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// MuteState returns the current mute state.
func (r *Registry) MuteState() MuteState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mute
}

// SetMuted sets the manual mute toggle.
func (r *Registry) SetMuted(muted bool) {
	r.updateMute(func(m *MuteState) { m.Muted = muted })
}

// SetFollowFocusAssist enables or disables following the OS focus signal.
// Disabling it forgets the last known signal.
func (r *Registry) SetFollowFocusAssist(follow bool) {
	r.updateMute(func(m *MuteState) {
		m.FollowFocusAssist = follow
		if !follow {
			m.FocusSuppressed = false
		}
	})
}

// SetFocusSuppressed records the latest focus signal. Ignored while not following.
func (r *Registry) SetFocusSuppressed(suppressed bool) {
	r.updateMute(func(m *MuteState) {
		if m.FollowFocusAssist {
			m.FocusSuppressed = suppressed
		}
	})
}

func (r *Registry) updateMute(fn func(m *MuteState)) {
	r.mu.Lock()
	before := r.mute
	fn(&r.mute)
	after := r.mute
	r.mu.Unlock()

	if before != after {
		r.changed()
	}
}

// CollectDue evaluates every reminder at now and records a firing for each
// due one, in insertion order. muted reports the effective mute state at
// evaluation time; firings are recorded either way so timers keep running.
// A panic while evaluating one reminder is logged and does not affect the others.
func (r *Registry) CollectDue(now time.Time) (fired []Firing, muted bool) {
	r.mu.Lock()
	for _, id := range r.order {
		if f, ok := evaluate(r.items[id], now); ok {
			fired = append(fired, f)
		}
	}
	muted = r.mute.Effective()
	r.mu.Unlock()

	if len(fired) > 0 {
		r.changed()
	}
	return fired, muted
}

func evaluate(rem *Reminder, now time.Time) (f Firing, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[scheduler] Error: evaluating reminder %s: %v", rem.ID, p)
			ok = false
		}
	}()

	if rem.StatusAt(now) != StatusDue {
		return Firing{}, false
	}
	rem.fire(now)
	return Firing{ID: rem.ID, Message: rem.Message, FiredAt: now}, true
}
