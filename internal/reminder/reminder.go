// Package reminder holds the reminder entity, the registry that owns every
// reminder of the process, and the mute state shared with the scheduler.
package reminder

import (
	"strings"
	"time"
)

// Status is the scheduler state of a reminder at a given instant.
type Status string

const (
	StatusDisabled Status = "disabled" // Paused by the user
	StatusSnoozed  Status = "snoozed"  // Snooze deadline still in the future
	StatusIdle     Status = "idle"     // Waiting for the interval to elapse
	StatusDue      Status = "due"      // Fires on this tick
)

// Reminder is a recurring break notification.
type Reminder struct {
	ID           string
	Message      string
	Interval     time.Duration
	Enabled      bool
	CreatedAt    time.Time
	LastFiredAt  time.Time
	SnoozedUntil *time.Time
	FireCount    int

	// triggerPending is set by TriggerNow and cleared on fire.
	triggerPending bool
}

// Elapsed returns the time since the reminder last fired.
func (r *Reminder) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.LastFiredAt)
}

// IsSnoozed reports whether a snooze deadline is set and still ahead of now.
func (r *Reminder) IsSnoozed(now time.Time) bool {
	return r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil)
}

// TriggerPending reports whether TriggerNow was called since the last fire.
func (r *Reminder) TriggerPending() bool {
	return r.triggerPending
}

// StatusAt evaluates the reminder's state machine at now. The interval is
// read live on every call, so edits apply on the next evaluation.
func (r *Reminder) StatusAt(now time.Time) Status {
	if !r.Enabled {
		return StatusDisabled
	}
	if r.IsSnoozed(now) {
		return StatusSnoozed
	}
	if r.triggerPending {
		return StatusDue
	}
	if r.Elapsed(now) >= r.Interval {
		return StatusDue
	}
	return StatusIdle
}

// NextDue estimates when the reminder will fire next. Zero for paused reminders.
func (r *Reminder) NextDue(now time.Time) time.Time {
	if !r.Enabled {
		return time.Time{}
	}
	if r.IsSnoozed(now) && r.triggerPending {
		return *r.SnoozedUntil
	}
	if r.triggerPending {
		return now
	}
	next := r.LastFiredAt.Add(r.Interval)
	if r.IsSnoozed(now) && r.SnoozedUntil.After(next) {
		next = *r.SnoozedUntil
	}
	if next.Before(now) {
		return now
	}
	return next
}

// fire records a firing at now.
func (r *Reminder) fire(now time.Time) {
	r.LastFiredAt = now
	r.SnoozedUntil = nil
	r.triggerPending = false
	r.FireCount++
}

// clone returns a copy that shares no pointers with r.
func (r *Reminder) clone() Reminder {
	c := *r
	if r.SnoozedUntil != nil {
		t := *r.SnoozedUntil
		c.SnoozedUntil = &t
	}
	return c
}

func validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	return nil
}

func validateInterval(interval time.Duration) error {
	if interval <= 0 {
		return &ValidationError{Field: "interval", Reason: "must be positive"}
	}
	return nil
}
