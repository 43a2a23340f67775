package reminder

import "time"

// View is a reminder with the display fields the tray and CLI show.
type View struct {
	Reminder
	Status  Status
	Label   string    // "active", "paused" or "snoozed until 15:04"
	NextDue time.Time // Zero when paused
}

// Views returns display views of every reminder in insertion order.
func (r *Registry) Views(now time.Time) []View {
	list := r.List()
	views := make([]View, 0, len(list))
	for i := range list {
		views = append(views, NewView(list[i], now))
	}
	return views
}

// NewView computes the display fields of rem at now.
func NewView(rem Reminder, now time.Time) View {
	return View{
		Reminder: rem,
		Status:   rem.StatusAt(now),
		Label:    StatusLabel(&rem, now),
		NextDue:  rem.NextDue(now),
	}
}

// StatusLabel returns the short status text for a reminder.
func StatusLabel(rem *Reminder, now time.Time) string {
	switch {
	case !rem.Enabled:
		return "paused"
	case rem.IsSnoozed(now):
		return "snoozed until " + rem.SnoozedUntil.Local().Format("15:04")
	default:
		return "active"
	}
}
