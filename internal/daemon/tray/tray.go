package tray

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

const (
	maxReminderSlots = 10
	maxSnoozeSlots   = 5
	refreshInterval  = 15 * time.Second
)

// reminderSlot is a pre-allocated menu entry with its submenu.
type reminderSlot struct {
	item    *systray.MenuItem
	trigger *systray.MenuItem
	pause   *systray.MenuItem
	snooze  [maxSnoozeSlots]*systray.MenuItem
	remove  *systray.MenuItem
}

var (
	state   DaemonState
	onStart func()
	onExit  func()

	portItem    *systray.MenuItem
	addItem     *systray.MenuItem
	triggerItem *systray.MenuItem
	slots       [maxReminderSlots]reminderSlot
	noneItem    *systray.MenuItem
	moreItem    *systray.MenuItem
	muteItem    *systray.MenuItem
	followItem  *systray.MenuItem
	quitItem    *systray.MenuItem

	// Maps slot index to reminder ID for submenu actions
	slotMu        sync.RWMutex
	slotIDs       [maxReminderSlots]string
	snoozeOptions []time.Duration

	ready   bool
	readyMu sync.Mutex
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the daemon services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s DaemonState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip(formatTooltip(0, 0, false))

	header := systray.AddMenuItem("Break Reminder", "")
	header.Disable()

	portItem = systray.AddMenuItem("Starting...", "")
	portItem.Disable()

	systray.AddSeparator()

	addItem = systray.AddMenuItem("Add Reminder", "Add a reminder with the default message and interval")
	triggerItem = systray.AddMenuItem("Trigger now", "Show reminders immediately")

	systray.AddSeparator()

	for i := 0; i < maxReminderSlots; i++ {
		s := &slots[i]
		s.item = systray.AddMenuItem("", "")
		s.trigger = s.item.AddSubMenuItem("Trigger now", "")
		s.pause = s.item.AddSubMenuItem("Pause", "")
		for j := range s.snooze {
			s.snooze[j] = s.item.AddSubMenuItem("", "")
			s.snooze[j].Hide()
		}
		s.remove = s.item.AddSubMenuItem("Terminate", "Remove this reminder")
		s.item.Hide()
	}

	noneItem = systray.AddMenuItem("No active reminders", "")
	noneItem.Disable()
	moreItem = systray.AddMenuItem("", "")
	moreItem.Disable()
	moreItem.Hide()

	systray.AddSeparator()

	mute := state.MuteState()
	muteItem = systray.AddMenuItemCheckbox("Mute notifications", "Suppress all reminder notifications", mute.Muted)
	followItem = systray.AddMenuItemCheckbox("Follow Focus Assist", "Mute while the OS suppresses notifications", mute.FollowFocusAssist)

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit", "Shut down Break Reminder")

	if onStart != nil {
		onStart()
	}

	portItem.SetTitle(fmt.Sprintf("Control port: %d", state.Port()))

	readyMu.Lock()
	ready = true
	readyMu.Unlock()

	Refresh()
	handleClicks()
	go refreshLoop()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

// onClick runs fn for every click on item.
func onClick(item *systray.MenuItem, fn func()) {
	go func() {
		for range item.ClickedCh {
			fn()
		}
	}()
}

func handleClicks() {
	onClick(addItem, func() {
		logError("add reminder", state.AddDefaultReminder())
	})
	onClick(triggerItem, func() {
		n := state.TriggerAll()
		log.Printf("[tray] Triggered %d reminder(s)", n)
	})
	onClick(muteItem, func() {
		logError("toggle mute", state.SetMuted(!muteItem.Checked()))
	})
	onClick(followItem, func() {
		logError("toggle focus assist", state.SetFollowFocusAssist(!followItem.Checked()))
	})
	onClick(quitItem, func() {
		state.RequestShutdown()
	})

	for i := range slots {
		slot := i
		s := &slots[i]
		onClick(s.trigger, func() { withSlot(slot, "trigger", state.TriggerNow) })
		onClick(s.pause, func() { withSlot(slot, "pause", state.TogglePause) })
		onClick(s.remove, func() { withSlot(slot, "terminate", state.Remove) })
		for j := range s.snooze {
			option := j
			onClick(s.snooze[j], func() {
				withSlot(slot, "snooze", func(id string) error {
					d, ok := snoozeOption(option)
					if !ok {
						return nil
					}
					return state.Snooze(id, d)
				})
			})
		}
	}
}

// snoozeOption returns the duration currently shown at position i.
func snoozeOption(i int) (time.Duration, bool) {
	slotMu.RLock()
	defer slotMu.RUnlock()
	if i >= len(snoozeOptions) {
		return 0, false
	}
	return snoozeOptions[i], true
}

// withSlot applies fn to the reminder currently shown in slot.
func withSlot(slot int, action string, fn func(id string) error) {
	slotMu.RLock()
	id := slotIDs[slot]
	slotMu.RUnlock()

	if id == "" {
		return
	}
	logError(fmt.Sprintf("%s %s", action, id), fn(id))
}

func logError(action string, err error) {
	if err != nil {
		log.Printf("[tray] Failed to %s: %v", action, err)
	}
}

func refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for range ticker.C {
		Refresh()
	}
}

// Refresh redraws the reminder slots, checkboxes, and tooltip from the
// daemon state. It is a no-op until the tray is ready.
func Refresh() {
	readyMu.Lock()
	defer readyMu.Unlock()
	if !ready {
		return
	}

	views := state.Reminders()
	options := visibleSnoozeOptions(state.SnoozeOptions())

	slotMu.Lock()
	snoozeOptions = options
	for i := 0; i < maxReminderSlots; i++ {
		slotIDs[i] = ""
		if i < len(views) {
			slotIDs[i] = views[i].ID
		}
	}
	slotMu.Unlock()

	for i := range slots {
		s := &slots[i]
		if i >= len(views) {
			s.item.Hide()
			continue
		}
		v := views[i]
		s.item.SetTitle(formatReminderTitle(v))
		s.pause.SetTitle(pauseTitle(v.Enabled))
		for j, item := range s.snooze {
			if j >= len(options) {
				item.Hide()
				continue
			}
			item.SetTitle(formatSnoozeTitle(options[j]))
			item.Show()
		}
		s.item.Show()
	}

	if len(views) == 0 {
		noneItem.Show()
	} else {
		noneItem.Hide()
	}
	if extra := len(views) - maxReminderSlots; extra > 0 {
		moreItem.SetTitle(fmt.Sprintf("…and %d more", extra))
		moreItem.Show()
	} else {
		moreItem.Hide()
	}

	mute := state.MuteState()
	setChecked(muteItem, mute.Muted)
	setChecked(followItem, mute.FollowFocusAssist)

	systray.SetTooltip(formatTooltip(len(views), countActive(views), mute.Effective()))
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}
