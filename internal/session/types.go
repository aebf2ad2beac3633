package session

import (
	"time"

	"github.com/verte-zerg/pagetype/internal/model"
)

// Status is the lifecycle state of a session.
type Status int

// Session lifecycle states.
const (
	Idle Status = iota
	Active
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Outcome is the result of submitting one keystroke.
type Outcome int

// Keystroke outcomes.
const (
	// Ignored means the key was a non-event (a modifier alone).
	Ignored Outcome = iota
	Correct
	Incorrect
	SessionEnded
	// NotActive means no session was running; nothing changed.
	NotActive
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case SessionEnded:
		return "session-ended"
	case NotActive:
		return "not-active"
	default:
		return "unknown"
	}
}

// Special key names.
const (
	KeyEscape = "Escape"
	KeyShift  = "Shift"
)

// Keystroke is one key press as reported by the input layer.
type Keystroke struct {
	Key   string
	Shift bool
}

// Snapshot is a read-only view of the session for presentation.
type Snapshot struct {
	Status     Status
	TargetText string
	Cursor     int
	Mistakes   int
	Accuracy   float64
	WPM        int
}

// EventKind identifies a session event.
type EventKind int

// Session events.
const (
	EventStarted EventKind = iota
	EventKeystroke
	EventStopped
)

// Event is delivered to the Observer. Record is set for EventStopped only.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Record   model.StatsRecord
}

// Observer receives lifecycle events and post-keystroke snapshots.
type Observer interface {
	Notify(Event)
}

// Notifier receives each finished session. Implementations must not block.
type Notifier interface {
	OnSessionComplete(model.StatsRecord)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type nopObserver struct{}

func (nopObserver) Notify(Event) {}

type nopNotifier struct{}

func (nopNotifier) OnSessionComplete(model.StatsRecord) {}
