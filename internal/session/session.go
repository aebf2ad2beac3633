// Package session implements the typing session state machine: it owns the
// target text, scores keystrokes and emits a record when the session ends.
//
// A Session is not safe for concurrent use. Keystrokes are expected one at a
// time from a single event loop, and only one session may be active per
// document; callers must not Start an active session.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/pagetype/internal/extract"
	"github.com/verte-zerg/pagetype/internal/model"
	"github.com/verte-zerg/pagetype/internal/stats"
)

// ErrInvalidState is returned when an operation is called outside its valid
// status.
var ErrInvalidState = errors.New("invalid session state")

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithNotifier sets the receiver of finished sessions.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithObserver sets the receiver of lifecycle events and snapshots.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the logger used for contract violations.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithSource labels records with the document they came from.
func WithSource(source string) Option {
	return func(s *Session) { s.source = source }
}

// Session is a single typing play-through over one document.
type Session struct {
	clock    Clock
	notifier Notifier
	observer Observer
	log      zerolog.Logger
	source   string

	status    Status
	id        string
	target    []rune
	cursor    int
	mistakes  int
	accuracy  float64
	startedAt time.Time

	last    model.StatsRecord
	hasLast bool
}

// New returns an idle session.
func New(opts ...Option) *Session {
	s := &Session{
		clock:    SystemClock,
		notifier: nopNotifier{},
		observer: nopObserver{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// LastRecord returns the record of the most recently stopped session.
func (s *Session) LastRecord() (model.StatsRecord, bool) {
	return s.last, s.hasLast
}

// Start extracts the target text from src and activates the session. On
// extraction failure the session is left untouched.
func (s *Session) Start(src extract.Source) error {
	if s.status == Active {
		s.log.Warn().Str("session", s.id).Msg("start called on an active session")
		return fmt.Errorf("%w: start while %s", ErrInvalidState, s.status)
	}
	text, err := extract.Extract(src)
	if err != nil {
		return err
	}
	s.status = Active
	s.id = uuid.NewString()
	s.target = []rune(text)
	s.cursor = 0
	s.mistakes = 0
	s.accuracy = stats.Accuracy(0, 0)
	s.startedAt = s.clock.Now()

	s.log.Info().Str("session", s.id).Str("source", s.source).Int("length", len(s.target)).Msg("session started")
	s.observer.Notify(Event{Kind: EventStarted, Snapshot: s.Snapshot()})
	return nil
}

// Canonicalize applies the case rule: Shift selects the upper-case form,
// otherwise the lower-case form, whatever the reported character was.
func Canonicalize(k Keystroke) string {
	if k.Shift {
		return strings.ToUpper(k.Key)
	}
	return strings.ToLower(k.Key)
}

// SubmitKeystroke scores one key against the character under the cursor.
func (s *Session) SubmitKeystroke(k Keystroke) Outcome {
	if s.status != Active {
		s.log.Warn().Str("key", k.Key).Stringer("status", s.status).Msg("keystroke on inactive session ignored")
		return NotActive
	}
	switch k.Key {
	case KeyEscape:
		s.stop(false)
		return SessionEnded
	case KeyShift, "":
		return Ignored
	}

	if Canonicalize(k) != string(s.target[s.cursor]) {
		s.mistakes++
		s.accuracy = stats.Accuracy(s.cursor, s.mistakes)
		s.observer.Notify(Event{Kind: EventKeystroke, Snapshot: s.Snapshot()})
		return Incorrect
	}

	s.cursor++
	s.accuracy = stats.Accuracy(s.cursor, s.mistakes)
	s.observer.Notify(Event{Kind: EventKeystroke, Snapshot: s.Snapshot()})
	if s.cursor == len(s.target) {
		s.stop(true)
		return SessionEnded
	}
	return Correct
}

// Stop ends an active session and returns its record. On an inactive session
// it does nothing and returns the previous record with false.
func (s *Session) Stop() (model.StatsRecord, bool) {
	if s.status != Active {
		s.log.Warn().Stringer("status", s.status).Msg("stop on inactive session ignored")
		return s.last, false
	}
	return s.stop(false), true
}

func (s *Session) stop(completed bool) model.StatsRecord {
	now := s.clock.Now()
	rec := model.StatsRecord{
		ID:           s.id,
		StartedAt:    s.startedAt,
		CompletedAt:  now,
		WPM:          stats.WPM(s.cursor, now.Sub(s.startedAt).Milliseconds()),
		Accuracy:     s.accuracy,
		Typed:        s.cursor,
		Mistakes:     s.mistakes,
		TargetLength: len(s.target),
		Completed:    completed,
		Source:       s.source,
	}
	s.last = rec
	s.hasLast = true
	s.reset()
	s.status = Stopped

	s.log.Info().Str("session", rec.ID).Int("wpm", rec.WPM).Float64("accuracy", rec.Accuracy).Bool("completed", completed).Msg("session stopped")
	s.observer.Notify(Event{Kind: EventStopped, Snapshot: s.Snapshot(), Record: rec})
	s.notifier.OnSessionComplete(rec)
	return rec
}

func (s *Session) reset() {
	s.status = Idle
	s.id = ""
	s.target = nil
	s.cursor = 0
	s.mistakes = 0
	s.accuracy = stats.Accuracy(0, 0)
	s.startedAt = time.Time{}
}

// Snapshot returns the current state with a live WPM.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Status:     s.status,
		TargetText: string(s.target),
		Cursor:     s.cursor,
		Mistakes:   s.mistakes,
		Accuracy:   s.accuracy,
	}
	if s.status == Active {
		snap.WPM = stats.WPM(s.cursor, s.clock.Now().Sub(s.startedAt).Milliseconds())
	}
	return snap
}
