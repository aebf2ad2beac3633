package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/pagetype/internal/model"
)

// Appender is the write side of the session log.
type Appender interface {
	Append(ctx context.Context, rec model.StatsRecord) error
}

// Recorder persists finished sessions in the background. OnSessionComplete
// hands the record to a worker and returns; Close waits for queued records.
type Recorder struct {
	app     Appender
	log     zerolog.Logger
	wake    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	pending []model.StatsRecord
	closed  bool
}

// NewRecorder starts the worker goroutine.
func NewRecorder(app Appender, log zerolog.Logger) *Recorder {
	r := &Recorder{
		app:  app,
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// OnSessionComplete queues rec for persistence. The queue is unbounded, so
// the call never blocks on a slow store and never drops a record.
func (r *Recorder) OnSessionComplete(rec model.StatsRecord) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warn().Str("session", rec.ID).Msg("recorder closed, dropping session")
		return
	}
	r.pending = append(r.pending, rec)
	r.mu.Unlock()
	r.signal()
}

func (r *Recorder) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// next blocks until a record is queued. It reports false once the recorder
// is closed and the queue is drained.
func (r *Recorder) next() (model.StatsRecord, bool) {
	for {
		r.mu.Lock()
		if len(r.pending) > 0 {
			rec := r.pending[0]
			r.pending[0] = model.StatsRecord{}
			r.pending = r.pending[1:]
			r.mu.Unlock()
			return rec, true
		}
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return model.StatsRecord{}, false
		}
		<-r.wake
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		rec, ok := r.next()
		if !ok {
			return
		}
		if err := r.app.Append(context.Background(), rec); err != nil {
			r.log.Error().Err(err).Str("session", rec.ID).Msg("failed to save session")
			continue
		}
		r.log.Debug().Str("session", rec.ID).Int("wpm", rec.WPM).Float64("accuracy", rec.Accuracy).Msg("session saved")
	}
}

// Close flushes queued records and stops the worker. It is safe to call more
// than once.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.signal()
	<-r.done
}
