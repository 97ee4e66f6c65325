package progress

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
)

// DefaultBuffer is the dispatcher queue length used when none is given.
const DefaultBuffer = 256

// Dispatcher is a typing.Sink that hands events to a Store on a background
// goroutine.
type Dispatcher struct {
	store   Store
	events  chan typing.Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	saved   atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

var _ typing.Sink = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher with a queue of buffer events.
func NewDispatcher(store Store, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	d := &Dispatcher{
		store:   store,
		events:  make(chan typing.Event, buffer),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Record queues e. It never blocks; when the queue is full or the
// dispatcher is closed the event is dropped with a warning.
func (d *Dispatcher) Record(e typing.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		logging.Warn("progress dispatcher closed, dropping event", "event_id", e.ID.String())
		return
	}
	select {
	case d.events <- e:
	default:
		d.dropped.Add(1)
		logging.Warn("progress queue full, dropping event",
			"event_id", e.ID.String(),
			"book", e.Book,
			"chapter", e.Chapter,
			"verse", e.Verse,
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.store.Save(ctx, e)
		cancel()
		if err != nil {
			d.failed.Add(1)
			logging.Error("failed to save verse progress", "event_id", e.ID.String(), "error", err)
			continue
		}
		d.saved.Add(1)
	}
}

// Close stops accepting events and waits for queued ones to be saved, or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DispatchStats counts what happened to recorded events.
type DispatchStats struct {
	Saved   int64 `json:"saved"`
	Dropped int64 `json:"dropped"`
	Failed  int64 `json:"failed"`
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Saved:   d.saved.Load(),
		Dropped: d.dropped.Load(),
		Failed:  d.failed.Load(),
	}
}
