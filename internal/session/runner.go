package session

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/export"
)

// ErrBusy is returned when a batch of the same class is already running.
var ErrBusy = errors.New("session: a batch of this class is already running")

// Class groups batches that must not overlap. Different classes may run together.
type Class int

const (
	ClassFetch Class = iota
	ClassLiveExport
	ClassMovieExport
	ClassSeriesExport
)

func (c Class) String() string {
	switch c {
	case ClassFetch:
		return "fetch"
	case ClassLiveExport:
		return "live-export"
	case ClassMovieExport:
		return "movie-export"
	case ClassSeriesExport:
		return "series-export"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ExportClass maps a catalog kind to its export class.
func ExportClass(kind catalog.Kind) Class {
	switch kind {
	case catalog.KindLive:
		return ClassLiveExport
	case catalog.KindMovie:
		return ClassMovieExport
	case catalog.KindSeries:
		return ClassSeriesExport
	default:
		panic(fmt.Sprintf("session: unknown kind %d", int(kind)))
	}
}

// EventType tells the foreground what an Event carries.
type EventType int

const (
	// EventProgress carries a status line.
	EventProgress EventType = iota
	// EventFetched carries a freshly fetched snapshot to apply.
	EventFetched
	// EventExported carries the report of a finished export batch.
	EventExported
	// EventAlert carries the raw text of an unexpected failure.
	EventAlert
	// EventDone marks the end of a batch; the class is free again.
	EventDone
)

// Event is the only channel between a background batch and the foreground.
type Event struct {
	Class    Class
	Type     EventType
	Message  string
	Snapshot *catalog.Snapshot
	Report   *export.Report
}

// Runner launches fire-and-forget batches, at most one per Class.
type Runner struct {
	mu     sync.Mutex
	busy   map[Class]bool
	events chan Event
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewRunner returns a runner whose event channel holds buffer events.
func NewRunner(buffer int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		busy:   make(map[Class]bool),
		events: make(chan Event, buffer),
		logger: logger,
	}
}

// Events is read by the foreground.
func (r *Runner) Events() <-chan Event { return r.events }

// Busy reports whether a batch of class c is in flight.
func (r *Runner) Busy(c Class) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy[c]
}

// Go starts fn in the background unless class c is busy. fn reports through emit.
// A panic inside fn becomes an EventAlert; EventDone is always sent last and the
// class is released on every exit path.
func (r *Runner) Go(c Class, fn func(emit func(Event))) error {
	r.mu.Lock()
	if r.busy[c] {
		r.mu.Unlock()
		return ErrBusy
	}
	r.busy[c] = true
	r.mu.Unlock()

	emit := func(ev Event) {
		ev.Class = c
		r.events <- ev
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.busy[c] = false
			r.mu.Unlock()
			r.events <- Event{Class: c, Type: EventDone}
		}()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("batch panicked",
					zap.Stringer("class", c),
					zap.Any("panic", p),
					zap.ByteString("stack", debug.Stack()))
				r.events <- Event{Class: c, Type: EventAlert, Message: fmt.Sprint(p)}
			}
		}()
		fn(emit)
	}()
	return nil
}

// Wait blocks until every started batch has returned. The caller must keep
// draining Events meanwhile.
func (r *Runner) Wait() {
	r.wg.Wait()
}
