// Package event implements the discrete-tick event scheduler. Every timed
// behavior in the simulation — effect expiry, periodic pulses, cooldown
// expiry, NPC respawns — is enqueued here and dispatched by the tick loop.
package event

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
)

// Event is one unit of scheduled work: a tick, an optional target actor,
// a discriminating kind, and an arbitrary payload. Events carry no
// closures; dispatch goes through the handler registered for the kind.
type Event struct {
	// Tick is the simulation tick at or after which the event fires.
	Tick int64
	// Actor is the target actor; may be nil for world-level events.
	// Events whose actor has been deleted are silently skipped.
	Actor *actor.Actor
	// Kind selects the registered handler.
	Kind string
	// Vars is the event payload.
	Vars map[string]any
}

// Handler processes one dispatched event.
type Handler func(ev *Event)

// Scheduler is a tick-bucketed event queue with FIFO ordering within each
// tick. It is driven by the single tick loop and is not safe for
// concurrent use.
//
// Invariant: each enqueued event is dispatched at most once, and exactly
// once unless its target actor was deleted or its kind has no handler.
type Scheduler struct {
	logger   *zap.Logger
	current  int64
	buckets  map[int64][]*Event
	handlers map[string]Handler
	running  bool
}

// NewScheduler creates an empty Scheduler.
//
// Precondition: logger must be non-nil.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:   logger,
		buckets:  make(map[int64][]*Event),
		handlers: make(map[string]Handler),
	}
}

// Handle registers the handler for an event kind, replacing any previous
// registration.
//
// Precondition: kind must be non-empty; h must be non-nil.
func (s *Scheduler) Handle(kind string, h Handler) {
	s.handlers[kind] = h
}

// Schedule enqueues work for the given tick. Scheduling for a past tick is
// allowed; the event is caught up on the next Run call.
//
// Postcondition: the returned event is appended to its tick bucket in FIFO
// position.
func (s *Scheduler) Schedule(tick int64, a *actor.Actor, kind string, vars map[string]any) *Event {
	ev := &Event{Tick: tick, Actor: a, Kind: kind, Vars: vars}
	s.buckets[tick] = append(s.buckets[tick], ev)
	return ev
}

// Current returns the last tick passed to Run.
func (s *Scheduler) Current() int64 { return s.current }

// Pending returns the number of undispatched events.
func (s *Scheduler) Pending() int {
	n := 0
	for _, b := range s.buckets {
		n += len(b)
	}
	return n
}

// Run dispatches and discards every bucket whose tick is <= tick, in
// ascending tick order, FIFO within each bucket. Events targeting a
// deleted actor become no-ops. Events scheduled during dispatch for a tick
// that has already been drained are caught up on the next Run call.
//
// Re-entrant calls (Run invoked from inside a handler) are rejected and
// logged; the tick loop must not be re-entered from within itself.
func (s *Scheduler) Run(tick int64) {
	if s.running {
		s.logger.Error("scheduler re-entered from a handler; ignoring nested run",
			zap.Int64("tick", tick),
		)
		return
	}
	s.running = true
	defer func() { s.running = false }()

	s.current = tick

	var due []int64
	for t := range s.buckets {
		if t <= tick {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	for _, t := range due {
		bucket := s.buckets[t]
		delete(s.buckets, t)
		for _, ev := range bucket {
			s.dispatch(ev)
		}
	}
}

func (s *Scheduler) dispatch(ev *Event) {
	if ev.Actor != nil && ev.Actor.Deleted {
		return
	}
	h, ok := s.handlers[ev.Kind]
	if !ok {
		s.logger.Warn("no handler for scheduled event kind",
			zap.String("kind", ev.Kind),
			zap.Int64("tick", ev.Tick),
		)
		return
	}
	h(ev)
}
