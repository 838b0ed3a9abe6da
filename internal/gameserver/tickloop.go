// Package gameserver drives the simulation: the wall-clock tick loop that
// advances the authoritative tick and runs every per-tick phase on a single
// goroutine.
package gameserver

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/event"
)

// ActorSource enumerates every live actor for command-queue draining.
type ActorSource interface {
	AllActors() []*actor.Actor
}

// CommandSink executes one queued plain-text command for an actor. The
// command parser implements it in production; tests record calls.
type CommandSink interface {
	Dispatch(a *actor.Actor, cmd string)
}

// TickLoop owns the authoritative simulation tick. Each tick runs, in
// order: scheduled events, the combat round, and one queued command per
// actor. All game state is mutated from the loop goroutine only.
type TickLoop struct {
	interval time.Duration
	sched    *event.Scheduler
	resolver *combat.Resolver
	actors   ActorSource
	sink     CommandSink // may be nil; queued commands are then discarded
	logger   *zap.Logger

	mu          sync.Mutex
	tick        int64
	subscribers map[chan<- int64]struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

// NewTickLoop creates a stopped TickLoop at tick zero.
//
// Precondition: interval > 0; sched, resolver, actors, and logger must be
// non-nil.
func NewTickLoop(interval time.Duration, sched *event.Scheduler, resolver *combat.Resolver, actors ActorSource, logger *zap.Logger) *TickLoop {
	return &TickLoop{
		interval:    interval,
		sched:       sched,
		resolver:    resolver,
		actors:      actors,
		logger:      logger,
		subscribers: make(map[chan<- int64]struct{}),
		done:        make(chan struct{}),
	}
}

// SetCommandSink wires the command dispatcher.
func (t *TickLoop) SetCommandSink(sink CommandSink) { t.sink = sink }

// Current returns the last completed tick.
func (t *TickLoop) Current() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick
}

// Subscribe registers ch to receive the tick number after each completed
// tick. Full channels miss ticks (non-blocking send).
//
// Precondition: ch must not be nil.
func (t *TickLoop) Subscribe(ch chan<- int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (t *TickLoop) Unsubscribe(ch chan<- int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, ch)
}

// Start runs the loop until Stop, advancing one tick per interval. It
// blocks, satisfying the server Service interface.
func (t *TickLoop) Start() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Step()
		case <-t.done:
			return nil
		}
	}
}

// Stop halts the loop. Idempotent.
func (t *TickLoop) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

// Step advances exactly one tick synchronously: scheduled events first,
// then the combat round, then one queued command per actor. Exposed so
// tests drive the simulation deterministically without wall-clock time.
//
// Postcondition: Current() has increased by one and subscribers were
// offered the new tick.
func (t *TickLoop) Step() {
	t.mu.Lock()
	t.tick++
	tick := t.tick
	t.mu.Unlock()

	t.sched.Run(tick)
	t.resolver.Round(tick)
	t.drainCommands()

	t.mu.Lock()
	subs := make([]chan<- int64, 0, len(t.subscribers))
	for ch := range t.subscribers {
		subs = append(subs, ch)
	}
	t.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- tick:
		default:
		}
	}
}

// drainCommands executes at most one queued command per actor per tick, so
// a burst of queued skill commands still respects round pacing.
func (t *TickLoop) drainCommands() {
	for _, a := range t.actors.AllActors() {
		if a.Deleted || a.IsDead() {
			continue
		}
		cmd, ok := a.PopCommand()
		if !ok {
			continue
		}
		if t.sink == nil {
			t.logger.Debug("discarding queued command, no sink",
				zap.String("actor", a.Name),
				zap.String("command", cmd),
			)
			continue
		}
		t.sink.Dispatch(a, cmd)
	}
}
