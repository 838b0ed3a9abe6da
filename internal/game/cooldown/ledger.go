// Package cooldown implements the per-actor ledger of named, timed locks
// on ability reuse. The ledger only reports status; rejecting reuse while
// a cooldown is active is the caller's responsibility.
package cooldown

import (
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/event"
)

// ExpireEvent is the scheduler event kind for cooldown expiry.
const ExpireEvent = "cooldown.expire"

// Cooldown is one timed lock on an actor's ability reuse.
//
// Invariant: EndTick > StartTick.
type Cooldown struct {
	Actor *actor.Actor
	// Name is the ability name the lock applies to.
	Name string
	// Source identifies the ability or effect that created the lock,
	// disambiguating multiple cooldowns with the same name.
	Source    string
	StartTick int64
	EndTick   int64
	// OnExpire runs when the cooldown expires naturally; may be nil.
	OnExpire func()
}

// Remaining returns the ticks left before cd expires, flooring at zero.
//
// Postcondition: monotonically non-increasing as current advances; 0 at
// and after the end tick.
func Remaining(cd *Cooldown, current int64) int64 {
	left := cd.EndTick - current
	if left < 0 {
		return 0
	}
	return left
}

// Option customises a cooldown at Start time.
type Option func(*Cooldown)

// WithSource tags the cooldown with the ability or effect that created it.
func WithSource(source string) Option {
	return func(cd *Cooldown) { cd.Source = source }
}

// WithOnExpire registers a completion callback, invoked on natural expiry.
// Used, for example, to force a stealth re-check when an ability unlocks.
func WithOnExpire(fn func()) Option {
	return func(cd *Cooldown) { cd.OnExpire = fn }
}

// Ledger owns the ordered cooldown lists per actor and expires them
// through the scheduler.
type Ledger struct {
	sched   *event.Scheduler
	logger  *zap.Logger
	byActor map[string][]*Cooldown
}

// NewLedger creates a Ledger and registers its expiry handler with sched.
//
// Precondition: sched and logger must be non-nil.
func NewLedger(sched *event.Scheduler, logger *zap.Logger) *Ledger {
	l := &Ledger{
		sched:   sched,
		logger:  logger,
		byActor: make(map[string][]*Cooldown),
	}
	sched.Handle(ExpireEvent, l.expire)
	return l
}

// Start creates a cooldown for a on name lasting durationTicks, appends it
// to the actor's list, and schedules its removal.
//
// Precondition: a must be non-nil; name must be non-empty; durationTicks > 0.
// Postcondition: Has(a, name, "") is true until the end tick.
func (l *Ledger) Start(a *actor.Actor, name string, durationTicks int64, opts ...Option) *Cooldown {
	now := l.sched.Current()
	cd := &Cooldown{
		Actor:     a,
		Name:      name,
		StartTick: now,
		EndTick:   now + durationTicks,
	}
	for _, opt := range opts {
		opt(cd)
	}
	l.byActor[a.ID] = append(l.byActor[a.ID], cd)
	l.sched.Schedule(cd.EndTick, a, ExpireEvent, map[string]any{"cooldown": cd})

	l.logger.Debug("cooldown started",
		zap.String("actor", a.Name),
		zap.String("name", name),
		zap.String("source", cd.Source),
		zap.Int64("end_tick", cd.EndTick),
	)
	return cd
}

// Has reports whether a matching, unexpired cooldown exists for a.
// An empty name or source matches any.
//
// Postcondition: returns false at and after the matching cooldown's end tick.
func (l *Ledger) Has(a *actor.Actor, name, source string) bool {
	current := l.sched.Current()
	for _, cd := range l.byActor[a.ID] {
		if name != "" && cd.Name != name {
			continue
		}
		if source != "" && cd.Source != source {
			continue
		}
		if cd.EndTick > current {
			return true
		}
	}
	return false
}

// Active returns the actor's cooldown list in creation order.
func (l *Ledger) Active(a *actor.Actor) []*Cooldown {
	out := make([]*Cooldown, len(l.byActor[a.ID]))
	copy(out, l.byActor[a.ID])
	return out
}

// expire removes the cooldown from its actor's list and invokes OnExpire.
// Idempotent: a cooldown no longer in the list is ignored.
func (l *Ledger) expire(ev *event.Event) {
	cd, ok := ev.Vars["cooldown"].(*Cooldown)
	if !ok {
		l.logger.Warn("cooldown expiry event without cooldown payload")
		return
	}
	list := l.byActor[cd.Actor.ID]
	found := false
	for i, c := range list {
		if c == cd {
			l.byActor[cd.Actor.ID] = append(list[:i], list[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	if cd.OnExpire != nil {
		cd.OnExpire()
	}
}
