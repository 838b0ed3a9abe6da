package effect

import (
	"github.com/google/uuid"

	"github.com/mkarren/duskmud/internal/game/actor"
)

// State is the lifecycle position of an effect instance.
//
// Transitions: Pending → Active → Removed. Removed is terminal.
type State int

const (
	StatePending State = iota
	StateActive
	StateRemoved
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Effect is one applied instance of a timed modification to an actor.
// Created and applied atomically via Engine.Apply; mutated only by its own
// periodic pulse; destroyed by Engine.Remove at its end tick or earlier.
type Effect struct {
	// ID uniquely identifies this instance.
	ID string
	// Actor is the affected actor.
	Actor *actor.Actor
	// Source is the actor that caused the effect; may be nil.
	Source *actor.Actor
	// Kind selects the behavior table entry.
	Kind Kind
	// Amount is the additive stat delta, or the per-pulse damage/heal
	// amount for pulsing kinds.
	Amount int

	CreatedTick int64
	StartTick   int64
	EndTick     int64
	// PulseEvery is the pulse period in ticks; 0 means no periodic behavior.
	PulseEvery int64

	state State
}

// New builds an unapplied effect instance of the given kind.
//
// Precondition: target must be non-nil; kind must be a registered Kind.
// Postcondition: the effect is in StatePending until Engine.Apply is called.
func New(kind Kind, target, source *actor.Actor, amount int) *Effect {
	return &Effect{
		ID:     uuid.New().String(),
		Actor:  target,
		Source: source,
		Kind:   kind,
		Amount: amount,
	}
}

// State returns the effect's lifecycle state.
func (e *Effect) State() State { return e.state }

// Active reports whether the effect is currently applied and not removed.
func (e *Effect) Active() bool { return e.state == StateActive }

// asserts reports whether this effect's kind asserts flag f.
func (e *Effect) asserts(f actor.Flag) bool {
	for _, kf := range behaviors[e.Kind].flags {
		if kf == f {
			return true
		}
	}
	return false
}
