// Package effect implements the status-effect engine: typed, time-bounded
// modifications to an actor's flags and numeric stats, optionally with
// periodic pulse behavior, driven by the tick scheduler.
package effect

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/event"
)

// Scheduler event kinds owned by the engine.
const (
	RemoveEvent = "effect.remove"
	PulseEvent  = "effect.pulse"
)

// Message kinds handed to the messaging collaborator.
const (
	MsgEffect = "effect"
	MsgPulse  = "pulse"
)

// Messenger delivers a pre-built message template and substitution map to
// an actor and its room listeners, excluding any exceptions. Rendering is
// external to the core.
type Messenger interface {
	Echo(target *actor.Actor, kind, text string, vars map[string]string, exceptions ...*actor.Actor)
}

// CombatHooks is the slice of the combat resolver needed by periodic
// effects and NPC recovery. A local interface avoids a circular import.
type CombatHooks interface {
	// Damage applies amount of typed damage from src to target,
	// including death handling.
	Damage(src, target *actor.Actor, amount int, kind actor.DamageType)
	// Aggro re-evaluates whether a may initiate combat.
	Aggro(a *actor.Actor) bool
}

// Engine owns the ordered active-effect lists per actor and drives the
// shared apply/pulse/remove contract for every effect kind.
type Engine struct {
	sched  *event.Scheduler
	logger *zap.Logger
	msg    Messenger   // may be nil
	combat CombatHooks // may be nil
	active map[string][]*Effect
}

// NewEngine creates an Engine and registers its removal and pulse handlers
// with sched.
//
// Precondition: sched and logger must be non-nil.
func NewEngine(sched *event.Scheduler, logger *zap.Logger) *Engine {
	en := &Engine{
		sched:  sched,
		logger: logger,
		active: make(map[string][]*Effect),
	}
	sched.Handle(RemoveEvent, func(ev *event.Event) {
		if eff, ok := ev.Vars["effect"].(*Effect); ok {
			en.Remove(eff, false)
		}
	})
	sched.Handle(PulseEvent, func(ev *event.Event) {
		if eff, ok := ev.Vars["effect"].(*Effect); ok {
			en.Pulse(eff, ev.Tick)
		}
	})
	return en
}

// SetMessenger wires the messaging collaborator. May be left unset in tests.
func (en *Engine) SetMessenger(m Messenger) { en.msg = m }

// SetCombatHooks wires the combat resolver slice used by periodic damage
// and NPC recovery. May be left unset; pulse damage then bypasses death
// handling.
func (en *Engine) SetCombatHooks(c CombatHooks) { en.combat = c }

// ApplyOption configures the timing of an Apply call.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	durationSet bool
	duration    int64
	untilSet    bool
	until       int64
	pulseEvery  int64
}

// Duration sets the effect's lifetime in ticks from the current tick.
func Duration(ticks int64) ApplyOption {
	return func(c *applyConfig) {
		c.durationSet = true
		c.duration = ticks
	}
}

// Until sets the effect's explicit end tick.
func Until(tick int64) ApplyOption {
	return func(c *applyConfig) {
		c.untilSet = true
		c.until = tick
	}
}

// PulseEvery gives the effect periodic behavior with the given period.
func PulseEvery(ticks int64) ApplyOption {
	return func(c *applyConfig) { c.pulseEvery = ticks }
}

// Apply activates eff: asserts its temporary flags, applies its numeric
// delta, schedules its removal, and schedules the first pulse when a pulse
// period is given.
//
// Exactly one of Duration and Until must be supplied; anything else is a
// programmer error and returns a non-nil error with no side effects.
//
// Precondition: eff must be in StatePending.
// Postcondition: eff is Active, appended to its actor's ordered list, with
// a removal event enqueued for its end tick.
func (en *Engine) Apply(eff *Effect, opts ...ApplyOption) error {
	var cfg applyConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.durationSet == cfg.untilSet {
		return fmt.Errorf("effect: exactly one of Duration and Until must be given (kind %s)", eff.Kind)
	}
	if eff.state != StatePending {
		return fmt.Errorf("effect: apply on %s effect %s", eff.state, eff.ID)
	}
	b, ok := behaviorFor(eff.Kind)
	if !ok {
		return fmt.Errorf("effect: unknown kind %q", eff.Kind)
	}

	now := en.sched.Current()
	eff.CreatedTick = now
	eff.StartTick = now
	if cfg.durationSet {
		eff.EndTick = now + cfg.duration
	} else {
		eff.EndTick = cfg.until
	}
	eff.PulseEvery = cfg.pulseEvery
	eff.state = StateActive

	for _, f := range b.flags {
		eff.Actor.SetTempFlag(f)
	}
	if b.apply != nil {
		b.apply(eff)
	}
	en.active[eff.Actor.ID] = append(en.active[eff.Actor.ID], eff)

	en.sched.Schedule(eff.EndTick, eff.Actor, RemoveEvent, map[string]any{"effect": eff})
	if eff.PulseEvery > 0 && now+eff.PulseEvery < eff.EndTick {
		en.sched.Schedule(now+eff.PulseEvery, eff.Actor, PulseEvent, map[string]any{"effect": eff})
	}

	en.echo(eff, b.applyMsg)
	en.logger.Debug("effect applied",
		zap.String("actor", eff.Actor.Name),
		zap.String("kind", string(eff.Kind)),
		zap.Int("amount", eff.Amount),
		zap.Int64("end_tick", eff.EndTick),
	)
	return nil
}

// Pulse executes the effect's periodic behavior and reschedules the next
// pulse while time remains. A pulse on a removed effect is a no-op.
func (en *Engine) Pulse(eff *Effect, tick int64) {
	if eff.state != StateActive {
		return
	}
	b := behaviors[eff.Kind]
	if b.pulse != nil {
		b.pulse(en, eff)
	}
	if eff.state == StateActive && eff.PulseEvery > 0 && tick+eff.PulseEvery < eff.EndTick {
		en.sched.Schedule(tick+eff.PulseEvery, eff.Actor, PulseEvent, map[string]any{"effect": eff})
	}
}

// Remove deactivates eff, reversing exactly the numeric delta and flag
// assertions this instance introduced. A shared temporary flag is cleared
// only when no other still-active effect on the same actor asserts it.
//
// Remove is idempotent: the second call returns false and does nothing.
// After removal, NPC-only recovery side effects may fire (queuing a
// "stand" command and re-evaluating aggro); these never fire for players.
//
// Postcondition: returns true iff this call performed the removal.
func (en *Engine) Remove(eff *Effect, force bool) bool {
	if eff.state == StateRemoved {
		return false
	}
	wasActive := eff.state == StateActive
	eff.state = StateRemoved
	if !wasActive {
		return false
	}

	list := en.active[eff.Actor.ID]
	for i, e := range list {
		if e == eff {
			en.active[eff.Actor.ID] = append(list[:i], list[i+1:]...)
			break
		}
	}

	b := behaviors[eff.Kind]
	if b.revert != nil {
		b.revert(eff)
	}
	for _, f := range b.flags {
		if !en.flagStillAsserted(eff.Actor, f) {
			eff.Actor.ClearTempFlag(f)
		}
	}

	en.echo(eff, b.removeMsg)
	en.logger.Debug("effect removed",
		zap.String("actor", eff.Actor.Name),
		zap.String("kind", string(eff.Kind)),
		zap.Bool("force", force),
	)

	if b.npcRecover && eff.Actor.Kind == actor.KindNPC && !eff.Actor.Deleted {
		en.recoverNPC(eff.Actor)
	}
	return true
}

// RemoveKind removes every active effect of the given kind on a, used for
// early cancellation (standing cancels forced-sitting, combat breaks
// stealth). The pending removal events for those effects later fire as
// no-ops.
//
// Postcondition: returns the number of effects removed.
func (en *Engine) RemoveKind(a *actor.Actor, kind Kind) int {
	removed := 0
	for _, eff := range en.ActiveOn(a) {
		if eff.Kind == kind && en.Remove(eff, true) {
			removed++
		}
	}
	return removed
}

// ActiveOn returns a snapshot of the actor's active effects in apply order.
func (en *Engine) ActiveOn(a *actor.Actor) []*Effect {
	out := make([]*Effect, len(en.active[a.ID]))
	copy(out, en.active[a.ID])
	return out
}

// HasKind reports whether a has an active effect of the given kind.
func (en *Engine) HasKind(a *actor.Actor, kind Kind) bool {
	for _, eff := range en.active[a.ID] {
		if eff.Kind == kind {
			return true
		}
	}
	return false
}

// flagStillAsserted reports whether any still-active effect on a asserts f.
func (en *Engine) flagStillAsserted(a *actor.Actor, f actor.Flag) bool {
	for _, eff := range en.active[a.ID] {
		if eff.asserts(f) {
			return true
		}
	}
	return false
}

// recoverNPC re-enters an NPC into standard action processing after an
// incapacitating effect ends.
func (en *Engine) recoverNPC(a *actor.Actor) {
	if !a.Incapacitated() {
		a.PushCommand("stand")
	}
	if en.combat != nil && a.Fighting == nil {
		en.combat.Aggro(a)
	}
}

// pulseDamage routes a periodic damage tick through the combat hooks so
// death handling applies; without hooks it subtracts directly.
func (en *Engine) pulseDamage(eff *Effect, dt actor.DamageType, msg string) {
	if en.msg != nil {
		en.msg.Echo(eff.Actor, MsgPulse, msg, eff.Actor.MessageVars(eff.Source))
	}
	if en.combat != nil {
		en.combat.Damage(eff.Source, eff.Actor, eff.Amount, dt)
		return
	}
	eff.Actor.HP -= eff.Amount
	if eff.Actor.HP < 0 {
		eff.Actor.HP = 0
	}
}

// pulseHeal applies a periodic heal scaled by the actor's HealMod and
// capped at MaxHP.
func (en *Engine) pulseHeal(eff *Effect) {
	scale := 100 + eff.Actor.HealMod
	if scale < 0 {
		scale = 0
	}
	amt := eff.Amount * scale / 100
	eff.Actor.HP += amt
	if eff.Actor.HP > eff.Actor.MaxHP {
		eff.Actor.HP = eff.Actor.MaxHP
	}
	if en.msg != nil {
		en.msg.Echo(eff.Actor, MsgPulse, "$actor's wounds close a little.", eff.Actor.MessageVars(eff.Source))
	}
}

// echo sends a kind's apply/remove message when a messenger is wired.
func (en *Engine) echo(eff *Effect, text string) {
	if en.msg == nil || text == "" {
		return
	}
	en.msg.Echo(eff.Actor, MsgEffect, text, eff.Actor.MessageVars(eff.Source))
}
