// Package combat implements the combat resolver: starting and ending
// fights, the per-tick combat round, single-attack resolution with typed
// damage mitigation, death handling, and NPC aggro checks.
package combat

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/dice"
	"github.com/mkarren/duskmud/internal/game/effect"
	"github.com/mkarren/duskmud/internal/game/event"
)

// RespawnEvent is the scheduler event kind requesting an NPC respawn. The
// spawner registers the handler; the resolver only enqueues the event.
const RespawnEvent = "npc.respawn"

// Message kinds handed to the messaging collaborator.
const (
	MsgCombat = "combat"
	MsgDeath  = "death"
)

// Rooms is the slice of the world needed by combat: room membership,
// visibility, and corpse placement. A local interface keeps the world
// package free to import combat types.
type Rooms interface {
	// OccupantsOf returns the actors in a room, in arrival order.
	OccupantsOf(roomID string) []*actor.Actor
	// Visible reports whether viewer can currently see target.
	Visible(viewer, target *actor.Actor) bool
	// PlaceCorpse adds a corpse object to a room.
	PlaceCorpse(roomID string, c Corpse)
	// RemoveOccupant takes a out of its room.
	RemoveOccupant(a *actor.Actor)
}

// Messenger delivers a pre-built message template and substitution map to
// an actor and its room listeners, excluding any exceptions.
type Messenger interface {
	Echo(target *actor.Actor, kind, text string, vars map[string]string, exceptions ...*actor.Actor)
}

// ActionQueuer is the slice of the combat AI consulted each round for NPC
// turns.
type ActionQueuer interface {
	// QueueCombatAction enqueues a skill command for a's turn against
	// target; false means fall back to a plain auto-attack.
	QueueCombatAction(a, target *actor.Actor) bool
}

// Resolver owns the fight set and drives all combat state transitions. It
// is mutated only from the single tick loop.
//
// Invariant: an actor is in the fight set iff its Fighting pointer is
// non-nil; the relation is one-directional.
type Resolver struct {
	sched   *event.Scheduler
	effects *effect.Engine
	fights  *FightSet
	src     dice.Source
	logger  *zap.Logger

	rooms Rooms        // may be nil in tests
	msg   Messenger    // may be nil in tests
	ai    ActionQueuer // may be nil; NPCs then always auto-attack

	// xpPerLevel values a kill at XPValue, falling back to
	// xpPerLevel * victim levels when no explicit value is set.
	xpPerLevel int
	// stealthDetect is the percent chance an aggro check sees through an
	// active stealth effect.
	stealthDetect int
}

// NewResolver constructs a Resolver with an empty fight set.
//
// Precondition: sched, effects, src, and logger must be non-nil.
func NewResolver(sched *event.Scheduler, effects *effect.Engine, src dice.Source, xpPerLevel, stealthDetect int, logger *zap.Logger) *Resolver {
	return &Resolver{
		sched:         sched,
		effects:       effects,
		fights:        NewFightSet(),
		src:           src,
		logger:        logger,
		xpPerLevel:    xpPerLevel,
		stealthDetect: stealthDetect,
	}
}

// SetRooms wires the world collaborator.
func (r *Resolver) SetRooms(rooms Rooms) { r.rooms = rooms }

// SetMessenger wires the messaging collaborator.
func (r *Resolver) SetMessenger(m Messenger) { r.msg = m }

// SetAI wires the combat AI consulted for NPC turns.
func (r *Resolver) SetAI(ai ActionQueuer) { r.ai = ai }

// Fights exposes the fight set for round processing and tests.
func (r *Resolver) Fights() *FightSet { return r.fights }

// Fighting reports whether a is currently engaged.
func (r *Resolver) Fighting(a *actor.Actor) bool { return a.Fighting != nil }

// StartFighting engages a against target: breaks a's and target's stealth,
// sets the one-directional fighting relation, and recruits aggressive NPC
// bystanders in the room against target. Starting a fight never implies the
// reverse relation; the target retaliates through its own aggro or round.
//
// Precondition: a and target must be distinct, alive, and co-located.
func (r *Resolver) StartFighting(a, target *actor.Actor) {
	r.effects.RemoveKind(a, effect.KindStealthed)
	r.effects.RemoveKind(target, effect.KindStealthed)
	a.ClearTempFlag(actor.FlagHidden)
	target.ClearTempFlag(actor.FlagHidden)

	a.Fighting = target
	r.fights.Add(a)
	r.logger.Debug("fight started",
		zap.String("actor", a.Name),
		zap.String("target", target.Name),
	)

	if r.rooms == nil {
		return
	}
	for _, occ := range r.rooms.OccupantsOf(a.RoomID) {
		if occ == a || occ == target || occ.Deleted || occ.IsDead() {
			continue
		}
		if occ.Kind != actor.KindNPC || !occ.HasFlag(actor.FlagAggressive) {
			continue
		}
		if occ.Fighting != nil || occ.Incapacitated() || !hostile(occ, target) {
			continue
		}
		occ.Fighting = target
		r.fights.Add(occ)
	}
}

// StopFighting disengages a without affecting anyone targeting a.
func (r *Resolver) StopFighting(a *actor.Actor) {
	a.Fighting = nil
	r.fights.Remove(a)
}

// Round runs one combat round at tick: every engaged actor, in engagement
// order, validates its target and takes its turn. NPC turns consult the AI
// first; a queued skill command replaces that turn's auto-attacks.
func (r *Resolver) Round(tick int64) {
	for _, a := range r.fights.All() {
		if a.Deleted || a.IsDead() {
			r.StopFighting(a)
			continue
		}
		t := a.Fighting
		if t == nil {
			r.fights.Remove(a)
			continue
		}
		if t.Deleted || t.IsDead() || t.RoomID != a.RoomID {
			r.StopFighting(a)
			continue
		}
		if a.Incapacitated() {
			continue
		}
		if a.Kind == actor.KindNPC && r.ai != nil && r.ai.QueueCombatAction(a, t) {
			continue
		}
		attacks := a.Attacks
		if attacks < 1 {
			attacks = 1
		}
		atk := WeaponAttack(a)
		for i := 0; i < attacks && !t.IsDead(); i++ {
			r.SingleAttack(a, t, atk)
		}
	}
}

// SingleAttack resolves one swing of atk from a against t.
//
// Hit check: d100 + a.HitMod + atk.HitBonus, against t's dodge dice plus
// DodgeMod. On a hit, a single crit roll covers every component; each
// component rolls its dice, adds a.DamageMod, doubles on crit by CritMult,
// then passes through t's resistance multiplier and flat reduction for its
// type, floored at zero.
//
// Postcondition: exactly one pair of messages is emitted, hit or miss, and
// the return value reports whether the swing landed.
func (r *Resolver) SingleAttack(a, t *actor.Actor, atk Attack) bool {
	vars := a.MessageVars(t)
	vars["attack"] = atk.Name

	roll := dice.Percent(r.src)
	dodge := t.DodgeDice.Roll(r.src) + t.DodgeMod
	if roll+a.HitMod+atk.HitBonus < dodge {
		r.echo(a, MsgCombat, "$actor's $attack misses $target.", vars, t)
		r.echo(t, MsgCombat, "$actor's $attack misses $target.", vars, a)
		return false
	}

	crit := dice.Percent(r.src) <= a.CritChance
	total := 0
	type hit struct {
		amount int
		kind   actor.DamageType
	}
	hits := make([]hit, 0, len(atk.Components))
	for _, comp := range atk.Components {
		base := comp.Dice.Roll(r.src) + a.DamageMod
		if crit {
			base = int(float64(base) * a.CritMult)
		}
		res, ok := t.Resistances[comp.Type]
		if !ok {
			res = 1.0
		}
		amount := int(float64(base)*res) - t.Reductions[comp.Type]
		if amount < 0 {
			amount = 0
		}
		hits = append(hits, hit{amount: amount, kind: comp.Type})
		total += amount
	}

	vars["amount"] = strconv.Itoa(total)
	text := "$actor's $attack hits $target for $amount damage."
	if crit {
		text = "$actor's $attack CRITICALLY hits $target for $amount damage!"
	}
	r.echo(a, MsgCombat, text, vars, t)
	r.echo(t, MsgCombat, text, vars, a)

	for _, h := range hits {
		r.Damage(a, t, h.amount, h.kind)
		if t.IsDead() {
			break
		}
	}
	return true
}

// Damage applies amount of typed damage from src to target. Damage to an
// already dead or deleted target is ignored, so a multi-source tick cannot
// kill the same actor twice. Taking damage breaks sleep.
//
// Postcondition: target.HP decreased by amount; Die has run iff this call
// crossed zero.
func (r *Resolver) Damage(src, target *actor.Actor, amount int, kind actor.DamageType) {
	if target.Deleted || target.HP <= 0 {
		return
	}
	if amount < 0 {
		amount = 0
	}
	if amount > 0 {
		r.effects.RemoveKind(target, effect.KindSleeping)
	}
	target.HP -= amount
	r.logger.Debug("damage applied",
		zap.String("target", target.Name),
		zap.Int("amount", amount),
		zap.String("type", string(kind)),
		zap.Int("hp", target.HP),
	)
	if target.HP <= 0 {
		r.Die(target, src)
	}
}

// Die kills victim. Experience for an NPC kill is split among the room
// occupants who were fighting victim, proportional to their total levels;
// player deaths award nothing.
// Everyone fighting victim is redirected to killer when hostile to it,
// otherwise disengaged. A corpse with victim's inventory is placed in the
// room. Dead NPCs are deleted and, when spawned, a respawn event is
// scheduled a uniform random delay within the spawn's bounds.
//
// Precondition: victim.HP <= 0.
// Postcondition: victim is out of the fight set with no fighting relation;
// pending scheduler events targeting a deleted NPC victim become no-ops.
func (r *Resolver) Die(victim, killer *actor.Actor) {
	victim.HP = 0

	contributors, totalLevels := r.contributors(victim, killer)

	victim.Fighting = nil
	r.fights.Remove(victim)
	for _, f := range r.fights.All() {
		if f.Fighting != victim {
			continue
		}
		if killer != nil && f != killer && !killer.Deleted && !killer.IsDead() && hostile(f, killer) {
			f.Fighting = killer
			continue
		}
		r.StopFighting(f)
	}

	r.echo(victim, MsgDeath, "$actor is DEAD!", victim.MessageVars(killer))

	corpse := NewCorpse(victim)
	victim.Items = nil
	if r.rooms != nil {
		r.rooms.PlaceCorpse(victim.RoomID, corpse)
	}

	if victim.Kind == actor.KindNPC {
		r.awardXP(victim, contributors, totalLevels)
		if sp := victim.Spawn; sp != nil {
			r.scheduleRespawn(sp)
		}
		if r.rooms != nil {
			r.rooms.RemoveOccupant(victim)
		}
		victim.Deleted = true
	}

	for _, eff := range r.effects.ActiveOn(victim) {
		r.effects.Remove(eff, true)
	}

	r.logger.Info("actor died",
		zap.String("victim", victim.Name),
		zap.String("killer", killerName(killer)),
	)
}

// Aggro evaluates whether a initiates combat against a hostile room
// occupant. Incapacitated, engaged, dead, or deleted actors never aggro.
// Stealthed occupants are noticed only on a percent roll under the detect
// chance. A successful check engages both sides.
//
// Postcondition: returns true iff a is now fighting.
func (r *Resolver) Aggro(a *actor.Actor) bool {
	if a.Deleted || a.IsDead() || a.Incapacitated() || a.Fighting != nil {
		return false
	}
	if r.rooms == nil {
		return false
	}
	for _, occ := range r.rooms.OccupantsOf(a.RoomID) {
		if occ == a || occ.Deleted || occ.IsDead() {
			continue
		}
		if !hostile(a, occ) || !r.rooms.Visible(a, occ) {
			continue
		}
		if occ.HasFlag(actor.FlagStealthed) && dice.Percent(r.src) > r.stealthDetect {
			continue
		}
		r.echo(a, MsgCombat, "$actor snarls and attacks $target!", a.MessageVars(occ))
		r.StartFighting(a, occ)
		r.StartFighting(occ, a)
		return true
	}
	return false
}

// contributors collects the room occupants fighting victim, killer
// included, and sums their total levels for the XP split.
func (r *Resolver) contributors(victim, killer *actor.Actor) ([]*actor.Actor, int) {
	var out []*actor.Actor
	total := 0
	add := func(a *actor.Actor) {
		out = append(out, a)
		total += a.TotalLevels()
	}
	if r.rooms != nil {
		for _, occ := range r.rooms.OccupantsOf(victim.RoomID) {
			if occ != victim && !occ.Deleted && occ.Fighting == victim {
				add(occ)
			}
		}
		return out, total
	}
	if killer != nil && killer.Fighting == victim {
		add(killer)
	}
	return out, total
}

// awardXP splits the kill's experience across contributors proportional to
// their total levels; level-less contributors split what remains evenly.
func (r *Resolver) awardXP(victim *actor.Actor, contributors []*actor.Actor, totalLevels int) {
	if len(contributors) == 0 {
		return
	}
	award := victim.XPValue
	if award == 0 {
		award = r.xpPerLevel * victim.TotalLevels()
	}
	if award <= 0 {
		return
	}
	for _, c := range contributors {
		share := award / len(contributors)
		if totalLevels > 0 {
			share = award * c.TotalLevels() / totalLevels
		}
		c.XP += share
	}
}

// scheduleRespawn enqueues the respawn event a uniform random delay within
// [MinRespawnTicks, MaxRespawnTicks] from the current tick. The event
// carries the spawn reference, not the actor: the dead NPC is deleted and
// the spawner builds a fresh one from the template.
func (r *Resolver) scheduleRespawn(sp *actor.SpawnRef) {
	delay := sp.MinRespawnTicks
	if span := sp.MaxRespawnTicks - sp.MinRespawnTicks; span > 0 {
		delay += int64(r.src.Intn(int(span) + 1))
	}
	r.sched.Schedule(r.sched.Current()+delay, nil, RespawnEvent, map[string]any{
		"spawn": sp,
	})
}

// echo forwards to the messenger when one is wired.
func (r *Resolver) echo(target *actor.Actor, kind, text string, vars map[string]string, exceptions ...*actor.Actor) {
	if r.msg == nil {
		return
	}
	r.msg.Echo(target, kind, text, vars, exceptions...)
}

// hostile reports whether a and b are on opposing sides. Players and their
// charmed allies oppose NPCs.
func hostile(a, b *actor.Actor) bool {
	return side(a) != side(b)
}

func side(a *actor.Actor) actor.Kind {
	if a.Kind == actor.KindNPC && a.ControlledBy != nil && a.ControlledBy.Kind == actor.KindPlayer {
		return actor.KindPlayer
	}
	return a.Kind
}

func killerName(killer *actor.Actor) string {
	if killer == nil {
		return ""
	}
	return killer.Name
}
