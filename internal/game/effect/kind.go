package effect

import "github.com/mkarren/duskmud/internal/game/actor"

// Kind identifies one status-effect variant. Variants differ only in which
// flags and numeric fields they touch and in their user-facing messages;
// all share the same apply/pulse/remove contract.
type Kind string

const (
	KindSitting      Kind = "sitting"
	KindSleeping     Kind = "sleeping"
	KindStunned      Kind = "stunned"
	KindFrozen       Kind = "frozen"
	KindDisarmed     Kind = "disarmed"
	KindStealthed    Kind = "stealthed"
	KindCharmed      Kind = "charmed"
	KindHitBonus     Kind = "hit_bonus"
	KindDodgeBonus   Kind = "dodge_bonus"
	KindDamageBonus  Kind = "damage_bonus"
	KindArmorBonus   Kind = "armor_bonus"
	KindShielded     Kind = "shielded"
	KindZealotry     Kind = "zealotry"
	KindBleeding     Kind = "bleeding"
	KindBurning      Kind = "burning"
	KindIgnited      Kind = "ignited"
	KindConsecrated  Kind = "consecrated"
	KindRegenerating Kind = "regenerating"
)

// behavior is the per-kind hook set: the temporary flags the kind asserts,
// the numeric delta it applies and reverses, its periodic pulse, and its
// user-facing messages.
type behavior struct {
	// flags are asserted on apply and cleared on remove, subject to the
	// shared-flag check (another active effect may still assert them).
	flags []actor.Flag
	// apply introduces the kind's numeric delta; revert reverses exactly
	// that delta. Either may be nil for flag-only kinds.
	apply  func(eff *Effect)
	revert func(eff *Effect)
	// pulse is the periodic behavior; nil for non-pulsing kinds.
	pulse func(en *Engine, eff *Effect)
	// npcRecover marks kinds whose removal re-enters an NPC into standard
	// action processing (queue "stand", re-evaluate aggro).
	npcRecover bool
	applyMsg   string
	removeMsg  string
}

var physical = []actor.DamageType{actor.Slashing, actor.Piercing, actor.Bludgeoning}

var allDamageTypes = []actor.DamageType{
	actor.Slashing, actor.Piercing, actor.Bludgeoning,
	actor.Fire, actor.Frost, actor.Arcane, actor.Holy,
}

var behaviors = map[Kind]behavior{
	KindSitting: {
		flags:      []actor.Flag{actor.FlagSitting},
		npcRecover: true,
		applyMsg:   "$actor is knocked to the ground.",
		removeMsg:  "$actor clambers back to their feet.",
	},
	KindSleeping: {
		flags:      []actor.Flag{actor.FlagSleeping},
		npcRecover: true,
		applyMsg:   "$actor falls into an unnatural sleep.",
		removeMsg:  "$actor wakes with a start.",
	},
	KindStunned: {
		flags:      []actor.Flag{actor.FlagStunned},
		npcRecover: true,
		applyMsg:   "$actor reels, stunned.",
		removeMsg:  "$actor shakes off the stun.",
	},
	KindFrozen: {
		flags:      []actor.Flag{actor.FlagFrozen},
		npcRecover: true,
		applyMsg:   "$actor is encased in ice.",
		removeMsg:  "The ice around $actor shatters.",
	},
	KindDisarmed: {
		flags:     []actor.Flag{actor.FlagDisarmed},
		applyMsg:  "$actor's weapon is knocked away!",
		removeMsg: "$actor recovers their weapon.",
	},
	KindStealthed: {
		flags:     []actor.Flag{actor.FlagStealthed},
		applyMsg:  "$actor melts into the shadows.",
		removeMsg: "$actor steps out of the shadows.",
	},
	KindCharmed: {
		flags: []actor.Flag{actor.FlagCharmed},
		apply: func(eff *Effect) {
			eff.Actor.ControlledBy = eff.Source
		},
		revert: func(eff *Effect) {
			if eff.Actor.ControlledBy == eff.Source {
				eff.Actor.ControlledBy = nil
			}
		},
		applyMsg:  "$actor's eyes glaze over.",
		removeMsg: "$actor snaps out of their trance.",
	},
	KindHitBonus: {
		apply:     func(eff *Effect) { eff.Actor.HitMod += eff.Amount },
		revert:    func(eff *Effect) { eff.Actor.HitMod -= eff.Amount },
		applyMsg:  "$actor's strikes grow surer.",
		removeMsg: "$actor's aim returns to normal.",
	},
	KindDodgeBonus: {
		apply:     func(eff *Effect) { eff.Actor.DodgeMod += eff.Amount },
		revert:    func(eff *Effect) { eff.Actor.DodgeMod -= eff.Amount },
		applyMsg:  "$actor moves with uncanny grace.",
		removeMsg: "$actor's footwork returns to normal.",
	},
	KindDamageBonus: {
		apply:     func(eff *Effect) { eff.Actor.DamageMod += eff.Amount },
		revert:    func(eff *Effect) { eff.Actor.DamageMod -= eff.Amount },
		applyMsg:  "$actor's blows land harder.",
		removeMsg: "$actor's strength ebbs back to normal.",
	},
	KindArmorBonus: {
		apply: func(eff *Effect) {
			for _, dt := range physical {
				eff.Actor.Reductions[dt] += eff.Amount
			}
		},
		revert: func(eff *Effect) {
			for _, dt := range physical {
				eff.Actor.Reductions[dt] -= eff.Amount
			}
		},
		applyMsg:  "A layer of force hardens over $actor.",
		removeMsg: "The force layer around $actor fades.",
	},
	KindShielded: {
		apply: func(eff *Effect) {
			for _, dt := range allDamageTypes {
				eff.Actor.Reductions[dt] += eff.Amount
			}
		},
		revert: func(eff *Effect) {
			for _, dt := range allDamageTypes {
				eff.Actor.Reductions[dt] -= eff.Amount
			}
		},
		applyMsg:  "A shimmering shield surrounds $actor.",
		removeMsg: "The shield around $actor winks out.",
	},
	KindZealotry: {
		apply: func(eff *Effect) {
			eff.Actor.DamageMod += eff.Amount
			eff.Actor.HealMod -= 50
		},
		revert: func(eff *Effect) {
			eff.Actor.DamageMod -= eff.Amount
			eff.Actor.HealMod += 50
		},
		applyMsg:  "$actor is consumed by zealous fury.",
		removeMsg: "$actor's fury burns out.",
	},
	KindBleeding: {
		pulse:     func(en *Engine, eff *Effect) { en.pulseDamage(eff, actor.Slashing, "$actor's wounds bleed freely.") },
		applyMsg:  "$actor starts bleeding.",
		removeMsg: "$actor's bleeding stops.",
	},
	KindBurning: {
		pulse:     func(en *Engine, eff *Effect) { en.pulseDamage(eff, actor.Fire, "$actor is scorched by flames.") },
		applyMsg:  "$actor catches fire!",
		removeMsg: "The flames on $actor gutter out.",
	},
	KindIgnited: {
		pulse:     func(en *Engine, eff *Effect) { en.pulseDamage(eff, actor.Fire, "$actor burns fiercely.") },
		applyMsg:  "$actor erupts in roaring flame!",
		removeMsg: "$actor's inferno dies down.",
	},
	KindConsecrated: {
		pulse:     func(en *Engine, eff *Effect) { en.pulseDamage(eff, actor.Holy, "Holy fire sears $actor.") },
		applyMsg:  "$actor is wreathed in holy fire.",
		removeMsg: "The holy fire around $actor fades.",
	},
	KindRegenerating: {
		pulse:     func(en *Engine, eff *Effect) { en.pulseHeal(eff) },
		applyMsg:  "$actor's wounds begin to knit closed.",
		removeMsg: "$actor's regeneration fades.",
	},
}

// behaviorFor returns the hook set for k.
//
// Postcondition: ok is false for unregistered kinds.
func behaviorFor(k Kind) (behavior, bool) {
	b, ok := behaviors[k]
	return b, ok
}

// Flags returns the temporary flags asserted by kind k.
func Flags(k Kind) []actor.Flag {
	return behaviors[k].flags
}
