package gameserver

import (
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/cooldown"
	"github.com/mkarren/duskmud/internal/game/dice"
	"github.com/mkarren/duskmud/internal/game/effect"
	"github.com/mkarren/duskmud/internal/game/skill"
)

// Ability dice, fixed per resolver.
var (
	healDice     = dice.MustParse("2d8+4")
	fireboltDice = dice.MustParse("3d6")
)

// Abilities builds the skill resolution functions from the live engines.
// Every resolver enforces the shared rule gates itself — cooldown, costs —
// so player invocation and AI invocation behave identically.
type Abilities struct {
	cooldowns *cooldown.Ledger
	effects   *effect.Engine
	combat    *combat.Resolver
	src       dice.Source
	logger    *zap.Logger
}

// NewAbilities constructs the resolver set.
//
// Precondition: all collaborators must be non-nil.
func NewAbilities(cooldowns *cooldown.Ledger, effects *effect.Engine, cbt *combat.Resolver, src dice.Source, logger *zap.Logger) *Abilities {
	return &Abilities{
		cooldowns: cooldowns,
		effects:   effects,
		combat:    cbt,
		src:       src,
		logger:    logger,
	}
}

// Table returns the resolver factories keyed by the resolver IDs the skill
// catalog references.
func (ab *Abilities) Table() map[string]skill.ResolverFactory {
	return map[string]skill.ResolverFactory{
		"strike":        ab.strike(nil),
		"stun_strike":   ab.strike(&onHit{kind: effect.KindStunned, duration: 2}),
		"rend":          ab.strike(&onHit{kind: effect.KindBleeding, amount: 3, duration: 6, pulse: 2}),
		"firebolt":      ab.firebolt,
		"heal":          ab.heal,
		"stealth":       ab.stealth,
		"battle_stance": ab.stance(effect.KindDamageBonus, 5),
		"shield":        ab.stance(effect.KindShielded, 3),
	}
}

// onHit is an effect rider applied to the target when a strike lands.
type onHit struct {
	kind     effect.Kind
	amount   int
	duration int64
	pulse    int64
}

// pay enforces the shared rule gates and spends resources. Returns false
// on any expected rule failure without side effects; on success the costs
// are deducted and the cooldown started.
func (ab *Abilities) pay(s *skill.Skill, user *actor.Actor) bool {
	if ab.cooldowns.Has(user, s.Name, "") {
		return false
	}
	if user.Mana < s.ManaCost || user.Stamina < s.StaminaCost {
		return false
	}
	user.Mana -= s.ManaCost
	user.Stamina -= s.StaminaCost
	if s.CooldownTicks > 0 {
		ab.cooldowns.Start(user, s.Name, s.CooldownTicks)
	}
	return true
}

// validTarget reports whether target is attackable by user.
func validTarget(user, target *actor.Actor) bool {
	return target != nil && target != user && !target.Deleted && !target.IsDead()
}

// strike builds a weapon-attack resolver, optionally applying an effect
// rider when the attack lands.
func (ab *Abilities) strike(rider *onHit) skill.ResolverFactory {
	return func(s *skill.Skill) skill.Resolver {
		return func(gs skill.GameState, user, target *actor.Actor, args string) bool {
			if !validTarget(user, target) || !ab.pay(s, user) {
				return false
			}
			if user.Fighting == nil {
				ab.combat.StartFighting(user, target)
			}
			atk := combat.WeaponAttack(user)
			atk.Name = s.Name
			if !ab.combat.SingleAttack(user, target, atk) {
				return true // the swing happened; a miss is not a rule failure
			}
			if rider != nil && !target.IsDead() {
				eff := effect.New(rider.kind, target, user, rider.amount)
				opts := []effect.ApplyOption{effect.Duration(rider.duration)}
				if rider.pulse > 0 {
					opts = append(opts, effect.PulseEvery(rider.pulse))
				}
				if err := ab.effects.Apply(eff, opts...); err != nil {
					ab.logger.Error("applying strike rider", zap.String("skill", s.Name), zap.Error(err))
				}
			}
			return true
		}
	}
}

// firebolt is a direct fire attack with a burning rider.
func (ab *Abilities) firebolt(s *skill.Skill) skill.Resolver {
	return func(gs skill.GameState, user, target *actor.Actor, args string) bool {
		if !validTarget(user, target) || !ab.pay(s, user) {
			return false
		}
		if user.Fighting == nil {
			ab.combat.StartFighting(user, target)
		}
		amount := fireboltDice.Roll(ab.src) + user.DamageMod
		ab.combat.Damage(user, target, amount, actor.Fire)
		if !target.IsDead() {
			eff := effect.New(effect.KindBurning, target, user, 2)
			if err := ab.effects.Apply(eff, effect.Duration(6), effect.PulseEvery(2)); err != nil {
				ab.logger.Error("applying burning", zap.Error(err))
			}
		}
		return true
	}
}

// heal restores hit points, scaled by the target's HealMod and capped at
// MaxHP. An omitted target heals the user.
func (ab *Abilities) heal(s *skill.Skill) skill.Resolver {
	return func(gs skill.GameState, user, target *actor.Actor, args string) bool {
		if target == nil {
			target = user
		}
		if target.Deleted || target.IsDead() || !ab.pay(s, user) {
			return false
		}
		amount := healDice.Roll(ab.src) + user.DamageMod
		scale := 100 + target.HealMod
		if scale < 0 {
			scale = 0
		}
		target.HP += amount * scale / 100
		if target.HP > target.MaxHP {
			target.HP = target.MaxHP
		}
		return true
	}
}

// stealth applies the stealth effect. Fails while fighting.
func (ab *Abilities) stealth(s *skill.Skill) skill.Resolver {
	return func(gs skill.GameState, user, target *actor.Actor, args string) bool {
		if user.Fighting != nil || ab.effects.HasKind(user, effect.KindStealthed) {
			return false
		}
		if !ab.pay(s, user) {
			return false
		}
		eff := effect.New(effect.KindStealthed, user, user, 0)
		if err := ab.effects.Apply(eff, effect.Duration(20)); err != nil {
			ab.logger.Error("applying stealth", zap.Error(err))
			return false
		}
		return true
	}
}

// stance builds a self-buff resolver for the given effect kind and amount.
func (ab *Abilities) stance(kind effect.Kind, amount int) skill.ResolverFactory {
	return func(s *skill.Skill) skill.Resolver {
		return func(gs skill.GameState, user, target *actor.Actor, args string) bool {
			if ab.effects.HasKind(user, kind) || !ab.pay(s, user) {
				return false
			}
			eff := effect.New(kind, user, user, amount)
			if err := ab.effects.Apply(eff, effect.Duration(30)); err != nil {
				ab.logger.Error("applying stance", zap.String("skill", s.Name), zap.Error(err))
				return false
			}
			return true
		}
	}
}
