// Package ai implements the per-turn combat decision procedure for NPCs:
// usable-skill filtering, situational priority adjustment, and weighted
// random selection with a plain-attack fallback.
package ai

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/cooldown"
	"github.com/mkarren/duskmud/internal/game/dice"
	"github.com/mkarren/duskmud/internal/game/skill"
)

// Priority adjustments applied on top of a skill's base priority.
const (
	healBoostCritical  = 50 // self HP below 25%
	healBoostLow       = 25 // self HP below 50%
	damageBoostExecute = 15 // target HP below 25%
	stunBoostFresh     = 20 // target not already stunned
	stunPenaltyWasted  = 50 // target already stunned
	stancePenalty      = 30 // stances are low general-combat priority
)

// Rated pairs a usable skill with its situationally adjusted priority.
type Rated struct {
	Skill    *skill.Skill
	Priority int
}

// Chooser makes skill decisions for NPC combat turns.
//
// Invariant: a skill returned by ChooseSkill always passes CanUseSkill at
// the moment of selection.
type Chooser struct {
	registry  *skill.Registry
	cooldowns *cooldown.Ledger
	src       dice.Source
	// chanceBase and chanceCap bound the per-turn skill-use probability:
	// min(chanceCap, chanceBase + total class levels).
	chanceBase int
	chanceCap  int
	logger     *zap.Logger
}

// NewChooser constructs a Chooser.
//
// Precondition: registry, cooldowns, src, and logger must be non-nil.
func NewChooser(registry *skill.Registry, cooldowns *cooldown.Ledger, src dice.Source, chanceBase, chanceCap int, logger *zap.Logger) *Chooser {
	return &Chooser{
		registry:   registry,
		cooldowns:  cooldowns,
		src:        src,
		chanceBase: chanceBase,
		chanceCap:  chanceCap,
		logger:     logger,
	}
}

// CheckCondition evaluates one AI usage condition for a against target.
//
// Postcondition: conditions referencing a nil target evaluate to false.
func (c *Chooser) CheckCondition(cond skill.Condition, a, target *actor.Actor) bool {
	switch cond.Type {
	case skill.CondAlways, "":
		return true
	case skill.CondSelfHPBelow:
		return a.HPPercent() < cond.Threshold
	case skill.CondSelfHPAbove:
		return a.HPPercent() > cond.Threshold
	case skill.CondTargetHPBelow:
		return target != nil && target.HPPercent() < cond.Threshold
	case skill.CondTargetNotStunned:
		return target != nil && !target.HasFlag(actor.FlagStunned)
	case skill.CondInCombat:
		return a.Fighting != nil
	case skill.CondNotInCombat:
		return a.Fighting == nil
	default:
		return false
	}
}

// CanUseSkill reports whether a may use s against target right now. It
// fails closed, checking in order: cooldown, mana, stamina, required
// target, AI condition, resolution function. Each failure short-circuits
// with a distinct reason.
//
// Postcondition: ok implies every gate passed at evaluation time.
func (c *Chooser) CanUseSkill(a *actor.Actor, s *skill.Skill, target *actor.Actor) (ok bool, reason string) {
	if c.cooldowns.Has(a, s.Name, "") {
		return false, "on cooldown"
	}
	if a.Mana < s.ManaCost {
		return false, "insufficient mana"
	}
	if a.Stamina < s.StaminaCost {
		return false, "insufficient stamina"
	}
	if s.RequiresTarget && target == nil {
		return false, "requires a target"
	}
	if !c.CheckCondition(s.Condition, a, target) {
		return false, "condition not met"
	}
	if s.Resolve == nil {
		return false, "no resolution function"
	}
	return true, ""
}

// AvailableSkills collects every skill, from every class a has levels in,
// that currently passes CanUseSkill, adjusts each base priority for the
// situation, and returns the result sorted by priority descending. The
// sort is stable, so first-registered wins ties.
func (c *Chooser) AvailableSkills(a, target *actor.Actor) []Rated {
	var out []Rated
	// Walk the registry in registration order so equal-priority ordering
	// is deterministic (first-registered wins).
	for _, s := range c.registry.All() {
		if a.ClassLevels[s.Class] <= 0 {
			continue
		}
		if ok, _ := c.CanUseSkill(a, s, target); !ok {
			continue
		}
		out = append(out, Rated{Skill: s, Priority: c.adjustPriority(s, a, target)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// adjustPriority applies the situational deltas to a skill's base priority.
func (c *Chooser) adjustPriority(s *skill.Skill, a, target *actor.Actor) int {
	p := s.BasePriority
	switch s.Category {
	case skill.CategoryHeal:
		switch {
		case a.HPPercent() < 25:
			p += healBoostCritical
		case a.HPPercent() < 50:
			p += healBoostLow
		}
	case skill.CategoryDamage:
		if target != nil && target.HPPercent() < 25 {
			p += damageBoostExecute
		}
	case skill.CategoryStun:
		if target != nil && target.HasFlag(actor.FlagStunned) {
			p -= stunPenaltyWasted
		} else {
			p += stunBoostFresh
		}
	case skill.CategoryStance:
		p -= stancePenalty
	}
	return p
}

// ChooseSkill picks a skill for a's turn against target, or nil for a
// plain auto-attack. A nil result means either no skill is usable, or the
// per-turn use-chance roll failed.
//
// Selection is a weighted cumulative-sum draw over max(1, priority); if
// the draw is inconclusive, the highest-priority skill wins.
//
// Postcondition: a non-nil result passed CanUseSkill during this call.
func (c *Chooser) ChooseSkill(a, target *actor.Actor) *skill.Skill {
	avail := c.AvailableSkills(a, target)
	if len(avail) == 0 {
		return nil
	}

	chance := c.chanceBase + a.TotalLevels()
	if chance > c.chanceCap {
		chance = c.chanceCap
	}
	if dice.Percent(c.src) > chance {
		return nil
	}

	total := 0
	for _, r := range avail {
		total += weight(r.Priority)
	}
	roll := c.src.Intn(total)
	cum := 0
	for _, r := range avail {
		cum += weight(r.Priority)
		if roll < cum {
			c.logger.Debug("ai chose skill",
				zap.String("actor", a.Name),
				zap.String("skill", r.Skill.Name),
				zap.Int("priority", r.Priority),
			)
			return r.Skill
		}
	}
	// Inconclusive draw: fall back to the highest-priority skill.
	return avail[0].Skill
}

// QueueCombatAction chooses a skill for an NPC's combat turn and enqueues
// the corresponding textual command for the standard action-processing
// path. Returns false — signalling a plain auto-attack — for player
// characters, class-less NPCs, and turns where no skill was chosen.
func (c *Chooser) QueueCombatAction(a, target *actor.Actor) bool {
	if a.Kind == actor.KindPlayer || len(a.ClassLevels) == 0 {
		return false
	}
	s := c.ChooseSkill(a, target)
	if s == nil {
		return false
	}
	cmd := s.Name
	if s.RequiresTarget && target != nil {
		cmd = fmt.Sprintf("%s %s", s.Name, target.Name)
	}
	a.PushCommand(cmd)
	return true
}

// weight converts a priority into a positive draw weight.
func weight(priority int) int {
	if priority < 1 {
		return 1
	}
	return priority
}
