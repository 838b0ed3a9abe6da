// Package skill provides the catalog of named abilities: costs, cooldowns,
// targeting and AI metadata, and resolution functions, with fuzzy name
// lookup for command handling and combat AI.
package skill

import (
	"fmt"

	"github.com/mkarren/duskmud/internal/game/actor"
)

// Category groups skills for AI priority adjustment.
type Category string

const (
	CategoryDamage  Category = "damage"
	CategoryHeal    Category = "heal"
	CategoryBuff    Category = "buff"
	CategoryDebuff  Category = "debuff"
	CategoryStun    Category = "stun"
	CategoryStance  Category = "stance"
	CategoryUtility Category = "utility"
)

// ConditionType selects one AI usage-condition evaluation.
type ConditionType string

const (
	CondAlways           ConditionType = "always"
	CondSelfHPBelow      ConditionType = "self_hp_below"
	CondSelfHPAbove      ConditionType = "self_hp_above"
	CondTargetHPBelow    ConditionType = "target_hp_below"
	CondTargetNotStunned ConditionType = "target_not_stunned"
	CondInCombat         ConditionType = "in_combat"
	CondNotInCombat      ConditionType = "not_in_combat"
)

// Condition is a skill's AI usage condition.
type Condition struct {
	Type ConditionType `yaml:"type"`
	// Threshold is the HP percentage bound for the HP-based conditions.
	Threshold int `yaml:"threshold"`
}

// GameState is the lookup collaborator used to resolve invocation targets
// by fuzzy name within a scope, honoring visibility rules.
type GameState interface {
	// FindCharacter resolves a character by name in the viewer's room,
	// or nil when none matches.
	FindCharacter(viewer *actor.Actor, name string) *actor.Actor
	// FindObject resolves an object by name in the viewer's room.
	FindObject(viewer *actor.Actor, name string) (string, bool)
}

// Resolver executes a skill's game-state transition. It returns false when
// the skill could not take effect (expected rule failure, already messaged).
type Resolver func(gs GameState, user, target *actor.Actor, args string) bool

// Skill is one immutable ability definition, registered once at startup.
type Skill struct {
	Name  string
	Class string

	ManaCost    int
	StaminaCost int

	// CooldownTicks is the reuse lock duration started when the skill fires.
	CooldownTicks int64
	// CastTicks is the wind-up before the skill resolves.
	CastTicks int64

	RequiresTarget bool

	// Condition gates AI use of this skill.
	Condition Condition
	// BasePriority is the AI's starting weight before situational adjustment.
	BasePriority int
	Category     Category

	// ResolverID names the resolution function bound at startup.
	ResolverID string
	// Resolve executes the skill; nil disables both player and AI use.
	Resolve Resolver
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff Name and Class are non-empty, costs and
// durations are non-negative, and the category and condition are known.
func (s *Skill) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("skill: name must not be empty")
	}
	if s.Class == "" {
		return fmt.Errorf("skill %q: class must not be empty", s.Name)
	}
	if s.ManaCost < 0 || s.StaminaCost < 0 {
		return fmt.Errorf("skill %q: costs must be >= 0", s.Name)
	}
	if s.CooldownTicks < 0 || s.CastTicks < 0 {
		return fmt.Errorf("skill %q: durations must be >= 0", s.Name)
	}
	switch s.Category {
	case CategoryDamage, CategoryHeal, CategoryBuff, CategoryDebuff,
		CategoryStun, CategoryStance, CategoryUtility:
	default:
		return fmt.Errorf("skill %q: unknown category %q", s.Name, s.Category)
	}
	switch s.Condition.Type {
	case CondAlways, CondSelfHPBelow, CondSelfHPAbove, CondTargetHPBelow,
		CondTargetNotStunned, CondInCombat, CondNotInCombat, "":
	default:
		return fmt.Errorf("skill %q: unknown condition type %q", s.Name, s.Condition.Type)
	}
	return nil
}
