package gameserver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/effect"
	"github.com/mkarren/duskmud/internal/game/skill"
)

// SkillDispatcher executes queued plain-text commands: the recovery verb
// "stand" and skill invocations by fuzzy name. The full player command
// parser lives outside the core; this sink covers the commands the
// simulation itself enqueues.
type SkillDispatcher struct {
	registry *skill.Registry
	gs       skill.GameState
	effects  *effect.Engine // may be nil; "stand" is then a no-op
	logger   *zap.Logger
}

// NewSkillDispatcher constructs a SkillDispatcher.
//
// Precondition: registry, gs, and logger must be non-nil.
func NewSkillDispatcher(registry *skill.Registry, gs skill.GameState, logger *zap.Logger) *SkillDispatcher {
	return &SkillDispatcher{
		registry: registry,
		gs:       gs,
		logger:   logger,
	}
}

// SetEffects wires the status-effect engine consumed by "stand".
func (d *SkillDispatcher) SetEffects(en *effect.Engine) { d.effects = en }

// Dispatch executes one queued command for a. Incapacitated and frozen
// actors drop everything except "stand".
func (d *SkillDispatcher) Dispatch(a *actor.Actor, cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	name := fields[0]
	args := strings.Join(fields[1:], " ")

	if strings.EqualFold(name, "stand") {
		if d.effects != nil {
			d.effects.RemoveKind(a, effect.KindSitting)
		}
		return
	}
	if a.Incapacitated() || a.HasFlag(actor.FlagFrozen) {
		d.logger.Debug("dropping command from incapacitated actor",
			zap.String("actor", a.Name),
			zap.String("command", cmd),
		)
		return
	}
	if !d.registry.Invoke(d.gs, a, name, args) {
		d.logger.Debug("command did not resolve",
			zap.String("actor", a.Name),
			zap.String("command", cmd),
		)
	}
}
