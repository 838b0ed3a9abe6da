package npc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/event"
	"github.com/mkarren/duskmud/internal/game/world"
)

// Spawner instantiates NPCs from templates into rooms and services the
// respawn events the combat resolver schedules on NPC death.
type Spawner struct {
	templates map[string]*Template
	mgr       *world.Manager
	resolver  *combat.Resolver // may be nil; spawned NPCs then skip the aggro check
	logger    *zap.Logger
}

// NewSpawner constructs a Spawner and registers the respawn handler with
// sched.
//
// Precondition: sched, templates, mgr, and logger must be non-nil.
func NewSpawner(sched *event.Scheduler, templates map[string]*Template, mgr *world.Manager, logger *zap.Logger) *Spawner {
	sp := &Spawner{
		templates: templates,
		mgr:       mgr,
		logger:    logger,
	}
	sched.Handle(combat.RespawnEvent, func(ev *event.Event) {
		ref, ok := ev.Vars["spawn"].(*actor.SpawnRef)
		if !ok {
			sp.logger.Warn("respawn event without spawn reference", zap.Int64("tick", ev.Tick))
			return
		}
		if _, err := sp.Spawn(ref); err != nil {
			sp.logger.Error("respawn failed", zap.String("template", ref.TemplateID), zap.Error(err))
		}
	})
	return sp
}

// SetResolver wires the combat resolver so freshly spawned aggressive NPCs
// immediately check for targets.
func (sp *Spawner) SetResolver(r *combat.Resolver) { sp.resolver = r }

// Spawn builds a fresh actor from ref's template, places it in ref's room,
// and runs its aggro check.
//
// Postcondition: the returned actor carries ref for the next respawn cycle.
func (sp *Spawner) Spawn(ref *actor.SpawnRef) (*actor.Actor, error) {
	t, ok := sp.templates[ref.TemplateID]
	if !ok {
		return nil, fmt.Errorf("npc: unknown template %q", ref.TemplateID)
	}
	a := t.Build()
	a.Spawn = ref
	sp.mgr.Place(a, ref.RoomID)
	sp.logger.Debug("npc spawned",
		zap.String("template", ref.TemplateID),
		zap.String("name", a.Name),
		zap.String("room", ref.RoomID),
	)
	if sp.resolver != nil && a.HasFlag(actor.FlagAggressive) {
		sp.resolver.Aggro(a)
	}
	return a, nil
}

// Populate performs the initial spawn pass for a zone: each spawn
// definition produces its instance count, every instance carrying a spawn
// reference with the definition's respawn bounds.
//
// Postcondition: Returns the number of actors spawned, or the first spawn
// error encountered.
func (sp *Spawner) Populate(z *world.Zone) (int, error) {
	spawned := 0
	for _, rd := range z.Rooms {
		for _, def := range rd.Spawns {
			count := def.Count
			if count < 1 {
				count = 1
			}
			for i := 0; i < count; i++ {
				ref := &actor.SpawnRef{
					TemplateID:      def.TemplateID,
					RoomID:          rd.ID,
					MinRespawnTicks: def.MinRespawnTicks,
					MaxRespawnTicks: def.MaxRespawnTicks,
				}
				if _, err := sp.Spawn(ref); err != nil {
					return spawned, fmt.Errorf("populating zone %q: %w", z.ID, err)
				}
				spawned++
			}
		}
	}
	return spawned, nil
}
