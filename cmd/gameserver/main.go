// Package main provides the simulation server binary: it loads content,
// constructs the engines, and runs the tick loop under lifecycle management.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/config"
	"github.com/mkarren/duskmud/internal/game/ai"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/cooldown"
	"github.com/mkarren/duskmud/internal/game/dice"
	"github.com/mkarren/duskmud/internal/game/effect"
	"github.com/mkarren/duskmud/internal/game/event"
	"github.com/mkarren/duskmud/internal/game/npc"
	"github.com/mkarren/duskmud/internal/game/skill"
	"github.com/mkarren/duskmud/internal/game/world"
	"github.com/mkarren/duskmud/internal/gameserver"
	"github.com/mkarren/duskmud/internal/observability"
	"github.com/mkarren/duskmud/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewLoggedSource(dice.NewCryptoSource(), logger)

	// Load world
	zones, err := world.LoadZones(cfg.Content.ZonesDir)
	if err != nil {
		logger.Fatal("loading zones", zap.Error(err))
	}
	worldMgr := world.NewManager(logger)
	worldMgr.SetOutput(gameserver.NewLogOutput(logger))
	rooms := 0
	for _, z := range zones {
		z.Build(worldMgr)
		rooms += len(z.Rooms)
	}
	logger.Info("world loaded",
		zap.Int("zones", len(zones)),
		zap.Int("rooms", rooms),
	)

	// Core engines, all sharing the one scheduler.
	sched := event.NewScheduler(logger)
	cooldowns := cooldown.NewLedger(sched, logger)
	effects := effect.NewEngine(sched, logger)
	effects.SetMessenger(worldMgr)

	resolver := combat.NewResolver(sched, effects, src, cfg.Sim.XPPerLevel, cfg.Sim.StealthDetectChance, logger)
	resolver.SetRooms(worldMgr)
	resolver.SetMessenger(worldMgr)
	effects.SetCombatHooks(resolver)

	// Load the skill catalog and bind resolution functions.
	registry, err := skill.LoadCatalog(cfg.Content.SkillsDir)
	if err != nil {
		logger.Fatal("loading skill catalog", zap.Error(err))
	}
	abilities := gameserver.NewAbilities(cooldowns, effects, resolver, src, logger)
	if unbound := skill.BindResolvers(registry, abilities.Table()); len(unbound) > 0 {
		logger.Warn("skills without resolution functions", zap.Strings("skills", unbound))
	}
	logger.Info("skill catalog loaded", zap.Int("skills", len(registry.All())))

	chooser := ai.NewChooser(registry, cooldowns, src, cfg.Sim.SkillChanceBase, cfg.Sim.SkillChanceCap, logger)
	resolver.SetAI(chooser)

	// Load NPC templates and perform the initial spawn pass.
	templates, err := npc.LoadTemplates(cfg.Content.NPCsDir)
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}
	spawner := npc.NewSpawner(sched, templates, worldMgr, logger)
	spawner.SetResolver(resolver)
	spawned := 0
	for _, z := range zones {
		n, err := spawner.Populate(z)
		if err != nil {
			logger.Fatal("populating zone", zap.String("zone", z.ID), zap.Error(err))
		}
		spawned += n
	}
	logger.Info("initial npc population complete",
		zap.Int("templates", len(templates)),
		zap.Int("spawned", spawned),
	)

	loop := gameserver.NewTickLoop(cfg.Sim.TickInterval, sched, resolver, worldMgr, logger)
	dispatcher := gameserver.NewSkillDispatcher(registry, worldMgr, logger)
	dispatcher.SetEffects(effects)
	loop.SetCommandSink(dispatcher)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("tickloop", loop)

	logger.Info("simulation server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Duration("tick_interval", cfg.Sim.TickInterval),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
