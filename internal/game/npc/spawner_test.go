package npc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/event"
	"github.com/mkarren/duskmud/internal/game/npc"
	"github.com/mkarren/duskmud/internal/game/world"
)

func spawnerFixture(t *testing.T) (*event.Scheduler, *world.Manager, *npc.Spawner) {
	t.Helper()
	logger := zap.NewNop()
	sched := event.NewScheduler(logger)
	mgr := world.NewManager(logger)
	mgr.AddRoom("ossuary", "The Ossuary")

	dir := writeTemplates(t, map[string]string{"gravehound.yaml": gravehoundYAML})
	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)

	return sched, mgr, npc.NewSpawner(sched, templates, mgr, logger)
}

// TestSpawn verifies placement and that the spawn reference sticks to the
// instance for the next respawn cycle.
func TestSpawn(t *testing.T) {
	_, mgr, sp := spawnerFixture(t)
	ref := &actor.SpawnRef{TemplateID: "gravehound", RoomID: "ossuary", MinRespawnTicks: 5, MaxRespawnTicks: 9}

	a, err := sp.Spawn(ref)
	require.NoError(t, err)
	assert.Equal(t, "ossuary", a.RoomID)
	assert.Same(t, ref, a.Spawn)
	require.Len(t, mgr.OccupantsOf("ossuary"), 1)
}

// TestSpawn_UnknownTemplate verifies the error path.
func TestSpawn_UnknownTemplate(t *testing.T) {
	_, _, sp := spawnerFixture(t)

	_, err := sp.Spawn(&actor.SpawnRef{TemplateID: "lich", RoomID: "ossuary"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
}

// TestPopulate verifies the initial spawn pass honors counts and carries the
// respawn bounds into each instance.
func TestPopulate(t *testing.T) {
	_, mgr, sp := spawnerFixture(t)
	z := &world.Zone{ID: "catacombs", Rooms: []world.RoomDef{{
		ID:   "ossuary",
		Name: "The Ossuary",
		Spawns: []world.SpawnDef{{
			TemplateID:      "gravehound",
			Count:           2,
			MinRespawnTicks: 5,
			MaxRespawnTicks: 9,
		}},
	}}}

	n, err := sp.Populate(z)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	occ := mgr.OccupantsOf("ossuary")
	require.Len(t, occ, 2)
	for _, a := range occ {
		require.NotNil(t, a.Spawn)
		assert.Equal(t, int64(5), a.Spawn.MinRespawnTicks)
		assert.Equal(t, int64(9), a.Spawn.MaxRespawnTicks)
	}
}

// TestPopulate_DefaultCount verifies a zero count spawns one instance.
func TestPopulate_DefaultCount(t *testing.T) {
	_, mgr, sp := spawnerFixture(t)
	z := &world.Zone{ID: "catacombs", Rooms: []world.RoomDef{{
		ID:     "ossuary",
		Spawns: []world.SpawnDef{{TemplateID: "gravehound"}},
	}}}

	n, err := sp.Populate(z)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, mgr.OccupantsOf("ossuary"), 1)
}

// TestRespawnEvent verifies the scheduler-driven respawn cycle: a respawn
// event carrying a spawn reference produces a fresh instance in the room.
func TestRespawnEvent(t *testing.T) {
	sched, mgr, _ := spawnerFixture(t)
	ref := &actor.SpawnRef{TemplateID: "gravehound", RoomID: "ossuary", MinRespawnTicks: 5, MaxRespawnTicks: 9}

	sched.Schedule(7, nil, combat.RespawnEvent, map[string]any{"spawn": ref})
	sched.Run(6)
	assert.Empty(t, mgr.OccupantsOf("ossuary"), "not due yet")

	sched.Run(7)
	occ := mgr.OccupantsOf("ossuary")
	require.Len(t, occ, 1)
	assert.Equal(t, "a gravehound", occ[0].Name)
	assert.Same(t, ref, occ[0].Spawn)
}

// TestRespawnEvent_MissingPayload verifies a malformed event is dropped.
func TestRespawnEvent_MissingPayload(t *testing.T) {
	sched, mgr, _ := spawnerFixture(t)

	sched.Schedule(1, nil, combat.RespawnEvent, nil)
	assert.NotPanics(t, func() { sched.Run(1) })
	assert.Empty(t, mgr.OccupantsOf("ossuary"))
}
