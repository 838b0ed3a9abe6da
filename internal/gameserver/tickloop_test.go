package gameserver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/effect"
	"github.com/mkarren/duskmud/internal/game/event"
	"github.com/mkarren/duskmud/internal/gameserver"
)

// seqSource replays scripted draws for deterministic dice.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

// listSource is a fixed actor roster.
type listSource struct {
	actors []*actor.Actor
}

func (l *listSource) AllActors() []*actor.Actor { return l.actors }

// recordingSink records dispatched commands.
type recordingSink struct {
	calls []string
}

func (r *recordingSink) Dispatch(a *actor.Actor, cmd string) {
	r.calls = append(r.calls, a.Name+":"+cmd)
}

func newLoop(t *testing.T, actors *listSource) (*gameserver.TickLoop, *event.Scheduler, *recordingSink) {
	t.Helper()
	logger := zap.NewNop()
	sched := event.NewScheduler(logger)
	effects := effect.NewEngine(sched, logger)
	resolver := combat.NewResolver(sched, effects, &seqSource{vals: []int{0}}, 100, 50, logger)
	effects.SetCombatHooks(resolver)

	loop := gameserver.NewTickLoop(time.Millisecond, sched, resolver, actors, logger)
	sink := &recordingSink{}
	loop.SetCommandSink(sink)
	return loop, sched, sink
}

// TestStep_AdvancesTickAndRunsEvents verifies one Step advances the tick and
// drains due events.
func TestStep_AdvancesTickAndRunsEvents(t *testing.T) {
	loop, sched, _ := newLoop(t, &listSource{})

	fired := 0
	sched.Handle("probe", func(ev *event.Event) { fired++ })
	sched.Schedule(1, nil, "probe", nil)
	sched.Schedule(2, nil, "probe", nil)

	loop.Step()
	assert.Equal(t, int64(1), loop.Current())
	assert.Equal(t, 1, fired)

	loop.Step()
	assert.Equal(t, int64(2), loop.Current())
	assert.Equal(t, 2, fired)
}

// TestStep_EventsRunBeforeCommands verifies phase order within one tick: a
// command queued by an event handler executes that same tick.
func TestStep_EventsRunBeforeCommands(t *testing.T) {
	a := actor.New("Brynn", actor.KindPlayer)
	a.HP, a.MaxHP = 10, 10
	loop, sched, sink := newLoop(t, &listSource{actors: []*actor.Actor{a}})

	sched.Handle("nudge", func(ev *event.Event) { ev.Actor.PushCommand("strike") })
	sched.Schedule(1, a, "nudge", nil)

	loop.Step()
	assert.Equal(t, []string{"Brynn:strike"}, sink.calls)
}

// TestStep_OneCommandPerActorPerTick verifies burst pacing.
func TestStep_OneCommandPerActorPerTick(t *testing.T) {
	a := actor.New("Brynn", actor.KindPlayer)
	a.HP, a.MaxHP = 10, 10
	a.PushCommand("strike")
	a.PushCommand("rend")
	loop, _, sink := newLoop(t, &listSource{actors: []*actor.Actor{a}})

	loop.Step()
	assert.Equal(t, []string{"Brynn:strike"}, sink.calls)

	loop.Step()
	assert.Equal(t, []string{"Brynn:strike", "Brynn:rend"}, sink.calls)
}

// TestStep_SkipsDeadAndDeleted verifies dead actors never act.
func TestStep_SkipsDeadAndDeleted(t *testing.T) {
	dead := actor.New("Wren", actor.KindPlayer)
	dead.MaxHP = 10
	dead.PushCommand("strike")

	gone := actor.New("Tam", actor.KindPlayer)
	gone.HP, gone.MaxHP = 10, 10
	gone.Deleted = true
	gone.PushCommand("strike")

	loop, _, sink := newLoop(t, &listSource{actors: []*actor.Actor{dead, gone}})
	loop.Step()
	assert.Empty(t, sink.calls)
}

// TestSubscribe verifies tick notification and the non-blocking send.
func TestSubscribe(t *testing.T) {
	loop, _, _ := newLoop(t, &listSource{})

	ch := make(chan int64, 1)
	loop.Subscribe(ch)

	loop.Step()
	select {
	case got := <-ch:
		assert.Equal(t, int64(1), got)
	default:
		t.Fatal("expected a tick notification")
	}

	// A full channel misses ticks rather than stalling the loop.
	ch <- 99
	loop.Step()
	assert.Equal(t, int64(99), <-ch)

	loop.Unsubscribe(ch)
	loop.Step()
	select {
	case got := <-ch:
		t.Fatalf("unexpected notification after unsubscribe: %d", got)
	default:
	}
}

// TestStop_Idempotent verifies Stop can be called repeatedly.
func TestStop_Idempotent(t *testing.T) {
	loop, _, _ := newLoop(t, &listSource{})
	require.NotPanics(t, func() {
		loop.Stop()
		loop.Stop()
	})
}
