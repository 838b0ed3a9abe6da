package cooldown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/cooldown"
	"github.com/mkarren/duskmud/internal/game/event"
)

func newLedger(t *testing.T) (*cooldown.Ledger, *event.Scheduler) {
	t.Helper()
	sched := event.NewScheduler(zap.NewNop())
	return cooldown.NewLedger(sched, zap.NewNop()), sched
}

// TestStart_HasUntilExpiry verifies Has is true strictly before the end
// tick and false at and after it.
func TestStart_HasUntilExpiry(t *testing.T) {
	l, sched := newLedger(t)
	a := actor.New("Brynn", actor.KindPlayer)

	sched.Run(10)
	l.Start(a, "shield bash", 5)

	require.True(t, l.Has(a, "shield bash", ""))
	sched.Run(14)
	assert.True(t, l.Has(a, "shield bash", ""), "still locked one tick before expiry")
	sched.Run(15)
	assert.False(t, l.Has(a, "shield bash", ""), "unlocked at the end tick")
	assert.Empty(t, l.Active(a), "expired cooldown removed from the list")
}

// TestHas_Wildcards verifies empty name/source match any cooldown.
func TestHas_Wildcards(t *testing.T) {
	l, _ := newLedger(t)
	a := actor.New("Brynn", actor.KindPlayer)
	b := actor.New("Other", actor.KindPlayer)

	l.Start(a, "rend", 5, cooldown.WithSource("warrior"))

	assert.True(t, l.Has(a, "", ""))
	assert.True(t, l.Has(a, "rend", ""))
	assert.True(t, l.Has(a, "", "warrior"))
	assert.True(t, l.Has(a, "rend", "warrior"))
	assert.False(t, l.Has(a, "rend", "mage"))
	assert.False(t, l.Has(a, "strike", ""))
	assert.False(t, l.Has(b, "", ""), "cooldowns are per actor")
}

// TestOnExpire_InvokedOnce verifies the completion callback fires exactly
// once, on natural expiry.
func TestOnExpire_InvokedOnce(t *testing.T) {
	l, sched := newLedger(t)
	a := actor.New("Brynn", actor.KindPlayer)

	fired := 0
	l.Start(a, "stealth", 3, cooldown.WithOnExpire(func() { fired++ }))

	sched.Run(2)
	assert.Equal(t, 0, fired)
	sched.Run(3)
	assert.Equal(t, 1, fired)
	sched.Run(10)
	assert.Equal(t, 1, fired, "expiry is idempotent")
}

// TestRemaining verifies the floor-at-zero countdown.
func TestRemaining(t *testing.T) {
	cd := &cooldown.Cooldown{StartTick: 10, EndTick: 15}
	assert.Equal(t, int64(5), cooldown.Remaining(cd, 10))
	assert.Equal(t, int64(1), cooldown.Remaining(cd, 14))
	assert.Equal(t, int64(0), cooldown.Remaining(cd, 15))
	assert.Equal(t, int64(0), cooldown.Remaining(cd, 99))
}

// TestRemaining_Monotone_Property verifies Remaining never increases as the
// current tick advances.
func TestRemaining_Monotone_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.Int64Range(0, 1000).Draw(rt, "start")
		duration := rapid.Int64Range(1, 500).Draw(rt, "duration")
		cd := &cooldown.Cooldown{StartTick: start, EndTick: start + duration}

		prev := cooldown.Remaining(cd, start)
		for tick := start; tick <= start+duration+5; tick++ {
			cur := cooldown.Remaining(cd, tick)
			assert.LessOrEqual(rt, cur, prev, "countdown is monotone")
			assert.GreaterOrEqual(rt, cur, int64(0))
			prev = cur
		}
		assert.Equal(rt, int64(0), cooldown.Remaining(cd, start+duration))
	})
}

// TestMultipleCooldowns verifies independent names on one actor expire
// independently.
func TestMultipleCooldowns(t *testing.T) {
	l, sched := newLedger(t)
	a := actor.New("Brynn", actor.KindPlayer)

	l.Start(a, "rend", 2)
	l.Start(a, "shield bash", 6)
	require.Len(t, l.Active(a), 2)

	sched.Run(2)
	assert.False(t, l.Has(a, "rend", ""))
	assert.True(t, l.Has(a, "shield bash", ""))
	require.Len(t, l.Active(a), 1)
}
