package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
	"github.com/mkarren/duskmud/internal/game/world"
)

type sentMsg struct {
	to   *actor.Actor
	kind string
	text string
}

type recordingOutput struct {
	sent []sentMsg
}

func (o *recordingOutput) Send(a *actor.Actor, kind, text string) {
	o.sent = append(o.sent, sentMsg{to: a, kind: kind, text: text})
}

func newManager(t *testing.T) (*world.Manager, *recordingOutput) {
	t.Helper()
	m := world.NewManager(zap.NewNop())
	out := &recordingOutput{}
	m.SetOutput(out)
	m.AddRoom("hall", "The Hall")
	m.AddRoom("yard", "The Yard")
	return m, out
}

// TestPlaceAndMove verifies occupancy tracking across room moves.
func TestPlaceAndMove(t *testing.T) {
	m, _ := newManager(t)
	a := actor.New("Brynn", actor.KindPlayer)

	m.Place(a, "hall")
	assert.Equal(t, "hall", a.RoomID)
	require.Len(t, m.OccupantsOf("hall"), 1)

	m.Place(a, "yard")
	assert.Empty(t, m.OccupantsOf("hall"), "moving removes from the old room")
	require.Len(t, m.OccupantsOf("yard"), 1)

	m.RemoveOccupant(a)
	assert.Empty(t, m.OccupantsOf("yard"))
}

// TestOccupantsOf_ArrivalOrder verifies the listing order.
func TestOccupantsOf_ArrivalOrder(t *testing.T) {
	m, _ := newManager(t)
	a := actor.New("Brynn", actor.KindPlayer)
	b := actor.New("Wren", actor.KindPlayer)
	m.Place(a, "hall")
	m.Place(b, "hall")

	occ := m.OccupantsOf("hall")
	require.Len(t, occ, 2)
	assert.Equal(t, a, occ[0])
	assert.Equal(t, b, occ[1])
}

// TestVisible verifies the hidden-flag and sleeping-viewer rules; stealth
// is deliberately visible here (combat rolls its own detection).
func TestVisible(t *testing.T) {
	m, _ := newManager(t)
	viewer := actor.New("Brynn", actor.KindPlayer)
	target := actor.New("Wren", actor.KindPlayer)

	assert.True(t, m.Visible(viewer, target))

	target.SetTempFlag(actor.FlagHidden)
	assert.False(t, m.Visible(viewer, target))
	assert.True(t, m.Visible(target, target), "actors always see themselves")
	target.ClearTempFlag(actor.FlagHidden)

	target.SetTempFlag(actor.FlagStealthed)
	assert.True(t, m.Visible(viewer, target), "stealth is resolved by the aggro check, not here")

	viewer.SetTempFlag(actor.FlagSleeping)
	assert.False(t, m.Visible(viewer, target))

	viewer.ClearTempFlag(actor.FlagSleeping)
	target.Deleted = true
	assert.False(t, m.Visible(viewer, target))
}

// TestFindCharacter verifies exact-over-prefix matching and visibility.
func TestFindCharacter(t *testing.T) {
	m, _ := newManager(t)
	viewer := actor.New("Brynn", actor.KindPlayer)
	wren := actor.New("Wren", actor.KindPlayer)
	wrenna := actor.New("Wrenna", actor.KindPlayer)
	m.Place(viewer, "hall")
	m.Place(wrenna, "hall")
	m.Place(wren, "hall")

	assert.Equal(t, wren, m.FindCharacter(viewer, "wren"), "exact beats earlier prefix")
	assert.Equal(t, wrenna, m.FindCharacter(viewer, "wrenn"))
	assert.Nil(t, m.FindCharacter(viewer, "hound"))
	assert.Nil(t, m.FindCharacter(viewer, ""))

	wren.SetTempFlag(actor.FlagHidden)
	assert.Equal(t, wrenna, m.FindCharacter(viewer, "wren"), "hidden actors are not found")
}

// TestFindObject verifies corpse and inventory lookup.
func TestFindObject(t *testing.T) {
	m, _ := newManager(t)
	viewer := actor.New("Brynn", actor.KindPlayer)
	viewer.Items = []string{"a rusty key"}
	m.Place(viewer, "hall")

	c := combat.Corpse{ID: "c-1", Name: "the corpse of a gravehound"}
	m.PlaceCorpse("hall", c)

	id, ok := m.FindObject(viewer, "gravehound")
	require.True(t, ok)
	assert.Equal(t, "c-1", id)

	id, ok = m.FindObject(viewer, "rusty")
	require.True(t, ok)
	assert.Equal(t, "a rusty key", id)

	_, ok = m.FindObject(viewer, "altar")
	assert.False(t, ok)
}

// TestCorpseLifecycle verifies placement and removal for looting.
func TestCorpseLifecycle(t *testing.T) {
	m, _ := newManager(t)
	c := combat.Corpse{ID: "c-1", Name: "the corpse of a gravehound", Items: []string{"a bone"}}
	m.PlaceCorpse("hall", c)
	require.Len(t, m.Room("hall").Corpses(), 1)

	got, ok := m.RemoveCorpse("hall", "c-1")
	require.True(t, ok)
	assert.Equal(t, []string{"a bone"}, got.Items)
	assert.Empty(t, m.Room("hall").Corpses())

	_, ok = m.RemoveCorpse("hall", "c-1")
	assert.False(t, ok)
}

// TestEcho_ExceptionsAndDedup verifies recipients: the target plus its
// room, minus exceptions, each at most once.
func TestEcho_ExceptionsAndDedup(t *testing.T) {
	m, out := newManager(t)
	a := actor.New("Brynn", actor.KindPlayer)
	b := actor.New("Wren", actor.KindPlayer)
	c := actor.New("Tam", actor.KindPlayer)
	m.Place(a, "hall")
	m.Place(b, "hall")
	m.Place(c, "hall")

	m.Echo(a, "combat", "$actor swings at $target.", map[string]string{"actor": "Brynn", "target": "Wren"}, b)

	require.Len(t, out.sent, 2, "target once, room minus exception once")
	assert.Equal(t, a, out.sent[0].to)
	assert.Equal(t, c, out.sent[1].to)
	assert.Equal(t, "Brynn swings at Wren.", out.sent[0].text)
}

// TestEcho_NoOutputIsSafe verifies echoes without a sink are dropped.
func TestEcho_NoOutputIsSafe(t *testing.T) {
	m := world.NewManager(zap.NewNop())
	m.AddRoom("hall", "The Hall")
	a := actor.New("Brynn", actor.KindPlayer)
	m.Place(a, "hall")
	assert.NotPanics(t, func() {
		m.Echo(a, "combat", "hello", nil)
	})
}

// TestRender verifies longest-key-first substitution.
func TestRender(t *testing.T) {
	got := world.Render("$actor ($actor_id) hits $target for $amount.", map[string]string{
		"actor":    "Brynn",
		"actor_id": "42",
		"target":   "Wren",
		"amount":   "12",
	})
	assert.Equal(t, "Brynn (42) hits Wren for 12.", got)
}

// TestAllActors_StableOrder verifies rooms sort by ID and occupants keep
// arrival order.
func TestAllActors_StableOrder(t *testing.T) {
	m, _ := newManager(t)
	a := actor.New("Brynn", actor.KindPlayer)
	b := actor.New("Wren", actor.KindPlayer)
	c := actor.New("Tam", actor.KindPlayer)
	m.Place(a, "yard")
	m.Place(b, "hall")
	m.Place(c, "hall")

	all := m.AllActors()
	require.Len(t, all, 3)
	assert.Equal(t, []*actor.Actor{b, c, a}, all, "hall before yard")
}
