// Package world holds the thin room model the simulation core needs: room
// membership, corpse placement, visibility, name lookup, and message echo
// to room listeners.
package world

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/combat"
)

// Output is the delivery sink for rendered messages. The network transport
// implements it in production; tests record calls.
type Output interface {
	Send(a *actor.Actor, kind, text string)
}

// Room is one location: its occupants in arrival order and any corpses.
type Room struct {
	ID   string
	Name string

	occupants []*actor.Actor
	corpses   []combat.Corpse
}

// Occupants returns a snapshot of the room's occupants in arrival order.
func (r *Room) Occupants() []*actor.Actor {
	out := make([]*actor.Actor, len(r.occupants))
	copy(out, r.occupants)
	return out
}

// Corpses returns a snapshot of the room's corpses, oldest first.
func (r *Room) Corpses() []combat.Corpse {
	out := make([]combat.Corpse, len(r.corpses))
	copy(out, r.corpses)
	return out
}

// Manager owns every room and implements the collaborator surfaces the
// engines consume: occupant lookup and corpse placement for combat, target
// lookup for skill invocation, and message echo.
//
// Like the rest of the core it is mutated only from the tick loop.
type Manager struct {
	logger *zap.Logger
	rooms  map[string]*Room
	out    Output // may be nil; echoes are then dropped
}

// NewManager creates a Manager with no rooms.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger,
		rooms:  make(map[string]*Room),
	}
}

// SetOutput wires the delivery sink for echoes.
func (m *Manager) SetOutput(out Output) { m.out = out }

// AddRoom registers a room, replacing any previous room with the same ID.
func (m *Manager) AddRoom(id, name string) *Room {
	r := &Room{ID: id, Name: name}
	m.rooms[id] = r
	return r
}

// Room returns the room with the given ID, or nil.
func (m *Manager) Room(id string) *Room { return m.rooms[id] }

// Place puts a into the room with the given ID, removing it from its
// previous room first.
//
// Precondition: the room must exist.
func (m *Manager) Place(a *actor.Actor, roomID string) {
	m.RemoveOccupant(a)
	r := m.rooms[roomID]
	if r == nil {
		m.logger.Warn("placing actor into unknown room",
			zap.String("actor", a.Name),
			zap.String("room", roomID),
		)
		return
	}
	r.occupants = append(r.occupants, a)
	a.RoomID = roomID
}

// RemoveOccupant takes a out of its current room. A no-op when a is not in
// a known room.
func (m *Manager) RemoveOccupant(a *actor.Actor) {
	r := m.rooms[a.RoomID]
	if r == nil {
		return
	}
	for i, occ := range r.occupants {
		if occ == a {
			r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
			return
		}
	}
}

// OccupantsOf returns the actors in a room, in arrival order.
func (m *Manager) OccupantsOf(roomID string) []*actor.Actor {
	r := m.rooms[roomID]
	if r == nil {
		return nil
	}
	return r.Occupants()
}

// Visible reports whether viewer can currently see target. Hidden actors
// are invisible to everyone but themselves; sleeping viewers see nothing.
// Stealth is deliberately not checked here — the combat aggro path rolls
// its own detection check against stealthed occupants.
func (m *Manager) Visible(viewer, target *actor.Actor) bool {
	if target.Deleted {
		return false
	}
	if viewer == target {
		return true
	}
	if viewer.HasFlag(actor.FlagSleeping) {
		return false
	}
	return !target.HasFlag(actor.FlagHidden)
}

// PlaceCorpse adds a corpse to a room. Corpses in unknown rooms are dropped
// with a warning.
func (m *Manager) PlaceCorpse(roomID string, c combat.Corpse) {
	r := m.rooms[roomID]
	if r == nil {
		m.logger.Warn("corpse placed in unknown room",
			zap.String("room", roomID),
			zap.String("corpse", c.Name),
		)
		return
	}
	r.corpses = append(r.corpses, c)
}

// RemoveCorpse deletes a corpse by ID, returning it for looting.
func (m *Manager) RemoveCorpse(roomID, corpseID string) (combat.Corpse, bool) {
	r := m.rooms[roomID]
	if r == nil {
		return combat.Corpse{}, false
	}
	for i, c := range r.corpses {
		if c.ID == corpseID {
			r.corpses = append(r.corpses[:i], r.corpses[i+1:]...)
			return c, true
		}
	}
	return combat.Corpse{}, false
}

// AllActors returns every occupant of every room. Order is stable across
// calls: rooms sorted by ID, occupants in arrival order.
func (m *Manager) AllActors() []*actor.Actor {
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*actor.Actor
	for _, id := range ids {
		out = append(out, m.rooms[id].occupants...)
	}
	return out
}

// FindCharacter resolves a character by name prefix in viewer's room,
// honoring visibility. Exact matches win over prefix matches; among equal
// matches, arrival order wins.
func (m *Manager) FindCharacter(viewer *actor.Actor, name string) *actor.Actor {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		return nil
	}
	var prefix *actor.Actor
	for _, occ := range m.OccupantsOf(viewer.RoomID) {
		if !m.Visible(viewer, occ) {
			continue
		}
		occName := strings.ToLower(occ.Name)
		if occName == norm {
			return occ
		}
		if prefix == nil && strings.HasPrefix(occName, norm) {
			prefix = occ
		}
	}
	return prefix
}

// FindObject resolves an object by name prefix in viewer's room: corpses
// first, then viewer's own inventory. Returns the object's ID.
func (m *Manager) FindObject(viewer *actor.Actor, name string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if norm == "" {
		return "", false
	}
	if r := m.rooms[viewer.RoomID]; r != nil {
		for _, c := range r.corpses {
			if strings.Contains(strings.ToLower(c.Name), norm) {
				return c.ID, true
			}
		}
	}
	for _, item := range viewer.Items {
		if strings.HasPrefix(strings.ToLower(item), norm) {
			return item, true
		}
	}
	return "", false
}

// Echo renders text with vars and delivers it to target and every occupant
// of target's room, excluding any exceptions. Each recipient gets the
// message once even when it is both the target and an occupant.
func (m *Manager) Echo(target *actor.Actor, kind, text string, vars map[string]string, exceptions ...*actor.Actor) {
	if m.out == nil {
		return
	}
	rendered := Render(text, vars)
	seen := make(map[string]struct{})
	deliver := func(a *actor.Actor) {
		if a == nil || a.Deleted {
			return
		}
		for _, ex := range exceptions {
			if a == ex {
				return
			}
		}
		if _, dup := seen[a.ID]; dup {
			return
		}
		seen[a.ID] = struct{}{}
		m.out.Send(a, kind, rendered)
	}
	deliver(target)
	if target != nil {
		for _, occ := range m.OccupantsOf(target.RoomID) {
			deliver(occ)
		}
	}
}

// Render substitutes $key placeholders in text from vars. Longer keys are
// substituted first so $actor_id never collides with $actor.
func Render(text string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "$"+k, vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
