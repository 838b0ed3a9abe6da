package combat

import "github.com/mkarren/duskmud/internal/game/actor"

// FightSet is the ordered set of actors currently engaged in combat. It
// iterates in engagement order so round processing is deterministic.
type FightSet struct {
	ordered []*actor.Actor
	members map[string]struct{}
}

// NewFightSet creates an empty FightSet.
func NewFightSet() *FightSet {
	return &FightSet{members: make(map[string]struct{})}
}

// Add inserts a at the end of the engagement order. Idempotent.
func (f *FightSet) Add(a *actor.Actor) {
	if _, ok := f.members[a.ID]; ok {
		return
	}
	f.members[a.ID] = struct{}{}
	f.ordered = append(f.ordered, a)
}

// Remove drops a from the set. Idempotent.
func (f *FightSet) Remove(a *actor.Actor) {
	if _, ok := f.members[a.ID]; !ok {
		return
	}
	delete(f.members, a.ID)
	for i, m := range f.ordered {
		if m == a {
			f.ordered = append(f.ordered[:i], f.ordered[i+1:]...)
			break
		}
	}
}

// Contains reports whether a is in the set.
func (f *FightSet) Contains(a *actor.Actor) bool {
	_, ok := f.members[a.ID]
	return ok
}

// Len returns the number of engaged actors.
func (f *FightSet) Len() int { return len(f.ordered) }

// All returns a snapshot of the set in engagement order. Safe to mutate
// the set while iterating the snapshot.
func (f *FightSet) All() []*actor.Actor {
	out := make([]*actor.Actor, len(f.ordered))
	copy(out, f.ordered)
	return out
}
