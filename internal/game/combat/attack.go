package combat

import (
	"github.com/google/uuid"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/dice"
)

// DamageComponent is one typed damage roll within an attack. Multi-component
// attacks (a flaming sword, say) resolve each component through the target's
// resistance and reduction for that component's type independently.
type DamageComponent struct {
	Dice dice.Expression
	Type actor.DamageType
}

// Attack describes one swing: its verb for messaging, a flat bonus to the
// attacker's hit roll, and the damage components dealt on a hit.
type Attack struct {
	// Name is the verb used in hit and miss messages ("slash", "bite").
	Name string
	// HitBonus is added to the attacker's d100 hit roll.
	HitBonus int
	// Components is the typed damage dealt on a hit, in order.
	Components []DamageComponent
}

// unarmed is the fallback attack for actors with no usable weapon.
var unarmed = Attack{
	Name:       "punch",
	Components: []DamageComponent{{Dice: dice.Expression{Raw: "1d4", Count: 1, Sides: 4}, Type: actor.Bludgeoning}},
}

// WeaponAttack builds a's round attack from its equipped weapon. Disarmed
// actors and actors with no weapon fall back to an unarmed strike.
func WeaponAttack(a *actor.Actor) Attack {
	if a.HasFlag(actor.FlagDisarmed) || a.WeaponDice.Sides == 0 {
		return unarmed
	}
	dt := a.WeaponType
	if dt == "" {
		dt = actor.Slashing
	}
	return Attack{
		Name:       "attack",
		Components: []DamageComponent{{Dice: a.WeaponDice, Type: dt}},
	}
}

// Corpse is the lootable remains placed in the room on death. Corpses are
// inert objects, not actors; they never act or take damage.
type Corpse struct {
	ID   string
	Name string
	// Items is the inventory transferred from the dead actor.
	Items []string
}

// NewCorpse builds the corpse of a, transferring its inventory.
//
// Postcondition: the returned corpse holds the items a carried; the caller
// is responsible for clearing a.Items.
func NewCorpse(a *actor.Actor) Corpse {
	return Corpse{
		ID:    uuid.New().String(),
		Name:  "the corpse of " + a.Name,
		Items: a.Items,
	}
}
