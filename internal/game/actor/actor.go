// Package actor defines the runtime model of a character: resources,
// combat numbers, flag sets, the fighting relation, and the command queue.
package actor

import (
	"math"

	"github.com/google/uuid"

	"github.com/mkarren/duskmud/internal/game/dice"
)

// Kind distinguishes player-controlled actors from NPCs.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// IsPlayer reports whether k is the player kind.
func (k Kind) IsPlayer() bool { return k == KindPlayer }

// DamageType classifies a damage component for resistance and reduction.
type DamageType string

const (
	Slashing    DamageType = "slashing"
	Piercing    DamageType = "piercing"
	Bludgeoning DamageType = "bludgeoning"
	Fire        DamageType = "fire"
	Frost       DamageType = "frost"
	Arcane      DamageType = "arcane"
	Holy        DamageType = "holy"
)

// Flag is a named boolean property of an actor. Permanent flags describe
// class and immutable traits; temporary flags are derived entirely from
// active status effects.
type Flag string

const (
	// Temporary flags, asserted and cleared by status effects.
	FlagSitting   Flag = "sitting"
	FlagSleeping  Flag = "sleeping"
	FlagStunned   Flag = "stunned"
	FlagFrozen    Flag = "frozen"
	FlagDisarmed  Flag = "disarmed"
	FlagStealthed Flag = "stealthed"
	FlagCharmed   Flag = "charmed"
	FlagHidden    Flag = "hidden"

	// Permanent flags.
	FlagAggressive Flag = "aggressive"
	FlagUndead     Flag = "undead"
)

// SpawnRef ties an NPC back to its spawn definition for respawning.
type SpawnRef struct {
	// TemplateID is the NPC template this actor was spawned from.
	TemplateID string
	// RoomID is the room the template respawns into.
	RoomID string
	// MinRespawnTicks and MaxRespawnTicks bound the random respawn delay.
	MinRespawnTicks int64
	MaxRespawnTicks int64
}

// Actor is one character in the simulation, player or NPC.
//
// Actors are mutated only from the single tick loop; no locking is applied.
type Actor struct {
	ID     string
	Name   string
	Kind   Kind
	RoomID string

	HP, MaxHP           int
	Mana, MaxMana       int
	Stamina, MaxStamina int

	// Combat numbers. Status effects adjust these additively and reverse
	// exactly their own delta on removal.
	HitMod     int
	DodgeDice  dice.Expression
	DodgeMod   int
	CritChance int     // percent chance in [0, 100]
	CritMult   float64 // damage multiplier on a critical hit
	DamageMod  int
	// HealMod is a percent delta on healing received (-50 = half healing).
	HealMod int

	Resistances map[DamageType]float64
	Reductions  map[DamageType]int

	// WeaponDice is the equipped main-hand weapon's damage expression; the
	// zero Expression means unarmed. WeaponType is its damage type.
	WeaponDice dice.Expression
	WeaponType DamageType
	// Attacks is the number of attacks per combat round; treated as 1
	// when less than 1.
	Attacks int

	// ClassLevels maps class name to levels held in that class.
	ClassLevels map[string]int

	// XPValue is the experience awarded for killing this actor (NPCs).
	XPValue int
	// XP is accumulated experience (players).
	XP int

	// Fighting is the one-directional combat relation: this actor is
	// attacking Fighting. A fighting B does not imply B fighting A.
	Fighting *Actor

	// ControlledBy is set while a charm effect is active.
	ControlledBy *Actor

	// Items is the carried inventory, moved to a corpse on death.
	Items []string

	// Spawn is the respawn reference for spawned NPCs; nil for players.
	Spawn *SpawnRef

	// Deleted marks the actor as removed from the simulation. Scheduled
	// events targeting a deleted actor are silently skipped.
	Deleted bool

	permFlags map[Flag]struct{}
	tempFlags map[Flag]struct{}
	commands  []string
}

// New creates an actor with a fresh UUID and empty flag sets.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a non-nil Actor with CritMult defaulted to 2.0.
func New(name string, kind Kind) *Actor {
	return &Actor{
		ID:          uuid.New().String(),
		Name:        name,
		Kind:        kind,
		CritMult:    2.0,
		Resistances: make(map[DamageType]float64),
		Reductions:  make(map[DamageType]int),
		ClassLevels: make(map[string]int),
		permFlags:   make(map[Flag]struct{}),
		tempFlags:   make(map[Flag]struct{}),
	}
}

// HPPercent returns current hit points as a rounded percentage of maximum.
//
// Postcondition: Returns 0 when MaxHP <= 0, otherwise round(HP/MaxHP*100).
func (a *Actor) HPPercent() int {
	if a.MaxHP <= 0 {
		return 0
	}
	return int(math.Round(float64(a.HP) / float64(a.MaxHP) * 100))
}

// TotalLevels returns the sum of levels across all classes.
func (a *Actor) TotalLevels() int {
	total := 0
	for _, lv := range a.ClassLevels {
		total += lv
	}
	return total
}

// SetPermFlag asserts a permanent flag.
func (a *Actor) SetPermFlag(f Flag) { a.permFlags[f] = struct{}{} }

// SetTempFlag asserts a temporary flag. Idempotent.
func (a *Actor) SetTempFlag(f Flag) { a.tempFlags[f] = struct{}{} }

// ClearTempFlag clears a temporary flag. Idempotent.
func (a *Actor) ClearTempFlag(f Flag) { delete(a.tempFlags, f) }

// HasFlag reports whether f is asserted, permanently or temporarily.
func (a *Actor) HasFlag(f Flag) bool {
	if _, ok := a.permFlags[f]; ok {
		return true
	}
	_, ok := a.tempFlags[f]
	return ok
}

// HasTempFlag reports whether f is asserted as a temporary flag.
func (a *Actor) HasTempFlag(f Flag) bool {
	_, ok := a.tempFlags[f]
	return ok
}

// Incapacitated reports whether the actor is sitting, sleeping, or stunned
// and therefore may not initiate aggro or act this turn.
func (a *Actor) Incapacitated() bool {
	return a.HasFlag(FlagSitting) || a.HasFlag(FlagSleeping) || a.HasFlag(FlagStunned)
}

// IsDead reports whether the actor has zero or fewer hit points.
func (a *Actor) IsDead() bool { return a.HP <= 0 }

// PushCommand appends a plain-text command for the dispatcher to consume
// on a later tick. Used to let NPCs re-enter standard action processing.
func (a *Actor) PushCommand(cmd string) {
	a.commands = append(a.commands, cmd)
}

// PopCommand removes and returns the oldest queued command.
//
// Postcondition: Returns ("", false) when the queue is empty.
func (a *Actor) PopCommand() (string, bool) {
	if len(a.commands) == 0 {
		return "", false
	}
	cmd := a.commands[0]
	a.commands = a.commands[1:]
	return cmd, true
}

// PendingCommands returns the number of queued commands.
func (a *Actor) PendingCommands() int { return len(a.commands) }

// MessageVars builds the substitution map handed to the messaging
// collaborator alongside a pre-built template. Rendering happens elsewhere.
//
// Postcondition: target keys are present only when target is non-nil.
func (a *Actor) MessageVars(target *Actor) map[string]string {
	vars := map[string]string{
		"actor":    a.Name,
		"actor_id": a.ID,
	}
	if target != nil {
		vars["target"] = target.Name
		vars["target_id"] = target.ID
	}
	return vars
}
