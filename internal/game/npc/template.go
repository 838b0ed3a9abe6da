// Package npc loads NPC templates from YAML and spawns actors from them,
// including the respawn cycle driven by the scheduler.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/dice"
)

// Template is the YAML shape of one NPC definition. Every spawned instance
// starts from these values.
type Template struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	HP      int `yaml:"hp"`
	Mana    int `yaml:"mana"`
	Stamina int `yaml:"stamina"`

	HitMod     int     `yaml:"hit_mod"`
	DodgeDice  string  `yaml:"dodge_dice"`
	DodgeMod   int     `yaml:"dodge_mod"`
	CritChance int     `yaml:"crit_chance"`
	CritMult   float64 `yaml:"crit_mult"`
	DamageMod  int     `yaml:"damage_mod"`

	WeaponDice string `yaml:"weapon_dice"`
	WeaponType string `yaml:"weapon_type"`
	Attacks    int    `yaml:"attacks"`

	Resistances map[string]float64 `yaml:"resistances"`
	Reductions  map[string]int     `yaml:"reductions"`

	ClassLevels map[string]int `yaml:"class_levels"`

	Aggressive bool `yaml:"aggressive"`
	Undead     bool `yaml:"undead"`

	XPValue int      `yaml:"xp_value"`
	Items   []string `yaml:"items"`

	// dodge and weapon are the parsed dice expressions, filled by Validate.
	dodge  dice.Expression
	weapon dice.Expression
}

// Validate checks the template's invariants and parses its dice strings.
//
// Postcondition: Returns nil iff ID and Name are non-empty, HP is positive,
// percentages and counts are sane, and the dice expressions parse.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.HP <= 0 {
		return fmt.Errorf("npc template %q: hp must be > 0", t.ID)
	}
	if t.CritChance < 0 || t.CritChance > 100 {
		return fmt.Errorf("npc template %q: crit_chance must be in [0,100]", t.ID)
	}
	if t.XPValue < 0 {
		return fmt.Errorf("npc template %q: xp_value must be >= 0", t.ID)
	}
	if t.DodgeDice != "" {
		expr, err := dice.Parse(t.DodgeDice)
		if err != nil {
			return fmt.Errorf("npc template %q: dodge_dice: %w", t.ID, err)
		}
		t.dodge = expr
	}
	if t.WeaponDice != "" {
		expr, err := dice.Parse(t.WeaponDice)
		if err != nil {
			return fmt.Errorf("npc template %q: weapon_dice: %w", t.ID, err)
		}
		t.weapon = expr
	}
	for class, lv := range t.ClassLevels {
		if lv < 0 {
			return fmt.Errorf("npc template %q: class %q level must be >= 0", t.ID, class)
		}
	}
	return nil
}

// Build instantiates a fresh actor from the template.
//
// Precondition: t must have passed Validate.
// Postcondition: Returns a new Actor at full resources with its own UUID.
func (t *Template) Build() *actor.Actor {
	a := actor.New(t.Name, actor.KindNPC)
	a.HP, a.MaxHP = t.HP, t.HP
	a.Mana, a.MaxMana = t.Mana, t.Mana
	a.Stamina, a.MaxStamina = t.Stamina, t.Stamina
	a.HitMod = t.HitMod
	a.DodgeDice = t.dodge
	a.DodgeMod = t.DodgeMod
	a.CritChance = t.CritChance
	if t.CritMult > 0 {
		a.CritMult = t.CritMult
	}
	a.DamageMod = t.DamageMod
	a.WeaponDice = t.weapon
	a.WeaponType = actor.DamageType(t.WeaponType)
	a.Attacks = t.Attacks
	for dt, mult := range t.Resistances {
		a.Resistances[actor.DamageType(dt)] = mult
	}
	for dt, red := range t.Reductions {
		a.Reductions[actor.DamageType(dt)] = red
	}
	for class, lv := range t.ClassLevels {
		a.ClassLevels[class] = lv
	}
	if t.Aggressive {
		a.SetPermFlag(actor.FlagAggressive)
	}
	if t.Undead {
		a.SetPermFlag(actor.FlagUndead)
	}
	a.XPValue = t.XPValue
	a.Items = append([]string(nil), t.Items...)
	return a
}

// LoadTemplates reads every *.yaml file in dir; a file holds one template.
//
// Postcondition: Returns templates keyed by ID, or an error naming the
// first file that fails to parse or validate.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}
	templates := make(map[string]*Template)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var t Template
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		if _, dup := templates[t.ID]; dup {
			return nil, fmt.Errorf("npc template %q: duplicate id in %q", t.ID, path)
		}
		templates[t.ID] = &t
	}
	return templates, nil
}
