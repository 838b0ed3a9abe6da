package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Def is the YAML shape of one skill definition.
type Def struct {
	Name           string    `yaml:"name"`
	ManaCost       int       `yaml:"mana_cost"`
	StaminaCost    int       `yaml:"stamina_cost"`
	CooldownTicks  int64     `yaml:"cooldown_ticks"`
	CastTicks      int64     `yaml:"cast_ticks"`
	RequiresTarget bool      `yaml:"requires_target"`
	Condition      Condition `yaml:"condition"`
	BasePriority   int       `yaml:"base_priority"`
	Category       Category  `yaml:"category"`
	Resolver       string    `yaml:"resolver"`
}

// classFile is the YAML shape of one catalog file: one class, many skills.
type classFile struct {
	Class  string `yaml:"class"`
	Skills []Def  `yaml:"skills"`
}

// LoadCatalog reads every *.yaml file in dir, each declaring one class and
// its skills, and returns a populated Registry. Resolution functions are
// bound afterwards via BindResolvers.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadCatalog(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skill dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := loadClassFile(reg, data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}

func loadClassFile(reg *Registry, data []byte) error {
	var f classFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if f.Class == "" {
		return fmt.Errorf("catalog file missing class")
	}
	skills := make([]*Skill, 0, len(f.Skills))
	for _, d := range f.Skills {
		cond := d.Condition
		if cond.Type == "" {
			cond.Type = CondAlways
		}
		skills = append(skills, &Skill{
			Name:           d.Name,
			Class:          f.Class,
			ManaCost:       d.ManaCost,
			StaminaCost:    d.StaminaCost,
			CooldownTicks:  d.CooldownTicks,
			CastTicks:      d.CastTicks,
			RequiresTarget: d.RequiresTarget,
			Condition:      cond,
			BasePriority:   d.BasePriority,
			Category:       d.Category,
			ResolverID:     d.Resolver,
		})
	}
	return reg.Register(f.Class, skills...)
}

// ResolverFactory builds the resolution function for one registered skill,
// letting the function capture the skill's costs and cooldown.
type ResolverFactory func(s *Skill) Resolver

// BindResolvers attaches resolution functions to registered skills by
// ResolverID. Skills whose ID is absent from the table keep a nil Resolve
// and are rejected by the AI's fail-closed gate.
//
// Postcondition: returns the names of skills left unbound.
func BindResolvers(reg *Registry, table map[string]ResolverFactory) []string {
	var unbound []string
	for _, s := range reg.All() {
		if factory, ok := table[s.ResolverID]; ok {
			s.Resolve = factory(s)
			continue
		}
		unbound = append(unbound, s.Name)
	}
	return unbound
}
