package world

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpawnDef places NPCs from a template into a room, with respawn timing.
type SpawnDef struct {
	TemplateID string `yaml:"template_id"`
	// Count is how many instances spawn initially; defaults to 1.
	Count int `yaml:"count"`
	// MinRespawnTicks and MaxRespawnTicks bound the uniform random respawn
	// delay after each instance dies.
	MinRespawnTicks int64 `yaml:"min_respawn_ticks"`
	MaxRespawnTicks int64 `yaml:"max_respawn_ticks"`
}

// RoomDef is the YAML shape of one room within a zone.
type RoomDef struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Spawns []SpawnDef `yaml:"spawns"`
}

// Zone is one named group of rooms loaded from a zone file.
type Zone struct {
	ID    string    `yaml:"id"`
	Name  string    `yaml:"name"`
	Rooms []RoomDef `yaml:"rooms"`
}

// Validate checks the zone's invariants.
//
// Postcondition: Returns nil iff IDs are non-empty and unique within the
// zone and every spawn has a template and sane respawn bounds.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone: id must not be empty")
	}
	if len(z.Rooms) == 0 {
		return fmt.Errorf("zone %q: must declare at least one room", z.ID)
	}
	seen := make(map[string]struct{})
	for _, rd := range z.Rooms {
		if rd.ID == "" {
			return fmt.Errorf("zone %q: room id must not be empty", z.ID)
		}
		if _, dup := seen[rd.ID]; dup {
			return fmt.Errorf("zone %q: duplicate room id %q", z.ID, rd.ID)
		}
		seen[rd.ID] = struct{}{}
		for _, sp := range rd.Spawns {
			if sp.TemplateID == "" {
				return fmt.Errorf("zone %q room %q: spawn template_id must not be empty", z.ID, rd.ID)
			}
			if sp.MinRespawnTicks < 0 || sp.MaxRespawnTicks < sp.MinRespawnTicks {
				return fmt.Errorf("zone %q room %q: respawn bounds must satisfy 0 <= min <= max", z.ID, rd.ID)
			}
		}
	}
	return nil
}

// LoadZones reads every *.yaml file in dir as one zone each.
//
// Postcondition: Returns the zones in file-name order, or an error naming
// the first file that fails to parse or validate.
func LoadZones(dir string) ([]*Zone, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading zone dir %q: %w", dir, err)
	}
	var zones []*Zone
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var z Zone
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&z); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		zones = append(zones, &z)
	}
	return zones, nil
}

// Build registers every room of z with the manager.
func (z *Zone) Build(m *Manager) {
	for _, rd := range z.Rooms {
		m.AddRoom(rd.ID, rd.Name)
	}
}
