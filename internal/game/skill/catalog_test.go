package skill_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarren/duskmud/internal/game/actor"
	"github.com/mkarren/duskmud/internal/game/skill"
)

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// TestLoadCatalog verifies loading a class file: defaults, condition
// parsing, and registration order.
func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "warrior.yaml", `
class: warrior
skills:
  - name: strike
    stamina_cost: 5
    cooldown_ticks: 2
    requires_target: true
    base_priority: 40
    category: damage
    resolver: strike
  - name: shield bash
    stamina_cost: 10
    condition:
      type: target_not_stunned
    base_priority: 35
    category: stun
    resolver: stun_strike
`)

	reg, err := skill.LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, reg.All(), 2)

	s, ok := reg.Get("strike")
	require.True(t, ok)
	assert.Equal(t, "warrior", s.Class)
	assert.Equal(t, 5, s.StaminaCost)
	assert.Equal(t, int64(2), s.CooldownTicks)
	assert.True(t, s.RequiresTarget)
	assert.Equal(t, skill.CondAlways, s.Condition.Type, "omitted condition defaults to always")
	assert.Nil(t, s.Resolve, "resolution functions are bound separately")

	bash, ok := reg.Get("shield bash")
	require.True(t, ok)
	assert.Equal(t, skill.CondTargetNotStunned, bash.Condition.Type)
}

// TestLoadCatalog_RejectsUnknownFields verifies strict YAML decoding.
func TestLoadCatalog_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "bad.yaml", `
class: warrior
skills:
  - name: strike
    category: damage
    damage_dice: 2d6
`)
	_, err := skill.LoadCatalog(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

// TestLoadCatalog_RejectsMissingClass verifies a catalog file must declare
// its class.
func TestLoadCatalog_RejectsMissingClass(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "bad.yaml", `
skills:
  - name: strike
    category: damage
`)
	_, err := skill.LoadCatalog(dir)
	require.Error(t, err)
}

// TestBindResolvers verifies factory binding and the unbound report.
func TestBindResolvers(t *testing.T) {
	reg := skill.NewRegistry()
	require.NoError(t, reg.Register("warrior",
		&skill.Skill{Name: "strike", Class: "warrior", Category: skill.CategoryDamage, ResolverID: "strike"},
		&skill.Skill{Name: "rend", Class: "warrior", Category: skill.CategoryDebuff, ResolverID: "missing"},
	))

	var boundFor *skill.Skill
	unbound := skill.BindResolvers(reg, map[string]skill.ResolverFactory{
		"strike": func(s *skill.Skill) skill.Resolver {
			boundFor = s
			return func(skill.GameState, *actor.Actor, *actor.Actor, string) bool { return true }
		},
	})

	assert.Equal(t, []string{"rend"}, unbound)
	require.NotNil(t, boundFor)
	assert.Equal(t, "strike", boundFor.Name)

	s, _ := reg.Get("strike")
	assert.NotNil(t, s.Resolve)
	r, _ := reg.Get("rend")
	assert.Nil(t, r.Resolve)
}
