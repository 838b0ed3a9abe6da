package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarren/duskmud/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_Defaults verifies an empty file yields the documented defaults.
func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.Second, cfg.Sim.TickInterval)
	assert.Equal(t, 60, cfg.Sim.SkillChanceBase)
	assert.Equal(t, 90, cfg.Sim.SkillChanceCap)
	assert.Equal(t, 100, cfg.Sim.XPPerLevel)
	assert.Equal(t, 50, cfg.Sim.StealthDetectChance)
	assert.Equal(t, "content/skills", cfg.Content.SkillsDir)
}

// TestLoad_Overrides verifies file values win over defaults.
func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
sim:
  tick_interval: 250ms
  skill_chance_base: 40
  skill_chance_cap: 80
content:
  zones_dir: /srv/zones
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Sim.TickInterval)
	assert.Equal(t, 40, cfg.Sim.SkillChanceBase)
	assert.Equal(t, "/srv/zones", cfg.Content.ZonesDir)
}

// TestLoad_MissingFile verifies the read error surfaces.
func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

// TestValidate_AggregatesErrors verifies every violation is reported in one
// pass.
func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := config.Config{
		Logging: config.LoggingConfig{Level: "loud", Format: "xml"},
		Sim: config.SimConfig{
			TickInterval:        0,
			SkillChanceBase:     120,
			SkillChanceCap:      10,
			XPPerLevel:          -1,
			StealthDetectChance: 101,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "logging.level")
	assert.Contains(t, msg, "logging.format")
	assert.Contains(t, msg, "sim.tick_interval")
	assert.Contains(t, msg, "sim.skill_chance_base")
	assert.Contains(t, msg, "sim.skill_chance_cap")
	assert.Contains(t, msg, "sim.xp_per_level")
	assert.Contains(t, msg, "sim.stealth_detect_chance")
	assert.Contains(t, msg, "content.skills_dir")
}

// TestValidate_CapBelowBase verifies the chance-cap relation.
func TestValidate_CapBelowBase(t *testing.T) {
	cfg := config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Sim: config.SimConfig{
			TickInterval:        time.Second,
			SkillChanceBase:     70,
			SkillChanceCap:      60,
			XPPerLevel:          100,
			StealthDetectChance: 50,
		},
		Content: config.ContentConfig{SkillsDir: "s", NPCsDir: "n", ZonesDir: "z"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill_chance_cap")
}

// TestLoad_EnvOverride verifies DUSKMUD_-prefixed environment variables win
// over file values.
func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")
	t.Setenv("DUSKMUD_LOGGING_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
