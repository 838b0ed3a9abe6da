// Package config provides Viper-based configuration loading for the
// Duskmud simulation server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimConfig holds simulation tuning knobs.
type SimConfig struct {
	// TickInterval is the wall-clock duration of one simulation tick.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// SkillChanceBase is the base percent chance an NPC uses a skill each turn.
	SkillChanceBase int `mapstructure:"skill_chance_base"`
	// SkillChanceCap is the upper bound on the per-turn skill-use chance.
	SkillChanceCap int `mapstructure:"skill_chance_cap"`
	// XPPerLevel is the experience award per total level of a slain NPC.
	XPPerLevel int `mapstructure:"xp_per_level"`
	// StealthDetectChance is the percent chance an aggro scan sees through stealth.
	StealthDetectChance int `mapstructure:"stealth_detect_chance"`
}

// ContentConfig holds the directories game content is loaded from.
type ContentConfig struct {
	// SkillsDir is the directory of skill catalog YAML files.
	SkillsDir string `mapstructure:"skills_dir"`
	// NPCsDir is the directory of NPC template YAML files.
	NPCsDir string `mapstructure:"npcs_dir"`
	// ZonesDir is the directory of zone YAML files.
	ZonesDir string `mapstructure:"zones_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Sim     SimConfig     `mapstructure:"sim"`
	Content ContentConfig `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("sim.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.SkillChanceBase < 0 || s.SkillChanceBase > 100 {
		errs = append(errs, fmt.Sprintf("sim.skill_chance_base must be 0-100, got %d", s.SkillChanceBase))
	}
	if s.SkillChanceCap < s.SkillChanceBase || s.SkillChanceCap > 100 {
		errs = append(errs, fmt.Sprintf("sim.skill_chance_cap must be in [skill_chance_base, 100], got %d", s.SkillChanceCap))
	}
	if s.XPPerLevel < 0 {
		errs = append(errs, fmt.Sprintf("sim.xp_per_level must be >= 0, got %d", s.XPPerLevel))
	}
	if s.StealthDetectChance < 0 || s.StealthDetectChance > 100 {
		errs = append(errs, fmt.Sprintf("sim.stealth_detect_chance must be 0-100, got %d", s.StealthDetectChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.SkillsDir == "" {
		errs = append(errs, "content.skills_dir must not be empty")
	}
	if c.NPCsDir == "" {
		errs = append(errs, "content.npcs_dir must not be empty")
	}
	if c.ZonesDir == "" {
		errs = append(errs, "content.zones_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUSKMUD_ prefix
	v.SetEnvPrefix("DUSKMUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("sim.tick_interval", "1s")
	v.SetDefault("sim.skill_chance_base", 60)
	v.SetDefault("sim.skill_chance_cap", 90)
	v.SetDefault("sim.xp_per_level", 100)
	v.SetDefault("sim.stealth_detect_chance", 50)

	v.SetDefault("content.skills_dir", "content/skills")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.zones_dir", "content/zones")
}
