package game

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/skirmish/internal/combat"
	"github.com/samdwyer/skirmish/internal/world"
)

// Environment variables that override the config file.
const (
	EnvConfigPath      = "SKIRMISH_CONFIG"
	EnvSeed            = "SKIRMISH_SEED"
	EnvTurnDelay       = "SKIRMISH_TURN_DELAY"
	EnvMessageDuration = "SKIRMISH_MESSAGE_DURATION"
	EnvZones           = "SKIRMISH_ZONES"
	EnvLogPath         = "SKIRMISH_LOG"
)

// Config holds game configuration options.
type Config struct {
	// Seed for random number generation (field layout, encounters, enemy AI).
	// A seed of 0 means a random seed will be generated.
	Seed int64 `yaml:"seed"`

	// TurnDelay is the pause after every resolved action.
	TurnDelay time.Duration `yaml:"turn_delay"`

	// MessageDuration is how long a battle banner stays on screen.
	MessageDuration time.Duration `yaml:"message_duration"`

	EncounterZones int `yaml:"encounter_zones"`
	FieldWidth     int `yaml:"field_width"`
	FieldHeight    int `yaml:"field_height"`

	// LogPath is the combat log file. Empty disables logging.
	LogPath string `yaml:"log_path"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		TurnDelay:       combat.DefaultDelay,
		MessageDuration: 2 * time.Second,
		EncounterZones:  world.DefaultZoneCount,
		FieldWidth:      world.DefaultWidth,
		FieldHeight:     world.DefaultHeight,
		LogPath:         "battle.log",
	}
}

// LoadConfig builds the configuration: defaults, then the YAML file named by
// SKIRMISH_CONFIG (if set), then individual environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := getenv(EnvTurnDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTurnDelay, err)
		}
		c.TurnDelay = d
	}
	if v := getenv(EnvMessageDuration); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMessageDuration, err)
		}
		c.MessageDuration = d
	}
	if v := getenv(EnvZones); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvZones, err)
		}
		c.EncounterZones = n
	}
	if v, ok := lookup(getenv, EnvLogPath); ok {
		c.LogPath = v
	}
	return nil
}

// lookup treats the literal value "-" as an explicit empty setting.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if v == "-" {
		return "", true
	}
	return v, true
}

func (c Config) validate() error {
	if c.TurnDelay <= 0 {
		return fmt.Errorf("turn delay must be positive, got %v", c.TurnDelay)
	}
	if c.MessageDuration <= 0 {
		return fmt.Errorf("message duration must be positive, got %v", c.MessageDuration)
	}
	if c.EncounterZones < 0 {
		return fmt.Errorf("encounter zones must not be negative, got %d", c.EncounterZones)
	}
	if c.FieldWidth < 10 || c.FieldHeight < 10 {
		return fmt.Errorf("field must be at least 10x10, got %dx%d", c.FieldWidth, c.FieldHeight)
	}
	return nil
}
