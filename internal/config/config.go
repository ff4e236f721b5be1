// Package config decodes the warband settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suderio/warband/internal/rules"
)

// Rules tunes the battle mechanics.
type Rules struct {
	InitiativeRange int    `mapstructure:"initiative_range"`
	AttackRange     int    `mapstructure:"attack_range"`
	AnimationTicks  int    `mapstructure:"animation_ticks"`
	AIPriority      string `mapstructure:"ai_priority"`
}

// Log selects the logger built by NewLogger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Config struct {
	Rules      Rules    `mapstructure:"rules"`
	DataDirs   []string `mapstructure:"data_dirs"`
	BattlesDir string   `mapstructure:"battles_dir"`
	Seed       uint64   `mapstructure:"seed"`
	Log        Log      `mapstructure:"log"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("rules.initiative_range", 10)
	v.SetDefault("rules.attack_range", 5)
	v.SetDefault("rules.animation_ticks", 3)
	v.SetDefault("rules.ai_priority", rules.DefaultPriority)
	v.SetDefault("data_dirs", []string{})
	v.SetDefault("battles_dir", defaultBattlesDir())
	v.SetDefault("seed", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

func defaultBattlesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "battles"
	}
	return filepath.Join(home, ".warband", "battles")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Rules.InitiativeRange < 0 {
		return fmt.Errorf("rules.initiative_range must not be negative")
	}
	if c.Rules.AttackRange < 0 {
		return fmt.Errorf("rules.attack_range must not be negative")
	}
	if c.Rules.AnimationTicks < 0 {
		return fmt.Errorf("rules.animation_ticks must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the logger described by the log settings. Output goes to
// stderr unless a file is configured.
func NewLogger(l Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	out := "stderr"
	if l.File != "" {
		out = l.File
	}
	encoder := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	if l.Format == "console" {
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if l.File != "" {
			encoder.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         strings.ToLower(l.Format),
		EncoderConfig:    encoder,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
