// Package config loads settings for the slogger demo program.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/mordilloSan/slogger/logger"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "SLOGGER_LEVEL"

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the demo configuration. Pointer fields distinguish "unset" from
// an explicit false.
type Config struct {
	Level        string `yaml:"level" json:"level"`
	Timestamps   bool   `yaml:"timestamps" json:"timestamps"`
	AutoTruncate *bool  `yaml:"autoTruncate" json:"autoTruncate"`
	Structured   bool   `yaml:"structured" json:"structured"`
	Colorize     *bool  `yaml:"colorize" json:"colorize"`
	// UI runs the terminal panel.
	UI bool `yaml:"ui" json:"ui"`
	// HTTP is the listen address of the panel router; empty disables it.
	HTTP string `yaml:"http" json:"http"`
	// ExportDir receives exports made from the terminal panel.
	ExportDir string `yaml:"exportDir" json:"exportDir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Level: logger.AllLevel.String()}
}

// Load reads path, picking the parser from its extension, and applies
// environment overrides. An empty path yields Default with overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if _, ok := logger.ParseLevel(cfg.Level); !ok {
		return Config{}, errors.Errorf("config %s: unknown level %q", path, cfg.Level)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(err, "parse yaml config %s", path)
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(err, "parse json config %s", path)
		}
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(LevelEnv)); v != "" {
		c.Level = v
	}
}

// Logger converts the file settings into a logger.Config. Colour falls back
// to fallbackColor when the file does not say.
func (c Config) Logger(fallbackColor bool) logger.Config {
	colorize := fallbackColor
	if c.Colorize != nil {
		colorize = *c.Colorize
	}
	return logger.Config{
		Level:           c.Level,
		Timestamps:      c.Timestamps,
		DisableTruncate: c.AutoTruncate != nil && !*c.AutoTruncate,
		Structured:      c.Structured,
		Colorize:        colorize,
	}
}
