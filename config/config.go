// Package config loads the optional TOML configuration of the command line tool.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/d2s"
)

type (
	Config struct {
		Codec   CodecConfig   `toml:"codec"`
		Schema  SchemaConfig  `toml:"schema"`
		Logging LoggingConfig `toml:"log"`
	}

	CodecConfig struct {
		ExtendedStash bool `toml:"extended_stash"`
	}

	SchemaConfig struct {
		Path string `toml:"path"`
		// Prepopulate lists the file versions whose adjusted schemas are built at startup.
		Prepopulate []uint32 `toml:"prepopulate"`
	}

	LoggingConfig struct {
		Level  string `toml:"level"`
		Format string `toml:"format"` // "json" or "console"
	}
)

const (
	DefaultPath = "d2-savior.toml"
)

func Default() *Config {
	return &Config{
		Schema: SchemaConfig{
			Path:        "schema.yaml",
			Prepopulate: []uint32{0x60, 0x61, 0x62},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		err := errors.Wrapf(err, `config.Load error reading "%s"`, path)
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		err := errors.Wrapf(err, `config.Load error parsing "%s"`, path)
		return nil, err
	}
	return cfg, nil
}

func (c Config) ToD2SConfig() d2s.Config {
	return d2s.Config{
		ExtendedStash: c.Codec.ExtendedStash,
	}
}
