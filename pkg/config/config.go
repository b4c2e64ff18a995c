// Package config loads optional user defaults from a TOML file in the XDG
// config directory. Command-line flags always win over file values.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/linkdup/pkg/errors"
	"github.com/arthur-debert/linkdup/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the file looked up inside the config directory
const ConfigFileName = "config.toml"

// EnvConfigDir overrides the config directory, mainly for tests
const EnvConfigDir = "LINKDUP_CONFIG_DIR"

// CacheConfig toggles hash caching per tree
type CacheConfig struct {
	Enabled     bool `toml:"enabled"`
	Source      bool `toml:"source"`
	Destination bool `toml:"destination"`
}

// Config holds the user-tunable defaults
type Config struct {
	Algorithm      string      `toml:"algorithm"`
	FollowSymlinks bool        `toml:"follow_symlinks"`
	Cache          CacheConfig `toml:"cache"`
	Verbosity      int         `toml:"verbosity"`
}

// Default returns the built-in defaults: sha1 hashing, caching on for both
// trees, symlinks not followed.
func Default() Config {
	return Config{
		Algorithm: "sha1",
		Cache: CacheConfig{
			Enabled:     true,
			Source:      true,
			Destination: true,
		},
	}
}

// Dir returns the directory searched for the config file
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "linkdup")
}

// Load reads the config file if present, merged over Default. A missing
// file is not an error; a malformed one is.
func Load() (Config, error) {
	logger := logging.GetLogger("config")

	cfg := Default()
	path := filepath.Join(Dir(), ConfigFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("no config file, using defaults")
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %q", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse config file %q", path)
	}

	logger.Debug().Str("path", path).Msg("loaded config file")
	return cfg, nil
}
