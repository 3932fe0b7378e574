// Package config holds the explicit configuration value passed into the
// sync engine. Values come from an optional .tidesync.toml in the synced
// directory, overridden by command-line flags. Nothing is read from the
// environment.
package config

import (
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// Defaults
const (
	DefaultBranch  = "main"
	DefaultMessage = "Sync changes"
)

// Config is the full set of knobs for one sync session
type Config struct {
	// RemoteURL is the public repository to sync with. Required.
	RemoteURL string `toml:"remote"`

	// Branch is the remote branch tracked by the snapshot
	Branch string `toml:"branch"`

	// Message is the commit message used for local changes
	Message string `toml:"message"`

	// CopyLinks stores symlinks in the snapshot as links instead of
	// following their targets
	CopyLinks bool `toml:"copy_links"`

	// Compression selects the snapshot gzip level: fast, default or max
	Compression string `toml:"compression"`

	// NoGC skips the repack of git metadata before re-snapshotting
	NoGC bool `toml:"no_gc"`
}

// New returns a Config populated with defaults
func New() Config {
	return Config{
		Branch:      DefaultBranch,
		Message:     DefaultMessage,
		Compression: "default",
	}
}

// Load reads the optional config file at path and merges it over the
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	log := logging.GetLogger("config")
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No config file, using defaults")
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	if cfg.Compression == "" {
		cfg.Compression = "default"
	}

	log.Debug().Str("path", path).Str("remote", cfg.RemoteURL).Msg("Config file loaded")
	return cfg, nil
}

// Validate checks that the config is complete enough to run a session
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RemoteURL) == "" {
		return errors.New(errors.ErrConfigValid, "remote repository URL is required (--remote or .tidesync.toml)")
	}
	if strings.TrimSpace(c.Branch) == "" {
		return errors.New(errors.ErrConfigValid, "branch must not be empty")
	}
	switch c.Compression {
	case "fast", "default", "max":
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid compression level %q (must be fast, default or max)", c.Compression)
	}
	return nil
}
