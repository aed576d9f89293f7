// Package runtimecfg loads the server's own bootstrap settings — socket
// path, logger-config path, metrics listen address, and the server's own
// diagnostic log priority/destination — from a TOML file, separate from
// the per-channel config grammar the logger subsystem itself parses.
// An optional YAML overlay directory lets an operator override specific
// fields per environment without touching the base file, in the style of
// the AleutianLocal config loader this is grounded on.
package runtimecfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	logger "github.com/opencoff/go-logger"
	"gopkg.in/yaml.v3"
)

// Config is the server's bootstrap configuration.
type Config struct {
	SocketPath    string `toml:"socket_path" yaml:"socket_path"`
	LoggerConfig  string `toml:"logger_config" yaml:"logger_config"`
	MetricsAddr   string `toml:"metrics_addr" yaml:"metrics_addr"`
	DispatchQueue int    `toml:"dispatch_queue" yaml:"dispatch_queue"`

	LogDest     string `toml:"log_destination" yaml:"log_destination"` // "stderr", "stdout", or a file path
	LogPriority string `toml:"log_priority" yaml:"log_priority"`       // lowercase level name, as accepted by Priority

	OverlayDir string `toml:"overlay_dir" yaml:"overlay_dir"`
}

// Default returns the built-in bootstrap defaults, used when no bootstrap
// file is present at all.
func Default() Config {
	return Config{
		SocketPath:    "/run/logsrvd/logsrvd.sock",
		LoggerConfig:  "/etc/logs.conf",
		MetricsAddr:   "127.0.0.1:9090",
		DispatchQueue: 64,
		LogDest:       "stderr",
		LogPriority:   "info",
	}
}

// Load reads the TOML bootstrap file at path, then applies the YAML
// overlays found under its OverlayDir, if the file sets one; there is no
// default overlay directory. If path
// doesn't exist, Load returns Default() with no error — the server runs
// on built-in defaults rather than refusing to start.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("runtimecfg: decoding %q: %w", path, err)
	}

	if cfg.OverlayDir != "" {
		if err := applyOverlays(cfg.OverlayDir, &cfg); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// applyOverlays merges every *.yaml file in dir onto cfg, in
// lexical filename order, each overlay winning over the one before it.
func applyOverlays(dir string, cfg *Config) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("runtimecfg: reading overlay dir %q: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("runtimecfg: reading overlay %q: %w", e.Name(), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("runtimecfg: parsing overlay %q: %w", e.Name(), err)
		}
	}
	return nil
}

// Priority maps LogPriority's textual form to a logger.Priority,
// defaulting to LOG_INFO for an empty or unrecognized value.
func (c Config) Priority() logger.Priority {
	switch c.LogPriority {
	case "debug":
		return logger.LOG_DEBUG
	case "info":
		return logger.LOG_INFO
	case "warning", "warn":
		return logger.LOG_WARN
	case "err", "error":
		return logger.LOG_ERR
	case "crit":
		return logger.LOG_CRIT
	case "emerg":
		return logger.LOG_EMERG
	default:
		return logger.LOG_INFO
	}
}
