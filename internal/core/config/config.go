package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"codemap/internal/core/errors"
)

type Config struct {
	Root          string        `toml:"root"`
	Exclude       Exclude       `toml:"exclude"`
	Dependencies  Dependencies  `toml:"dependencies"`
	Watch         Watch         `toml:"watch"`
	Store         Store         `toml:"store"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Dependencies controls lockfile-driven discovery of external dependency
// sources.
type Dependencies struct {
	Include   bool   `toml:"include"`
	FileCap   int    `toml:"file_cap"`
	CargoHome string `toml:"cargo_home"` // defaults to ~/.cargo
}

type Watch struct {
	Debounce       time.Duration `toml:"debounce"`
	ReloadCooldown time.Duration `toml:"reload_cooldown"`
}

// Store configures the optional SQLite definition mirror.
type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Project string `toml:"project"`
}

type Observability struct {
	Addr         string `toml:"addr"`          // /metrics + /health listen address; empty disables
	OTLPEndpoint string `toml:"otlp_endpoint"` // trace exporter endpoint; empty disables
}

// Load reads a TOML config file, applies defaults and validates. A missing
// file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if _, derr := toml.Decode(string(data), cfg); derr != nil {
				return nil, errors.Wrap(derr, errors.CodeValidationError, "decode config")
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = "."
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "target", "node_modules", "dist", "build", "data", ".idea", ".vscode"}
	}
	if cfg.Dependencies.FileCap == 0 {
		cfg.Dependencies.FileCap = 2000
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.ReloadCooldown <= 0 {
		cfg.Watch.ReloadCooldown = 200 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Store.Project) == "" {
		cfg.Store.Project = "default"
	}
	if cfg.Store.Enabled && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = "data/codemap.db"
	}
}

func validate(cfg *Config) error {
	if cfg.Dependencies.FileCap < 0 {
		return errors.New(errors.CodeValidationError, "dependencies.file_cap must not be negative")
	}
	return nil
}
