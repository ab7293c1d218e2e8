// Package config loads tool configuration from the project root. The
// primary format is KDL (.classkit.kdl); a TOML file (classkit.toml) is
// accepted as a fallback for projects that already standardize on TOML.
// Absent both, defaults apply.
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the resolved tool configuration.
type Config struct {
	Project   Project   `toml:"project"`
	Workspace Workspace `toml:"workspace"`
	Scan      Scan      `toml:"scan"`
	Watch     Watch     `toml:"watch"`
	Symbols   Symbols   `toml:"symbols"`
}

// Project identifies the code base being operated on.
type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Workspace controls file enumeration.
type Workspace struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Scan bounds workspace-wide scans.
type Scan struct {
	// BudgetMs caps a cross-file discovery scan; 0 means no budget.
	BudgetMs    int `toml:"budget_ms"`
	MaxParallel int `toml:"max_parallel"`
}

// Watch controls the background index watcher.
type Watch struct {
	Enabled    bool `toml:"enabled"`
	DebounceMs int  `toml:"debounce_ms"`
}

// Symbols selects the structural symbol provider. "treesitter" enables the
// parser-backed provider; "none" forces the textual fallback everywhere.
type Symbols struct {
	Provider string `toml:"provider"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Scan: Scan{
			BudgetMs:    2000,
			MaxParallel: 0, // 0 = NumCPU
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: 200,
		},
		Symbols: Symbols{
			Provider: "treesitter",
		},
	}
}

// Load resolves configuration for projectRoot: .classkit.kdl first,
// classkit.toml second, defaults last. The returned config always has an
// absolute project root.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg, err = LoadTOML(projectRoot)
		if err != nil {
			return nil, err
		}
	}
	if cfg == nil {
		cfg = Default()
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(projectRoot, cfg.Project.Root)
	}
	if abs, absErr := filepath.Abs(cfg.Project.Root); absErr == nil {
		cfg.Project.Root = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the tool cannot honor.
func (c *Config) Validate() error {
	if c.Scan.BudgetMs < 0 {
		return fmt.Errorf("scan.budget_ms must be >= 0, got %d", c.Scan.BudgetMs)
	}
	if c.Scan.MaxParallel < 0 {
		return fmt.Errorf("scan.max_parallel must be >= 0, got %d", c.Scan.MaxParallel)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}
	switch c.Symbols.Provider {
	case "", "treesitter", "none":
	default:
		return fmt.Errorf("symbols.provider must be \"treesitter\" or \"none\", got %q", c.Symbols.Provider)
	}
	return nil
}
