package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML loads classkit.toml from projectRoot. A missing file is not an
// error: (nil, nil) tells the caller to fall back to defaults.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, "classkit.toml")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read classkit.toml: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("classkit.toml: %w", err)
	}
	return cfg, nil
}
