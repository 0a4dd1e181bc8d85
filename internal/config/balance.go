package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rust-rush/server/internal/world"
)

// LoadBalance reads a YAML stat-table file and merges it over the built-in
// defaults. Entries are keyed by class, so a partial file replaces whole
// rows; classes the file never mentions keep their default stats.
func LoadBalance(path string) (world.Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return world.Balance{}, fmt.Errorf("config: read balance file: %w", err)
	}

	var overlay world.Balance
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return world.Balance{}, fmt.Errorf("config: parse balance file %s: %w", path, err)
	}

	merged := world.DefaultBalance()
	for class, stats := range overlay.Defenders {
		if _, err := world.ParseDefenderClass(string(class)); err != nil {
			return world.Balance{}, fmt.Errorf("config: balance file %s: %w", path, err)
		}
		merged.Defenders[class] = stats
	}
	for class, stats := range overlay.Hostiles {
		if _, err := world.ParseHostileClass(string(class)); err != nil {
			return world.Balance{}, fmt.Errorf("config: balance file %s: %w", path, err)
		}
		merged.Hostiles[class] = stats
	}

	if err := merged.Validate(); err != nil {
		return world.Balance{}, fmt.Errorf("config: balance file %s: %w", path, err)
	}
	return merged, nil
}
