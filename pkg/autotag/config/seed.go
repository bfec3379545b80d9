package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is a batch of listings to import
type Seed struct {
	Cuisines []SeedCuisine `yaml:"cuisines"`
}

// SeedCuisine is one listing in a seed file. Attributes are never read from
// the file; they are always inferred from the description.
type SeedCuisine struct {
	UserID      string `yaml:"user_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Latitude    string `yaml:"latitude"`
	Longitude   string `yaml:"longitude"`
}

// LoadSeed loads seed listings from a YAML file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, err
	}

	for i, c := range seed.Cuisines {
		if c.UserID == "" || c.Name == "" || c.Description == "" {
			return nil, fmt.Errorf("seed entry %d: user_id, name and description are required", i)
		}
	}
	return &seed, nil
}
