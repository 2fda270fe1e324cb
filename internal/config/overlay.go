// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ExclusionsFile is an operator-maintained overlay so exclusion lists can be
// managed in a separate file (and synced between machines) without touching
// the main config.
type ExclusionsFile struct {
	Exclusions struct {
		Domains []string `yaml:"domains"`
		Names   []string `yaml:"names"`
		Phones  []string `yaml:"phones"`
	} `yaml:"exclusions"`
}

func OverlayExclusions(cfg *Config, exclusionsPath string) error {
	b, err := os.ReadFile(exclusionsPath)
	if err != nil {
		// Missing overlay file should not kill startup
		return nil
	}

	var ef ExclusionsFile
	if err := yaml.Unmarshal(b, &ef); err != nil {
		return err
	}

	cfg.Exclusions.Domains = append(cfg.Exclusions.Domains, ef.Exclusions.Domains...)
	cfg.Exclusions.Names = append(cfg.Exclusions.Names, ef.Exclusions.Names...)
	cfg.Exclusions.Phones = append(cfg.Exclusions.Phones, ef.Exclusions.Phones...)
	return nil
}
