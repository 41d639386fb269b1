// Package config reads the TOML run configuration: matching policy and
// distances, the site ID column, and the table of topology overrides.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"headwater/internal/match"
	"headwater/internal/network"
)

// Match configures the site matcher.
type Match struct {
	// Policy is "centroid" or "line".
	Policy string `toml:"policy"`
	// MaxDistance caps centroid matching; <= 0 means unbounded.
	MaxDistance float64 `toml:"max_distance"`
	// Buffer is the search distance for line matching.
	Buffer float64 `toml:"buffer"`
	// SiteID names the property column holding the site identifier.
	SiteID string `toml:"site_id"`
}

// Overrides configures how topology overrides are applied.
type Overrides struct {
	// Strict makes an override referencing an unknown reach a hard error
	// instead of a warning.
	Strict bool `toml:"strict"`
}

// Config is the full run configuration.
type Config struct {
	Match     Match              `toml:"match"`
	Overrides Overrides          `toml:"overrides"`
	Override  []network.Override `toml:"override"`
}

// Default returns the configuration used when no file is given: unbounded
// centroid matching with the original tool's 400-unit line buffer.
func Default() Config {
	return Config{
		Match: Match{
			Policy:      string(match.PolicyCentroid),
			MaxDistance: 0,
			Buffer:      400,
			SiteID:      "site",
		},
	}
}

// Load reads and validates a TOML config file, filling unset fields from
// Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: parsing config: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks policy and override fields.
func (c *Config) Validate() error {
	switch match.Policy(c.Match.Policy) {
	case match.PolicyCentroid, match.PolicyLine:
	default:
		return fmt.Errorf("unknown match policy %q (want %q or %q)",
			c.Match.Policy, match.PolicyCentroid, match.PolicyLine)
	}
	if c.Match.SiteID == "" {
		return fmt.Errorf("match.site_id must not be empty")
	}
	for i, o := range c.Override {
		if !o.Field.Valid() {
			return fmt.Errorf("override %d: invalid field %q (want %q or %q)",
				i, o.Field, network.FieldFromNode, network.FieldToNode)
		}
	}
	return nil
}

// Distance returns the distance parameter for the configured policy: the
// buffer for line matching, the max distance otherwise.
func (c *Config) Distance() float64 {
	if match.Policy(c.Match.Policy) == match.PolicyLine {
		return c.Match.Buffer
	}
	return c.Match.MaxDistance
}
