package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string
	DataDir          string
	ExportDir        string
	Timezone         string
	RecentLimit      int
	PresetActivities []string
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("KAIGOLOG_DATA_DIR is required")
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("KAIGOLOG_RECENT_LIMIT must be positive, got %d", c.RecentLimit)
	}
	if c.Timezone == "" {
		return fmt.Errorf("KAIGOLOG_TIMEZONE is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("KAIGOLOG_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// Location resolves the configured timezone. Validate has already checked
// it, so a load failure here falls back to the system's local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
