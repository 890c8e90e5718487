package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/kaigolog/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env              string   `env:"ENV" envDefault:"production"`
	DataDir          string   `env:"KAIGOLOG_DATA_DIR"`
	ExportDir        string   `env:"KAIGOLOG_EXPORT_DIR" envDefault:"."`
	Timezone         string   `env:"KAIGOLOG_TIMEZONE" envDefault:"Asia/Tokyo"`
	RecentLimit      int      `env:"KAIGOLOG_RECENT_LIMIT" envDefault:"6"`
	PresetActivities []string `env:"KAIGOLOG_PRESET_ACTIVITIES" envSeparator:"," envDefault:"Moving Around,Eating,Toileting,Dressing,Transferring,Bathing"`
}

func Load() (*internalconfig.Config, error) {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	if raw.DataDir == "" {
		raw.DataDir = defaultDataDir()
	}

	cfg := &internalconfig.Config{
		Env:              raw.Env,
		DataDir:          raw.DataDir,
		ExportDir:        raw.ExportDir,
		Timezone:         raw.Timezone,
		RecentLimit:      raw.RecentLimit,
		PresetActivities: raw.PresetActivities,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kaigolog"
	}
	return filepath.Join(home, ".kaigolog")
}
