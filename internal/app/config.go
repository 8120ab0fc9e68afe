package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LayoutPath   string // wall layout xml
	SettingsPath string // optional wallgrid.hcl, discovered when empty
	Identity     string // explicit identity override, host name when empty
	Monitor      int    // local monitor index selecting the primary tile
	Frames       int    // demo frame count, 0 runs until the context ends
	Backend      string // backend override, settings decide when empty

	LogFormat       string
	LogLevel        string
	HealthcheckPort int // overrides the settings value when > 0
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.LayoutPath == "" {
		return nil, errors.New("LayoutPath is a required configuration field and cannot be empty")
	}
	if cfg.Monitor < 0 {
		return nil, errors.New("Monitor index cannot be negative")
	}
	if cfg.Frames < 0 {
		return nil, errors.New("Frames cannot be negative")
	}

	return &cfg, nil
}
