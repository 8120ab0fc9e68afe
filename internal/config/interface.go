package config

import "context"

// Loader is the interface for a format-specific layout loader.
type Loader interface {
	// Load reads a layout document from the given path, translates it into
	// the format-agnostic model, and validates it. Failures are reported
	// as *ConfigError.
	Load(ctx context.Context, path string) (*Layout, error)
}
