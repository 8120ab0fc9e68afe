// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
)

// SettingsFileName is the conventional name of a session settings document.
const SettingsFileName = "wallgrid.hcl"

// DiscoverSettings looks for a settings document next to the layout file.
// It returns "" when none exists, since settings are optional.
func DiscoverSettings(layoutPath string) string {
	candidate := filepath.Join(filepath.Dir(layoutPath), SettingsFileName)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
