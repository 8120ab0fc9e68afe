// Package cli handles command-line argument parsing and validation,
// translating flags into an app.Config.
package cli
