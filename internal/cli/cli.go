package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/wallgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("wallgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
WallGridGo - A tiled display wall coordination engine.

Usage:
  wallgridgo [options] [LAYOUT_PATH]

Arguments:
  LAYOUT_PATH
    Path to the wall layout XML file describing the canvas and its tiles.

Options:
`)
		flagSet.PrintDefaults()
	}

	pathFlag := flagSet.String("path", "", "Path to the wall layout XML file.")
	pFlag := flagSet.String("p", "", "Path to the wall layout XML file (shorthand).")
	identityFlag := flagSet.String("identity", "", "Machine identity override. Defaults to the host name.")
	iFlag := flagSet.String("i", "", "Machine identity override (shorthand).")
	settingsFlag := flagSet.String("settings", "", "Path to a session settings HCL file. Defaults to wallgrid.hcl next to the layout.")
	monitorFlag := flagSet.Int("monitor", 0, "Local monitor index selecting which configured tile to drive.")
	framesFlag := flagSet.Int("frames", 0, "Number of frames to run before exiting. 0 runs until interrupted.")
	backendFlag := flagSet.String("backend", "", "Synchronization backend override. Options: 'auto', 'single', 'socketio'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pathFlag != "" {
		path = *pathFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Layout path determined.", "path", path)

	if path == "" {
		slog.Debug("No layout path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	identity := *identityFlag
	if identity == "" {
		identity = *iFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		LayoutPath:      path,
		SettingsPath:    *settingsFlag,
		Identity:        identity,
		Monitor:         *monitorFlag,
		Frames:          *framesFlag,
		Backend:         *backendFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
