package config

import "fmt"

// Kind classifies a configuration failure.
type Kind int

const (
	// KindNotFound means the layout document does not exist or could not
	// be opened.
	KindNotFound Kind = iota
	// KindMalformed means the document is not well-formed (syntax error).
	KindMalformed
	// KindInvalid means the document parsed but violates a semantic rule
	// of the layout model (duplicate identity, out-of-bounds tile, ...).
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ConfigError describes why a layout document was rejected. All startup
// configuration failures are fatal; the error carries enough context
// (path, line, offending identity) for the operator to fix the document.
type ConfigError struct {
	Kind     Kind
	Path     string
	Line     int    // 1-based line of a syntax error, 0 when unknown
	Identity string // offending machine identity, "" when not applicable
	Detail   string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s config", e.Kind)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
