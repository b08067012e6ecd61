// Package diag implements CompilationMessages (spec §4 "CompilationMessages",
// §7 "Error Handling Design"): status tracking across info/warning/error/
// internal severities, formatted diagnostics with source excerpts, and
// (as an additive rendering) a JSON feed for tooling.
//
// Formatting follows the teacher's internal/errors.CompilerError: a
// file:line:col header, the offending source line, and a caret
// underline, optionally ANSI-colorized.
package diag

// Level is a message severity, monotonically increasing (spec §7).
type Level int

const (
	Info Level = iota
	Warning
	Error
	Internal
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// AtLeast reports whether l is at least as severe as other.
func (l Level) AtLeast(other Level) bool { return l >= other }
