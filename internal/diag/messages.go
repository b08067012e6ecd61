package diag

import (
	"fmt"
	"strings"

	"github.com/orblang/orbc/internal/source"
)

// Sources supplies the raw text of a file by name, used to render the
// source-excerpt line under a diagnostic. The orchestrator registers
// each input file's contents as it loads them.
type Sources interface {
	Line(file string, line int) (string, bool)
}

// MapSources is the trivial Sources implementation: a file-name keyed
// map of already-split lines.
type MapSources map[string][]string

func (m MapSources) Line(file string, line int) (string, bool) {
	lines, ok := m[file]
	if !ok || line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// CompilationMessages tracks every diagnostic raised during a
// compilation and the worst severity seen so far (spec §4
// "CompilationMessages", §7 "status updates monotonically").
type CompilationMessages struct {
	messages []Message
	status   Level
	sources  Sources
}

// NewCompilationMessages creates an empty sink. sources may be nil, in
// which case diagnostics render without a source excerpt.
func NewCompilationMessages(sources Sources) *CompilationMessages {
	return &CompilationMessages{sources: sources}
}

// Raise records a diagnostic and advances status if msg is more severe
// than anything seen so far.
func (cm *CompilationMessages) Raise(msg Message) {
	cm.messages = append(cm.messages, msg)
	if msg.Level > cm.status {
		cm.status = msg.Level
	}
}

// Errorf is a convenience wrapper for the common case of an Error-level
// diagnostic with a formatted message.
func (cm *CompilationMessages) Errorf(kind Kind, loc source.CodeLoc, format string, args ...any) {
	cm.Raise(Message{Level: Error, Kind: kind, Text: fmt.Sprintf(format, args...), Loc: loc})
}

// Warnf is the Warning-level analog of Errorf.
func (cm *CompilationMessages) Warnf(kind Kind, loc source.CodeLoc, format string, args ...any) {
	cm.Raise(Message{Level: Warning, Kind: kind, Text: fmt.Sprintf(format, args...), Loc: loc})
}

// Infof is the Info-level analog of Errorf.
func (cm *CompilationMessages) Infof(kind Kind, loc source.CodeLoc, format string, args ...any) {
	cm.Raise(Message{Level: Info, Kind: kind, Text: fmt.Sprintf(format, args...), Loc: loc})
}

// Internalf raises an Internal-severity diagnostic: an invariant was
// broken and compilation must stop (spec §7 "Internal: invariant
// broken; terminates compilation").
func (cm *CompilationMessages) Internalf(loc source.CodeLoc, format string, args ...any) {
	cm.Raise(Message{Level: Internal, Kind: KindInternalInvariant, Text: fmt.Sprintf(format, args...), Loc: loc})
}

// Status returns the worst severity raised so far.
func (cm *CompilationMessages) Status() Level { return cm.status }

// Failing reports whether status has reached Error or higher (spec §5
// "the top-level orchestrator aborts further processing once the
// message status reaches ERROR or higher").
func (cm *CompilationMessages) Failing() bool { return cm.status >= Error }

// All returns every message raised, in raise order.
func (cm *CompilationMessages) All() []Message { return cm.messages }

// Format renders every message as the teacher's CompilerError does:
// a file:line:col header, the source line, and a caret underline,
// optionally ANSI-colorized.
func (cm *CompilationMessages) Format(color bool) string {
	var sb strings.Builder
	for i, m := range cm.messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(cm.formatOne(m, color))
	}
	return sb.String()
}

func (cm *CompilationMessages) formatOne(m Message, color bool) string {
	var sb strings.Builder

	if m.Loc.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", strings.ToUpper(m.Level.String()[:1])+m.Level.String()[1:], m.Loc.File, m.Loc.Start.Line, m.Loc.Start.Column)
	} else {
		fmt.Fprintf(&sb, "%s at %d:%d\n", strings.ToUpper(m.Level.String()[:1])+m.Level.String()[1:], m.Loc.Start.Line, m.Loc.Start.Column)
	}

	if cm.sources != nil {
		if line, ok := cm.sources.Line(m.Loc.File, m.Loc.Start.Line); ok {
			lineNumStr := fmt.Sprintf("%4d | ", m.Loc.Start.Line)
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+m.Loc.Start.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(m.Text)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}
