package diag

import "github.com/orblang/orbc/internal/source"

// Message is a single diagnostic: its severity, the kind of problem,
// the English text, and the source location it points at (spec §7
// "each diagnostic prefixes the file:line:col of the offending node,
// then a short English sentence, then a colorized caret underline").
type Message struct {
	Level Level
	Kind  Kind
	Text  string
	Loc   source.CodeLoc

	// Related carries extra locations for diagnostics that name more
	// than one site (spec §4.6 "ambiguous call ... with all candidate
	// locations").
	Related []source.CodeLoc
}
