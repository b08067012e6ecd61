package lexparse

import "github.com/orblang/orbc/internal/source"

// Error is one lex or parse failure, carried with a CodeLoc so the
// orchestrator can forward it through diag.CompilationMessages the
// same way it forwards any other diagnostic (spec §7's taxonomy
// reserves a lex/parse group for exactly this).
type Error struct {
	Loc     source.CodeLoc
	Message string
}

func (e *Error) Error() string { return e.Loc.String() + ": " + e.Message }
