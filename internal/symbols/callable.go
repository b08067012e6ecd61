package symbols

import (
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/typesys"
)

// FuncAttrs are the recognized function attributes (spec §4.6):
// noNameMangle, evaluable, compiled. A function must be at least one
// of evaluable or compiled.
type FuncAttrs struct {
	NoNameMangle bool
	Evaluable    bool
	Compiled     bool
}

// FuncEntry is one registered function signature (spec §3 "Function
// overload sets keyed by name"). Sig carries arg types, return type,
// and the variadic flag via typesys.Callable.
//
// Body is the raw declaration/definition tree: kept uninterpreted so
// the evaluator can re-walk it per call (spec §4.6 "the function has
// an evalFunc body") while the backend lowers it once at definition
// time via performFunctionDeclaration/Definition.
type FuncEntry struct {
	Name  pool.NameId
	Sig   typesys.Callable
	Attrs FuncAttrs

	// ArgNames names each formal parameter, parallel to Sig.ArgTypes,
	// so a call can bind actual arguments into the callee's own block
	// chain by name.
	ArgNames []pool.NameId

	HasBody bool
	Body    *parsetree.Node

	DeclLoc source.CodeLoc
	DefLoc  source.CodeLoc
}

func sigEqual(a, b typesys.Callable) bool {
	if a.IsFunc != b.IsFunc || a.Variadic != b.Variadic || a.HasRet != b.HasRet {
		return false
	}
	if a.HasRet && !a.RetType.Equal(b.RetType) {
		return false
	}
	if len(a.ArgTypes) != len(b.ArgTypes) {
		return false
	}
	for i := range a.ArgTypes {
		if !a.ArgTypes[i].Equal(b.ArgTypes[i]) {
			return false
		}
	}
	return true
}

// ArgMode is a macro argument's pre-handling mode (spec §4.4).
type ArgMode int

const (
	ArgRegular ArgMode = iota
	ArgPreprocess
	ArgPlusEscape
)

// MacroArg is one formal macro argument.
type MacroArg struct {
	Name pool.NameId
	Mode ArgMode
}

// MacroEntry is one registered macro (spec §3 "macro overload sets
// keyed by (name, fixed-arg-count with variadic flag)").
type MacroEntry struct {
	Name     pool.NameId
	Args     []MacroArg
	Variadic bool // trailing argument absorbs the call's tail as a raw tuple
	Body     *parsetree.Node
	Loc      source.CodeLoc
}

// FixedCount is the number of arguments that must always be supplied;
// for a variadic macro this excludes the absorbing trailing argument.
func (m *MacroEntry) FixedCount() int {
	if m.Variadic {
		return len(m.Args) - 1
	}
	return len(m.Args)
}
