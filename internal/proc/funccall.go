package proc

import (
	"fmt"

	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
)

// callFunction implements spec §4.6's calling convention: a non-leaf
// whose processed first child resolved to a SpecialFuncRef. Every
// actual argument is processed once, in the caller's own context,
// before overload resolution — so argument side effects never depend
// on which overload or backend eventually runs.
func (p *Processor) callFunction(node *parsetree.Node, first *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	args := make([]*nodeval.NodeVal, 0, len(node.Children)-1)
	for _, c := range node.Children[1:] {
		v, ok := p.processNode(c)
		if !ok {
			return v, false
		}
		args = append(args, v)
	}
	return p.resolveAndCall(node.Loc, first.Scalar.Name, args)
}

// resolveAndCall runs spec §4.6's overload resolution against an
// already-processed argument list and invokes the single surviving
// candidate. Shared by callFunction (actuals come from a call-site
// node's children) and the block-teardown drop sequence (the sole
// actual is the variable's own stored value, spec §4.2's "Scope-tearing
// contract").
func (p *Processor) resolveAndCall(loc source.CodeLoc, name pool.NameId, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	var fits []*symbols.FuncEntry
	for _, e := range p.st.LookupFunctions(name) {
		if arityFits(e, len(args)) && p.argsCastable(e, args) {
			fits = append(fits, e)
		}
	}

	switch len(fits) {
	case 0:
		p.cm.Errorf(diag.KindFuncNotFound, loc, "no matching overload for function %q", p.np.Get(name))
		return nodeval.InvalidAt(loc), false
	case 1:
		return p.invokeFunction(loc, nil, fits[0], args)
	default:
		related := make([]source.CodeLoc, len(fits))
		for i, e := range fits {
			related[i] = e.DeclLoc
		}
		p.cm.Raise(diag.Message{
			Level: diag.Error, Kind: diag.KindFuncCallAmbiguous,
			Text:    fmt.Sprintf("call to %q is ambiguous among %d overloads", p.np.Get(name), len(fits)),
			Loc:     loc,
			Related: related,
		})
		return nodeval.InvalidAt(loc), false
	}
}

// arityFits reports whether n actual arguments satisfy entry's arity:
// exact match for a fixed signature, at-least match for a variadic one
// (spec §4.6 "overload resolution ... filters by arity").
func arityFits(e *symbols.FuncEntry, n int) bool {
	if e.Sig.Variadic {
		return n >= len(e.Sig.ArgTypes)
	}
	return n == len(e.Sig.ArgTypes)
}

// argsCastable reports whether every fixed formal argument accepts its
// actual via implicit cast; a variadic tail is unconstrained (spec
// §4.6: only the fixed prefix participates in overload filtering).
func (p *Processor) argsCastable(e *symbols.FuncEntry, args []*nodeval.NodeVal) bool {
	for i, ty := range e.Sig.ArgTypes {
		if !p.canImplicitCast(args[i], ty) {
			return false
		}
	}
	return true
}

// invokeFunction implicit-casts every fixed actual argument to its
// formal type, then dispatches the call to whichever backend applies.
func (p *Processor) invokeFunction(loc source.CodeLoc, first *nodeval.NodeVal, entry *symbols.FuncEntry, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	fixed := len(entry.Sig.ArgTypes)
	casted := make([]*nodeval.NodeVal, len(args))
	for i, a := range args {
		if i >= fixed {
			casted[i] = a
			continue
		}
		v, ok := p.processAndImplicitCastValue(loc, a, entry.Sig.ArgTypes[i])
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		casted[i] = v
	}
	return p.callBackendFor(entry, casted).PerformCall(loc, first, entry, casted)
}

// allEvalConstant reports whether every argument is itself an
// already-resolved compile-time value, the proxy this module uses for
// spec §4.6's "all arguments are eval-time-constant" clause (see
// DESIGN.md for why this is a simplification of full constant-folding
// analysis).
func allEvalConstant(args []*nodeval.NodeVal) bool {
	for _, a := range args {
		if a == nil || a.Kind != nodeval.EvalValue {
			return false
		}
	}
	return true
}

// callBackendFor implements spec §4.6's calling convention: "the
// processor dispatches to the evaluator if the call site is
// compile-time-only ... or all arguments are eval-time-constant and
// the function is evaluable and its body resolves; otherwise it
// dispatches to the backend." An `eval` form in force always wins
// (forceEvaluator), matching how macro reprocessing also forces the
// evaluator regardless of the surrounding backend (spec §9).
func (p *Processor) callBackendFor(entry *symbols.FuncEntry, args []*nodeval.NodeVal) backend.Backend {
	if p.forceEvaluator {
		return p.evaluator
	}
	canEval := entry.Attrs.Evaluable && entry.HasBody
	if canEval && (p.activeBackend() == p.evaluator || allEvalConstant(args)) {
		return p.evaluator
	}
	if entry.Attrs.Compiled {
		return p.compiler
	}
	return p.evaluator
}
