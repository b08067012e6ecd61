// Package proc implements the Processor (spec §4.3 "Processor (shared
// dispatch)"): the single recursive entry point, processNode, that
// either evaluates a parsed node tree at compile time or lowers it for
// code generation. Every surface-language construct — variables,
// blocks, functions, operators, casts, type constructors, macros —
// flows through this one dispatcher.
//
// Grounded on the teacher's internal/interp.Interpreter.Eval: one big
// type-switch over node kind, generalized here from a closed Go AST
// type to a homoiconic parsetree.Node whose "kind" is determined by
// processing its first child and inspecting the resulting NodeVal's
// shape (spec §4.3), since the source language has a single tree shape
// for every construct rather than one Go type per grammar rule.
package proc

import (
	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

// skipKind names which of exit/loop/ret issued the processor's current
// unwind (spec §9 "skip-issued record"; §4.7's state machine).
type skipKind int

const (
	skipNone skipKind = iota
	skipExit
	skipLoop
	skipRet
)

// skipState is the Processor's own "exception-like control flow"
// record (spec §9): set by exit/loop/ret, inspected by every enclosing
// block and callable teardown to decide whether to keep unwinding,
// re-enter a loop body, or stop and continue normally.
type skipState struct {
	kind       skipKind
	hasTarget  bool
	target     pool.NameId
	retVal     *nodeval.NodeVal
}

func (s skipState) active() bool { return s.kind != skipNone }

// Processor is the shared dispatcher (spec §4.3). It owns no table
// itself — NamePool, StringPool, TypeTable, SymbolTable, and
// CompilationMessages are all created by the orchestrator and shared
// by reference (spec §5) — but it is the only component that calls
// into both Backends, choosing which one answers a given operation.
type Processor struct {
	np *pool.NamePool
	sp *pool.StringPool
	tt *typesys.TypeTable
	st *symbols.SymbolTable
	cm *diag.CompilationMessages

	// compiler is the primary Backend (spec §2 "the processor
	// configured with the compiler backend as primary"); evaluator is
	// always available for compile-time fragments and macro bodies.
	compiler  backend.Backend
	evaluator backend.Backend

	// forceEvaluator makes every Perform* call route to the evaluator
	// regardless of the current callable's lowerable/evaluable status,
	// for the duration of an `eval` keyword form (spec §4.3's keyword
	// list includes "eval").
	forceEvaluator bool

	skip skipState

	// primNames maps each fixed primitive's reserved spelling to its
	// Prim tag (spec §3 "Primitives are a fixed enumeration"), and
	// strName is "str"'s NameId — both interned once at construction
	// so identifier-leaf resolution (spec §4.3) can recognize a bare
	// type name without re-parsing its spelling on every lookup.
	primNames map[pool.NameId]typesys.Prim
	strName   pool.NameId
}

// New creates a Processor sharing tt/st/cm/np/sp with the rest of the
// compilation. The caller is responsible for constructing the
// Evaluator and Compiler backends with a Runner closure over the
// returned Processor's Run method (see cmd/orbc's wiring and
// internal/orchestrator).
func New(np *pool.NamePool, sp *pool.StringPool, tt *typesys.TypeTable, st *symbols.SymbolTable, cm *diag.CompilationMessages) *Processor {
	p := &Processor{np: np, sp: sp, tt: tt, st: st, cm: cm}
	p.primNames = map[pool.NameId]typesys.Prim{
		np.Add("bool"): typesys.PrimBool,
		np.Add("i8"):   typesys.PrimI8,
		np.Add("i16"):  typesys.PrimI16,
		np.Add("i32"):  typesys.PrimI32,
		np.Add("i64"):  typesys.PrimI64,
		np.Add("u8"):   typesys.PrimU8,
		np.Add("u16"):  typesys.PrimU16,
		np.Add("u32"):  typesys.PrimU32,
		np.Add("u64"):  typesys.PrimU64,
		np.Add("f32"):  typesys.PrimF32,
		np.Add("f64"):  typesys.PrimF64,
		np.Add("c8"):   typesys.PrimC8,
		np.Add("ptr"):  typesys.PrimPtr,
		np.Add("id"):   typesys.PrimID,
		np.Add("type"): typesys.PrimType,
		np.Add("raw"):  typesys.PrimRaw,
	}
	p.strName = np.Add("str")
	return p
}

// SetBackends wires the two Backend implementations once they exist
// (they each need a Runner closure over this Processor, so
// construction is necessarily two-phase: New, then New the backends
// with p.Run, then SetBackends).
func (p *Processor) SetBackends(compiler, evaluator backend.Backend) {
	p.compiler = compiler
	p.evaluator = evaluator
}

// Run is the backend.Runner this Processor hands to both backends: it
// is processNode by another name, exported for that purpose.
func (p *Processor) Run(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	return p.processNode(node)
}

// ProcessTopLevel processes one top-level form pulled from the parser
// (spec §2 "the orchestrator pulls one top-level node at a time from
// the parser; hands each to the processor").
func (p *Processor) ProcessTopLevel(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	return p.processNode(node)
}

// activeBackend returns whichever Backend should answer the current
// operation (spec §4.3's dispatch criteria: whether the current
// callable is evaluable or lowerable, spec §6 "(a)"). Outside any
// callable (global scope) everything not forced is compile-time, since
// there is no function body to lower.
func (p *Processor) activeBackend() backend.Backend {
	if p.forceEvaluator {
		return p.evaluator
	}
	callee, inCallable := p.st.CurrentCallee()
	if !inCallable {
		return p.evaluator
	}
	if callee.Evaluable && !callee.Lowerable {
		return p.evaluator
	}
	if callee.Lowerable {
		return p.compiler
	}
	return p.evaluator
}

// processNode is the single entry point (spec §4.3 "processNode(node)
// is the single entry point").
func (p *Processor) processNode(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	if node == nil {
		return nodeval.Void(source.CodeLoc{}), true
	}

	if node.Embedded != nil {
		cp := *node.Embedded
		cp.Loc = node.Loc
		return &cp, true
	}

	// Escape semantics (spec §4.3): decrement by one per processing
	// step; a value still escaped after the decrement is returned
	// uninterpreted as a raw-tree eval-value (this is how macro bodies
	// carry code fragments without being prematurely evaluated).
	if node.Escaped() {
		dec := node.WithEscapeDecremented()
		if dec.Escaped() {
			return p.rawTreeValue(dec), true
		}
		node = dec
	}

	var val *nodeval.NodeVal
	var ok bool
	if node.IsLeaf() {
		val, ok = p.processLeaf(node)
	} else {
		val, ok = p.processNonLeaf(node)
	}
	if !ok {
		return val, false
	}
	return p.applyAttributes(node, val)
}

// rawTreeValue builds the raw, uninterpreted eval-value for a subtree
// that is still escaped (spec §3 "Raw value": a tree-shaped eval-value
// with uninterpreted children). Each child is recursively captured the
// same way rather than processed, preserving the original shape for a
// later re-processing pass once its escape score reaches zero.
func (p *Processor) rawTreeValue(node *parsetree.Node) *nodeval.NodeVal {
	if node.IsLeaf() {
		return &nodeval.NodeVal{
			Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimRaw),
			Scalar: p.leafRawScalar(node),
		}
	}
	children := make([]*nodeval.NodeVal, len(node.Children))
	for i, c := range node.Children {
		if c.Escaped() {
			children[i] = p.rawTreeValue(c)
			continue
		}
		children[i] = p.rawTreeValue(c.WithEscapeDecremented())
	}
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimRaw), Children: children}
}

// leafRawScalar captures a leaf's literal payload into a Scalar so a
// raw tree doesn't lose the information a later re-processing pass
// needs (spec §3's literal payload kinds).
func (p *Processor) leafRawScalar(node *parsetree.Node) nodeval.Scalar {
	switch node.Lit {
	case parsetree.LitID:
		return nodeval.Scalar{Name: p.np.Add(node.IDName)}
	case parsetree.LitInt:
		return nodeval.Scalar{Int: node.IntVal}
	case parsetree.LitFloat:
		return nodeval.Scalar{Float: node.FloatVal}
	case parsetree.LitChar:
		return nodeval.Scalar{Char: node.CharVal}
	case parsetree.LitBool:
		return nodeval.Scalar{Bool: node.BoolVal}
	case parsetree.LitString:
		return nodeval.Scalar{Str: p.sp.Add(node.StrVal)}
	default:
		return nodeval.Scalar{}
	}
}

// applyAttributes parses node's attribute map after it has been
// processed (spec §4.3 "Attribute handling"): the reserved `type:`
// attribute is applied as an implicit cast before the node leaves the
// processor; every other attribute is processed and stashed on the
// result for attrOf/attrIsDef to retrieve later.
func (p *Processor) applyAttributes(node *parsetree.Node, val *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if val.IsInvalid() {
		return val, false
	}
	if len(node.Attrs) > 0 {
		attrs := make(map[pool.NameId]*nodeval.NodeVal, len(node.Attrs))
		for name, anode := range node.Attrs {
			if name == "type" {
				continue
			}
			av, ok := p.processNode(anode)
			if !ok {
				return nodeval.InvalidAt(node.Loc), false
			}
			attrs[p.np.Add(name)] = av
		}
		if len(attrs) > 0 {
			cp := *val
			cp.Attrs = attrs
			val = &cp
		}
	}
	if tnode := node.TypeAttr(); tnode != nil {
		ty, ok := p.processType(tnode)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		cast, ok := p.processAndImplicitCastValue(node.Loc, val, ty)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		val = cast
	}
	return val, true
}

// identName interns a leaf id node's spelling; used wherever a node is
// expected to be a bare identifier (names in sym/fnc/mac, field names,
// etc).
func (p *Processor) identName(node *parsetree.Node) pool.NameId {
	if node == nil || node.Lit != parsetree.LitID {
		return pool.InvalidName
	}
	return p.np.Add(node.IDName)
}

func isEllipsis(np *pool.NamePool, node *parsetree.Node) bool {
	if node == nil || node.Lit != parsetree.LitID {
		return false
	}
	id := np.Add(node.IDName)
	m, ok := np.IsMeaningful(id)
	return ok && m == pool.MeaningfulEllipsis
}
