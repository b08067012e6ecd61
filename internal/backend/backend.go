// Package backend declares the contract shared by the Evaluator
// (internal/eval) and the Compiler backend (internal/codegen): spec
// §6's "Backend contract (the operations Compiler backend must
// implement)". The Processor (internal/proc) holds one of each and
// picks which implementation answers a given operation.
//
// Every method receives a source location and already-processed
// operand NodeVals — never a raw parsetree.Node — so that neither
// implementation needs to recurse back into Processor.processNode;
// all tree-walking recursion lives in the Processor.
package backend

import (
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

// Runner is the Processor's own processNode, injected into whichever
// Backend needs to re-enter dispatch (calling a function/macro body,
// which is itself an arbitrary subtree). Backends never import
// internal/proc directly — that would cycle back to this package —
// so the Processor hands each Backend a closure over itself at
// construction time instead.
type Runner func(node *parsetree.Node) (*nodeval.NodeVal, bool)

// LoadKind tags what performLoad is loading.
type LoadKind int

const (
	LoadVar LoadKind = iota
	LoadFunc
	LoadMacro
)

// OperKind names a unary/arithmetic/comparison operator by its
// interned operator id (pool.Oper carries this already; Backend
// methods take pool.Oper directly rather than re-wrapping it).

// Backend is the shared processor contract (spec §6). Implementations:
// internal/eval.Evaluator (compile-time tree-walking) and
// internal/codegen.Compiler (native-IR emission). An implementation
// that cannot honor an operation (the evaluator on a lowering-only op,
// or vice versa) returns (nil, false) and the Processor raises
// "evaluation not supported" / "operation requires evaluation".
type Backend interface {
	// Name identifies the backend for diagnostics ("evaluator" or
	// "compiler").
	Name() string

	PerformLoad(loc source.CodeLoc, kind LoadKind, name pool.NameId, target *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformZero(loc source.CodeLoc, ty typesys.TypeId) (*nodeval.NodeVal, bool)
	PerformRegister(loc source.CodeLoc, name pool.NameId, ty typesys.TypeId, init *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformCast(loc source.CodeLoc, val *nodeval.NodeVal, ty typesys.TypeId) (*nodeval.NodeVal, bool)

	PerformBlockSetUp(loc source.CodeLoc, block *symbols.Block) bool
	PerformBlockBody(loc source.CodeLoc, block *symbols.Block, stmtResult *nodeval.NodeVal) bool
	PerformBlockTearDown(loc source.CodeLoc, block *symbols.Block, success bool) (*nodeval.NodeVal, bool)

	// PerformExit/Loop/Pass answer whether the unwind was handled by
	// this backend (true) — the Processor still owns deciding *when*
	// to call them (spec §4.7's state machine).
	PerformExit(loc source.CodeLoc, block *symbols.Block, cond *nodeval.NodeVal) bool
	PerformLoop(loc source.CodeLoc, block *symbols.Block, cond *nodeval.NodeVal) bool
	PerformPass(loc source.CodeLoc, block *symbols.Block, val *nodeval.NodeVal) bool

	PerformDataDefinition(loc source.CodeLoc, ty typesys.TypeId) bool

	PerformCall(loc source.CodeLoc, callee *nodeval.NodeVal, entry *symbols.FuncEntry, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformInvoke(loc source.CodeLoc, macro *symbols.MacroEntry, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool)

	PerformFunctionDeclaration(loc source.CodeLoc, entry *symbols.FuncEntry) bool
	PerformFunctionDefinition(loc source.CodeLoc, entry *symbols.FuncEntry) bool
	PerformMacroDefinition(loc source.CodeLoc, entry *symbols.MacroEntry) bool

	PerformRet(loc source.CodeLoc, val *nodeval.NodeVal) bool

	PerformOperUnary(loc source.CodeLoc, op pool.Oper, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformOperDeref(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformOperAddrOf(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformOperMove(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool)

	PerformOperComparisonSetUp(loc source.CodeLoc) any
	PerformOperComparisonStep(loc source.CodeLoc, state any, op pool.Oper, lhs, rhs *nodeval.NodeVal) (cont bool, ok bool)
	PerformOperComparisonTearDown(loc source.CodeLoc, state any) (*nodeval.NodeVal, bool)

	PerformOperAssignment(loc source.CodeLoc, lhs, rhs *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformOperIndex(loc source.CodeLoc, base, index *nodeval.NodeVal) (*nodeval.NodeVal, bool)
	PerformOperMember(loc source.CodeLoc, base *nodeval.NodeVal, field pool.NameId) (*nodeval.NodeVal, bool)
	PerformOperRegular(loc source.CodeLoc, op pool.Oper, lhs, rhs *nodeval.NodeVal, resultTy typesys.TypeId) (*nodeval.NodeVal, bool)

	PerformSizeOf(loc source.CodeLoc, ty typesys.TypeId) (uint64, bool)
}
