// Package eval implements Evaluator, the compile-time tree-walking
// Backend (spec §6). It never lowers anything to a native form; every
// operation it performs must be immediately and fully computable from
// already-processed NodeVals, the TypeTable, and the SymbolTable.
//
// Grounded on the teacher's internal/interp.Interpreter.Eval (one big
// type-switch over node kind dispatching to an eval* method per
// construct) and internal/bytecode.Chunk's constant arithmetic, with
// the dispatch key changed from an AST node type to the operator/
// keyword carried by the NodeVal the Processor hands in.
package eval

import (
	"math"

	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

// Evaluator is the compile-time Backend. It shares the TypeTable and
// SymbolTable with the Processor and whatever Compiler backend is also
// active, and calls back into the Processor's own dispatch (via Run)
// to walk a callee's body on a call.
type Evaluator struct {
	tt *typesys.TypeTable
	st *symbols.SymbolTable
	cm *diag.CompilationMessages
	run backend.Runner
}

// New creates an Evaluator sharing tt/st/cm with the rest of the
// compilation and re-entering dispatch through run.
func New(tt *typesys.TypeTable, st *symbols.SymbolTable, cm *diag.CompilationMessages, run backend.Runner) *Evaluator {
	return &Evaluator{tt: tt, st: st, cm: cm, run: run}
}

func (e *Evaluator) Name() string { return "evaluator" }

var _ backend.Backend = (*Evaluator)(nil)

// PerformLoad resolves a variable reference to its current value,
// attaching a ref-coordinate so a later assignment/addrOf can alias
// back to the slot (spec §3 "ref-pointer"). Func/macro loads are
// already resolved by the Processor's overload resolution and simply
// pass target through.
func (e *Evaluator) PerformLoad(loc source.CodeLoc, kind backend.LoadKind, name pool.NameId, target *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if kind != backend.LoadVar {
		return target, true
	}
	val, ok := e.st.LookupVariable(name)
	if !ok {
		return nodeval.InvalidAt(loc), false
	}
	cp := *val
	cp.Loc = loc
	if ref, ok := e.st.RefFor(name); ok {
		cp.Ref = &ref
	}
	return &cp, true
}

// PerformZero builds the default value for ty: false/0/0.0 for
// scalars, and a recursively zeroed Children slice for tuples and
// fixed-length arrays (spec §4.1's classification predicates pick the
// family).
func (e *Evaluator) PerformZero(loc source.CodeLoc, ty typesys.TypeId) (*nodeval.NodeVal, bool) {
	if !ty.IsValid() {
		return nodeval.InvalidAt(loc), false
	}
	if tup, ok := e.tt.Tuple(ty); ok {
		children := make([]*nodeval.NodeVal, len(tup.Members))
		for i, m := range tup.Members {
			v, ok := e.PerformZero(loc, m)
			if !ok {
				return nodeval.InvalidAt(loc), false
			}
			children[i] = v
		}
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty, Children: children}, true
	}
	if e.tt.WorksAsArr(ty) {
		elem := e.tt.AddIndexOf(ty)
		desc, _ := e.tt.Descr(ty)
		n := desc.Decors[len(desc.Decors)-1].Len
		children := make([]*nodeval.NodeVal, n)
		for i := range children {
			v, ok := e.PerformZero(loc, elem)
			if !ok {
				return nodeval.InvalidAt(loc), false
			}
			children[i] = v
		}
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty, Children: children}, true
	}
	if dt, ok := e.tt.Data(ty); ok {
		children := make([]*nodeval.NodeVal, len(dt.Fields))
		for i, f := range dt.Fields {
			v, ok := e.PerformZero(loc, f.Type)
			if !ok {
				return nodeval.InvalidAt(loc), false
			}
			children[i] = v
		}
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty, Children: children}, true
	}
	if e.tt.WorksAsAnyP(ty) {
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty}, true
	}
	switch {
	case e.tt.WorksAsB(ty), e.tt.WorksAsI(ty), e.tt.WorksAsU(ty), e.tt.WorksAsF(ty), e.tt.WorksAsC(ty):
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty}, true
	}
	return nodeval.InvalidAt(loc), false
}

// PerformRegister declares name in the innermost active block with
// init's value (spec §4.3 "sym"), returning a ref-carrying alias of
// the stored value.
func (e *Evaluator) PerformRegister(loc source.CodeLoc, name pool.NameId, ty typesys.TypeId, init *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	val := init
	if val == nil {
		v, ok := e.PerformZero(loc, ty)
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		val = v
	}
	if err := e.st.Declare(name, val, false); err != nil {
		e.cm.Internalf(loc, "%v", err)
		return nodeval.InvalidAt(loc), false
	}
	ref, _ := e.st.RefFor(name)
	cp := *val
	cp.Loc = loc
	cp.Ref = &ref
	return &cp, true
}

// PerformCast reinterprets val's scalar payload as ty: widening/
// truncation within a numeric family, and family-to-family conversion
// when a source literal has already been checked castable upstream.
func (e *Evaluator) PerformCast(loc source.CodeLoc, val *nodeval.NodeVal, ty typesys.TypeId) (*nodeval.NodeVal, bool) {
	if val == nil || val.Kind != nodeval.EvalValue {
		return nodeval.InvalidAt(loc), false
	}
	out := &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty}
	switch {
	case e.tt.WorksAsI(ty):
		out.Scalar.Int = truncInt(readIntish(e.tt, val), bitsOf(e.tt, ty))
	case e.tt.WorksAsU(ty):
		out.Scalar.Uint = truncUint(readUintish(e.tt, val), bitsOf(e.tt, ty))
	case e.tt.WorksAsF(ty):
		out.Scalar.Float = readFloatish(e.tt, val)
		if ty.Prim() == typesys.PrimF32 {
			out.Scalar.Float = float64(float32(out.Scalar.Float))
		}
	case e.tt.WorksAsB(ty):
		out.Scalar.Bool = val.Scalar.Bool
	case e.tt.WorksAsC(ty):
		out.Scalar.Char = val.Scalar.Char
	default:
		out.Scalar = val.Scalar
		out.Children = val.Children
	}
	return out, true
}

func bitsOf(tt *typesys.TypeTable, ty typesys.TypeId) int {
	switch ty.Prim() {
	case typesys.PrimI8, typesys.PrimU8:
		return 8
	case typesys.PrimI16, typesys.PrimU16:
		return 16
	case typesys.PrimI32, typesys.PrimU32:
		return 32
	default:
		return 64
	}
}

func readIntish(tt *typesys.TypeTable, v *nodeval.NodeVal) int64 {
	switch {
	case tt.WorksAsI(v.Type):
		return v.Scalar.Int
	case tt.WorksAsU(v.Type):
		return int64(v.Scalar.Uint)
	case tt.WorksAsF(v.Type):
		return int64(v.Scalar.Float)
	default:
		return v.Scalar.Int
	}
}

func readUintish(tt *typesys.TypeTable, v *nodeval.NodeVal) uint64 {
	switch {
	case tt.WorksAsU(v.Type):
		return v.Scalar.Uint
	case tt.WorksAsI(v.Type):
		return uint64(v.Scalar.Int)
	case tt.WorksAsF(v.Type):
		return uint64(v.Scalar.Float)
	default:
		return v.Scalar.Uint
	}
}

func readFloatish(tt *typesys.TypeTable, v *nodeval.NodeVal) float64 {
	switch {
	case tt.WorksAsF(v.Type):
		return v.Scalar.Float
	case tt.WorksAsI(v.Type):
		return float64(v.Scalar.Int)
	case tt.WorksAsU(v.Type):
		return float64(v.Scalar.Uint)
	default:
		return v.Scalar.Float
	}
}

func truncInt(v int64, bits int) int64 {
	if bits >= 64 {
		return v
	}
	shift := uint(64 - bits)
	return (v << shift) >> shift
}

func truncUint(v uint64, bits int) uint64 {
	if bits >= 64 {
		return v
	}
	return v & (uint64(1)<<uint(bits) - 1)
}

// PerformBlockSetUp/BlockBody are trivial for the evaluator: block
// push/pop lifecycle lives in the SymbolTable and is driven by the
// Processor; the evaluator has nothing of its own to set up per
// statement.
func (e *Evaluator) PerformBlockSetUp(loc source.CodeLoc, block *symbols.Block) bool { return true }

func (e *Evaluator) PerformBlockBody(loc source.CodeLoc, block *symbols.Block, stmtResult *nodeval.NodeVal) bool {
	return true
}

// PerformBlockTearDown returns the block's accumulated pass-value if
// it ever received one, else a valid-void (spec §4.7).
func (e *Evaluator) PerformBlockTearDown(loc source.CodeLoc, block *symbols.Block, success bool) (*nodeval.NodeVal, bool) {
	if !success {
		return nodeval.InvalidAt(loc), false
	}
	if block.HasPass && block.AccumPass != nil {
		return block.AccumPass, true
	}
	return nodeval.Void(loc), true
}

// PerformExit/Loop validate the optional condition's truthiness; the
// Processor's skip-state machine decides whether/when to actually
// unwind to or re-enter the named block.
func (e *Evaluator) PerformExit(loc source.CodeLoc, block *symbols.Block, cond *nodeval.NodeVal) bool {
	return cond == nil || cond.Kind == nodeval.EvalValue
}

func (e *Evaluator) PerformLoop(loc source.CodeLoc, block *symbols.Block, cond *nodeval.NodeVal) bool {
	return cond == nil || cond.Kind == nodeval.EvalValue
}

// PerformPass records val as the target block's pass-value.
func (e *Evaluator) PerformPass(loc source.CodeLoc, block *symbols.Block, val *nodeval.NodeVal) bool {
	if !block.HasPass {
		return false
	}
	block.AccumPass = val
	return true
}

// PerformDataDefinition is a pure type-table registration already
// recorded by the time the evaluator sees it (spec §4.1); nothing to
// do at evaluation time.
func (e *Evaluator) PerformDataDefinition(loc source.CodeLoc, ty typesys.TypeId) bool { return true }

// PerformCall re-enters dispatch on the callee's body in a fresh
// callable frame, with each formal parameter bound to its actual
// argument value (spec §4.6).
func (e *Evaluator) PerformCall(loc source.CodeLoc, callee *nodeval.NodeVal, entry *symbols.FuncEntry, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if entry == nil || !entry.Attrs.Evaluable {
		return nodeval.InvalidAt(loc), false
	}
	if !entry.HasBody {
		e.cm.Internalf(loc, "evaluable call reached the evaluator with no body")
		return nodeval.InvalidAt(loc), false
	}
	e.st.PushCallable(symbols.CalleeInfo{
		IsFunc: true, Evaluable: true,
		HasRetType: entry.Sig.HasRet, RetType: entry.Sig.RetType,
	})
	e.st.PushBlock(0, false)
	for i, name := range entry.ArgNames {
		if i < len(args) {
			e.st.Declare(name, args[i], false)
		}
	}

	result, ok := e.run(entry.Body)

	if _, err := e.st.PopBlock(); err != nil {
		e.cm.Internalf(loc, "%v", err)
		ok = false
	}
	if err := e.st.PopCallable(); err != nil {
		e.cm.Internalf(loc, "%v", err)
		ok = false
	}
	if !ok {
		return nodeval.InvalidAt(loc), false
	}
	return result, true
}

// PerformInvoke runs a macro body the same way PerformCall runs a
// function body (spec §6 "backend delegates to evaluator" — a macro
// always executes at compile time regardless of which backend is
// active). By the time the Processor calls here, each argument has
// already gone through its own pre-handling mode (spec §4.4: regular,
// preprocess, +escape) and arrives as a plain NodeVal to bind under
// its formal name.
func (e *Evaluator) PerformInvoke(loc source.CodeLoc, macro *symbols.MacroEntry, args []*nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if macro == nil || macro.Body == nil {
		return nodeval.InvalidAt(loc), false
	}
	e.st.PushCallable(symbols.CalleeInfo{IsFunc: false, Evaluable: true})
	e.st.PushBlock(0, false)
	for i, a := range macro.Args {
		if i < len(args) {
			e.st.Declare(a.Name, args[i], false)
		}
	}

	result, ok := e.run(macro.Body)

	if _, err := e.st.PopBlock(); err != nil {
		e.cm.Internalf(loc, "%v", err)
		ok = false
	}
	if err := e.st.PopCallable(); err != nil {
		e.cm.Internalf(loc, "%v", err)
		ok = false
	}
	if !ok {
		return nodeval.InvalidAt(loc), false
	}
	return result, true
}

// PerformFunctionDeclaration/Definition/PerformMacroDefinition are
// bookkeeping already complete once the SymbolTable holds the entry;
// the evaluator has no compile-time action of its own to take.
func (e *Evaluator) PerformFunctionDeclaration(loc source.CodeLoc, entry *symbols.FuncEntry) bool {
	return true
}

func (e *Evaluator) PerformFunctionDefinition(loc source.CodeLoc, entry *symbols.FuncEntry) bool {
	return true
}

func (e *Evaluator) PerformMacroDefinition(loc source.CodeLoc, entry *symbols.MacroEntry) bool {
	return true
}

// PerformRet validates nothing further: the Processor's skip-state
// machine has already matched val against the enclosing callable's
// declared return type via implicit cast before calling here.
func (e *Evaluator) PerformRet(loc source.CodeLoc, val *nodeval.NodeVal) bool { return true }

// PerformOperUnary implements +, -, ~, ! over scalar operands.
func (e *Evaluator) PerformOperUnary(loc source.CodeLoc, op pool.Oper, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if operand == nil || operand.Kind != nodeval.EvalValue {
		return nodeval.InvalidAt(loc), false
	}
	out := &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: operand.Type}
	switch {
	case op == pool.OperAdd:
		out.Scalar = operand.Scalar
	case op == pool.OperSub && e.tt.WorksAsI(operand.Type):
		out.Scalar.Int = -operand.Scalar.Int
	case op == pool.OperSub && e.tt.WorksAsF(operand.Type):
		out.Scalar.Float = -operand.Scalar.Float
	case op == pool.OperBitNot && (e.tt.WorksAsI(operand.Type) || e.tt.WorksAsU(operand.Type)):
		if e.tt.WorksAsI(operand.Type) {
			out.Scalar.Int = truncInt(^operand.Scalar.Int, bitsOf(e.tt, operand.Type))
		} else {
			out.Scalar.Uint = truncUint(^operand.Scalar.Uint, bitsOf(e.tt, operand.Type))
		}
	case op == pool.OperNot && e.tt.WorksAsB(operand.Type):
		out.Scalar.Bool = !operand.Scalar.Bool
	default:
		e.cm.Errorf(diag.KindOperBadOperandType, loc, "operator does not apply to this operand's type")
		return nodeval.InvalidAt(loc), false
	}
	return out, true
}

// PerformOperDeref is refused by the evaluator: dereferencing a raw
// pointer has no compile-time meaning without a backing memory model
// (spec §6's stated example of an evaluation-unsupported operation).
func (e *Evaluator) PerformOperDeref(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	return nil, false
}

// PerformOperAddrOf produces a pointer-typed value that carries the
// operand's ref forward, so a later deref-through-assignment can still
// reach the aliased slot even though the evaluator itself never
// dereferences a pointer value.
func (e *Evaluator) PerformOperAddrOf(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if operand == nil || operand.Ref == nil {
		e.cm.Errorf(diag.KindOperAddressOfNonRef, loc, "cannot take the address of a value with no storage")
		return nodeval.InvalidAt(loc), false
	}
	return &nodeval.NodeVal{
		Kind: nodeval.EvalValue, Loc: loc,
		Type: e.tt.AddAddrOf(operand.Type),
		Ref:  operand.Ref,
	}, true
}

// PerformOperMove passes the value through unchanged; ownership
// transfer bookkeeping (drop-registry suppression) is the Processor's
// concern, not a transformation of the value itself.
func (e *Evaluator) PerformOperMove(loc source.CodeLoc, operand *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	return operand, true
}

// comparisonState accumulates the variadic short-circuiting chain
// a<b<c (spec §4.5): once any link is false the overall result is
// false, but every link along the way is still evaluated so operand
// expressions keep their side effects. OperNeq is n-ary-distinct
// (spec §4.5 "!= is n-ary-distinct"), not just adjacent-pair AND: `a
// != b != c` must fail if any two of the three are equal, not only if
// a==b or b==c, so seen tracks every operand compared so far and each
// new operand is checked against all of them, not just its immediate
// predecessor.
type comparisonState struct {
	result bool
	first  bool
	seen   []*nodeval.NodeVal
}

func (e *Evaluator) PerformOperComparisonSetUp(loc source.CodeLoc) any {
	return &comparisonState{result: true, first: true}
}

func (e *Evaluator) PerformOperComparisonStep(loc source.CodeLoc, state any, op pool.Oper, lhs, rhs *nodeval.NodeVal) (bool, bool) {
	st := state.(*comparisonState)
	if lhs == nil || rhs == nil || lhs.Kind != nodeval.EvalValue || rhs.Kind != nodeval.EvalValue {
		return false, false
	}
	if op == pool.OperNeq {
		if st.first {
			st.seen = append(st.seen, lhs)
		}
		for _, v := range st.seen {
			cmp, ok := e.compare(loc, pool.OperNeq, rhs, v)
			if !ok {
				return false, false
			}
			st.result = st.result && cmp
		}
		st.seen = append(st.seen, rhs)
		st.first = false
		return true, true
	}
	cmp, ok := e.compare(loc, op, lhs, rhs)
	if !ok {
		return false, false
	}
	st.result = st.result && cmp
	st.first = false
	return true, true
}

func (e *Evaluator) PerformOperComparisonTearDown(loc source.CodeLoc, state any) (*nodeval.NodeVal, bool) {
	st := state.(*comparisonState)
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: e.tt.Prim(typesys.PrimBool), Scalar: nodeval.Scalar{Bool: st.result}}, true
}

func (e *Evaluator) compare(loc source.CodeLoc, op pool.Oper, lhs, rhs *nodeval.NodeVal) (bool, bool) {
	switch {
	case e.tt.WorksAsI(lhs.Type):
		return compareOrdered(op, lhs.Scalar.Int, rhs.Scalar.Int), true
	case e.tt.WorksAsU(lhs.Type):
		return compareOrdered(op, lhs.Scalar.Uint, rhs.Scalar.Uint), true
	case e.tt.WorksAsF(lhs.Type):
		return compareOrdered(op, lhs.Scalar.Float, rhs.Scalar.Float), true
	case e.tt.WorksAsC(lhs.Type):
		return compareOrdered(op, lhs.Scalar.Char, rhs.Scalar.Char), true
	case e.tt.WorksAsB(lhs.Type):
		switch op {
		case pool.OperEq:
			return lhs.Scalar.Bool == rhs.Scalar.Bool, true
		case pool.OperNeq:
			return lhs.Scalar.Bool != rhs.Scalar.Bool, true
		}
		return false, false
	case e.tt.WorksAsAnyP(lhs.Type):
		switch op {
		case pool.OperEq:
			return lhs.Ref == rhs.Ref, true
		case pool.OperNeq:
			return lhs.Ref != rhs.Ref, true
		}
		return false, false
	}
	e.cm.Errorf(diag.KindOperBadOperandType, loc, "comparison does not apply to this operand's type")
	return false, false
}

type ordered interface{ ~int64 | ~uint64 | ~float64 | ~int32 }

func compareOrdered[T ordered](op pool.Oper, a, b T) bool {
	switch op {
	case pool.OperEq:
		return a == b
	case pool.OperNeq:
		return a != b
	case pool.OperLt:
		return a < b
	case pool.OperLtEq:
		return a <= b
	case pool.OperGt:
		return a > b
	case pool.OperGtEq:
		return a >= b
	}
	return false
}

// PerformOperAssignment stores rhs through lhs's ref and returns a
// value aliasing the same slot (spec §4.5 "result aliases lhs").
func (e *Evaluator) PerformOperAssignment(loc source.CodeLoc, lhs, rhs *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if lhs == nil || lhs.Ref == nil {
		e.cm.Errorf(diag.KindOperAddressOfNonRef, loc, "cannot assign to a value with no storage")
		return nodeval.InvalidAt(loc), false
	}
	if !e.st.StoreRef(*lhs.Ref, rhs) {
		e.cm.Internalf(loc, "assignment target's ref is no longer live")
		return nodeval.InvalidAt(loc), false
	}
	cp := *rhs
	cp.Loc = loc
	cp.Ref = lhs.Ref
	return &cp, true
}

// PerformOperIndex selects one element of an array-shaped eval-value.
func (e *Evaluator) PerformOperIndex(loc source.CodeLoc, base, index *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if base == nil || base.Kind != nodeval.EvalValue || index == nil || index.Kind != nodeval.EvalValue {
		return nodeval.InvalidAt(loc), false
	}
	if !e.tt.WorksAsI(index.Type) && !e.tt.WorksAsU(index.Type) {
		e.cm.Errorf(diag.KindOperIndexNotIntegral, loc, "array index must be an integral type")
		return nodeval.InvalidAt(loc), false
	}
	idx := readIntish(e.tt, index)
	if idx < 0 || int(idx) >= len(base.Children) {
		// spec §4.5/§8: a literal out-of-bounds index is a warning, not
		// a hard failure — compilation still succeeds, yielding the
		// element type's zero value in place of the unreachable slot.
		e.cm.Warnf(diag.KindOperIndexOutOfBounds, loc, "array index %d is out of bounds", idx)
		return e.PerformZero(loc, e.tt.AddIndexOf(base.Type))
	}
	elem := base.Children[idx]
	cp := *elem
	cp.Loc = loc
	if base.Ref != nil {
		ref := *base.Ref
		cp.Ref = &ref
	}
	return &cp, true
}

// PerformOperMember selects one named field of a data-typed eval-value.
func (e *Evaluator) PerformOperMember(loc source.CodeLoc, base *nodeval.NodeVal, field pool.NameId) (*nodeval.NodeVal, bool) {
	if base == nil || base.Kind != nodeval.EvalValue {
		return nodeval.InvalidAt(loc), false
	}
	dt, ok := e.tt.Data(base.Type)
	if !ok {
		e.cm.Errorf(diag.KindOperIndexNonIndexable, loc, "member access on a non-data type")
		return nodeval.InvalidAt(loc), false
	}
	for i, f := range dt.Fields {
		if f.Name == field && i < len(base.Children) {
			cp := *base.Children[i]
			cp.Loc = loc
			return &cp, true
		}
	}
	e.cm.Errorf(diag.KindOperIndexNonIndexable, loc, "no such field on this data type")
	return nodeval.InvalidAt(loc), false
}

// PerformOperRegular implements the binary arithmetic/bitwise family:
// + - * / % << >> & | ^ (spec §4.5). Integer/unsigned arithmetic
// truncates back to resultTy's width; division and modulo by zero and
// a left shift with a negative left-hand operand are diagnosed rather
// than silently wrapping (spec §4.5 edge cases).
func (e *Evaluator) PerformOperRegular(loc source.CodeLoc, op pool.Oper, lhs, rhs *nodeval.NodeVal, resultTy typesys.TypeId) (*nodeval.NodeVal, bool) {
	if lhs == nil || rhs == nil || lhs.Kind != nodeval.EvalValue || rhs.Kind != nodeval.EvalValue {
		return nodeval.InvalidAt(loc), false
	}
	out := &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: resultTy}
	switch {
	case e.tt.WorksAsI(resultTy):
		a, b := lhs.Scalar.Int, rhs.Scalar.Int
		v, ok := e.intArith(loc, op, a, b)
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		out.Scalar.Int = truncInt(v, bitsOf(e.tt, resultTy))
	case e.tt.WorksAsU(resultTy):
		a, b := lhs.Scalar.Uint, rhs.Scalar.Uint
		v, ok := e.uintArith(loc, op, a, b)
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		out.Scalar.Uint = truncUint(v, bitsOf(e.tt, resultTy))
	case e.tt.WorksAsF(resultTy):
		v, ok := e.floatArith(loc, op, lhs.Scalar.Float, rhs.Scalar.Float)
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		if resultTy.Prim() == typesys.PrimF32 {
			v = float64(float32(v))
		}
		out.Scalar.Float = v
	default:
		e.cm.Errorf(diag.KindOperBadOperandType, loc, "operator does not apply to this operand's type")
		return nodeval.InvalidAt(loc), false
	}
	return out, true
}

func (e *Evaluator) intArith(loc source.CodeLoc, op pool.Oper, a, b int64) (int64, bool) {
	switch op {
	case pool.OperAdd:
		return a + b, true
	case pool.OperSub:
		return a - b, true
	case pool.OperMul:
		return a * b, true
	case pool.OperDiv:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return a / b, true
	case pool.OperRem:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return a % b, true
	case pool.OperShl:
		if a < 0 {
			e.cm.Errorf(diag.KindExprBinLeftShiftOfNeg, loc, "left shift of a negative value")
			return 0, false
		}
		return a << uint(b), true
	case pool.OperShr:
		return a >> uint(b), true
	case pool.OperBitAnd:
		return a & b, true
	case pool.OperBitOr:
		return a | b, true
	case pool.OperBitXor:
		return a ^ b, true
	}
	return 0, false
}

func (e *Evaluator) uintArith(loc source.CodeLoc, op pool.Oper, a, b uint64) (uint64, bool) {
	switch op {
	case pool.OperAdd:
		return a + b, true
	case pool.OperSub:
		return a - b, true
	case pool.OperMul:
		return a * b, true
	case pool.OperDiv:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return a / b, true
	case pool.OperRem:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return a % b, true
	case pool.OperShl:
		return a << b, true
	case pool.OperShr:
		return a >> b, true
	case pool.OperBitAnd:
		return a & b, true
	case pool.OperBitOr:
		return a | b, true
	case pool.OperBitXor:
		return a ^ b, true
	}
	return 0, false
}

func (e *Evaluator) floatArith(loc source.CodeLoc, op pool.Oper, a, b float64) (float64, bool) {
	switch op {
	case pool.OperAdd:
		return a + b, true
	case pool.OperSub:
		return a - b, true
	case pool.OperMul:
		return a * b, true
	case pool.OperDiv:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return a / b, true
	case pool.OperRem:
		if b == 0 {
			e.cm.Errorf(diag.KindExprBinDivByZero, loc, "division by zero")
			return 0, false
		}
		return math.Mod(a, b), true
	}
	return 0, false
}

// PerformSizeOf computes a type's size in bytes (spec §4.3 "sizeOf").
func (e *Evaluator) PerformSizeOf(loc source.CodeLoc, ty typesys.TypeId) (uint64, bool) {
	if e.tt.WorksAsB(ty) || e.tt.WorksAsC(ty) {
		return 1, true
	}
	if e.tt.WorksAsAnyP(ty) {
		return 8, true
	}
	if e.tt.WorksAsI(ty) || e.tt.WorksAsU(ty) || e.tt.WorksAsF(ty) {
		return uint64(bitsOf(e.tt, ty) / 8), true
	}
	if e.tt.WorksAsArr(ty) {
		elem := e.tt.AddIndexOf(ty)
		desc, _ := e.tt.Descr(ty)
		n := desc.Decors[len(desc.Decors)-1].Len
		sz, ok := e.PerformSizeOf(loc, elem)
		if !ok {
			return 0, false
		}
		return sz * uint64(n), true
	}
	if tup, ok := e.tt.Tuple(ty); ok {
		var total uint64
		for _, m := range tup.Members {
			sz, ok := e.PerformSizeOf(loc, m)
			if !ok {
				return 0, false
			}
			total += sz
		}
		return total, true
	}
	if dt, ok := e.tt.Data(ty); ok {
		var total uint64
		for _, f := range dt.Fields {
			sz, ok := e.PerformSizeOf(loc, f.Type)
			if !ok {
				return 0, false
			}
			total += sz
		}
		return total, true
	}
	return 0, false
}
