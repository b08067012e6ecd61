package eval

import (
	"testing"

	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

func newEvaluator() (*Evaluator, *typesys.TypeTable, *symbols.SymbolTable, *diag.CompilationMessages) {
	tt := typesys.NewTypeTable()
	st := symbols.New()
	cm := diag.NewCompilationMessages(nil)
	var ev *Evaluator
	run := backend.Runner(func(*parsetree.Node) (*nodeval.NodeVal, bool) {
		return nodeval.Void(source.CodeLoc{}), true
	})
	ev = New(tt, st, cm, run)
	return ev, tt, st, cm
}

func i32Val(tt *typesys.TypeTable, v int64) *nodeval.NodeVal {
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Type: tt.Prim(typesys.PrimI32), Scalar: nodeval.Scalar{Int: v}}
}

func TestPerformZeroScalarAndArray(t *testing.T) {
	ev, tt, _, _ := newEvaluator()

	z, ok := ev.PerformZero(source.CodeLoc{}, tt.Prim(typesys.PrimI32))
	if !ok || z.Scalar.Int != 0 {
		t.Fatalf("PerformZero(i32) = %+v, %v", z, ok)
	}

	arr := tt.AddArrOfLenOf(tt.Prim(typesys.PrimBool), 3)
	za, ok := ev.PerformZero(source.CodeLoc{}, arr)
	if !ok || len(za.Children) != 3 || za.Children[0].Scalar.Bool {
		t.Fatalf("PerformZero(arr) = %+v, %v", za, ok)
	}
}

func TestPerformOperRegularDivByZero(t *testing.T) {
	ev, tt, _, cm := newEvaluator()
	lhs, rhs := i32Val(tt, 10), i32Val(tt, 0)
	_, ok := ev.PerformOperRegular(source.CodeLoc{}, pool.OperDiv, lhs, rhs, tt.Prim(typesys.PrimI32))
	if ok {
		t.Fatal("division by zero should fail")
	}
	if !cm.Failing() {
		t.Fatal("division by zero should raise a diagnostic")
	}
}

func TestPerformOperRegularTruncatesToResultWidth(t *testing.T) {
	ev, tt, _, cm := newEvaluator()
	i8 := tt.Prim(typesys.PrimI8)
	lhs, rhs := &nodeval.NodeVal{Kind: nodeval.EvalValue, Type: i8, Scalar: nodeval.Scalar{Int: 100}},
		&nodeval.NodeVal{Kind: nodeval.EvalValue, Type: i8, Scalar: nodeval.Scalar{Int: 100}}
	out, ok := ev.PerformOperRegular(source.CodeLoc{}, pool.OperAdd, lhs, rhs, i8)
	if !ok {
		t.Fatalf("unexpected failure: %v", cm.All())
	}
	if out.Scalar.Int != truncInt(200, 8) {
		t.Fatalf("got %d, want truncated result %d", out.Scalar.Int, truncInt(200, 8))
	}
}

func TestPerformOperRegularLeftShiftOfNegative(t *testing.T) {
	ev, tt, _, cm := newEvaluator()
	lhs, rhs := i32Val(tt, -1), i32Val(tt, 1)
	_, ok := ev.PerformOperRegular(source.CodeLoc{}, pool.OperShl, lhs, rhs, tt.Prim(typesys.PrimI32))
	if ok {
		t.Fatal("left shift of a negative value should fail")
	}
	if !cm.Failing() {
		t.Fatal("left shift of a negative value should raise a diagnostic")
	}
}

func TestComparisonChainShortCircuitsToFalse(t *testing.T) {
	ev, tt, _, _ := newEvaluator()
	a, b, c := i32Val(tt, 1), i32Val(tt, 5), i32Val(tt, 3)

	state := ev.PerformOperComparisonSetUp(source.CodeLoc{})
	if cont, ok := ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperLt, a, b); !cont || !ok {
		t.Fatal("a<b step should succeed")
	}
	if cont, ok := ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperLt, b, c); !cont || !ok {
		t.Fatal("b<c step should still run even though it is false")
	}
	result, ok := ev.PerformOperComparisonTearDown(source.CodeLoc{}, state)
	if !ok || result.Scalar.Bool {
		t.Fatalf("1<5<3 should evaluate to false, got %+v", result)
	}
}

func TestComparisonChainNeqIsNAryDistinct(t *testing.T) {
	// spec §4.5 "!= is n-ary-distinct": a != b != c must check every
	// pair, not just adjacent links — a=1, b=2, c=1 has a==c even
	// though both adjacent links (a!=b, b!=c) individually hold.
	ev, tt, _, _ := newEvaluator()
	a, b, c := i32Val(tt, 1), i32Val(tt, 2), i32Val(tt, 1)

	state := ev.PerformOperComparisonSetUp(source.CodeLoc{})
	if cont, ok := ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperNeq, a, b); !cont || !ok {
		t.Fatal("a!=b step should succeed")
	}
	if cont, ok := ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperNeq, b, c); !cont || !ok {
		t.Fatal("b!=c step should still run even though the overall chain fails")
	}
	result, ok := ev.PerformOperComparisonTearDown(source.CodeLoc{}, state)
	if !ok || result.Scalar.Bool {
		t.Fatalf("1!=2!=1 should evaluate to false (a==c), got %+v", result)
	}
}

func TestComparisonChainNeqAllDistinctIsTrue(t *testing.T) {
	ev, tt, _, _ := newEvaluator()
	a, b, c := i32Val(tt, 1), i32Val(tt, 2), i32Val(tt, 3)

	state := ev.PerformOperComparisonSetUp(source.CodeLoc{})
	ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperNeq, a, b)
	ev.PerformOperComparisonStep(source.CodeLoc{}, state, pool.OperNeq, b, c)
	result, ok := ev.PerformOperComparisonTearDown(source.CodeLoc{}, state)
	if !ok || !result.Scalar.Bool {
		t.Fatalf("1!=2!=3 should evaluate to true, got %+v", result)
	}
}

func TestPerformOperIndexLiteralOutOfBoundsWarnsAndSucceeds(t *testing.T) {
	// spec §4.5/§8: a literal out-of-bounds array index is a warning,
	// not an error, and still yields a usable value.
	ev, tt, _, cm := newEvaluator()
	arr := tt.AddArrOfLenOf(tt.Prim(typesys.PrimI32), 3)
	base, ok := ev.PerformZero(source.CodeLoc{}, arr)
	if !ok {
		t.Fatalf("PerformZero(arr) failed")
	}
	idx := &nodeval.NodeVal{Kind: nodeval.EvalValue, Type: tt.Prim(typesys.PrimI32), Scalar: nodeval.Scalar{Int: -1}}

	result, ok := ev.PerformOperIndex(source.CodeLoc{}, base, idx)
	if !ok {
		t.Fatal("out-of-bounds literal index should still succeed")
	}
	if result.Scalar.Int != 0 {
		t.Fatalf("out-of-bounds index should yield the element type's zero value, got %+v", result)
	}
	if cm.Failing() {
		t.Fatal("out-of-bounds literal index must not raise an error-level diagnostic")
	}
	msgs := cm.All()
	if len(msgs) != 1 || msgs[0].Level != diag.Warning || msgs[0].Kind != diag.KindOperIndexOutOfBounds {
		t.Fatalf("expected exactly one warning-level KindOperIndexOutOfBounds message, got %+v", msgs)
	}
}

func TestPerformRegisterThenAssignmentThroughRef(t *testing.T) {
	ev, tt, st, cm := newEvaluator()
	np := pool.NewNamePool()
	x := np.Add("x")

	st.PushBlock(0, false)
	declared, ok := ev.PerformRegister(source.CodeLoc{}, x, tt.Prim(typesys.PrimI32), i32Val(tt, 7))
	if !ok || declared.Ref == nil {
		t.Fatalf("PerformRegister failed: %v", cm.All())
	}

	loaded, ok := ev.PerformLoad(source.CodeLoc{}, backend.LoadVar, x, nil)
	if !ok || loaded.Scalar.Int != 7 {
		t.Fatalf("expected loaded value 7, got %+v, %v", loaded, ok)
	}

	updated, ok := ev.PerformOperAssignment(source.CodeLoc{}, loaded, i32Val(tt, 42))
	if !ok {
		t.Fatalf("assignment failed: %v", cm.All())
	}
	if updated.Scalar.Int != 42 {
		t.Fatalf("assignment result should carry the new value, got %d", updated.Scalar.Int)
	}

	reloaded, ok := ev.PerformLoad(source.CodeLoc{}, backend.LoadVar, x, nil)
	if !ok || reloaded.Scalar.Int != 42 {
		t.Fatalf("variable should observe the assignment, got %+v, %v", reloaded, ok)
	}
}

func TestPerformCallBindsArgsAndRunsBody(t *testing.T) {
	tt := typesys.NewTypeTable()
	st := symbols.New()
	cm := diag.NewCompilationMessages(nil)
	np := pool.NewNamePool()
	argName := np.Add("n")

	var ev *Evaluator
	run := backend.Runner(func(body *parsetree.Node) (*nodeval.NodeVal, bool) {
		// Stand in for the processor re-walking the callee body: read
		// back the bound argument to prove the call frame was set up.
		val, ok := st.LookupVariable(argName)
		if !ok {
			return nodeval.InvalidAt(source.CodeLoc{}), false
		}
		return val, true
	})
	ev = New(tt, st, cm, run)

	entry := &symbols.FuncEntry{
		Name:     np.Add("f"),
		Sig:      typesys.Callable{IsFunc: true, ArgTypes: []typesys.TypeId{tt.Prim(typesys.PrimI32)}, HasRet: true, RetType: tt.Prim(typesys.PrimI32)},
		Attrs:    symbols.FuncAttrs{Evaluable: true},
		ArgNames: []pool.NameId{argName},
		HasBody:  true,
		Body:     &parsetree.Node{},
	}

	result, ok := ev.PerformCall(source.CodeLoc{}, nil, entry, []*nodeval.NodeVal{i32Val(tt, 9)})
	if !ok {
		t.Fatalf("PerformCall failed: %v", cm.All())
	}
	if result.Scalar.Int != 9 {
		t.Fatalf("expected bound argument 9 to flow through, got %d", result.Scalar.Int)
	}
}

func TestPerformInvokeBindsMacroArgs(t *testing.T) {
	tt := typesys.NewTypeTable()
	st := symbols.New()
	cm := diag.NewCompilationMessages(nil)
	np := pool.NewNamePool()
	argName := np.Add("v")

	var ev *Evaluator
	run := backend.Runner(func(body *parsetree.Node) (*nodeval.NodeVal, bool) {
		val, ok := st.LookupVariable(argName)
		if !ok {
			return nodeval.InvalidAt(source.CodeLoc{}), false
		}
		return val, true
	})
	ev = New(tt, st, cm, run)

	macro := &symbols.MacroEntry{
		Name: np.Add("m"),
		Args: []symbols.MacroArg{{Name: argName, Mode: symbols.ArgPreprocess}},
		Body: &parsetree.Node{},
	}
	result, ok := ev.PerformInvoke(source.CodeLoc{}, macro, []*nodeval.NodeVal{i32Val(tt, 5)})
	if !ok {
		t.Fatalf("PerformInvoke failed: %v", cm.All())
	}
	if result.Scalar.Int != 5 {
		t.Fatalf("expected bound macro argument 5 to flow through, got %d", result.Scalar.Int)
	}
}

func TestPerformOperDerefRefusedByEvaluator(t *testing.T) {
	ev, tt, _, _ := newEvaluator()
	ptr := &nodeval.NodeVal{Kind: nodeval.EvalValue, Type: tt.AddAddrOf(tt.Prim(typesys.PrimI32))}
	if _, ok := ev.PerformOperDeref(source.CodeLoc{}, ptr); ok {
		t.Fatal("the evaluator should refuse to dereference a raw pointer")
	}
}

func TestPerformSizeOf(t *testing.T) {
	ev, tt, _, _ := newEvaluator()
	if sz, ok := ev.PerformSizeOf(source.CodeLoc{}, tt.Prim(typesys.PrimI64)); !ok || sz != 8 {
		t.Fatalf("sizeOf(i64) = %d, %v; want 8, true", sz, ok)
	}
	arr := tt.AddArrOfLenOf(tt.Prim(typesys.PrimI32), 4)
	if sz, ok := ev.PerformSizeOf(source.CodeLoc{}, arr); !ok || sz != 16 {
		t.Fatalf("sizeOf(i32[4]) = %d, %v; want 16, true", sz, ok)
	}
}
