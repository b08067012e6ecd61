package symbols

import (
	"testing"

	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/typesys"
)

func newNames(words ...string) (*pool.NamePool, []pool.NameId) {
	np := pool.NewNamePool()
	ids := make([]pool.NameId, len(words))
	for i, w := range words {
		ids[i] = np.Add(w)
	}
	return np, ids
}

func TestVariableLookupInnerToOuterThenGlobal(t *testing.T) {
	_, names := newNames("x", "y")
	st := New()

	globalVal := &nodeval.NodeVal{Kind: nodeval.ValidVoid}
	if err := st.Declare(names[0], globalVal, false); err != nil {
		t.Fatalf("Declare at global: %v", err)
	}

	st.PushBlock(0, false)
	innerVal := &nodeval.NodeVal{Kind: nodeval.EvalValue}
	if err := st.Declare(names[1], innerVal, false); err != nil {
		t.Fatalf("Declare in inner block: %v", err)
	}

	if got, ok := st.LookupVariable(names[1]); !ok || got != innerVal {
		t.Fatalf("LookupVariable(y) = %v, %v; want innerVal, true", got, ok)
	}
	if got, ok := st.LookupVariable(names[0]); !ok || got != globalVal {
		t.Fatalf("LookupVariable(x) = %v, %v; want globalVal, true", got, ok)
	}

	if _, err := st.PopBlock(); err != nil {
		t.Fatalf("PopBlock: %v", err)
	}
	if _, ok := st.LookupVariable(names[1]); ok {
		t.Fatal("y should not be visible once its block has been popped")
	}
}

func TestVariableShadowing(t *testing.T) {
	_, names := newNames("x")
	st := New()

	outerVal := &nodeval.NodeVal{Kind: nodeval.ValidVoid}
	st.Declare(names[0], outerVal, false)

	st.PushBlock(0, false)
	innerVal := &nodeval.NodeVal{Kind: nodeval.EvalValue}
	st.Declare(names[0], innerVal, false)

	if got, _ := st.LookupVariable(names[0]); got != innerVal {
		t.Fatal("inner declaration should shadow the outer one")
	}
	st.PopBlock()
	if got, _ := st.LookupVariable(names[0]); got != outerVal {
		t.Fatal("outer declaration should be visible again after the inner block pops")
	}
}

func TestPerCallableChainIsolatedFromGlobal(t *testing.T) {
	_, names := newNames("g", "local")
	st := New()
	st.Declare(names[0], &nodeval.NodeVal{Kind: nodeval.ValidVoid}, false)

	st.PushCallable(CalleeInfo{IsFunc: true})
	st.PushBlock(0, false)
	st.Declare(names[1], &nodeval.NodeVal{Kind: nodeval.EvalValue}, false)

	if _, ok := st.LookupVariable(names[0]); !ok {
		t.Fatal("global variable should remain visible from within a callable")
	}
	if _, ok := st.LookupVariable(names[1]); !ok {
		t.Fatal("local variable should be visible within its own callable")
	}

	st.PopBlock()
	if err := st.PopCallable(); err != nil {
		t.Fatalf("PopCallable: %v", err)
	}
	if _, ok := st.LookupVariable(names[1]); ok {
		t.Fatal("local variable should not leak after its callable pops")
	}
}

func TestPopCallableRejectsUnclosedBlocks(t *testing.T) {
	st := New()
	st.PushCallable(CalleeInfo{IsFunc: true})
	st.PushBlock(0, false)
	if err := st.PopCallable(); err == nil {
		t.Fatal("PopCallable should refuse to pop with an open block")
	}
}

func boolCallable(argc int) typesys.Callable {
	args := make([]typesys.TypeId, argc)
	tt := typesys.NewTypeTable()
	for i := range args {
		args[i] = tt.Prim(typesys.PrimBool)
	}
	return typesys.Callable{IsFunc: true, ArgTypes: args, HasRet: true, RetType: tt.Prim(typesys.PrimBool)}
}

func TestRegisterFunctionForwardThenDefine(t *testing.T) {
	_, names := newNames("f")
	st := New()
	cm := diag.NewCompilationMessages(nil)

	sig := boolCallable(1)
	attrs := FuncAttrs{Evaluable: true}
	decl := &FuncEntry{Name: names[0], Sig: sig, Attrs: attrs}
	st.RegisterFunction(decl, cm)
	if cm.Failing() {
		t.Fatalf("unexpected diagnostics after forward decl: %v", cm.All())
	}

	def := &FuncEntry{Name: names[0], Sig: sig, Attrs: attrs, HasBody: true}
	result := st.RegisterFunction(def, cm)
	if cm.Failing() {
		t.Fatalf("unexpected diagnostics after matching definition: %v", cm.All())
	}
	if !result.HasBody {
		t.Fatal("forward declaration should have been filled in with the body")
	}

	set := st.LookupFunctions(names[0])
	if len(set) != 1 {
		t.Fatalf("LookupFunctions = %d entries, want 1", len(set))
	}
}

func TestRegisterFunctionRedefinitionRejected(t *testing.T) {
	_, names := newNames("f")
	st := New()
	cm := diag.NewCompilationMessages(nil)
	sig := boolCallable(1)
	attrs := FuncAttrs{Evaluable: true}

	st.RegisterFunction(&FuncEntry{Name: names[0], Sig: sig, Attrs: attrs, HasBody: true}, cm)
	st.RegisterFunction(&FuncEntry{Name: names[0], Sig: sig, Attrs: attrs, HasBody: true}, cm)
	if !cm.Failing() {
		t.Fatal("defining the same signature twice should raise a diagnostic")
	}
}

func TestRegisterFunctionDistinctSignaturesCoexist(t *testing.T) {
	_, names := newNames("f")
	st := New()
	cm := diag.NewCompilationMessages(nil)
	attrs := FuncAttrs{Evaluable: true}

	st.RegisterFunction(&FuncEntry{Name: names[0], Sig: boolCallable(1), Attrs: attrs, HasBody: true}, cm)
	st.RegisterFunction(&FuncEntry{Name: names[0], Sig: boolCallable(2), Attrs: attrs, HasBody: true}, cm)
	if cm.Failing() {
		t.Fatalf("distinct arities should coexist as separate overloads: %v", cm.All())
	}
	if len(st.LookupFunctions(names[0])) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(st.LookupFunctions(names[0])))
	}
}

func TestRegisterMacroExactArityCollision(t *testing.T) {
	_, names := newNames("m")
	st := New()
	cm := diag.NewCompilationMessages(nil)

	m1 := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 1}, {Name: 2}}}
	if ok := st.RegisterMacro(m1, cm); !ok {
		t.Fatalf("first registration should succeed: %v", cm.All())
	}
	m2 := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 3}, {Name: 4}}}
	if ok := st.RegisterMacro(m2, cm); ok {
		t.Fatal("same-arity macro collision should be rejected")
	}
}

func TestRegisterMacroVariadicConflictsWithLesserFixed(t *testing.T) {
	_, names := newNames("m")
	st := New()
	cm := diag.NewCompilationMessages(nil)

	fixed := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 1}}}
	if ok := st.RegisterMacro(fixed, cm); !ok {
		t.Fatalf("fixed registration should succeed: %v", cm.All())
	}
	variadic := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 2}, {Name: 3}}, Variadic: true}
	if ok := st.RegisterMacro(variadic, cm); ok {
		t.Fatal("variadic macro with minimum >= an existing fixed macro's arity should be rejected")
	}
}

func TestRegisterMacroFixedAboveVariadicIsAllowed(t *testing.T) {
	_, names := newNames("m")
	st := New()
	cm := diag.NewCompilationMessages(nil)

	fixed := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 1}, {Name: 2}, {Name: 3}}}
	st.RegisterMacro(fixed, cm)
	variadic := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 4}, {Name: 5}}, Variadic: true}
	if ok := st.RegisterMacro(variadic, cm); !ok {
		t.Fatalf("variadic macro whose minimum is below the fixed macro's arity should be allowed: %v", cm.All())
	}
}

func TestLookupMacroPicksExactOrWidestVariadic(t *testing.T) {
	_, names := newNames("m")
	st := New()
	cm := diag.NewCompilationMessages(nil)

	fixed := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 1}, {Name: 2}, {Name: 3}}}
	st.RegisterMacro(fixed, cm)
	variadic := &MacroEntry{Name: names[0], Args: []MacroArg{{Name: 4}, {Name: 5}, {Name: 6}}, Variadic: true}
	st.RegisterMacro(variadic, cm)

	if m, ok := st.LookupMacro(names[0], 3); !ok || m != fixed {
		t.Fatal("call with 3 args should resolve to the fixed macro")
	}
	if m, ok := st.LookupMacro(names[0], 5); !ok || m != variadic {
		t.Fatal("call with more args than any fixed macro should resolve to the variadic macro")
	}
	if _, ok := st.LookupMacro(names[0], 1); ok {
		t.Fatal("call with fewer args than any registered macro should not resolve")
	}
}

func TestRefRoundTrip(t *testing.T) {
	_, names := newNames("x")
	st := New()
	orig := &nodeval.NodeVal{Kind: nodeval.EvalValue}
	st.Declare(names[0], orig, false)

	ref, ok := st.RefFor(names[0])
	if !ok {
		t.Fatal("RefFor should find the just-declared variable")
	}
	got, ok := st.LoadRef(ref)
	if !ok || got != orig {
		t.Fatal("LoadRef should return the declared value")
	}

	updated := &nodeval.NodeVal{Kind: nodeval.ValidVoid}
	if !st.StoreRef(ref, updated) {
		t.Fatal("StoreRef should succeed for a live ref")
	}
	if got, _ := st.LoadRef(ref); got != updated {
		t.Fatal("LoadRef should observe the StoreRef'd value")
	}
}

func TestRefInvalidAfterBlockPop(t *testing.T) {
	_, names := newNames("x")
	st := New()
	st.PushBlock(0, false)
	st.Declare(names[0], &nodeval.NodeVal{Kind: nodeval.EvalValue}, false)
	ref, ok := st.RefFor(names[0])
	if !ok {
		t.Fatal("RefFor should find the declared variable")
	}
	st.PopBlock()
	if _, ok := st.LoadRef(ref); ok {
		t.Fatal("a ref into a popped block should no longer resolve")
	}
}

func TestDropRegistry(t *testing.T) {
	tt := typesys.NewTypeTable()
	st := New()
	ty := tt.Prim(typesys.PrimI32)

	if _, ok := st.DropFor(ty); ok {
		t.Fatal("no drop function should be registered yet")
	}
	fn := &nodeval.NodeVal{Kind: nodeval.EvalValue}
	st.RegisterDrop(ty, fn)
	got, ok := st.DropFor(ty)
	if !ok || got != fn {
		t.Fatal("DropFor should return the registered drop function")
	}
}
