package proc_test

// End-to-end tests driving the Processor through real .orb source text
// (lexparse -> proc, wired exactly the way internal/orchestrator wires
// the three components), covering spec.md §8's universal laws and
// end-to-end scenarios at the processor level rather than through a
// full Compile() run.

import (
	"testing"

	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/lexparse"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/proc"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"

	"github.com/orblang/orbc/internal/codegen"
	"github.com/orblang/orbc/internal/eval"
)

// harness bundles one fresh compilation's shared tables plus a wired
// Processor, the same two-phase construction internal/orchestrator.New
// performs (Processor first, then the two Backends over a Runner
// closure on it, then SetBackends).
type harness struct {
	np *pool.NamePool
	sp *pool.StringPool
	tt *typesys.TypeTable
	st *symbols.SymbolTable
	cm *diag.CompilationMessages
	p  *proc.Processor
}

func newHarness() *harness {
	np := pool.NewNamePool()
	sp := pool.NewStringPool()
	tt := typesys.NewTypeTable()
	st := symbols.New()
	cm := diag.NewCompilationMessages(nil)

	p := proc.New(np, sp, tt, st, cm)
	ev := eval.New(tt, st, cm, p.Run)
	co := codegen.New(tt, st, cm, np, p.Run)
	p.SetBackends(co, ev)

	return &harness{np: np, sp: sp, tt: tt, st: st, cm: cm, p: p}
}

// runAll parses src as one file and processes every top-level form in
// order, stopping early if a form fails or the message status starts
// failing (mirroring internal/orchestrator.processFile's loop). It
// returns the last form's result.
func (h *harness) runAll(t *testing.T, src string) (*nodeval.NodeVal, bool) {
	t.Helper()
	parser := lexparse.NewParser("t.orb", src)
	forms := parser.ParseFile()
	if len(parser.Errors()) != 0 {
		t.Fatalf("parse errors: %v", parser.Errors())
	}
	var last *nodeval.NodeVal
	ok := true
	for _, form := range forms {
		if h.cm.Failing() {
			break
		}
		last, ok = h.p.ProcessTopLevel(form)
		if !ok {
			break
		}
	}
	return last, ok
}

// --- spec §8 scenario 1: sym/ret arithmetic inside a function, called
// at compile time.

func TestScenarioSymArithmeticReturnsSeven(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `
		(fnc main () ::ret i32 ::evaluable
			(block
				(sym x ::type i32 3)
				(sym y ::type i32 (+ x 4))
				(ret y)))
		(main)
	`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if val.Scalar.Int != 7 {
		t.Fatalf("expected main() to yield 7, got %d", val.Scalar.Int)
	}
}

// --- spec §8 scenario 2: a macro squaring its argument.

func TestScenarioMacroSquare(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `
		(mac sq (a) (* a a))
		(sq 5)
	`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if val.Scalar.Int != 25 {
		t.Fatalf("expected sq(5) to yield 25, got %d", val.Scalar.Int)
	}
}

// --- spec §8 scenario 3: a typed block's first pass wins; the second
// pass statement is reachable-but-skipped.

func TestScenarioBlockFirstPassWins(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `
		(block ::name bl ::type i32
			(pass bl 1)
			(pass bl 2))
	`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if val.Scalar.Int != 1 {
		t.Fatalf("expected block value 1 (first pass wins), got %d", val.Scalar.Int)
	}
}

// --- spec §8 scenario 4: cast(ptr, 0) is a null ptr; casting that
// result to i32 implicitly fails, but an explicit cast of it succeeds.

func TestScenarioCastPtrNull(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `(cast ptr 0)`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if !h.tt.WorksAsPtr(val.Type) {
		t.Fatalf("expected cast(ptr, 0) to be ptr-typed, got %v", val.Type)
	}
}

func TestScenarioCastI32OfPtrSucceedsExplicitly(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `(cast i32 (cast ptr 0))`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if val.Scalar.Int != 0 {
		t.Fatalf("expected explicit cast(i32, cast(ptr, 0)) to yield 0, got %d", val.Scalar.Int)
	}
}

// --- spec §8 scenario 5: overload resolution rejects a too-wide
// literal but accepts an explicitly narrowed cast.

func TestScenarioOverloadRejectsLiteralThatDoesNotFit(t *testing.T) {
	h := newHarness()
	_, ok := h.runAll(t, `
		(fnc f ((x ::type i8)) ::ret i32 ::evaluable (block (ret (cast i32 x))))
		(f 200)
	`)
	if ok || !h.cm.Failing() {
		t.Fatalf("expected overload resolution to fail for a literal that does not fit i8")
	}
	found := false
	for _, m := range h.cm.All() {
		if m.Kind == diag.KindFuncNotFound {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected KindFuncNotFound, got %v", h.cm.All())
	}
}

func TestScenarioOverloadAcceptsNarrowedCast(t *testing.T) {
	h := newHarness()
	val, ok := h.runAll(t, `
		(fnc g ((x ::type i8)) ::ret i32 ::evaluable (block (ret (cast i32 x))))
		(g (cast i8 (- 1)))
	`)
	if h.cm.Failing() {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	if !ok || val.Kind != nodeval.EvalValue {
		t.Fatalf("expected an eval-value result, got %+v ok=%v", val, ok)
	}
	if val.Scalar.Int != -1 {
		t.Fatalf("expected g(cast(i8, -1)) to yield -1, got %d", val.Scalar.Int)
	}
}

// --- spec §8 Universal Law 2: implicit-cast transitivity within a
// primitive family, and no crossing between families.

func TestImplicitCastTransitivityWithinFamily(t *testing.T) {
	h := newHarness()
	i8 := h.tt.Prim(typesys.PrimI8)
	i16 := h.tt.Prim(typesys.PrimI16)
	i32 := h.tt.Prim(typesys.PrimI32)
	if !h.tt.IsImplicitCastable(i8, i16) || !h.tt.IsImplicitCastable(i16, i32) {
		t.Fatalf("expected i8->i16 and i16->i32 to be implicitly castable")
	}
	if !h.tt.IsImplicitCastable(i8, i32) {
		t.Fatalf("expected i8->i32 to be implicitly castable transitively")
	}
}

func TestImplicitCastNeverCrossesFamilies(t *testing.T) {
	h := newHarness()
	i32 := h.tt.Prim(typesys.PrimI32)
	u32 := h.tt.Prim(typesys.PrimU32)
	if h.tt.IsImplicitCastable(i32, u32) || h.tt.IsImplicitCastable(u32, i32) {
		t.Fatalf("expected no implicit cast between signed and unsigned families")
	}
}

// --- boundary test: a variadic function called with zero trailing
// args succeeds.

func TestVariadicFunctionCalledWithZeroTrailingArgsSucceeds(t *testing.T) {
	h := newHarness()
	_, ok := h.runAll(t, `
		(fnc h ((x ::type i32) ...) ::ret i32 ::evaluable
			(block (ret x)))
		(h 1)
	`)
	if h.cm.Failing() || !ok {
		t.Fatalf("expected a variadic call with zero trailing args to succeed: %v", h.cm.All())
	}
}

// --- boundary test: ret with a value from a void function is
// errorRetValue.

func TestRetValueFromVoidFunctionIsError(t *testing.T) {
	h := newHarness()
	_, ok := h.runAll(t, `
		(fnc novoid () ::evaluable (block (ret 1)))
		(novoid)
	`)
	if ok || !h.cm.Failing() {
		t.Fatalf("expected ret with a value from a void function to fail")
	}
	found := false
	for _, m := range h.cm.All() {
		if m.Kind == diag.KindRetValue {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected KindRetValue, got %v", h.cm.All())
	}
}

// --- boundary test: ret without a value from a non-void function is
// errorRetNoValue.

func TestRetNoValueFromTypedFunctionIsError(t *testing.T) {
	h := newHarness()
	_, ok := h.runAll(t, `
		(fnc needsval () ::ret i32 ::evaluable (block (ret)))
		(needsval)
	`)
	if ok || !h.cm.Failing() {
		t.Fatalf("expected bare ret from a non-void function to fail")
	}
	found := false
	for _, m := range h.cm.All() {
		if m.Kind == diag.KindRetNoValue {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected KindRetNoValue, got %v", h.cm.All())
	}
}

// --- spec §8 Universal Law 4: drop order fires v3, v2, v1 on block exit.
// Three distinctly-typed drop functions each emit one info message;
// a block declaring one variable of each type, in order v1:i8 v2:i16
// v3:i32, must tear down calling the i32, then i16, then i8 drop.

func TestDropOrderFiresInReverseDeclarationOrder(t *testing.T) {
	h := newHarness()
	_, ok := h.runAll(t, `
		(fnc dropI8 ((v ::type i8)) ::evaluable ::drop (block (message info "drop i8")))
		(fnc dropI16 ((v ::type i16)) ::evaluable ::drop (block (message info "drop i16")))
		(fnc dropI32 ((v ::type i32)) ::evaluable ::drop (block (message info "drop i32")))
		(block
			(sym v1 ::type i8 1)
			(sym v2 ::type i16 2)
			(sym v3 ::type i32 3))
	`)
	if h.cm.Failing() || !ok {
		t.Fatalf("unexpected diagnostics: %v", h.cm.All())
	}
	var order []string
	for _, m := range h.cm.All() {
		if m.Kind == diag.KindUserMessage {
			order = append(order, m.Text)
		}
	}
	want := []string{"drop i32", "drop i16", "drop i8"}
	if len(order) != len(want) {
		t.Fatalf("expected %d drop messages, got %v", len(want), order)
	}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("drop order = %v, want %v", order, want)
		}
	}
}
