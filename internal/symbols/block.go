package symbols

import (
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/typesys"
)

// varEntry is a variable slot (spec §3 "Variable entry"): name, the
// stored NodeVal, whether scope teardown should skip its drop call,
// and its lifetime-nest coordinate.
type varEntry struct {
	name         pool.NameId
	val          *nodeval.NodeVal
	skipDrop     bool
	callableDep  int
	blockDep     int
	declareIndex int
}

// Block is a lexical scope (spec §3 "Block"): optional name, optional
// passing type for expression-blocks, backend handles for its
// exit/loop targets, an optional backend phi for the pass-value, and
// (evaluator-only) an accumulated pass-value.
//
// Grounded on internal/interp/runtime/environment.go's nested-scope
// shape, generalized from a single unconditional break/continue target
// to the spec's named-block exit/loop/pass model (spec §4.7).
type Block struct {
	Name    pool.NameId
	HasName bool

	PassType  typesys.TypeId
	HasPass   bool // true only for expression-blocks (declared with a pass type); pass is rejected otherwise
	VoidBlock bool // named void block: has a name, forbids pass

	vars []*varEntry

	// ExitHandle/LoopHandle are opaque backend tokens naming this
	// block's exit and re-entry targets; the evaluator ignores them.
	ExitHandle any
	LoopHandle any
	PassPhi    any

	// AccumPass is the evaluator's running pass-value for an
	// expression block, set by a `pass` targeting this block.
	AccumPass *nodeval.NodeVal

	callableDepth int
	blockDepth    int
}

func (b *Block) declare(name pool.NameId, val *nodeval.NodeVal, skipDrop bool) *varEntry {
	e := &varEntry{
		name:         name,
		val:          val,
		skipDrop:     skipDrop,
		callableDep:  b.callableDepth,
		blockDep:     b.blockDepth,
		declareIndex: len(b.vars),
	}
	b.vars = append(b.vars, e)
	return e
}

func (b *Block) lookup(name pool.NameId) (*varEntry, bool) {
	for i := len(b.vars) - 1; i >= 0; i-- {
		if b.vars[i].name == name {
			return b.vars[i], true
		}
	}
	return nil, false
}

// VarsInDeclareOrder returns this block's variables in declaration
// order (forward); teardown walks it in reverse (spec §4.2
// "Scope-tearing contract ... reverse declaration order").
func (b *Block) VarsInDeclareOrder() []*varEntry {
	return b.vars
}

// Value returns the variable's currently stored value.
func (e *varEntry) Value() *nodeval.NodeVal { return e.val }

// SkipDrop reports whether scope teardown must skip this variable's
// drop call (spec §4.2 "Scope-tearing contract"): true for a moved-from
// variable or one bound to a value someone else now owns.
func (e *varEntry) SkipDrop() bool { return e.skipDrop }

// Type reports the variable's declared type, for looking up its drop
// function at teardown.
func (e *varEntry) Type() typesys.TypeId {
	if e.val == nil {
		return typesys.Invalid
	}
	return e.val.Type
}
