// Package symbols implements SymbolTable and Block control (spec §3
// "SymbolTable", §4.2): the two disjoint scope chains (global and
// per-callable), variable entries with lifetime coordinates, function
// and macro overload sets, and the drop-function registry.
//
// Grounded on internal/semantic/symbol_table.go's overload-set and
// forward-declaration handling (DefineOverload), generalized from
// DWScript's function-only overloads to function-and-macro overload
// sets, and on internal/interp/runtime/environment.go's nested-scope
// chain shape, generalized to the spec's two disjoint chains.
package symbols

import (
	"fmt"

	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/typesys"
)

// CalleeInfo describes the callable currently being processed (spec §3
// "Callee info").
type CalleeInfo struct {
	IsFunc     bool
	Evaluable  bool
	Lowerable  bool
	HasRetType bool
	RetType    typesys.TypeId
}

// callableFrame is one entry of the per-callable chain stack: its own
// block chain plus the callee info in effect while it is active.
type callableFrame struct {
	info   CalleeInfo
	blocks []*Block
}

// SymbolTable holds the two disjoint block stacks, the function and
// macro overload sets, and the drop-function registry (spec §3).
type SymbolTable struct {
	global []*Block
	stack  []*callableFrame

	funcs  map[pool.NameId][]*FuncEntry
	macros map[pool.NameId][]*MacroEntry

	drops map[typesys.TypeId]*nodeval.NodeVal
}

// New creates an empty SymbolTable with the global chain already
// holding its outermost block.
func New() *SymbolTable {
	st := &SymbolTable{
		funcs:  make(map[pool.NameId][]*FuncEntry),
		macros: make(map[pool.NameId][]*MacroEntry),
		drops:  make(map[typesys.TypeId]*nodeval.NodeVal),
	}
	st.global = append(st.global, &Block{})
	return st
}

// activeChain returns the chain blocks are pushed onto right now: the
// current callable's chain if one is active, else the global chain.
func (st *SymbolTable) activeChain() *[]*Block {
	if len(st.stack) > 0 {
		return &st.stack[len(st.stack)-1].blocks
	}
	return &st.global
}

// callableDepth is the VarRef/Block coordinate for the active chain:
// -1 names the global chain, otherwise the 0-based index into the
// per-callable stack (spec §3 "lifetime-nest-level (callable-depth,
// block-depth)").
func (st *SymbolTable) callableDepth() int {
	if len(st.stack) == 0 {
		return -1
	}
	return len(st.stack) - 1
}

// PushBlock opens a new lexical scope on the active chain.
func (st *SymbolTable) PushBlock(name pool.NameId, hasName bool) *Block {
	chain := st.activeChain()
	b := &Block{
		Name:          name,
		HasName:       hasName,
		callableDepth: st.callableDepth(),
		blockDepth:    len(*chain),
	}
	*chain = append(*chain, b)
	return b
}

// chainForCallableDepth resolves a VarRef's CallableDepth coordinate
// to the chain it names.
func (st *SymbolTable) chainForCallableDepth(depth int) []*Block {
	if depth < 0 {
		return st.global
	}
	if depth < len(st.stack) {
		return st.stack[depth].blocks
	}
	return nil
}

// resolveRef locates the variable entry a VarRef names, honoring spec
// §3's invariant that a ref is valid only while its owning block
// remains on the active chain: if the block has since been popped,
// the chain is shorter than BlockDepth and resolution fails.
func (st *SymbolTable) resolveRef(ref nodeval.VarRef) (*varEntry, bool) {
	chain := st.chainForCallableDepth(ref.CallableDepth)
	if ref.BlockDepth < 0 || ref.BlockDepth >= len(chain) {
		return nil, false
	}
	b := chain[ref.BlockDepth]
	if ref.Index < 0 || ref.Index >= len(b.vars) {
		return nil, false
	}
	return b.vars[ref.Index], true
}

// LoadRef reads the current value of the variable a ref names.
func (st *SymbolTable) LoadRef(ref nodeval.VarRef) (*nodeval.NodeVal, bool) {
	e, ok := st.resolveRef(ref)
	if !ok {
		return nil, false
	}
	return e.val, true
}

// StoreRef writes through a ref to the variable it names (spec §4.5
// "Assignment ... result aliases lhs").
func (st *SymbolTable) StoreRef(ref nodeval.VarRef, val *nodeval.NodeVal) bool {
	e, ok := st.resolveRef(ref)
	if !ok {
		return false
	}
	e.val = val
	return true
}

// MarkMoved flags the variable ref names as skip-drop (spec §4.6
// "move ... clears ref, marks source invalid for further use, enforces
// drop discipline"): ownership has transferred out, so scope teardown
// must not call its drop function a second time.
func (st *SymbolTable) MarkMoved(ref *nodeval.VarRef) bool {
	if ref == nil {
		return false
	}
	e, ok := st.resolveRef(*ref)
	if !ok {
		return false
	}
	e.skipDrop = true
	return true
}

// RefFor builds the VarRef coordinate for a variable just declared in
// the innermost active block, for use as an eval-value's alias.
func (st *SymbolTable) RefFor(name pool.NameId) (nodeval.VarRef, bool) {
	chain := st.activeChain()
	if len(*chain) == 0 {
		return nodeval.VarRef{}, false
	}
	inner := (*chain)[len(*chain)-1]
	e, ok := inner.lookup(name)
	if !ok {
		return nodeval.VarRef{}, false
	}
	return nodeval.VarRef{CallableDepth: e.callableDep, BlockDepth: e.blockDep, Index: e.declareIndex}, true
}

// PopBlock closes the innermost scope on the active chain. The caller
// must have already run its drop sequence (spec §4.2 "Scope-tearing
// contract"); PopBlock itself only removes it from the chain.
func (st *SymbolTable) PopBlock() (*Block, error) {
	chain := st.activeChain()
	if len(*chain) == 0 {
		return nil, fmt.Errorf("symbols: PopBlock on an empty chain")
	}
	b := (*chain)[len(*chain)-1]
	*chain = (*chain)[:len(*chain)-1]
	return b, nil
}

// PushCallable opens a new per-callable chain (spec §3 "a stack of
// per-callable chains pushed on function/macro entry").
func (st *SymbolTable) PushCallable(info CalleeInfo) {
	st.stack = append(st.stack, &callableFrame{info: info})
}

// PopCallable closes the innermost per-callable chain. All of its
// blocks must already have been popped.
func (st *SymbolTable) PopCallable() error {
	if len(st.stack) == 0 {
		return fmt.Errorf("symbols: PopCallable with no active callable")
	}
	frame := st.stack[len(st.stack)-1]
	if len(frame.blocks) != 0 {
		return fmt.Errorf("symbols: PopCallable with %d unclosed block(s)", len(frame.blocks))
	}
	st.stack = st.stack[:len(st.stack)-1]
	return nil
}

// CurrentCallee returns the innermost active callable's info, and
// false if processing is currently at global scope.
func (st *SymbolTable) CurrentCallee() (CalleeInfo, bool) {
	if len(st.stack) == 0 {
		return CalleeInfo{}, false
	}
	return st.stack[len(st.stack)-1].info, true
}

// Declare adds a variable to the innermost active block.
func (st *SymbolTable) Declare(name pool.NameId, val *nodeval.NodeVal, skipDrop bool) error {
	chain := st.activeChain()
	if len(*chain) == 0 {
		return fmt.Errorf("symbols: Declare with no open block")
	}
	inner := (*chain)[len(*chain)-1]
	inner.declare(name, val, skipDrop)
	return nil
}

// LookupVariable walks from the innermost block outward on the active
// chain, then the global chain, last (spec §4.2 "Add/lookup a variable
// by name walking from innermost block outward (global chain last)").
func (st *SymbolTable) LookupVariable(name pool.NameId) (*nodeval.NodeVal, bool) {
	if len(st.stack) > 0 {
		chain := st.stack[len(st.stack)-1].blocks
		for i := len(chain) - 1; i >= 0; i-- {
			if e, ok := chain[i].lookup(name); ok {
				return e.val, true
			}
		}
	}
	for i := len(st.global) - 1; i >= 0; i-- {
		if e, ok := st.global[i].lookup(name); ok {
			return e.val, true
		}
	}
	return nil, false
}

// RegisterFunction adds a function/macro-free callable signature to
// the named overload set (spec §4.6). A forward declaration followed
// by a matching definition fills in the body in place; a mismatched
// redefinition or an exact duplicate-with-body is rejected.
func (st *SymbolTable) RegisterFunction(entry *FuncEntry, cm *diag.CompilationMessages) *FuncEntry {
	set := st.funcs[entry.Name]
	for _, existing := range set {
		if !sigEqual(existing.Sig, entry.Sig) {
			continue
		}
		attrsMatch := existing.Attrs == entry.Attrs
		if !existing.HasBody && entry.HasBody {
			if !attrsMatch {
				cm.Errorf(diag.KindFuncSignatureCollision, entry.DefLoc,
					"definition does not match its forward declaration's attributes")
				return existing
			}
			existing.HasBody = true
			existing.Body = entry.Body
			existing.DefLoc = entry.DefLoc
			return existing
		}
		if existing.HasBody && entry.HasBody {
			cm.Errorf(diag.KindFuncRedefinition, entry.DefLoc, "function already defined")
			return existing
		}
		// Two forward declarations (or a definition followed by a
		// redundant forward) with the same signature: keep the first.
		return existing
	}
	st.funcs[entry.Name] = append(set, entry)
	return entry
}

// LookupFunctions returns every registered overload for name; overload
// resolution itself is the processor's job (spec §4.2 "the table only
// stores sets").
func (st *SymbolTable) LookupFunctions(name pool.NameId) []*FuncEntry {
	return st.funcs[name]
}

// RegisterMacro adds a macro to the named overload set, rejecting
// name+argCount collisions and variadic/fixed overlaps (spec §4.2
// "a variadic macro conflicts with any fixed macro of lesser or equal
// fixed-arg-count").
func (st *SymbolTable) RegisterMacro(entry *MacroEntry, cm *diag.CompilationMessages) bool {
	set := st.macros[entry.Name]
	for _, existing := range set {
		if existing.Variadic == entry.Variadic {
			if existing.FixedCount() == entry.FixedCount() {
				cm.Errorf(diag.KindMacroConflicting, entry.Loc,
					"macro conflicts with an existing macro of the same arity")
				return false
			}
			continue
		}
		variadic, fixed := existing, entry
		if entry.Variadic {
			variadic, fixed = entry, existing
		}
		if fixed.FixedCount() <= variadic.FixedCount() {
			cm.Errorf(diag.KindMacroConflicting, entry.Loc,
				"variadic macro conflicts with a fixed macro of lesser or equal arity")
			return false
		}
	}
	st.macros[entry.Name] = append(set, entry)
	return true
}

// HasMacro reports whether name has at least one registered macro
// overload, regardless of arity (used by leaf processing to decide
// whether a bare identifier names a macro at all, before any call-site
// argument count is known).
func (st *SymbolTable) HasMacro(name pool.NameId) bool {
	return len(st.macros[name]) > 0
}

// LookupMacro finds the macro overload matching an invocation of
// argCount actual arguments: exact arity for a fixed macro, or minimum
// arity for a variadic one (spec §4.4 "locate the matching macro").
func (st *SymbolTable) LookupMacro(name pool.NameId, argCount int) (*MacroEntry, bool) {
	var best *MacroEntry
	for _, m := range st.macros[name] {
		if !m.Variadic && m.FixedCount() == argCount {
			return m, true
		}
		if m.Variadic && argCount >= m.FixedCount() {
			if best == nil || m.FixedCount() > best.FixedCount() {
				best = m
			}
		}
	}
	if best != nil {
		return best, true
	}
	return nil, false
}

// NameTakenInInnermost reports whether name is already declared in the
// active chain's innermost block only, as distinct from LookupVariable's
// full-chain walk (which permits shadowing further out). Used by `sym`
// to reject a same-block redeclaration (spec §4.2 "Symbol name taken").
func (st *SymbolTable) NameTakenInInnermost(name pool.NameId) bool {
	chain := *st.activeChain()
	if len(chain) == 0 {
		return false
	}
	_, ok := chain[len(chain)-1].lookup(name)
	return ok
}

// FindBlockByName searches the active chain (the current callable's
// blocks, or the global chain outside any callable) from innermost to
// outermost for a named block matching name (spec §4.7 "exit/loop/pass
// with an explicit target name").
func (st *SymbolTable) FindBlockByName(name pool.NameId) (*Block, bool) {
	chain := *st.activeChain()
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].HasName && chain[i].Name == name {
			return chain[i], true
		}
	}
	return nil, false
}

// InnermostBlock returns the innermost block on the active chain, for
// an unnamed exit/loop/pass (spec §4.7).
func (st *SymbolTable) InnermostBlock() (*Block, bool) {
	chain := *st.activeChain()
	if len(chain) == 0 {
		return nil, false
	}
	return chain[len(chain)-1], true
}

// RegisterDrop sets the drop-function for a type. A type may have at
// most one.
func (st *SymbolTable) RegisterDrop(t typesys.TypeId, fn *nodeval.NodeVal) {
	st.drops[t] = fn
}

// DropFor returns the registered drop-function for t, if any.
func (st *SymbolTable) DropFor(t typesys.TypeId) (*nodeval.NodeVal, bool) {
	fn, ok := st.drops[t]
	return fn, ok
}

