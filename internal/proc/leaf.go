package proc

import (
	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/typesys"
)

// processLeaf implements spec §4.3's leaf rule: literal tokens promote
// directly to an eval-value; an unescaped identifier is looked up as a
// type, variable, function overload set, or macro overload set, in
// that order of preference.
func (p *Processor) processLeaf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	switch node.Lit {
	case parsetree.LitInt:
		ty := p.tt.ShortestFittingPrimI(node.IntVal)
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: ty, Scalar: nodeval.Scalar{Int: node.IntVal}}, true
	case parsetree.LitFloat:
		ty := p.tt.ShortestFittingPrimF(node.FloatVal)
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: ty, Scalar: nodeval.Scalar{Float: node.FloatVal}}, true
	case parsetree.LitChar:
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimC8), Scalar: nodeval.Scalar{Char: node.CharVal}}, true
	case parsetree.LitBool:
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimBool), Scalar: nodeval.Scalar{Bool: node.BoolVal}}, true
	case parsetree.LitString:
		sid := p.sp.Add(node.StrVal)
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.StrType(), Scalar: nodeval.Scalar{Str: sid}}, true
	case parsetree.LitNull:
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimPtr)}, true
	case parsetree.LitID:
		return p.processIdentLeaf(node)
	default:
		// A non-leaf node with zero children (an empty form) is
		// treated as valid-void: there is nothing to dispatch on.
		return nodeval.Void(node.Loc), true
	}
}

// processIdentLeaf resolves a bare identifier token (spec §4.3): a
// reserved word becomes a Special marker; otherwise the name is tried,
// in order, as a type, a variable, a function overload set, and a
// macro overload set.
func (p *Processor) processIdentLeaf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	name := p.np.Add(node.IDName)

	if kw, ok := p.np.IsKeyword(name); ok {
		return &nodeval.NodeVal{Kind: nodeval.Special, Loc: node.Loc, SpecialTag: nodeval.SpecialKeyword, Keyword: kw}, true
	}
	if op, ok := p.np.IsOper(name); ok {
		return &nodeval.NodeVal{Kind: nodeval.Special, Loc: node.Loc, SpecialTag: nodeval.SpecialOperator, Operator: op}, true
	}
	if m, ok := p.np.IsMeaningful(name); ok {
		return &nodeval.NodeVal{Kind: nodeval.Special, Loc: node.Loc, SpecialTag: nodeval.SpecialMeaningful, Meaningful: m}, true
	}

	if ty, ok := p.lookupTypeName(name); ok {
		return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimType), Scalar: nodeval.Scalar{Type: ty}}, true
	}

	if val, ok := p.activeBackend().PerformLoad(node.Loc, backend.LoadVar, name, nil); ok {
		return val, true
	}

	if len(p.st.LookupFunctions(name)) > 0 {
		return &nodeval.NodeVal{Kind: nodeval.Special, Loc: node.Loc, SpecialTag: nodeval.SpecialFuncRef, Scalar: nodeval.Scalar{Name: name}}, true
	}

	if p.st.HasMacro(name) {
		return &nodeval.NodeVal{Kind: nodeval.Special, Loc: node.Loc, SpecialTag: nodeval.SpecialMacroRef, Scalar: nodeval.Scalar{Name: name}}, true
	}

	// Neither a bound name nor a reserved word: carried forward as a
	// literal id-typed value (spec §3 "ids stay as id-typed
	// eval-values") rather than an immediate error, since macros
	// legitimately pass identifier tokens around as data (e.g. field
	// names, `isDef` probes) that are never meant to resolve to a
	// variable.
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimID), Scalar: nodeval.Scalar{Name: name}}, true
}

// lookupTypeName resolves name as a type: a fixed primitive spelling,
// the `str` alias, a registered data type, or a named-custom alias.
func (p *Processor) lookupTypeName(name pool.NameId) (typesys.TypeId, bool) {
	if prim, ok := p.primNames[name]; ok {
		return p.tt.Prim(prim), true
	}
	if name == p.strName {
		return p.tt.StrType(), true
	}
	if ty, ok := p.tt.DataByName(name); ok {
		return ty, true
	}
	if ty, ok := p.tt.NamedCustomByName(name); ok {
		return ty, true
	}
	return typesys.Invalid, false
}
