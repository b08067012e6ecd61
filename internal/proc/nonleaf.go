package proc

import (
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/typesys"
)

// processNonLeaf implements spec §4.3's non-leaf rule: process the
// first child, then dispatch on the shape of the resulting NodeVal —
// a keyword form, an operator form, a function/macro call, a type
// construction, or (failing all of those) a plain tuple construction.
func (p *Processor) processNonLeaf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	first, ok := p.processNode(node.Children[0])
	if !ok {
		return first, false
	}

	if first.Kind == nodeval.Special {
		switch first.SpecialTag {
		case nodeval.SpecialKeyword:
			return p.dispatchKeyword(node, first.Keyword)
		case nodeval.SpecialOperator:
			return p.dispatchOperator(node, first.Operator)
		case nodeval.SpecialFuncRef:
			return p.callFunction(node, first)
		case nodeval.SpecialMacroRef:
			return p.invokeMacro(node, first)
		}
	}

	if first.Kind == nodeval.EvalValue && p.tt.WorksAsPrim(first.Type, typesys.PrimType) {
		return p.buildTypeConstruction(node, first)
	}

	if len(node.Children) == 1 {
		return first, true
	}

	return p.buildTuple(node, first)
}

// buildTuple constructs a tuple value from a non-leaf whose first child
// resolved to neither a keyword/operator/callable/type (spec §4.3
// "otherwise the children are processed and combined into a tuple
// value").
func (p *Processor) buildTuple(node *parsetree.Node, first *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	members := []*nodeval.NodeVal{first}
	for _, c := range node.Children[1:] {
		v, ok := p.processNode(c)
		if !ok {
			return v, false
		}
		members = append(members, v)
	}
	return p.assembleTuple(node.Loc, members)
}

// assembleTuple builds the runtime tuple eval-value (its TypeId by
// AddTuple over the members' own types) shared by buildTuple and
// doTup.
func (p *Processor) assembleTuple(loc source.CodeLoc, members []*nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	types := make([]typesys.TypeId, len(members))
	for i, m := range members {
		types[i] = m.Type
	}
	ty := p.tt.AddTuple(types)
	if !ty.IsValid() {
		p.cm.Internalf(loc, "tuple construction produced an invalid type")
		return nodeval.InvalidAt(loc), false
	}
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: ty, Children: members}, true
}
