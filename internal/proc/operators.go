package proc

import (
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/typesys"
)

// dispatchOperator implements spec §4.5: an operator form is the
// keyword's first child resolving to a Special operator value. Deref,
// address-of, move, assignment and index get dedicated handling ahead
// of the generic unary/binary/comparison dispatch because pool.Info
// tags them Unary/Binary too, but their semantics aren't the plain
// arithmetic/bitwise family.
func (p *Processor) dispatchOperator(node *parsetree.Node, op pool.Oper) (*nodeval.NodeVal, bool) {
	children := node.Children[1:]
	// ">>" is registered only as OperShr (reserved.go has no separate
	// spelling for OperMove); a unary use disambiguates it as move
	// (spec §4.6 ">> doubles as the move operator when used unary").
	if op == pool.OperShr && len(children) == 1 {
		return p.dispatchMove(node, children)
	}
	switch op {
	case pool.OperDeref:
		return p.dispatchOneOperand(node, children, p.activeBackend().PerformOperDeref)
	case pool.OperAddrOf:
		return p.dispatchOneOperand(node, children, p.activeBackend().PerformOperAddrOf)
	case pool.OperMove:
		return p.dispatchMove(node, children)
	case pool.OperAssign:
		return p.dispatchAssignment(node, children)
	case pool.OperIndex:
		return p.dispatchIndex(node, children)
	}

	info := pool.Info(op)
	switch {
	case info.Comparison:
		return p.dispatchComparison(node, op, children)
	case info.Unary && len(children) == 1:
		return p.dispatchUnary(node, op, children[0])
	case info.Binary:
		return p.dispatchBinary(node, op, children)
	}
	p.cm.Errorf(diag.KindOperNonBinary, node.Loc, "operator requires more operands")
	return nodeval.InvalidAt(node.Loc), false
}

func (p *Processor) dispatchOneOperand(node *parsetree.Node, children []*parsetree.Node, perform func(source.CodeLoc, *nodeval.NodeVal) (*nodeval.NodeVal, bool)) (*nodeval.NodeVal, bool) {
	if len(children) != 1 {
		p.cm.Errorf(diag.KindOperNonUnary, node.Loc, "operator takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(children[0])
	if !ok {
		return v, false
	}
	return perform(node.Loc, v)
}

// dispatchMove implements `move` (spec §4.6 ownership transfer): the
// operand must have storage, a registered drop function, and must not
// be const.
func (p *Processor) dispatchMove(node *parsetree.Node, children []*parsetree.Node) (*nodeval.NodeVal, bool) {
	if len(children) != 1 {
		p.cm.Errorf(diag.KindOperNonUnary, node.Loc, "move takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(children[0])
	if !ok {
		return v, false
	}
	if v.Ref == nil {
		p.cm.Errorf(diag.KindBadMoveNoDrop, node.Loc, "cannot move a value with no storage")
		return nodeval.InvalidAt(node.Loc), false
	}
	if p.tt.WorksAsCn(v.Type) {
		p.cm.Errorf(diag.KindBadMoveOnCn, node.Loc, "cannot move a const value")
		return nodeval.InvalidAt(node.Loc), false
	}
	if _, ok := p.st.DropFor(v.Type); !ok {
		p.cm.Errorf(diag.KindBadMoveNoDrop, node.Loc, "type has no registered drop function")
		return nodeval.InvalidAt(node.Loc), false
	}
	result, ok := p.activeBackend().PerformOperMove(node.Loc, v)
	if !ok {
		return result, false
	}
	p.st.MarkMoved(v.Ref)
	return result, true
}

func (p *Processor) dispatchUnary(node *parsetree.Node, op pool.Oper, child *parsetree.Node) (*nodeval.NodeVal, bool) {
	v, ok := p.processNode(child)
	if !ok {
		return v, false
	}
	return p.activeBackend().PerformOperUnary(node.Loc, op, v)
}

// dispatchComparison implements the chained comparison family a<b<c
// (spec §4.5): every adjacent pair is compared and every operand is
// evaluated regardless of an earlier link already being false, so
// operand side effects are preserved.
func (p *Processor) dispatchComparison(node *parsetree.Node, op pool.Oper, children []*parsetree.Node) (*nodeval.NodeVal, bool) {
	if len(children) < 2 {
		p.cm.Errorf(diag.KindOperNonBinary, node.Loc, "comparison requires at least two operands")
		return nodeval.InvalidAt(node.Loc), false
	}
	bk := p.activeBackend()
	state := bk.PerformOperComparisonSetUp(node.Loc)
	prev, ok := p.processNode(children[0])
	if !ok {
		return prev, false
	}
	for _, c := range children[1:] {
		cur, ok := p.processNode(c)
		if !ok {
			return cur, false
		}
		lhs, rhs, _, ok := p.coerceTwoWay(node.Loc, prev, cur)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		cont, ok := bk.PerformOperComparisonStep(node.Loc, state, op, lhs, rhs)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		prev = cur
		if !cont {
			break
		}
	}
	return bk.PerformOperComparisonTearDown(node.Loc, state)
}

// dispatchAssignment implements `=` (spec §4.5): the rhs is implicit-
// cast against the lhs's type before the store.
func (p *Processor) dispatchAssignment(node *parsetree.Node, children []*parsetree.Node) (*nodeval.NodeVal, bool) {
	if len(children) != 2 {
		p.cm.Errorf(diag.KindOperNonBinary, node.Loc, "assignment takes exactly two operands")
		return nodeval.InvalidAt(node.Loc), false
	}
	lhs, ok := p.processNode(children[0])
	if !ok {
		return lhs, false
	}
	rhsRaw, ok := p.processNode(children[1])
	if !ok {
		return rhsRaw, false
	}
	rhs, ok := p.processAndImplicitCastValue(node.Loc, rhsRaw, lhs.Type)
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	return p.activeBackend().PerformOperAssignment(node.Loc, lhs, rhs)
}

// dispatchIndex implements `[]` (spec §4.5), which does double duty:
// array/tuple element access by an integral operand, or data-type
// field access when the second operand is a bare field-name
// identifier and the base is a data type.
func (p *Processor) dispatchIndex(node *parsetree.Node, children []*parsetree.Node) (*nodeval.NodeVal, bool) {
	if len(children) != 2 {
		p.cm.Errorf(diag.KindOperNonBinary, node.Loc, "index takes exactly two operands")
		return nodeval.InvalidAt(node.Loc), false
	}
	base, ok := p.processNode(children[0])
	if !ok {
		return base, false
	}
	if fieldNode := children[1]; fieldNode.Lit == parsetree.LitID && p.tt.WorksAsData(base.Type) {
		field := p.identName(fieldNode)
		return p.activeBackend().PerformOperMember(node.Loc, base, field)
	}
	index, ok := p.processNode(children[1])
	if !ok {
		return index, false
	}
	return p.activeBackend().PerformOperIndex(node.Loc, base, index)
}

// dispatchBinary implements the arithmetic/bitwise family (spec §4.5)
// as a left fold: `(+ a b c)` is `((a+b)+c)`. Operands typed `raw`
// (macro-generated code fragments) only support `+` as tree
// concatenation rather than numeric arithmetic.
func (p *Processor) dispatchBinary(node *parsetree.Node, op pool.Oper, children []*parsetree.Node) (*nodeval.NodeVal, bool) {
	if len(children) < 2 {
		p.cm.Errorf(diag.KindOperNonBinary, node.Loc, "operator requires at least two operands")
		return nodeval.InvalidAt(node.Loc), false
	}
	acc, ok := p.processNode(children[0])
	if !ok {
		return acc, false
	}
	bk := p.activeBackend()
	for _, c := range children[1:] {
		cur, ok := p.processNode(c)
		if !ok {
			return cur, false
		}
		if p.tt.WorksAsPrim(acc.Type, typesys.PrimRaw) || p.tt.WorksAsPrim(cur.Type, typesys.PrimRaw) {
			merged, ok := p.concatRaw(node.Loc, op, acc, cur)
			if !ok {
				return nodeval.InvalidAt(node.Loc), false
			}
			acc = merged
			continue
		}
		lhs, rhs, resultTy, ok := p.coerceTwoWay(node.Loc, acc, cur)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		v, ok := bk.PerformOperRegular(node.Loc, op, lhs, rhs, resultTy)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		acc = v
	}
	return acc, true
}

func (p *Processor) concatRaw(loc source.CodeLoc, op pool.Oper, lhs, rhs *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	if op != pool.OperAdd || !p.tt.WorksAsPrim(lhs.Type, typesys.PrimRaw) || !p.tt.WorksAsPrim(rhs.Type, typesys.PrimRaw) {
		p.cm.Errorf(diag.KindOperBadOperandType, loc, "operator does not apply to raw values")
		return nodeval.InvalidAt(loc), false
	}
	children := append(append([]*nodeval.NodeVal(nil), lhs.Children...), rhs.Children...)
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: p.tt.Prim(typesys.PrimRaw), Children: children}, true
}

// coerceTwoWay finds a common type between lhs and rhs, widening
// whichever side implicit-casts into the other's type (spec §4.5
// binary operators' two-way widening), and raises
// errorExprCannotImplicitCast if neither direction fits.
func (p *Processor) coerceTwoWay(loc source.CodeLoc, lhs, rhs *nodeval.NodeVal) (*nodeval.NodeVal, *nodeval.NodeVal, typesys.TypeId, bool) {
	if lhs.Type.Equal(rhs.Type) {
		return lhs, rhs, lhs.Type, true
	}
	if p.canImplicitCast(rhs, lhs.Type) {
		rhsC, ok := p.processAndImplicitCastValue(loc, rhs, lhs.Type)
		return lhs, rhsC, lhs.Type, ok
	}
	if p.canImplicitCast(lhs, rhs.Type) {
		lhsC, ok := p.processAndImplicitCastValue(loc, lhs, rhs.Type)
		return lhsC, rhs, rhs.Type, ok
	}
	p.cm.Errorf(diag.KindTypeCannotImplicitCast, loc, "operands have incompatible types")
	return nil, nil, typesys.Invalid, false
}
