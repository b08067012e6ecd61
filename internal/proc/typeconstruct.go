package proc

import (
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/typesys"
)

// processType processes node and requires the result to be a type
// value, raising errorTypeNonTypeWhereRequired otherwise (spec §4.1
// "a value used where a type is required").
func (p *Processor) processType(node *parsetree.Node) (typesys.TypeId, bool) {
	val, ok := p.processNode(node)
	if !ok {
		return typesys.Invalid, false
	}
	if val.Kind != nodeval.EvalValue || !p.tt.WorksAsPrim(val.Type, typesys.PrimType) {
		p.cm.Errorf(diag.KindTypeNonTypeWhereRequired, node.Loc, "expected a type here")
		return typesys.Invalid, false
	}
	return val.Scalar.Type, true
}

// processAndImplicitCastValue processes val against ty, implicit-
// casting it if needed (spec §4.3's "Attribute handling" / spec §3
// "Implicit castability"), raising errorExprCannotImplicitCast on
// failure. It accepts an already-processed val directly so callers
// that have one in hand (assignment rhs, call arguments, ret values)
// don't re-enter dispatch.
func (p *Processor) processAndImplicitCastValue(loc source.CodeLoc, val *nodeval.NodeVal, ty typesys.TypeId) (*nodeval.NodeVal, bool) {
	if val == nil || val.IsInvalid() {
		return nodeval.InvalidAt(loc), false
	}
	if val.Type.Equal(ty) {
		return val, true
	}
	if !p.canImplicitCast(val, ty) {
		p.cm.Errorf(diag.KindTypeCannotImplicitCast, loc, "value cannot be implicitly cast to the required type")
		return nodeval.InvalidAt(loc), false
	}
	return p.activeBackend().PerformCast(loc, val, ty)
}

// canImplicitCast is the side-effect-free predicate behind
// processAndImplicitCastValue, reused where a caller needs to probe
// castability in both directions before committing to one (spec §4.5
// binary operators: the two-way widening between mismatched operand
// types) without raising a premature diagnostic.
func (p *Processor) canImplicitCast(val *nodeval.NodeVal, ty typesys.TypeId) bool {
	if val == nil || val.IsInvalid() {
		return false
	}
	if val.Type.Equal(ty) {
		return true
	}
	if p.tt.IsImplicitCastable(val.Type, ty) {
		return true
	}
	if val.Kind != nodeval.EvalValue {
		return false
	}
	if p.tt.WorksAsI(val.Type) && p.tt.FitsLiteralInt(val.Scalar.Int, ty) {
		return true
	}
	if p.tt.WorksAsF(val.Type) && p.tt.FitsLiteralFloat(val.Scalar.Float, ty) {
		return true
	}
	return false
}

// buildTypeConstruction applies the decorator sequence that follows a
// type-valued first child (spec §4.1 "TypeDescr": `*` adds a pointer
// layer, `&` adds an array-pointer layer, `cn` marks the outermost
// layer const, an integral literal adds a fixed-length array layer),
// left to right. If the first remaining child is itself a type rather
// than a decorator, the whole form is a tuple-type construction
// instead (spec §4.1 "a type followed by another type builds a tuple
// type").
func (p *Processor) buildTypeConstruction(node *parsetree.Node, first *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) == 0 {
		return first, true
	}

	nextVal, ok := p.processNode(rest[0])
	if !ok {
		return nextVal, false
	}

	if nextVal.Kind == nodeval.EvalValue && p.tt.WorksAsPrim(nextVal.Type, typesys.PrimType) {
		return p.buildTupleType(node.Loc, first.Scalar.Type, nextVal.Scalar.Type, rest[1:])
	}

	ty := first.Scalar.Type
	if !p.applyTypeDecorator(&ty, nextVal, rest[0].Loc) {
		return nodeval.InvalidAt(node.Loc), false
	}
	for _, c := range rest[1:] {
		v, ok := p.processNode(c)
		if !ok {
			return v, false
		}
		if !p.applyTypeDecorator(&ty, v, c.Loc) {
			return nodeval.InvalidAt(node.Loc), false
		}
	}
	return p.typeValue(node.Loc, ty), true
}

// buildTupleType assembles a tuple-type value out of two or more
// already-typed children.
func (p *Processor) buildTupleType(loc source.CodeLoc, first, second typesys.TypeId, rest []*parsetree.Node) (*nodeval.NodeVal, bool) {
	members := []typesys.TypeId{first, second}
	for _, c := range rest {
		ty, ok := p.processType(c)
		if !ok {
			return nodeval.InvalidAt(loc), false
		}
		members = append(members, ty)
	}
	ty := p.tt.AddTuple(members)
	if !ty.IsValid() {
		p.cm.Errorf(diag.KindTypeMalformedDescr, loc, "malformed tuple type")
		return nodeval.InvalidAt(loc), false
	}
	return p.typeValue(loc, ty), true
}

// applyTypeDecorator folds one decorator NodeVal onto *ty in place
// (spec §4.1's TypeDescr sequence).
func (p *Processor) applyTypeDecorator(ty *typesys.TypeId, v *nodeval.NodeVal, loc source.CodeLoc) bool {
	var next typesys.TypeId
	switch {
	case v.Kind == nodeval.Special && v.SpecialTag == nodeval.SpecialOperator && v.Operator == pool.OperMul:
		next = p.tt.AddAddrOf(*ty)
	case v.Kind == nodeval.Special && v.SpecialTag == nodeval.SpecialOperator && v.Operator == pool.OperBitAnd:
		next = p.tt.AddArrPointerOf(*ty)
	case v.Kind == nodeval.Special && v.SpecialTag == nodeval.SpecialMeaningful && v.Meaningful == pool.MeaningfulConst:
		next = p.tt.AddCnOf(*ty)
	case v.Kind == nodeval.EvalValue && (p.tt.WorksAsI(v.Type) || p.tt.WorksAsU(v.Type)):
		n := v.Scalar.Int
		if p.tt.WorksAsU(v.Type) {
			n = int64(v.Scalar.Uint)
		}
		if n < 0 {
			p.cm.Errorf(diag.KindTypeBadArraySize, loc, "array size cannot be negative")
			return false
		}
		next = p.tt.AddArrOfLenOf(*ty, int(n))
	default:
		p.cm.Errorf(diag.KindTypeMalformedDescr, loc, "unrecognized type decorator")
		return false
	}
	if !next.IsValid() {
		p.cm.Errorf(diag.KindTypeMalformedDescr, loc, "decorator does not apply to this type")
		return false
	}
	*ty = next
	return true
}

func (p *Processor) typeValue(loc source.CodeLoc, ty typesys.TypeId) *nodeval.NodeVal {
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: p.tt.Prim(typesys.PrimType), Scalar: nodeval.Scalar{Type: ty}}
}
