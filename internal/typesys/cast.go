package typesys

import "math"

// FitsI reports whether value fits in the signed primitive t (spec
// §4.1 "fitsI"). t must work as a member of the I family.
func (tt *TypeTable) FitsI(value int64, t TypeId) bool {
	if !tt.WorksAsI(t) {
		return false
	}
	bits := primBitWidth[t.Prim()]
	if bits >= 64 {
		return true
	}
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return value >= lo && value <= hi
}

// FitsU reports whether value fits in the unsigned primitive t.
func (tt *TypeTable) FitsU(value uint64, t TypeId) bool {
	if !tt.WorksAsU(t) {
		return false
	}
	bits := primBitWidth[t.Prim()]
	if bits >= 64 {
		return true
	}
	hi := uint64(1)<<bits - 1
	return value <= hi
}

// FitsF reports whether value fits in the float primitive t (f32
// checks the finite float32 range; f64 always fits).
func (tt *TypeTable) FitsF(value float64, t TypeId) bool {
	if !tt.WorksAsF(t) {
		return false
	}
	if t.Prim() == PrimF32 {
		return value >= -math.MaxFloat32 && value <= math.MaxFloat32
	}
	return true
}

// ShortestFittingPrimI returns the canonical TypeId of the narrowest
// signed-integer primitive, at least i32, that fits value (spec §4.3
// "an integer literal picks the narrowest primitive >= i32 that fits").
func (tt *TypeTable) ShortestFittingPrimI(value int64) TypeId {
	for _, p := range []Prim{PrimI32, PrimI64} {
		if tt.FitsI(value, tt.Prim(p)) {
			return tt.Prim(p)
		}
	}
	return tt.Prim(WidestI)
}

// ShortestFittingPrimF returns f32 if value fits there, else f64 (spec
// §4.3 "floats pick >= f32").
func (tt *TypeTable) ShortestFittingPrimF(value float64) TypeId {
	if tt.FitsF(value, tt.Prim(PrimF32)) {
		return tt.Prim(PrimF32)
	}
	return tt.Prim(PrimF64)
}

// FitsLiteralInt reports whether an integer literal's value can
// additionally implicit-cast into target because the literal value
// itself fits the target's range (spec §3 "integer/float literal
// values additionally castable if the literal fits the target
// range"). Unsigned targets require a non-negative value.
func (tt *TypeTable) FitsLiteralInt(value int64, into TypeId) bool {
	switch {
	case tt.WorksAsI(into):
		return tt.FitsI(value, into)
	case tt.WorksAsU(into):
		return value >= 0 && tt.FitsU(uint64(value), into)
	case tt.WorksAsF(into):
		return tt.FitsF(float64(value), into)
	default:
		return false
	}
}

// FitsLiteralFloat reports the float-literal analog of FitsLiteralInt.
func (tt *TypeTable) FitsLiteralFloat(value float64, into TypeId) bool {
	return tt.WorksAsF(into) && tt.FitsF(value, into)
}

// IsImplicitCastable reports whether a value of type from may be
// implicitly cast to type into (spec §3 "Implicit castability").
func (tt *TypeTable) IsImplicitCastable(from, into TypeId) bool {
	if !from.IsValid() || !into.IsValid() {
		return false
	}
	if from.Equal(into) {
		return true
	}

	// Primitive widening within the same family.
	if from.Kind() == KindPrimitive && into.Kind() == KindPrimitive {
		fp, ip := from.Prim(), into.Prim()
		if isIFamily(fp) && isIFamily(ip) && ip >= fp {
			return true
		}
		if isUFamily(fp) && isUFamily(ip) && ip >= fp {
			return true
		}
		if isFFamily(fp) && isFFamily(ip) && ip >= fp {
			return true
		}
	}

	// null (bare untyped `ptr`) to any pointer-shaped type.
	if from.Equal(tt.Prim(PrimPtr)) && tt.WorksAsAnyP(into) {
		return true
	}

	fromDesc, fromOK := tt.Descr(from)
	intoDesc, intoOK := tt.Descr(into)
	if fromOK && intoOK && fromDesc.Base.Equal(intoDesc.Base) {
		if tt.sameDecorShape(fromDesc, intoDesc) && tt.constMonotone(fromDesc, intoDesc) {
			return true
		}
	}

	return false
}

func (tt *TypeTable) sameDecorShape(a, b TypeDescr) bool {
	if len(a.Decors) != len(b.Decors) {
		return false
	}
	for i := range a.Decors {
		if a.Decors[i].Kind != b.Decors[i].Kind {
			return false
		}
		if a.Decors[i].Kind == DecorArray && a.Decors[i].Len != b.Decors[i].Len {
			return false
		}
	}
	return true
}

// constMonotone implements spec §3's const-crossing rule: walking from
// the outermost layer inward, constness may only be added (never
// dropped) once a pointer or array-pointer layer has been crossed;
// layers encountered before crossing any pointer are unconstrained
// (spec §8 law 3, "removing cn from beyond the first pointer layer
// breaks it").
func (tt *TypeTable) constMonotone(from, into TypeDescr) bool {
	crossed := false
	for i := len(from.Decors) - 1; i >= 0; i-- {
		fromCn := from.Cns[i]
		intoCn := into.Cns[i]
		if crossed && fromCn && !intoCn {
			return false
		}
		if from.Decors[i].Kind == DecorPointer || from.Decors[i].Kind == DecorArrayPointer {
			crossed = true
		}
	}
	if crossed && from.BaseCn && !into.BaseCn {
		return false
	}
	return true
}
