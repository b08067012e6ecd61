package typesys

// This file implements the "works as" classification predicates from
// spec §4.1. Every predicate first resolves named-custom bindings and
// then looks at the outermost decorator (or the base, if there are no
// decorators) — "traverses through named-custom and no-decorator
// descriptors to reach the underlying shape".

func (tt *TypeTable) outermost(t TypeId) (TypeDescr, bool) {
	return tt.Descr(t)
}

// WorksAsPrim reports whether t is, once resolved, exactly the bare
// primitive p (no decorators).
func (tt *TypeTable) WorksAsPrim(t TypeId, p Prim) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) != 0 {
		return false
	}
	return desc.Base.Kind() == KindPrimitive && desc.Base.Prim() == p
}

func (tt *TypeTable) worksAsPrimRange(t TypeId, lo, hi Prim) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) != 0 {
		return false
	}
	if desc.Base.Kind() != KindPrimitive {
		return false
	}
	p := desc.Base.Prim()
	return p >= lo && p <= hi
}

// WorksAsI, WorksAsU, WorksAsF, WorksAsC, WorksAsB classify the
// primitive families (spec §4.1).
func (tt *TypeTable) WorksAsI(t TypeId) bool { return tt.worksAsPrimRange(t, PrimI8, PrimI64) }
func (tt *TypeTable) WorksAsU(t TypeId) bool { return tt.worksAsPrimRange(t, PrimU8, PrimU64) }
func (tt *TypeTable) WorksAsF(t TypeId) bool { return tt.worksAsPrimRange(t, PrimF32, PrimF64) }
func (tt *TypeTable) WorksAsC(t TypeId) bool { return tt.WorksAsPrim(t, PrimC8) }
func (tt *TypeTable) WorksAsB(t TypeId) bool { return tt.WorksAsPrim(t, PrimBool) }

// WorksAsPtr reports whether t's outermost layer is a plain pointer.
func (tt *TypeTable) WorksAsPtr(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) == 0 {
		return false
	}
	return desc.Decors[len(desc.Decors)-1].Kind == DecorPointer
}

// WorksAsAnyP reports whether t's outermost layer is a pointer or
// array-pointer.
func (tt *TypeTable) WorksAsAnyP(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) == 0 {
		return false
	}
	last := desc.Decors[len(desc.Decors)-1].Kind
	return last == DecorPointer || last == DecorArrayPointer
}

// WorksAsArr reports whether t's outermost layer is a fixed-length
// array.
func (tt *TypeTable) WorksAsArr(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) == 0 {
		return false
	}
	return desc.Decors[len(desc.Decors)-1].Kind == DecorArray
}

// WorksAsArrOfLen reports whether t's outermost layer is a
// fixed-length array of exactly length n.
func (tt *TypeTable) WorksAsArrOfLen(t TypeId, n int) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) == 0 {
		return false
	}
	last := desc.Decors[len(desc.Decors)-1]
	return last.Kind == DecorArray && last.Len == n
}

// WorksAsArrP reports whether t's outermost layer is an array-pointer.
func (tt *TypeTable) WorksAsArrP(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) == 0 {
		return false
	}
	return desc.Decors[len(desc.Decors)-1].Kind == DecorArrayPointer
}

// WorksAsStr reports whether t is structurally the `str` type: a
// const-c8 array-pointer with a const base (spec §4.1).
func (tt *TypeTable) WorksAsStr(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) != 1 {
		return false
	}
	if desc.Base.Kind() != KindPrimitive || desc.Base.Prim() != PrimC8 {
		return false
	}
	return desc.BaseCn && desc.Decors[0].Kind == DecorArrayPointer && desc.Cns[0]
}

// WorksAsCharArrOfLen reports whether t is a fixed-length array of c8
// of exactly length n (a character buffer, as distinct from `str`).
func (tt *TypeTable) WorksAsCharArrOfLen(t TypeId, n int) bool {
	desc, ok := tt.outermost(t)
	if !ok || len(desc.Decors) != 1 {
		return false
	}
	if desc.Base.Kind() != KindPrimitive || desc.Base.Prim() != PrimC8 {
		return false
	}
	last := desc.Decors[0]
	return last.Kind == DecorArray && last.Len == n
}

// WorksAsCn reports whether t "works as cn": any decorator layer is
// marked const, the base is const, or (for tuples) any member works
// as cn. An array whose element type is const is itself const, even
// if the array layer's own bit is unset (spec §3 "Constness rule").
func (tt *TypeTable) WorksAsCn(t TypeId) bool {
	if tup, ok := tt.Tuple(t); ok {
		for _, m := range tup.Members {
			if tt.WorksAsCn(m) {
				return true
			}
		}
		return false
	}
	desc, ok := tt.outermost(t)
	if !ok {
		return false
	}
	return tt.effectiveConst(desc)
}

func (tt *TypeTable) effectiveConst(desc TypeDescr) bool {
	cur := desc.BaseCn
	for i, d := range desc.Decors {
		if d.Kind == DecorArray {
			cur = cur || desc.Cns[i]
		} else {
			cur = desc.Cns[i]
		}
	}
	return cur
}

// WorksAsTuple, WorksAsCallable, WorksAsData, WorksAsDescr classify
// the non-primitive kinds.
func (tt *TypeTable) WorksAsTuple(t TypeId) bool {
	_, ok := tt.Tuple(t)
	return ok
}

func (tt *TypeTable) WorksAsCallable(t TypeId) bool {
	_, ok := tt.Callable(t)
	return ok
}

func (tt *TypeTable) WorksAsData(t TypeId) bool {
	_, ok := tt.Data(t)
	return ok
}

// WorksAsDescr reports whether t carries at least one decorator layer
// (a "true" descriptor, as opposed to a bare primitive or named type).
func (tt *TypeTable) WorksAsDescr(t TypeId) bool {
	desc, ok := tt.outermost(t)
	if !ok {
		return false
	}
	return len(desc.Decors) > 0
}
