package typesys

import "github.com/orblang/orbc/internal/pool"

// TypeTable is the canonical registry of all types in a compilation
// (spec §4.1). It is owned by the orchestrator and passed by reference
// to every component (spec §5).
type TypeTable struct {
	prims primTable

	tuples    []TupleType
	descrs    []TypeDescr
	named     []NamedCustom
	data      []DataType
	callables []Callable

	dataByName map[pool.NameId]int
	strType    TypeId
}

// NewTypeTable creates a table with the fixed primitive enumeration
// already registered, plus the singleton `str` type (spec §4.1: "str
// is the singleton type 'pointer-to-const-c8 array-pointer with const
// base'").
func NewTypeTable() *TypeTable {
	tt := &TypeTable{
		prims:      newPrimTable(),
		dataByName: make(map[pool.NameId]int),
	}
	tt.strType = tt.addTypeDescrInternal(TypeDescr{
		Base:   tt.Prim(PrimC8),
		BaseCn: true,
		Decors: []Decor{{Kind: DecorArrayPointer}},
		Cns:    []bool{true},
	})
	return tt
}

// Prim returns the canonical TypeId for a fixed primitive.
func (tt *TypeTable) Prim(p Prim) TypeId { return tt.prims.ids[p] }

// StrType returns the canonical `str` TypeId.
func (tt *TypeTable) StrType() TypeId { return tt.strType }

// AddTypeDescr returns the canonical TypeId for desc, canonicalizing
// structurally-equal descriptors to one id (spec §4.1). A descriptor
// with no decorators and no constness anywhere collapses to its base
// type's id.
func (tt *TypeTable) AddTypeDescr(desc TypeDescr) TypeId {
	if !desc.Base.IsValid() {
		return Invalid
	}
	if desc.isSingleton() {
		return desc.Base
	}
	return tt.addTypeDescrInternal(desc)
}

func (tt *TypeTable) addTypeDescrInternal(desc TypeDescr) TypeId {
	for i, existing := range tt.descrs {
		if existing.structurallyEqual(desc) {
			return mkTypeId(KindDescr, i)
		}
	}
	idx := len(tt.descrs)
	tt.descrs = append(tt.descrs, desc)
	return mkTypeId(KindDescr, idx)
}

// AddTuple returns the canonical TypeId for an ordered tuple of
// members (spec §4.1). A single member collapses to that member's
// TypeId; zero members fails (returns Invalid).
func (tt *TypeTable) AddTuple(members []TypeId) TypeId {
	if len(members) == 0 {
		return Invalid
	}
	for _, m := range members {
		if !m.IsValid() {
			return Invalid
		}
	}
	if len(members) == 1 {
		return members[0]
	}
	tup := TupleType{Members: append([]TypeId(nil), members...)}
	for i, existing := range tt.tuples {
		if existing.structurallyEqual(tup) {
			return mkTypeId(KindTuple, i)
		}
	}
	idx := len(tt.tuples)
	tt.tuples = append(tt.tuples, tup)
	return mkTypeId(KindTuple, idx)
}

// AddDataType declares or defines a named record type (spec §4.1).
// The first call with an empty field list forward-declares the type
// (opaque until defined). A subsequent call with the same name and an
// empty field list returns the existing forward declaration unchanged.
// A subsequent call with a non-empty field list defines it once; a
// second attempt to define an already-defined type fails (Invalid).
func (tt *TypeTable) AddDataType(name pool.NameId, fields []Field) TypeId {
	if idx, ok := tt.dataByName[name]; ok {
		existing := &tt.data[idx]
		if len(fields) == 0 {
			return mkTypeId(KindNamedData, idx)
		}
		if existing.Defined {
			return Invalid
		}
		existing.Fields = append([]Field(nil), fields...)
		existing.Defined = true
		return mkTypeId(KindNamedData, idx)
	}
	idx := len(tt.data)
	dt := DataType{Name: name}
	if len(fields) > 0 {
		dt.Fields = append([]Field(nil), fields...)
		dt.Defined = true
	}
	tt.data = append(tt.data, dt)
	tt.dataByName[name] = idx
	return mkTypeId(KindNamedData, idx)
}

// AddNamedCustom binds name to underlying, one time only; a second
// call for the same name fails unless underlying is structurally
// identical to the existing binding (spec §3 "one-time binding").
func (tt *TypeTable) AddNamedCustom(name pool.NameId, underlying TypeId) TypeId {
	for i, nc := range tt.named {
		if nc.Name == name {
			if nc.Underlying.Equal(underlying) {
				return mkTypeId(KindNamedCustom, i)
			}
			return Invalid
		}
	}
	idx := len(tt.named)
	tt.named = append(tt.named, NamedCustom{Name: name, Underlying: underlying})
	return mkTypeId(KindNamedCustom, idx)
}

// NamedCustomByName looks up a previously-declared named-custom alias
// by name.
func (tt *TypeTable) NamedCustomByName(name pool.NameId) (TypeId, bool) {
	for i, nc := range tt.named {
		if nc.Name == name {
			return mkTypeId(KindNamedCustom, i), true
		}
	}
	return Invalid, false
}

// AddCallable returns the canonical TypeId for sig (spec §4.1).
func (tt *TypeTable) AddCallable(sig Callable) TypeId {
	for i, existing := range tt.callables {
		if existing.structurallyEqual(sig) {
			return mkTypeId(KindCallable, i)
		}
	}
	idx := len(tt.callables)
	tt.callables = append(tt.callables, sig)
	return mkTypeId(KindCallable, idx)
}

// Descr returns the TypeDescr for t, following named-custom bindings
// transparently. ok is false if t isn't ultimately descriptor-shaped
// (e.g. it's a tuple, a data type, or a callable).
func (tt *TypeTable) Descr(t TypeId) (TypeDescr, bool) {
	t = tt.Resolve(t)
	switch t.Kind() {
	case KindPrimitive:
		return TypeDescr{Base: t}, true
	case KindDescr:
		return tt.descrs[t.index], true
	default:
		return TypeDescr{}, false
	}
}

// Resolve follows named-custom bindings to their underlying TypeId,
// repeatedly (bindings are one-time, so this terminates).
func (tt *TypeTable) Resolve(t TypeId) TypeId {
	for t.Kind() == KindNamedCustom {
		t = tt.named[t.index].Underlying
	}
	return t
}

// Tuple returns the TupleType for t. ok is false if t isn't a tuple.
func (tt *TypeTable) Tuple(t TypeId) (TupleType, bool) {
	t = tt.Resolve(t)
	if t.Kind() != KindTuple {
		return TupleType{}, false
	}
	return tt.tuples[t.index], true
}

// Data returns the DataType for t. ok is false if t isn't a named-data
// type.
func (tt *TypeTable) Data(t TypeId) (*DataType, bool) {
	t = tt.Resolve(t)
	if t.Kind() != KindNamedData {
		return nil, false
	}
	return &tt.data[t.index], true
}

// DataByName looks up a previously-declared data type by name.
func (tt *TypeTable) DataByName(name pool.NameId) (TypeId, bool) {
	idx, ok := tt.dataByName[name]
	if !ok {
		return Invalid, false
	}
	return mkTypeId(KindNamedData, idx), true
}

// Callable returns the Callable shape for t. ok is false if t isn't
// callable-shaped.
func (tt *TypeTable) Callable(t TypeId) (Callable, bool) {
	t = tt.Resolve(t)
	if t.Kind() != KindCallable {
		return Callable{}, false
	}
	return tt.callables[t.index], true
}
