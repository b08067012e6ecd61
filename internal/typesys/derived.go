package typesys

// AddDerefOf returns the type obtained by removing one pointer or
// array-pointer layer from t's outermost decorator (spec §4.1
// "addDerefOf"). Fails (Invalid) if t carries no such layer.
func (tt *TypeTable) AddDerefOf(t TypeId) TypeId {
	desc, ok := tt.Descr(t)
	if !ok || len(desc.Decors) == 0 {
		return Invalid
	}
	last := desc.Decors[len(desc.Decors)-1]
	if last.Kind != DecorPointer && last.Kind != DecorArrayPointer {
		return Invalid
	}
	return tt.popLayer(desc)
}

// AddIndexOf returns the element type obtained by indexing t: removing
// one array or array-pointer layer from t's outermost decorator (spec
// §4.1 "addIndexOf", spec §4.5 index operator on arrays/array-pointers).
func (tt *TypeTable) AddIndexOf(t TypeId) TypeId {
	desc, ok := tt.Descr(t)
	if !ok || len(desc.Decors) == 0 {
		return Invalid
	}
	last := desc.Decors[len(desc.Decors)-1]
	if last.Kind != DecorArray && last.Kind != DecorArrayPointer {
		return Invalid
	}
	return tt.popLayer(desc)
}

func (tt *TypeTable) popLayer(desc TypeDescr) TypeId {
	newDesc := TypeDescr{
		Base:   desc.Base,
		BaseCn: desc.BaseCn,
		Decors: append([]Decor(nil), desc.Decors[:len(desc.Decors)-1]...),
		Cns:    append([]bool(nil), desc.Cns[:len(desc.Cns)-1]...),
	}
	if len(newDesc.Decors) == 0 {
		if newDesc.BaseCn {
			return tt.addTypeDescrInternal(newDesc)
		}
		return newDesc.Base
	}
	return tt.AddTypeDescr(newDesc)
}

// AddAddrOf returns the type obtained by adding a (non-const) pointer
// layer on top of t (spec §4.1 "addAddrOf").
func (tt *TypeTable) AddAddrOf(t TypeId) TypeId {
	desc, ok := tt.Descr(t)
	if !ok {
		return Invalid
	}
	return tt.pushLayer(desc, Decor{Kind: DecorPointer}, false)
}

// AddArrOfLenOf returns the type obtained by adding a fixed-length
// array layer of length n on top of t (spec §4.1 "addArrOfLenOf").
func (tt *TypeTable) AddArrOfLenOf(t TypeId, n int) TypeId {
	if n < 0 {
		return Invalid
	}
	desc, ok := tt.Descr(t)
	if !ok {
		return Invalid
	}
	return tt.pushLayer(desc, Decor{Kind: DecorArray, Len: n}, false)
}

// AddArrPointerOf returns the type obtained by adding an array-pointer
// layer (the `&` decorator) on top of t (spec §4.1).
func (tt *TypeTable) AddArrPointerOf(t TypeId) TypeId {
	desc, ok := tt.Descr(t)
	if !ok {
		return Invalid
	}
	return tt.pushLayer(desc, Decor{Kind: DecorArrayPointer}, false)
}

func (tt *TypeTable) pushLayer(desc TypeDescr, d Decor, cn bool) TypeId {
	newDesc := TypeDescr{
		Base:   desc.Base,
		BaseCn: desc.BaseCn,
		Decors: append(append([]Decor(nil), desc.Decors...), d),
		Cns:    append(append([]bool(nil), desc.Cns...), cn),
	}
	return tt.AddTypeDescr(newDesc)
}

// AddCnOf returns t with its outermost layer marked const (spec §4.1
// "addCnOf"): the last decorator if any, else the base itself.
func (tt *TypeTable) AddCnOf(t TypeId) TypeId {
	desc, ok := tt.Descr(t)
	if !ok {
		return Invalid
	}
	if len(desc.Decors) == 0 {
		desc.BaseCn = true
		return tt.addTypeDescrInternal(desc)
	}
	desc.Cns = append([]bool(nil), desc.Cns...)
	desc.Cns[len(desc.Cns)-1] = true
	return tt.addTypeDescrInternal(desc)
}

// DropCns recursively strips const from every layer of t, and from
// every member if t is a tuple (spec §4.1 "dropCns").
func (tt *TypeTable) DropCns(t TypeId) TypeId {
	if tup, ok := tt.Tuple(t); ok {
		members := make([]TypeId, len(tup.Members))
		for i, m := range tup.Members {
			members[i] = tt.DropCns(m)
		}
		return tt.AddTuple(members)
	}
	desc, ok := tt.Descr(t)
	if !ok {
		return t
	}
	if !desc.BaseCn && allFalse(desc.Cns) {
		return t
	}
	desc.BaseCn = false
	desc.Cns = make([]bool, len(desc.Decors))
	return tt.AddTypeDescr(desc)
}

func allFalse(bs []bool) bool {
	for _, b := range bs {
		if b {
			return false
		}
	}
	return true
}
