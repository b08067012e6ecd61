package typesys

// DecorKind is one layer of a type descriptor's decorator sequence
// (spec §3 "TypeDescr").
type DecorKind uint8

const (
	DecorPointer DecorKind = iota
	DecorArray
	DecorArrayPointer
)

// Decor is a single decorator layer: its kind, and for DecorArray its
// fixed length.
type Decor struct {
	Kind DecorKind
	Len  int // only meaningful for DecorArray
}

func (d Decor) eq(o Decor) bool {
	return d.Kind == o.Kind && (d.Kind != DecorArray || d.Len == o.Len)
}

// TypeDescr is a base TypeId plus a left-to-right decorator sequence
// and a parallel per-layer constness bit, plus a constness bit on the
// base itself (spec §3).
type TypeDescr struct {
	Base     TypeId
	Decors   []Decor
	Cns      []bool // len(Cns) == len(Decors); Cns[i] is the constness of Decors[i]'s layer
	BaseCn   bool
}

func (d TypeDescr) structurallyEqual(o TypeDescr) bool {
	if !d.Base.Equal(o.Base) || d.BaseCn != o.BaseCn {
		return false
	}
	if len(d.Decors) != len(o.Decors) {
		return false
	}
	for i := range d.Decors {
		if !d.Decors[i].eq(o.Decors[i]) || d.Cns[i] != o.Cns[i] {
			return false
		}
	}
	return true
}

// isSingleton reports whether d has no decorators and is non-const,
// meaning addTypeDescr should collapse it to d.Base (spec §4.1).
func (d TypeDescr) isSingleton() bool {
	return len(d.Decors) == 0 && !d.BaseCn
}

// lastLayerCn reports the constness of the outermost layer: the last
// decorator's bit if any decorators exist, else the base's bit.
func (d TypeDescr) lastLayerCn() bool {
	if len(d.Decors) == 0 {
		return d.BaseCn
	}
	return d.Cns[len(d.Cns)-1]
}
