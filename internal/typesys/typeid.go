// Package typesys implements the TypeTable (spec §3 "TypeId", §4.1):
// the canonical, structurally-equivalenced registry of every type that
// appears during a compilation, plus the cast/fit rules that govern
// implicit conversions.
//
// Canonicalization follows the teacher's constant-pool pattern
// (internal/bytecode.Chunk.AddConstant in the teacher repo): the
// existing entries are scanned linearly for a structurally equal one
// first, and only a true structural miss grows the backing slice. The C++ origin (original_source/include/TypeTable.h)
// groups everything behind one flat "Id" integer; we keep that
// canonicalization contract but tag TypeId with its Kind up front,
// since Go's type switch makes a tagged handle cheaper to dispatch on
// than a bare integer plus a range check.
package typesys

// Kind classifies what a TypeId refers to.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindTuple
	KindDescr
	KindNamedCustom
	KindNamedData
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindTuple:
		return "tuple"
	case KindDescr:
		return "descr"
	case KindNamedCustom:
		return "named-custom"
	case KindNamedData:
		return "named-data"
	case KindCallable:
		return "callable"
	default:
		return "invalid"
	}
}

// TypeId is a tagged handle (kind, index) into the TypeTable (spec §3).
// The zero value is the canonical "invalid" type, returned whenever a
// construction operation fails; callers propagate it without raising a
// second diagnostic (spec §7).
type TypeId struct {
	kind  Kind
	index int32
	valid bool
}

// Invalid is the sentinel TypeId returned on construction failure.
var Invalid = TypeId{}

// IsValid reports whether t refers to a real table entry.
func (t TypeId) IsValid() bool { return t.valid }

// Kind returns t's kind tag. Invalid for an invalid TypeId.
func (t TypeId) Kind() Kind { return t.kind }

func mkTypeId(k Kind, idx int) TypeId {
	return TypeId{kind: k, index: int32(idx), valid: true}
}

// String renders a debug form, e.g. "primitive#3"; it is not a type
// name and is not stable across table orderings.
func (t TypeId) String() string {
	if !t.valid {
		return "invalid"
	}
	return t.kind.String() + "#" + itoa(int(t.index))
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

// Equal reports whether two TypeIds name the same canonical entry.
// Because construction is canonicalizing (spec §3 "Type registration is
// canonicalizing"), structural equality reduces to this shallow
// comparison once both ids have been through the table.
func (t TypeId) Equal(o TypeId) bool {
	return t.valid == o.valid && t.kind == o.kind && t.index == o.index
}
