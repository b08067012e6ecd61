package typesys

// Prim enumerates the fixed primitive family (spec §3). Order matters:
// I and U families are listed narrowest-to-widest so widening checks
// (spec §3 "Implicit castability") are a plain index comparison.
type Prim int

const (
	PrimBool Prim = iota
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimF32
	PrimF64
	PrimC8
	PrimPtr  // untyped pointer
	PrimID   // name value
	PrimType // type value
	PrimRaw  // uninterpreted tree
	primCount
)

var primNames = map[Prim]string{
	PrimBool: "bool",
	PrimI8:   "i8", PrimI16: "i16", PrimI32: "i32", PrimI64: "i64",
	PrimU8: "u8", PrimU16: "u16", PrimU32: "u32", PrimU64: "u64",
	PrimF32: "f32", PrimF64: "f64",
	PrimC8:   "c8",
	PrimPtr:  "ptr",
	PrimID:   "id",
	PrimType: "type",
	PrimRaw:  "raw",
}

func (p Prim) String() string { return primNames[p] }

// WidestI, WidestU, WidestF are the widest member of each numeric
// family, used by shortestFittingPrimI and widening checks.
const (
	WidestI = PrimI64
	WidestU = PrimU64
	WidestF = PrimF64
)

func isIFamily(p Prim) bool { return p >= PrimI8 && p <= PrimI64 }
func isUFamily(p Prim) bool { return p >= PrimU8 && p <= PrimU64 }
func isFFamily(p Prim) bool { return p >= PrimF32 && p <= PrimF64 }

// primBitWidth is used by fitsI/fitsU/fitsF and shortestFittingPrimI.
var primBitWidth = map[Prim]int{
	PrimI8: 8, PrimI16: 16, PrimI32: 32, PrimI64: 64,
	PrimU8: 8, PrimU16: 16, PrimU32: 32, PrimU64: 64,
	PrimF32: 32, PrimF64: 64,
}

// primIds holds the canonical TypeId for each Prim, populated once at
// table construction (primitives are a fixed enumeration, spec §3).
type primTable struct {
	ids [primCount]TypeId
}

func newPrimTable() primTable {
	var pt primTable
	for p := Prim(0); p < primCount; p++ {
		pt.ids[p] = mkTypeId(KindPrimitive, int(p))
	}
	return pt
}

// Prim returns which primitive t.index names; only meaningful when
// t.Kind() == KindPrimitive.
func (t TypeId) Prim() Prim { return Prim(t.index) }
