package typesys

import "github.com/orblang/orbc/internal/pool"

// Field is one (name, type) member of a DataType.
type Field struct {
	Name pool.NameId
	Type TypeId
}

// DataType is a named record of (field-name, TypeId) pairs (spec §3).
// It may be declared before being defined: Fields is nil and Defined
// is false until addDataType is called again with a non-empty field
// list.
type DataType struct {
	Name    pool.NameId
	Fields  []Field
	Defined bool
}

// NamedCustom binds a name directly to an already-existing TypeId (a
// type alias), registered by name with a one-time binding like
// DataType, but without field structure of its own. This generalizes
// spec §3's "Named types are registered by name with a one-time
// binding" to the non-record case (e.g. `sym Meters = type f64`).
type NamedCustom struct {
	Name       pool.NameId
	Underlying TypeId
}
