// Package nodeval implements NodeVal (spec §3 "NodeVal"): the single
// tagged value that flows through every processor dispatch — raw
// parser leftovers, compile-time values, and lowered backend handles
// alike.
//
// The teacher (internal/interp.Value) models runtime values as an
// interface with one concrete type per kind. NodeVal instead needs a
// handful of fields — source location, an optional `type:` attribute,
// an attribute map, an escape counter — present on every variant
// regardless of kind, so it is modeled as one closed struct carrying a
// Kind tag rather than an interface hierarchy (see DESIGN.md).
package nodeval

import (
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/typesys"
)

// Kind tags which variant of the union a NodeVal holds.
type Kind int

const (
	Invalid Kind = iota
	ValidVoid
	Import
	Literal
	Special
	AttributeMap
	EvalValue
	BackendValue
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case ValidVoid:
		return "valid-void"
	case Import:
		return "import"
	case Literal:
		return "literal"
	case Special:
		return "special"
	case AttributeMap:
		return "attribute-map"
	case EvalValue:
		return "eval-value"
	case BackendValue:
		return "backend-value"
	default:
		return "unknown"
	}
}

// SpecialTag discriminates the three bare-marker families a Special
// NodeVal can hold (spec §3 "bare keyword/operator/meaningful-word
// marker").
type SpecialTag int

const (
	SpecialKeyword SpecialTag = iota
	SpecialOperator
	SpecialMeaningful

	// SpecialFuncRef/SpecialMacroRef carry an unresolved reference to a
	// function or macro overload set (spec §4.3 leaf processing: "look
	// it up as type / variable / function-set / macro-set"); the name
	// itself lives in Scalar.Name. The non-leaf dispatcher (spec §4.3's
	// "function value ⇒ call" / "macro value ⇒ invoke") recognizes
	// these by this tag on the processed first child.
	SpecialFuncRef
	SpecialMacroRef
)

// VarRef is the evaluator's ref-pointer representation: it names a
// variable slot by lexical coordinate (callable-depth, block-depth,
// declaration index within the block) rather than a raw Go pointer, so
// that "a ref remains valid only until its owning block ends" (spec §3
// invariant) can be checked instead of merely hoped for — the symbol
// table clears/invalidates slots as blocks tear down.
type VarRef struct {
	CallableDepth int
	BlockDepth    int
	Index         int
}

// Scalar is the fixed-width payload for an EvalValue whose type is a
// scalar family; exactly one field is meaningful, selected by the
// value's TypeId classification (WorksAsI/U/F/C/B/id/type in typesys).
type Scalar struct {
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Char  rune
	Name  pool.NameId
	Str   pool.StringId
	Type  typesys.TypeId
}

// NodeVal is the universal tagged value (spec §3). Every variant
// carries Loc, TypeAttr, Attrs, and Escape; the Kind-specific payload
// fields beyond that are only meaningful for their own Kind.
type NodeVal struct {
	Kind Kind

	Loc source.CodeLoc

	// TypeAttr holds the parsed `type:` attribute, if present, before
	// the processor applies it as an implicit cast (spec §4.3
	// "Attribute handling").
	TypeAttr *NodeVal

	// Attrs holds every other attribute on the originating node.
	Attrs map[pool.NameId]*NodeVal

	// Escape is the escape counter carried over from the parser leaf
	// or subtree (spec §3 "escape counter"; §4.3 "Escape semantics").
	Escape int

	// Import payload.
	ImportPath pool.StringId

	// Literal payload: raw parser leaf content, present when Kind ==
	// Literal (an escaped leaf returned uninterpreted, or one not yet
	// promoted to an eval-value).
	LitKind  LiteralKind
	LitInt   int64
	LitFloat float64
	LitChar  rune
	LitBool  bool
	LitStr   pool.StringId
	LitID    pool.NameId

	// Special payload.
	SpecialTag SpecialTag
	Keyword    pool.Keyword
	Operator   pool.Oper
	Meaningful pool.Meaningful

	// AttributeMap payload: the node's own attribute map presented as
	// a first-class value (used by attrOf/isDef/attrIsDef handling).
	Map map[pool.NameId]*NodeVal

	// EvalValue / shared payload. Type is the value's TypeId for
	// EvalValue and BackendValue alike.
	Type typesys.TypeId

	// Scalar holds the payload when Type's family is scalar.
	Scalar Scalar

	// Children holds the payload when Type's family is raw, tuple, or
	// array (or a data type's fields, in declared field order).
	Children []*NodeVal

	// Ref is the optional alias back to the NodeVal this value was
	// loaded from (spec §3 "optional ref-pointer to the NodeVal it
	// aliases"). Valid only while the referenced slot's owning block
	// remains on the active chain.
	Ref *VarRef

	// BackendValue payload: an opaque token minted and interpreted only
	// by the active Compiler backend, plus an optional opaque ref
	// token mirroring Ref for the backend's own alias bookkeeping.
	BackendToken any
	RefToken     any
}

// LiteralKind mirrors parsetree.LiteralKind for the Literal variant's
// payload (spec §3 "one of {id, signed int, float, char, bool, string,
// null}").
type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitID
	LitInteger
	LitFloatKind
	LitCharKind
	LitBoolKind
	LitString
	LitNull
)

// IsInvalid reports whether v is the invalid sentinel (or nil,
// treated the same way so callers can propagate freely).
func (v *NodeVal) IsInvalid() bool {
	return v == nil || v.Kind == Invalid
}

// Escaped reports whether v still carries an outstanding escape.
func (v *NodeVal) Escaped() bool {
	return v != nil && v.Escape > 0
}

// WithEscapeDecremented returns a shallow copy of v with its escape
// counter reduced by one, clamped at zero (spec §4.3 "Processing an
// escaped leaf/subtree decrements the score by one per processing
// step").
func (v *NodeVal) WithEscapeDecremented() *NodeVal {
	if v == nil {
		return nil
	}
	cp := *v
	if cp.Escape > 0 {
		cp.Escape--
	}
	return &cp
}

// Attr looks up a non-type attribute by name.
func (v *NodeVal) Attr(name pool.NameId) (*NodeVal, bool) {
	if v == nil || v.Attrs == nil {
		return nil, false
	}
	a, ok := v.Attrs[name]
	return a, ok
}

// InvalidAt builds the invalid sentinel carrying a location for
// diagnostics that want to point somewhere even on failure.
func InvalidAt(loc source.CodeLoc) *NodeVal {
	return &NodeVal{Kind: Invalid, Loc: loc}
}

// Void builds a valid-void NodeVal (spec §3 "OK but no value").
func Void(loc source.CodeLoc) *NodeVal {
	return &NodeVal{Kind: ValidVoid, Loc: loc}
}
