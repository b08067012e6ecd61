// Package pool provides interning of identifiers and string literals
// (spec §3 "Interned IDs") plus the reserved-word classification tables
// (meaningful words, keywords, operators) that the processor consults
// during dispatch (spec §4.3).
//
// Interning follows the same linear-probe-with-map-speedup shape the
// teacher uses for its bytecode constant pool (Chunk.AddConstant):
// canonicalize through a map, append on miss.
package pool

import (
	"golang.org/x/text/unicode/norm"
)

// NameId is a stable, small-integer handle for an interned identifier.
type NameId int

// StringId is a stable, small-integer handle for an interned string
// literal's contents.
type StringId int

// InvalidName and InvalidString are the zero-value sentinels; valid ids
// start at 1 so a zero NameId/StringId can be used as "absent" in
// structs that embed one without an extra bool.
const (
	InvalidName   NameId   = 0
	InvalidString StringId = 0
)

// NamePool interns identifier spellings into stable NameId values and
// tracks which ids name reserved words. Identifiers are normalized to
// Unicode NFC before interning so that two spellings of the same
// grapheme sequence (e.g. a precomposed vs. combining accent) resolve
// to one NameId.
type NamePool struct {
	byID   []string
	byName map[string]NameId

	mainName NameId

	meaningful map[NameId]Meaningful
	keyword    map[NameId]Keyword
	operator   map[NameId]Oper
}

// NewNamePool creates an empty pool and registers the reserved-word
// tables (spec §3).
func NewNamePool() *NamePool {
	p := &NamePool{
		byID:       []string{""}, // index 0 unused, matches InvalidName
		byName:     make(map[string]NameId),
		meaningful: make(map[NameId]Meaningful),
		keyword:    make(map[NameId]Keyword),
		operator:   make(map[NameId]Oper),
	}
	p.mainName = p.Add("main")
	p.registerReserved()
	return p
}

// Add interns name, returning its existing NameId if already interned.
func (p *NamePool) Add(name string) NameId {
	norm := normalizeIdent(name)
	if id, ok := p.byName[norm]; ok {
		return id
	}
	id := NameId(len(p.byID))
	p.byID = append(p.byID, norm)
	p.byName[norm] = id
	return id
}

// Get returns the interned spelling for id, or "" if id is invalid.
func (p *NamePool) Get(id NameId) string {
	if id <= 0 || int(id) >= len(p.byID) {
		return ""
	}
	return p.byID[id]
}

// MainName returns the NameId for "main", the distinguished entry
// point name (spec §3).
func (p *NamePool) MainName() NameId { return p.mainName }

func normalizeIdent(name string) string {
	return norm.NFC.String(name)
}

// StringPool interns string-literal contents into stable StringId
// values.
type StringPool struct {
	byID   []string
	byName map[string]StringId
}

// NewStringPool creates an empty string pool.
func NewStringPool() *StringPool {
	return &StringPool{
		byID:   []string{""},
		byName: make(map[string]StringId),
	}
}

// Add interns s, returning its existing StringId if already interned.
func (p *StringPool) Add(s string) StringId {
	if id, ok := p.byName[s]; ok {
		return id
	}
	id := StringId(len(p.byID))
	p.byID = append(p.byID, s)
	p.byName[s] = id
	return id
}

// Get returns the interned contents for id, or "" if id is invalid.
func (p *StringPool) Get(id StringId) string {
	if id <= 0 || int(id) >= len(p.byID) {
		return ""
	}
	return p.byID[id]
}
