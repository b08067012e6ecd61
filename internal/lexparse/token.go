// Package lexparse is the external lexer/parser collaborator summarized
// in spec §6: it turns .orb source text into the parsetree.Node trees
// every other component consumes. Spec §1 scopes the lexer and parser
// out of the semantic processor core, but a runnable orbc still needs
// one concrete implementation of that boundary to drive end to end, so
// this package supplies it in the teacher's own lexer/parser idiom
// (internal/lexer, internal/parser) rather than leaving the contract
// unimplemented.
package lexparse

import "github.com/orblang/orbc/internal/source"

// TokenType classifies one lexical token of the s-expression surface
// grammar (spec §6 "Source surface"), grouped the way the teacher's
// own lexer.TokenType groups its token kinds.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }

	ATTR      // :: prefix
	UNESCAPE  // ,
	ESCAPE    // \

	IDENT  // identifier, keyword, or operator spelling
	INT    // integer literal
	FLOAT  // float literal
	CHAR   // character literal: 'a'
	BOOL   // true / false
	NULL   // null
	STRING // "..."
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case ATTR:
		return "::"
	case UNESCAPE:
		return ","
	case ESCAPE:
		return "\\"
	case IDENT:
		return "ident"
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case CHAR:
		return "char"
	case BOOL:
		return "bool"
	case NULL:
		return "null"
	case STRING:
		return "string"
	default:
		return "illegal"
	}
}

// Token is one lexical unit together with its source span.
type Token struct {
	Type TokenType
	Lit  string

	IntVal   int64
	FloatVal float64
	CharVal  rune
	BoolVal  bool
	StrVal   string

	Start source.Position
	End   source.Position
}
