package lexparse

import (
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/source"
)

// Parser builds parsetree.Node trees from a Lexer's token stream,
// grounded on the teacher's internal/parser.Parser recursive-descent
// shape (a one-token lookahead cursor, combinators per construct) but
// over the much smaller s-expression grammar from spec §6: parens or
// braces delimit a node's children, a leading "::name" pulls the
// following form into the node's attribute map instead of its child
// list, a leading backslash escapes (raises the node's quote count by
// one) and a leading comma unescapes (lowers it by one, never below
// zero).
type Parser struct {
	lex  *Lexer
	file string

	tok     Token
	peeked  *Token
	errors  []*Error
}

// NewParser creates a Parser reading file's source text.
func NewParser(file, input string) *Parser {
	p := &Parser{lex: New(file, input), file: file}
	p.advance()
	return p
}

func (p *Parser) Errors() []*Error {
	return append(append([]*Error(nil), p.lex.Errors()...), p.errors...)
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lex.Next()
}

func (p *Parser) peek() Token {
	if p.peeked == nil {
		t := p.lex.Next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) errorf(loc source.CodeLoc, msg string) {
	p.errors = append(p.errors, &Error{Loc: loc, Message: msg})
}

// ParseFile parses every top-level form in the file (spec §2's "the
// orchestrator pulls one top-level node at a time from the parser").
func (p *Parser) ParseFile() []*parsetree.Node {
	var forms []*parsetree.Node
	for p.tok.Type != EOF {
		n := p.parseForm()
		if n != nil {
			forms = append(forms, n)
		}
	}
	return forms
}

// parseForm parses one escape-qualified form: zero or more leading
// backslash/comma markers followed by one leaf or parenthesized node.
func (p *Parser) parseForm() *parsetree.Node {
	escape := 0
	for p.tok.Type == ESCAPE || p.tok.Type == UNESCAPE {
		if p.tok.Type == ESCAPE {
			escape++
		} else if escape > 0 {
			escape--
		}
		p.advance()
	}
	n := p.parseOne()
	if n == nil {
		return nil
	}
	n.Escape = escape
	return n
}

// parseOne parses exactly one leaf or one parenthesized/braced node,
// with no leading escape handling (that is parseForm's job).
func (p *Parser) parseOne() *parsetree.Node {
	start := p.tok.Start
	switch p.tok.Type {
	case LPAREN:
		return p.parseList(RPAREN)
	case LBRACE:
		return p.parseList(RBRACE)
	case IDENT:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitID, IDName: p.tok.Lit}
		p.advance()
		return n
	case INT:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitInt, IntVal: p.tok.IntVal}
		p.advance()
		return n
	case FLOAT:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitFloat, FloatVal: p.tok.FloatVal}
		p.advance()
		return n
	case CHAR:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitChar, CharVal: p.tok.CharVal}
		p.advance()
		return n
	case BOOL:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitBool, BoolVal: p.tok.BoolVal}
		p.advance()
		return n
	case NULL:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitNull}
		p.advance()
		return n
	case STRING:
		n := &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: start, End: p.tok.End}, Lit: parsetree.LitString, StrVal: p.tok.StrVal}
		p.advance()
		return n
	case EOF:
		return nil
	default:
		loc := source.CodeLoc{File: p.file, Start: start, End: p.tok.End}
		p.errorf(loc, "unexpected token "+p.tok.Type.String())
		p.advance()
		return nil
	}
}

// parseList reads children up to close, diverting every "::name
// [value]" pair it encounters into the resulting node's attribute map
// instead of its child list (spec §4.3 "On every node after processing,
// parse its attribute map"). A bare "::name" with no following value,
// and every boolean-flag attribute (::evaluable, ::compiled,
// ::noNameMangle, ::drop, ::preprocess, ::plusEscape, ::variadic)
// wherever it appears, gets a synthetic empty marker node as its value,
// so a flag never takes the following form (e.g. a function body) as
// its value — Attr(name) returning non-nil is all callers ever check
// for those.
func (p *Parser) parseList(close TokenType) *parsetree.Node {
	start := p.tok.Start
	p.advance() // consume ( or {

	var children []*parsetree.Node
	var attrs map[string]*parsetree.Node
	for p.tok.Type != close && p.tok.Type != EOF {
		if p.tok.Type == ATTR {
			p.advance()
			if p.tok.Type != IDENT {
				p.errorf(source.CodeLoc{File: p.file, Start: p.tok.Start, End: p.tok.End}, "expected attribute name after ::")
				continue
			}
			attrName := p.tok.Lit
			attrStart := p.tok.Start
			p.advance()
			flag := false
			switch attrName {
			case "evaluable", "compiled", "noNameMangle", "drop", "preprocess", "plusEscape", "variadic":
				flag = true
			}
			var val *parsetree.Node
			if flag || p.tok.Type == close || p.tok.Type == ATTR || p.tok.Type == EOF {
				val = &parsetree.Node{Loc: source.CodeLoc{File: p.file, Start: attrStart, End: attrStart}}
			} else {
				val = p.parseForm()
				if val == nil {
					continue
				}
			}
			if attrs == nil {
				attrs = make(map[string]*parsetree.Node)
			}
			attrs[attrName] = val
			continue
		}
		n := p.parseForm()
		if n == nil {
			if p.tok.Type == EOF {
				break
			}
			continue
		}
		children = append(children, n)
	}
	end := p.tok.End
	if p.tok.Type == close {
		p.advance()
	} else {
		p.errorf(source.CodeLoc{File: p.file, Start: start, End: end}, "unbalanced node: missing closing "+close.String())
	}
	return &parsetree.Node{
		Loc:      source.CodeLoc{File: p.file, Start: start, End: end},
		Children: children,
		Attrs:    attrs,
	}
}
