package lexparse

import "testing"

func TestNextTokenBasicForm(t *testing.T) {
	input := `(sym x ::type i32)`

	tests := []struct {
		expectedType TokenType
		expectedLit  string
	}{
		{LPAREN, "("},
		{IDENT, "sym"},
		{IDENT, "x"},
		{ATTR, "::"},
		{IDENT, "type"},
		{IDENT, "i32"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := New("t.orb", input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (lit=%q)", i, tt.expectedType, tok.Type, tok.Lit)
		}
		if tok.Lit != tt.expectedLit {
			t.Fatalf("tests[%d] - lit wrong. expected=%q, got=%q", i, tt.expectedLit, tok.Lit)
		}
	}
}

func TestNextTokenOperators(t *testing.T) {
	input := `+ - * / % < <= > >= == != << >> & | ^ ~ ! =`
	want := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "<<", ">>", "&", "|", "^", "~", "!", "="}

	l := New("t.orb", input)
	for i, w := range want {
		tok := l.Next()
		if tok.Type != IDENT {
			t.Fatalf("tests[%d] - expected IDENT, got %s", i, tok.Type)
		}
		if tok.Lit != w {
			t.Fatalf("tests[%d] - lit wrong. expected=%q, got=%q", i, w, tok.Lit)
		}
	}
	if tok := l.Next(); tok.Type != EOF {
		t.Fatalf("expected EOF after operator list, got %s", tok.Type)
	}
}

func TestNextTokenEllipsis(t *testing.T) {
	l := New("t.orb", "...")
	tok := l.Next()
	if tok.Type != IDENT || tok.Lit != "..." {
		t.Fatalf("expected IDENT %q, got %s %q", "...", tok.Type, tok.Lit)
	}
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		input    string
		wantType TokenType
		wantInt  int64
		wantFlt  float64
	}{
		{"42", INT, 42, 0},
		{"-7", INT, -7, 0},
		{"3.14", FLOAT, 0, 3.14},
		{"1e3", FLOAT, 0, 1000},
		{"-2.5e-1", FLOAT, 0, -0.25},
	}
	for _, tt := range tests {
		l := New("t.orb", tt.input)
		tok := l.Next()
		if tok.Type != tt.wantType {
			t.Fatalf("%q: expected %s, got %s", tt.input, tt.wantType, tok.Type)
		}
		if tt.wantType == INT && tok.IntVal != tt.wantInt {
			t.Fatalf("%q: expected int %d, got %d", tt.input, tt.wantInt, tok.IntVal)
		}
		if tt.wantType == FLOAT && tok.FloatVal != tt.wantFlt {
			t.Fatalf("%q: expected float %v, got %v", tt.input, tt.wantFlt, tok.FloatVal)
		}
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New("t.orb", `"a\nb\tc\\d\x41"`)
	tok := l.Next()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	want := "a\nb\tc\\dA"
	if tok.StrVal != want {
		t.Fatalf("expected %q, got %q", want, tok.StrVal)
	}
}

func TestNextTokenCharLiteral(t *testing.T) {
	l := New("t.orb", `'x'`)
	tok := l.Next()
	if tok.Type != CHAR || tok.CharVal != 'x' {
		t.Fatalf("expected CHAR 'x', got %s %q", tok.Type, tok.CharVal)
	}
}

func TestNextTokenKeywordLiterals(t *testing.T) {
	l := New("t.orb", "true false null")
	if tok := l.Next(); tok.Type != BOOL || tok.BoolVal != true {
		t.Fatalf("expected BOOL true, got %s %v", tok.Type, tok.BoolVal)
	}
	if tok := l.Next(); tok.Type != BOOL || tok.BoolVal != false {
		t.Fatalf("expected BOOL false, got %s %v", tok.Type, tok.BoolVal)
	}
	if tok := l.Next(); tok.Type != NULL {
		t.Fatalf("expected NULL, got %s", tok.Type)
	}
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	input := "x ;; trailing comment\n/* block\ncomment */y"
	l := New("t.orb", input)
	if tok := l.Next(); tok.Type != IDENT || tok.Lit != "x" {
		t.Fatalf("expected ident x, got %s %q", tok.Type, tok.Lit)
	}
	if tok := l.Next(); tok.Type != IDENT || tok.Lit != "y" {
		t.Fatalf("expected ident y, got %s %q", tok.Type, tok.Lit)
	}
}

func TestUnclosedBlockCommentReportsError(t *testing.T) {
	l := New("t.orb", "/* never closed")
	tok := l.Next()
	if tok.Type != EOF {
		t.Fatalf("expected EOF after unclosed comment, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New("t.orb", `"abc`)
	l.Next()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error for unterminated string, got %d", len(l.Errors()))
	}
}

func TestUnexpectedCharacterReportsError(t *testing.T) {
	l := New("t.orb", "@")
	tok := l.Next()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	l := New("t.orb", "x\ny")
	first := l.Next()
	if first.Start.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Start.Line)
	}
	second := l.Next()
	if second.Start.Line != 2 {
		t.Fatalf("expected line 2, got %d", second.Start.Line)
	}
}
