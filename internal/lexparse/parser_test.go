package lexparse

import "testing"

func TestParseLeafForms(t *testing.T) {
	p := NewParser("t.orb", `x 42 3.5 'c' true false null "s"`)
	forms := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 8 {
		t.Fatalf("expected 8 forms, got %d", len(forms))
	}
	if forms[0].IDName != "x" {
		t.Fatalf("expected ident x, got %q", forms[0].IDName)
	}
	if forms[1].IntVal != 42 {
		t.Fatalf("expected int 42, got %d", forms[1].IntVal)
	}
	if forms[2].FloatVal != 3.5 {
		t.Fatalf("expected float 3.5, got %v", forms[2].FloatVal)
	}
	if forms[3].CharVal != 'c' {
		t.Fatalf("expected char 'c', got %q", forms[3].CharVal)
	}
	if !forms[4].BoolVal {
		t.Fatalf("expected bool true")
	}
	if forms[5].BoolVal {
		t.Fatalf("expected bool false")
	}
	if forms[6].Lit.String() != "null" {
		t.Fatalf("expected null literal, got %s", forms[6].Lit)
	}
	if forms[7].StrVal != "s" {
		t.Fatalf("expected string s, got %q", forms[7].StrVal)
	}
}

func TestParseListAndAttrs(t *testing.T) {
	p := NewParser("t.orb", `(fnc add ::ret i32 (sym x ::type i32) (sym y ::type i32))`)
	forms := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(forms))
	}
	fnc := forms[0]
	if fnc.IsLeaf() {
		t.Fatalf("expected fnc to be a non-leaf node")
	}
	if fnc.Attr("ret") == nil {
		t.Fatalf("expected ::ret attribute")
	}
	if fnc.Attr("ret").IDName != "i32" {
		t.Fatalf("expected ::ret value i32, got %q", fnc.Attr("ret").IDName)
	}
	if len(fnc.Children) != 4 {
		t.Fatalf("expected 4 children (head + name + 2 params), got %d", len(fnc.Children))
	}
	param := fnc.Children[2]
	if param.Attr("type") == nil || param.Attr("type").IDName != "i32" {
		t.Fatalf("expected param ::type i32")
	}
}

func TestParseBareAttributeFlag(t *testing.T) {
	p := NewParser("t.orb", `(mac m ::variadic)`)
	forms := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	mac := forms[0]
	if mac.Attr("variadic") == nil {
		t.Fatalf("expected bare ::variadic attribute to be present")
	}
}

func TestParseEscapeAndUnescape(t *testing.T) {
	p := NewParser("t.orb", `\x ,,x`)
	forms := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	if forms[0].Escape != 1 {
		t.Fatalf("expected escape score 1, got %d", forms[0].Escape)
	}
	if forms[1].Escape != 0 {
		t.Fatalf("expected escape score clamped to 0, got %d", forms[1].Escape)
	}
}

func TestParseBraceNode(t *testing.T) {
	p := NewParser("t.orb", `{a b c}`)
	forms := p.ParseFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 1 || len(forms[0].Children) != 3 {
		t.Fatalf("expected 1 form with 3 children, got %d forms", len(forms))
	}
}

func TestParseUnbalancedNodeReportsError(t *testing.T) {
	p := NewParser("t.orb", `(fnc add`)
	p.ParseFile()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected an error for unbalanced node")
	}
}

func TestParseAttributeMissingNameReportsError(t *testing.T) {
	p := NewParser("t.orb", `(fnc :: 1)`)
	p.ParseFile()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected an error for missing attribute name")
	}
}
