package pool

import "testing"

func TestNamePoolInterning(t *testing.T) {
	p := NewNamePool()

	id1 := p.Add("foo")
	id2 := p.Add("foo")
	id3 := p.Add("bar")

	if id1 != id2 {
		t.Errorf("Add(\"foo\") returned different ids on repeated calls: %d vs %d", id1, id2)
	}
	if id1 == id3 {
		t.Errorf("distinct names interned to the same id: %d", id1)
	}
	if got := p.Get(id1); got != "foo" {
		t.Errorf("Get(id1) = %q, want %q", got, "foo")
	}
}

func TestNamePoolNFCNormalization(t *testing.T) {
	p := NewNamePool()

	// "é" as a single precomposed rune vs "e" + combining acute accent.
	precomposed := "café"
	combining := "café"

	id1 := p.Add(precomposed)
	id2 := p.Add(combining)

	if id1 != id2 {
		t.Errorf("NFC-equivalent spellings interned to different ids: %d vs %d", id1, id2)
	}
}

func TestNamePoolInvalid(t *testing.T) {
	p := NewNamePool()
	if got := p.Get(InvalidName); got != "" {
		t.Errorf("Get(InvalidName) = %q, want empty", got)
	}
	if got := p.Get(NameId(9999)); got != "" {
		t.Errorf("Get(out-of-range) = %q, want empty", got)
	}
}

func TestNamePoolMainName(t *testing.T) {
	p := NewNamePool()
	if got := p.Get(p.MainName()); got != "main" {
		t.Errorf("MainName() resolves to %q, want \"main\"", got)
	}
}

func TestReservedClassification(t *testing.T) {
	p := NewNamePool()

	symID := p.Add("sym")
	if kw, ok := p.IsKeyword(symID); !ok || kw != KeywordSym {
		t.Errorf("IsKeyword(sym) = (%v, %v), want (KeywordSym, true)", kw, ok)
	}
	if !p.IsReserved(symID) {
		t.Error("IsReserved(sym) = false, want true")
	}

	plusID := p.Add("+")
	if op, ok := p.IsOper(plusID); !ok || op != OperAdd {
		t.Errorf("IsOper(+) = (%v, %v), want (OperAdd, true)", op, ok)
	}

	userID := p.Add("myVariable")
	if p.IsReserved(userID) {
		t.Error("IsReserved(myVariable) = true, want false")
	}
}

func TestOperInfoTable(t *testing.T) {
	if info := Info(OperAdd); !info.Unary || !info.Binary {
		t.Errorf("Info(OperAdd) = %+v, want unary and binary both true", info)
	}
	if info := Info(OperMul); info.Unary || !info.Binary {
		t.Errorf("Info(OperMul) = %+v, want unary false, binary true", info)
	}
	if info := Info(OperEq); !info.Comparison {
		t.Error("Info(OperEq).Comparison = false, want true")
	}
}

func TestStringPoolInterning(t *testing.T) {
	sp := NewStringPool()

	id1 := sp.Add("hello")
	id2 := sp.Add("hello")
	id3 := sp.Add("world")

	if id1 != id2 {
		t.Errorf("Add(\"hello\") returned different ids: %d vs %d", id1, id2)
	}
	if id1 == id3 {
		t.Error("distinct strings interned to the same id")
	}
	if got := sp.Get(id1); got != "hello" {
		t.Errorf("Get(id1) = %q, want %q", got, "hello")
	}
	if got := sp.Get(InvalidString); got != "" {
		t.Errorf("Get(InvalidString) = %q, want empty", got)
	}
}
