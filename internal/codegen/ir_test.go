package codegen

import "testing"

func TestAddConstantDedups(t *testing.T) {
	c := NewChunk("f")
	i1 := c.AddConstant(Const{Int: 7})
	i2 := c.AddConstant(Const{Int: 7})
	i3 := c.AddConstant(Const{Int: 8})
	if i1 != i2 {
		t.Fatalf("identical constants should dedup: got %d and %d", i1, i2)
	}
	if i3 == i1 {
		t.Fatalf("distinct constants should not collide")
	}
	if len(c.Constants) != 2 {
		t.Fatalf("expected 2 pooled constants, got %d", len(c.Constants))
	}
}

func TestAllocSlotIsMonotonic(t *testing.T) {
	c := NewChunk("f")
	s0 := c.AllocSlot()
	s1 := c.AllocSlot()
	if s0 != 0 || s1 != 1 || c.LocalCount != 2 {
		t.Fatalf("expected slots 0,1 and LocalCount 2, got %d,%d,%d", s0, s1, c.LocalCount)
	}
}

func TestEmitHandleIsOwnIndex(t *testing.T) {
	c := NewChunk("f")
	h0 := c.emit(OpConst, -1, -1, 0, 1)
	h1 := c.emit(OpAddI, h0, h0, 0, 2)
	if h0 != 0 || h1 != 1 {
		t.Fatalf("expected sequential handles 0,1, got %d,%d", h0, h1)
	}
	if c.Code[h1].A != h0 || c.Code[h1].B != h0 {
		t.Fatalf("OpAddI should reference h0 twice, got %+v", c.Code[h1])
	}
}

func TestEmitCallRecordsTarget(t *testing.T) {
	c := NewChunk("caller")
	callee := NewChunk("callee")
	h := c.emitCall(CallTarget{Target: callee}, []int{0, 1}, 3)
	if c.Code[h].Op != OpCall {
		t.Fatalf("expected OpCall, got %v", c.Code[h].Op)
	}
	target := c.Calls[c.Code[h].Aux]
	if target.Target != callee {
		t.Fatalf("call target mismatch: got %+v", target)
	}
	if len(c.Code[h].Args) != 2 {
		t.Fatalf("expected 2 recorded args, got %d", len(c.Code[h].Args))
	}
}
