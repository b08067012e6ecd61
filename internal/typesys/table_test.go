package typesys

import (
	"testing"

	"github.com/orblang/orbc/internal/pool"
)

func TestCanonicalizationIdempotence(t *testing.T) {
	tt := NewTypeTable()
	p1 := tt.AddAddrOf(tt.Prim(PrimI32))
	p2 := tt.AddAddrOf(tt.Prim(PrimI32))
	if !p1.Equal(p2) {
		t.Errorf("addTypeDescr(same sequence) produced different ids: %+v vs %+v", p1, p2)
	}
}

func TestSingletonDescriptorCollapses(t *testing.T) {
	tt := NewTypeTable()
	got := tt.AddTypeDescr(TypeDescr{Base: tt.Prim(PrimI32)})
	if !got.Equal(tt.Prim(PrimI32)) {
		t.Errorf("singleton descriptor did not collapse to base id: %+v", got)
	}
}

func TestTupleSingletonCollapses(t *testing.T) {
	tt := NewTypeTable()
	got := tt.AddTuple([]TypeId{tt.Prim(PrimI32)})
	if !got.Equal(tt.Prim(PrimI32)) {
		t.Errorf("AddTuple([x]) = %+v, want x itself", got)
	}
}

func TestTupleZeroMembersFails(t *testing.T) {
	tt := NewTypeTable()
	got := tt.AddTuple(nil)
	if got.IsValid() {
		t.Error("AddTuple(nil) should be Invalid")
	}
}

func TestAddDataTypeForwardThenDefine(t *testing.T) {
	tt := NewTypeTable()
	names := pool.NewNamePool()
	name := names.Add("Point")

	fwd := tt.AddDataType(name, nil)
	if !fwd.IsValid() {
		t.Fatal("forward declaration should succeed")
	}
	dt, ok := tt.Data(fwd)
	if !ok || dt.Defined {
		t.Fatal("forward declaration should be opaque (not defined)")
	}

	xName := names.Add("x")
	defined := tt.AddDataType(name, []Field{{Name: xName, Type: tt.Prim(PrimI32)}})
	if !defined.Equal(fwd) {
		t.Error("defining a forward-declared type should keep the same TypeId")
	}
	dt2, _ := tt.Data(defined)
	if !dt2.Defined || len(dt2.Fields) != 1 {
		t.Error("AddDataType with fields should define the type")
	}

	again := tt.AddDataType(name, []Field{{Name: xName, Type: tt.Prim(PrimI32)}})
	if again.IsValid() {
		t.Error("redefining an already-defined data type should fail")
	}
}

func TestAddDerefOfRoundTrips(t *testing.T) {
	tt := NewTypeTable()
	ptr := tt.AddAddrOf(tt.Prim(PrimI32))
	back := tt.AddDerefOf(ptr)
	if !back.Equal(tt.Prim(PrimI32)) {
		t.Errorf("AddDerefOf(AddAddrOf(i32)) = %+v, want i32", back)
	}
}

func TestAddDerefOfNonPointerFails(t *testing.T) {
	tt := NewTypeTable()
	if tt.AddDerefOf(tt.Prim(PrimI32)).IsValid() {
		t.Error("AddDerefOf(i32) should fail")
	}
}

func TestAddArrOfLenAndIndexOf(t *testing.T) {
	tt := NewTypeTable()
	arr := tt.AddArrOfLenOf(tt.Prim(PrimI32), 10)
	if !tt.WorksAsArrOfLen(arr, 10) {
		t.Error("expected array of length 10")
	}
	elem := tt.AddIndexOf(arr)
	if !elem.Equal(tt.Prim(PrimI32)) {
		t.Errorf("AddIndexOf(arr) = %+v, want i32", elem)
	}
}

func TestStrTypeClassification(t *testing.T) {
	tt := NewTypeTable()
	if !tt.WorksAsStr(tt.StrType()) {
		t.Error("StrType() should classify as WorksAsStr")
	}
	if !tt.WorksAsAnyP(tt.StrType()) {
		t.Error("str is an array-pointer, should classify as WorksAsAnyP")
	}
}

func TestDropCnsRecursesIntoTuples(t *testing.T) {
	tt := NewTypeTable()
	cnInt := tt.AddCnOf(tt.Prim(PrimI32))
	tup := tt.AddTuple([]TypeId{cnInt, tt.Prim(PrimBool)})
	if !tt.WorksAsCn(tup) {
		t.Fatal("tuple with a const member should work as cn")
	}
	dropped := tt.DropCns(tup)
	if tt.WorksAsCn(dropped) {
		t.Error("DropCns should strip constness from tuple members")
	}
}
