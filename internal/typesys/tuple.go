package typesys

// TupleType is an ordered sequence of >= 2 member TypeIds (spec §3;
// singleton tuples collapse to the member type at construction time,
// and zero-member tuples are rejected by addTuple).
type TupleType struct {
	Members []TypeId
}

func (t TupleType) structurallyEqual(o TupleType) bool {
	if len(t.Members) != len(o.Members) {
		return false
	}
	for i := range t.Members {
		if !t.Members[i].Equal(o.Members[i]) {
			return false
		}
	}
	return true
}
