package equality

import "testing"

type payload struct {
	ID   int
	Name string
}

func TestReferencePrimitives(t *testing.T) {
	if !Reference([]any{5, "a", true}, []any{5, "a", true}) {
		t.Fatal("Expected equal primitives to match")
	}
	if Reference([]any{5}, []any{6}) {
		t.Fatal("Expected different ints to mismatch")
	}
	if Reference([]any{"a"}, []any{"b"}) {
		t.Fatal("Expected different strings to mismatch")
	}
}

func TestReferenceNilPrev(t *testing.T) {
	if Reference(nil, []any{1}) {
		t.Fatal("Expected nil previous args to be a miss")
	}
}

func TestReferenceLengthMismatch(t *testing.T) {
	if Reference([]any{1}, []any{1, 2}) {
		t.Fatal("Expected length mismatch to be a miss")
	}
}

func TestReferenceEmptyArgs(t *testing.T) {
	if !Reference([]any{}, []any{}) {
		t.Fatal("Expected two empty argument lists to match")
	}
}

func TestReferencePointerIdentity(t *testing.T) {
	a := &payload{ID: 1, Name: "x"}
	b := &payload{ID: 1, Name: "x"}

	if !Reference([]any{a}, []any{a}) {
		t.Fatal("Expected same pointer to match")
	}
	// Structurally identical but distinct allocations are different
	// arguments.
	if Reference([]any{a}, []any{b}) {
		t.Fatal("Expected distinct pointers to mismatch")
	}
}

func TestReferenceStructValues(t *testing.T) {
	// Comparable struct values use ==, like any primitive.
	if !Reference([]any{payload{1, "x"}}, []any{payload{1, "x"}}) {
		t.Fatal("Expected equal struct values to match")
	}
	if Reference([]any{payload{1, "x"}}, []any{payload{2, "x"}}) {
		t.Fatal("Expected different struct values to mismatch")
	}
}

func TestReferenceSliceIdentity(t *testing.T) {
	s1 := []int{1, 2, 3}
	s2 := []int{1, 2, 3}

	if !Reference([]any{s1}, []any{s1}) {
		t.Fatal("Expected same slice to match")
	}
	if Reference([]any{s1}, []any{s2}) {
		t.Fatal("Expected distinct slices to mismatch")
	}
	if !Reference([]any{s1[:2]}, []any{s1[:2]}) {
		t.Fatal("Expected same backing array and length to match")
	}
	if Reference([]any{s1[:2]}, []any{s1[:3]}) {
		t.Fatal("Expected different lengths over the same array to mismatch")
	}
}

func TestReferenceMapIdentity(t *testing.T) {
	m1 := map[string]int{"a": 1}
	m2 := map[string]int{"a": 1}

	if !Reference([]any{m1}, []any{m1}) {
		t.Fatal("Expected same map to match")
	}
	if Reference([]any{m1}, []any{m2}) {
		t.Fatal("Expected distinct maps to mismatch")
	}
}

func TestReferenceNilArgs(t *testing.T) {
	if !Reference([]any{nil}, []any{nil}) {
		t.Fatal("Expected nil arguments to match")
	}
	if Reference([]any{nil}, []any{1}) {
		t.Fatal("Expected nil vs value to mismatch")
	}
	if Reference([]any{1}, []any{nil}) {
		t.Fatal("Expected value vs nil to mismatch")
	}
}

func TestReferenceTypeMismatch(t *testing.T) {
	if Reference([]any{int(1)}, []any{int64(1)}) {
		t.Fatal("Expected differently typed arguments to mismatch")
	}
}

func TestReferenceShortCircuits(t *testing.T) {
	// A mismatch in the first position must not panic on an uncomparable
	// second argument of a different type.
	f := func() {}
	if Reference([]any{1, f}, []any{2, f}) {
		t.Fatal("Expected first-position mismatch to be a miss")
	}
}

func TestReferenceFuncIdentity(t *testing.T) {
	n := 0
	f := func() { n++ }
	g := func() { n-- }
	if !Reference([]any{f}, []any{f}) {
		t.Fatal("Expected same func to match")
	}
	if Reference([]any{f}, []any{g}) {
		t.Fatal("Expected distinct funcs to mismatch")
	}
}
