// Package equality implements the argument comparison strategies used by the
// memoization engine: identity-based comparison of the previous argument list
// (Reference) and canonical string encoding of an argument list (Serialized).
package equality

import "reflect"

// Reference reports whether cur matches prev as a positional conjunction of
// per-argument identity checks, short-circuiting on the first inequality.
// A length mismatch or a nil prev is always a miss. No deep traversal
// happens: pointers, maps, slices, channels and funcs compare by identity,
// comparable kinds by ==. Two structurally identical but distinct composite
// values are therefore different arguments.
func Reference(prev, cur []any) bool {
	if prev == nil || len(prev) != len(cur) {
		return false
	}
	for i := range cur {
		if !same(prev[i], cur[i]) {
			return false
		}
	}
	return true
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		// Identity of a slice is its backing array plus length.
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 {
			return va.IsNil() == vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	default:
		if !va.Comparable() {
			return false
		}
		return a == b
	}
}
