package listenable

import "reflect"

// sameValue reports whether a write of b over a leaves the value unchanged.
// Comparable values use ==. Maps and slices are the same only when they share
// storage, so a freshly built slice with equal elements counts as a change.
// Funcs cannot be compared and always count as a change.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Comparable() {
		return false
	}
	return a == b
}
