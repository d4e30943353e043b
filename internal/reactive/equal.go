package reactive

import "reflect"

// Same reports whether a write of b over a can be skipped. Comparable values
// compare with ==. Slices, maps, pointers and channels compare by identity,
// so a freshly built slice is always a change even with equal contents.
// Functions and other incomparable values are never the same.
func Same[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}

	ra, rb := reflect.ValueOf(av), reflect.ValueOf(bv)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Func:
		return false
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}

	if !ra.Type().Comparable() {
		return false
	}
	return comparableEqual(av, bv)
}

// comparableEqual is == that treats a runtime comparison panic (an interface
// field holding an incomparable value) as a difference.
func comparableEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
