package pattern

import "reflect"

// Equal is the value equality used by variables and literals.
//
// Values of different dynamic types are never equal, so int(2) does not equal
// int64(2) or 2.0. Comparable values use ==, which keeps NaN unequal to itself.
// Slices, maps and other non-comparable values fall back to reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
