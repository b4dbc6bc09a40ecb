package pattern

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Built-in predicates. A rune is an int32 in Go, so Char values also satisfy
// the integer predicates.
var (
	PositiveInt    = Predicate("positive integer", func(v any) bool { s, ok := intSign(v); return ok && s > 0 })
	NonNegativeInt = Predicate("non-negative integer", func(v any) bool { s, ok := intSign(v); return ok && s >= 0 })
	Integer        = Predicate("integer", func(v any) bool { _, ok := intSign(v); return ok })
	Float          = Predicate("float", isFloat)
	Number         = Predicate("number", func(v any) bool { _, ok := toFloat(v); return ok })
	String         = OfType[string]()
	Char           = Predicate("char", func(v any) bool { _, ok := v.(rune); return ok })
	Bool           = OfType[bool]()
)

var builtins = map[string]Pattern{
	"positive-int":     PositiveInt,
	"non-negative-int": NonNegativeInt,
	"int":              Integer,
	"float":            Float,
	"number":           Number,
	"string":           String,
	"char":             Char,
	"bool":             Bool,
}

// Builtin returns the built-in predicate registered under name
// (e.g. "positive-int"), as used by clause catalogs.
func Builtin(name string) (Pattern, bool) {
	p, ok := builtins[name]
	return p, ok
}

// BuiltinNames lists the names accepted by Builtin, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OfType returns a predicate matching values whose dynamic type is exactly T.
func OfType[T any]() Pattern {
	name := reflect.TypeFor[T]().String()
	return Predicate("of type "+name, func(v any) bool {
		_, ok := v.(T)
		return ok
	})
}

// Range returns a predicate matching integer or float values in [lo, hi].
func Range(lo, hi float64) Pattern {
	return Predicate(fmt.Sprintf("number in [%g, %g]", lo, hi), func(v any) bool {
		f, ok := toFloat(v)
		return ok && f >= lo && f <= hi
	})
}

// intSign reports the sign of an integer value of any Go integer kind.
func intSign(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		switch {
		case n > 0:
			return 1, true
		case n < 0:
			return -1, true
		}
		return 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > 0 {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isFloat(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

// toFloat converts integer and float kinds to float64. NaN is rejected.
func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	default:
		return 0, false
	}
}
