package pattern

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWildcard_MatchesAnythingWithoutBinding(t *testing.T) {
	b := NewBindings()
	for _, v := range []any{nil, 0, "a", 'c', 2.5, []int{1}} {
		require.True(t, Wildcard().Match(v, b))
	}
	require.Empty(t, b)
}

func TestVariable_BindsOnFirstSight(t *testing.T) {
	b := NewBindings()
	require.True(t, Variable("x").Match(2, b))

	v, ok := b.Lookup("x")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestVariable_ReoccurrenceRequiresEqualValue(t *testing.T) {
	b := NewBindings()
	x := Variable("x")
	require.True(t, x.Match(2, b))
	require.True(t, x.Match(2, b))
	require.False(t, x.Match(3, b))

	v, _ := b.Lookup("x")
	require.Equal(t, 2, v, "failed match must not overwrite the binding")
}

func TestVariable_NoCoercion(t *testing.T) {
	b := NewBindings()
	x := Variable("x")
	require.True(t, x.Match(2, b))
	require.False(t, x.Match(int64(2), b))
	require.False(t, x.Match(2.0, b))
}

func TestLiteral_Match(t *testing.T) {
	require.True(t, Literal(0).Match(0, nil))
	require.False(t, Literal(0).Match(1, nil))
	require.False(t, Literal(0).Match(0.0, nil))
	require.True(t, Literal("a").Match("a", nil))
	require.True(t, Literal([]int{1, 2}).Match([]int{1, 2}, nil))
	require.False(t, Literal([]int{1, 2}).Match([]int{2, 1}, nil))
	require.True(t, Literal(nil).Match(nil, nil))
	require.False(t, Literal(nil).Match(0, nil))
}

func TestPredicate_Match(t *testing.T) {
	even := Predicate("even", func(v any) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	})
	require.True(t, even.Match(4, nil))
	require.False(t, even.Match(3, nil))
	require.False(t, even.Match("4", nil))

	require.False(t, Predicate("broken", nil).Match(1, nil))
}

func TestBuiltinPredicates(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		value   any
		want    bool
	}{
		{"positive int", PositiveInt, 9, true},
		{"positive int8", PositiveInt, int8(1), true},
		{"positive uint", PositiveInt, uint(3), true},
		{"zero is not positive", PositiveInt, 0, false},
		{"negative is not positive", PositiveInt, -1, false},
		{"float is not positive int", PositiveInt, 1.0, false},
		{"string is not positive int", PositiveInt, "1", false},
		{"zero is non-negative", NonNegativeInt, 0, true},
		{"uint zero is non-negative", NonNegativeInt, uint64(0), true},
		{"integer", Integer, -7, true},
		{"float", Float, float32(1.5), true},
		{"int is not float", Float, 1, false},
		{"number int", Number, 3, true},
		{"number float", Number, 3.5, true},
		{"NaN is not a number", Number, math.NaN(), false},
		{"string", String, "hi", true},
		{"char", Char, 'x', true},
		{"bool", Bool, true, true},
		{"nil", Integer, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.pattern.Match(tt.value, NewBindings()))
		})
	}
}

func TestRange(t *testing.T) {
	r := Range(0, 1)
	require.True(t, r.Match(0, nil))
	require.True(t, r.Match(0.5, nil))
	require.True(t, r.Match(uint8(1), nil))
	require.False(t, r.Match(1.01, nil))
	require.False(t, r.Match("0.5", nil))
	require.Equal(t, "pred:number in [0, 1]", r.Key())
}

func TestBuiltin_Lookup(t *testing.T) {
	p, ok := Builtin("positive-int")
	require.True(t, ok)
	require.True(t, Same(PositiveInt, p))

	_, ok = Builtin("prime")
	require.False(t, ok)

	require.Contains(t, BuiltinNames(), "char")
}

func TestSame_StructuralNotIdentity(t *testing.T) {
	require.True(t, Same(Wildcard(), Wildcard()))
	require.True(t, Same(Variable("x"), Variable("x")))
	require.False(t, Same(Variable("x"), Variable("y")))
	require.True(t, Same(Literal(1), Literal(1)))
	require.False(t, Same(Literal(1), Literal(int64(1))))
	require.False(t, Same(Literal("1"), Literal(1)))
	require.True(t, Same(Literal(0.0), Literal(math.Copysign(0, -1))))
	require.True(t, Same(Literal(float32(0)), Literal(float32(math.Copysign(0, -1)))))
	require.False(t, Same(Literal(0.0), Literal(float32(0))))
	require.True(t, Same(Predicate("p", nil), Predicate("p", func(any) bool { return true })))
	require.False(t, Same(Wildcard(), Variable("_")))
	require.False(t, Same(Wildcard(), nil))
	require.True(t, Same(nil, nil))
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(1, 1))
	require.False(t, Equal(1, int32(1)))
	require.False(t, Equal(math.NaN(), math.NaN()))
	require.True(t, Equal(map[string]int{"a": 1}, map[string]int{"a": 1}))
	require.False(t, Equal(nil, 0))
	require.True(t, Equal(nil, nil))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "wildcard", Wildcard().Kind().String())
	require.Equal(t, "variable", Variable("x").Kind().String())
	require.Equal(t, "predicate", PositiveInt.Kind().String())
	require.Equal(t, "literal", Literal(1).Kind().String())
	require.Equal(t, "unknown", Kind(42).String())
}
