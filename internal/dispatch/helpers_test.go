package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/multidispatch/internal/pattern"
)

// constant returns an implementation that always yields v.
func constant(v any) Func {
	return func(context.Context, ...any) (any, error) { return v, nil }
}

// add sums two ints or concatenates two strings.
func add(_ context.Context, args ...any) (any, error) {
	switch a := args[0].(type) {
	case int:
		return a + args[1].(int), nil
	case string:
		return a + args[1].(string), nil
	}
	return nil, fmt.Errorf("add: unsupported %T", args[0])
}

func mul(_ context.Context, args ...any) (any, error) {
	return args[0].(int) * args[1].(int), nil
}

// newFact registers the factorial operation on a fresh registry:
// fact(0) = 1, fact(n > 0) = n * fact(n-1).
func newFact(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	reg := NewRegistry()
	d := NewDispatcher(reg, opts...)

	step := func(ctx context.Context, args ...any) (any, error) {
		n := args[0].(int)
		r, err := d.Invoke(ctx, "fact", n-1)
		if err != nil {
			return nil, err
		}
		return n * r.(int), nil
	}

	err := Define(reg, "fact").
		Describe("factorial").
		Clause(constant(1), pattern.Literal(0)).
		Clause(step, pattern.PositiveInt).
		Err()
	require.NoError(t, err)
	return d
}

// newG registers g(x, x) = x + x and g(_, _) = a * b.
func newG(t *testing.T) *Dispatcher {
	t.Helper()
	reg := NewRegistry()
	err := Define(reg, "g").
		Clause(add, pattern.Variable("x"), pattern.Variable("x")).
		Clause(mul, pattern.Wildcard(), pattern.Wildcard()).
		Err()
	require.NoError(t, err)
	return NewDispatcher(reg)
}
