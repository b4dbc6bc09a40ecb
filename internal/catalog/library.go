package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/guard"
	"github.com/zjrosen/multidispatch/internal/pattern"
)

// Factory builds the implementation of one clause. d is the dispatcher the
// clause is registered on, so recursive implementations can call back into
// operation op.
type Factory func(d *dispatch.Dispatcher, op string, def ClauseDef) (dispatch.Func, error)

// Library maps impl names used in catalogs to factories.
type Library map[string]Factory

// DefaultLibrary returns the built-in implementations:
//
//	const        returns the clause's value
//	identity     returns its single argument
//	add          sums numbers or concatenates strings
//	mul          multiplies numbers
//	mul-recurse  n * op(n-1) for an int n
//	concat       the clause's value followed by every argument, as text
func DefaultLibrary() Library {
	return Library{
		"const":       constImpl,
		"identity":    identityImpl,
		"add":         func(*dispatch.Dispatcher, string, ClauseDef) (dispatch.Func, error) { return add, nil },
		"mul":         func(*dispatch.Dispatcher, string, ClauseDef) (dispatch.Func, error) { return mul, nil },
		"mul-recurse": mulRecurseImpl,
		"concat":      concatImpl,
	}
}

// Names lists the library entries, sorted.
func (l Library) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the implementation for def, wrapped in its guard if it has one.
func (l Library) Build(d *dispatch.Dispatcher, op string, def ClauseDef) (dispatch.Func, error) {
	factory, ok := l[def.Impl]
	if !ok {
		return nil, fmt.Errorf("unknown impl %q (known: %s)", def.Impl, strings.Join(l.Names(), ", "))
	}

	fn, err := factory(d, op, def)
	if err != nil {
		return nil, fmt.Errorf("impl %q: %w", def.Impl, err)
	}

	if def.Guard != "" {
		p, ok := pattern.Builtin(def.Guard)
		if !ok {
			return nil, fmt.Errorf("unknown guard %q", def.Guard)
		}
		fn = guard.Pre(everyArg(p), fn, guard.WithName(op))
	}
	return fn, nil
}

func everyArg(p pattern.Pattern) guard.Condition {
	return func(args ...any) bool {
		for _, a := range args {
			if !p.Match(a, pattern.NewBindings()) {
				return false
			}
		}
		return true
	}
}

func constImpl(_ *dispatch.Dispatcher, _ string, def ClauseDef) (dispatch.Func, error) {
	v := def.Value
	return func(context.Context, ...any) (any, error) {
		return v, nil
	}, nil
}

func identityImpl(_ *dispatch.Dispatcher, _ string, def ClauseDef) (dispatch.Func, error) {
	if len(def.Patterns) != 1 {
		return nil, fmt.Errorf("needs exactly one pattern, got %d", len(def.Patterns))
	}
	return func(_ context.Context, args ...any) (any, error) {
		return args[0], nil
	}, nil
}

func mulRecurseImpl(d *dispatch.Dispatcher, op string, def ClauseDef) (dispatch.Func, error) {
	if len(def.Patterns) != 1 {
		return nil, fmt.Errorf("needs exactly one pattern, got %d", len(def.Patterns))
	}
	return func(ctx context.Context, args ...any) (any, error) {
		n, ok := args[0].(int)
		if !ok {
			return nil, fmt.Errorf("%s: want int, got %T", op, args[0])
		}
		r, err := d.Invoke(ctx, op, n-1)
		if err != nil {
			return nil, err
		}
		m, ok := r.(int)
		if !ok {
			return nil, fmt.Errorf("%s(%d): want int result, got %T", op, n-1, r)
		}
		return n * m, nil
	}, nil
}

func concatImpl(_ *dispatch.Dispatcher, _ string, def ClauseDef) (dispatch.Func, error) {
	var prefix string
	if def.Value != nil {
		prefix = fmt.Sprint(def.Value)
	}
	return func(_ context.Context, args ...any) (any, error) {
		var b strings.Builder
		b.WriteString(prefix)
		for _, a := range args {
			if r, ok := a.(rune); ok {
				b.WriteRune(r)
				continue
			}
			fmt.Fprint(&b, a)
		}
		return b.String(), nil
	}, nil
}

// add sums ints, or floats when any argument is a float, or concatenates
// strings. Mixed strings and numbers are an error.
func add(_ context.Context, args ...any) (any, error) {
	if len(args) > 0 {
		if _, ok := args[0].(string); ok {
			var b strings.Builder
			for _, a := range args {
				s, ok := a.(string)
				if !ok {
					return nil, fmt.Errorf("add: cannot add %T to a string", a)
				}
				b.WriteString(s)
			}
			return b.String(), nil
		}
	}
	return fold("add", args, 0, func(a, b int) int { return a + b }, func(a, b float64) float64 { return a + b })
}

func mul(_ context.Context, args ...any) (any, error) {
	return fold("mul", args, 1, func(a, b int) int { return a * b }, func(a, b float64) float64 { return a * b })
}

func fold(name string, args []any, unit int, fi func(a, b int) int, ff func(a, b float64) float64) (any, error) {
	acc := unit
	accF := float64(unit)
	isFloat := false

	for _, a := range args {
		switch v := a.(type) {
		case int:
			acc = fi(acc, v)
			accF = ff(accF, float64(v))
		case float64:
			isFloat = true
			accF = ff(accF, v)
		default:
			return nil, fmt.Errorf("%s: unsupported argument %T", name, a)
		}
	}

	if isFloat {
		return accF, nil
	}
	return acc, nil
}
