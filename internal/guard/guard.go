// Package guard wraps dispatch implementations with preconditions checked
// before the wrapped function runs.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
)

// ErrPreconditionFailed is returned when a guarded function is called with
// arguments its condition rejects.
var ErrPreconditionFailed = errors.New("precondition not matched")

// PreconditionError carries the rejected arguments.
type PreconditionError struct {
	// Name of the guarded function, empty if none was given.
	Name string
	Args []any
}

func (e *PreconditionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("precondition not matched with test: %s", dispatch.FormatArgs(e.Args))
	}
	return fmt.Sprintf("%s: precondition not matched with test: %s", e.Name, dispatch.FormatArgs(e.Args))
}

// Is makes errors.Is(err, ErrPreconditionFailed) hold.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// Condition decides whether a call may proceed.
type Condition func(args ...any) bool

// Option configures Pre.
type Option func(*options)

type options struct {
	name string
}

// WithName names the guarded function in errors and log entries.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Pre returns fn guarded by cond. When cond rejects the arguments fn is not
// called and a *PreconditionError is returned. Otherwise fn's result and
// error are returned unchanged.
func Pre(cond Condition, fn dispatch.Func, opts ...Option) dispatch.Func {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx context.Context, args ...any) (any, error) {
		if !cond(args...) {
			log.Debug(log.CatGuard, "precondition rejected call",
				"name", o.name,
				"args", dispatch.FormatArgs(args),
			)
			return nil, &PreconditionError{Name: o.name, Args: append([]any(nil), args...)}
		}
		return fn(ctx, args...)
	}
}

// All holds when every condition holds. All() always holds.
func All(conds ...Condition) Condition {
	return func(args ...any) bool {
		for _, c := range conds {
			if !c(args...) {
				return false
			}
		}
		return true
	}
}

// ArgCount holds when exactly n arguments are passed.
func ArgCount(n int) Condition {
	return func(args ...any) bool {
		return len(args) == n
	}
}
