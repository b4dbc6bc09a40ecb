package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/pattern"
)

// Call describes one Invoke as it flows through the middleware chain.
type Call struct {
	ID        string
	ParentID  string
	Operation string
	Args      []any
	// Depth is 1 for a top-level call and grows by one per nested Invoke.
	Depth     int
	StartedAt time.Time

	// Clause is set once a clause has been selected. Middleware can read it
	// after the next handler returns.
	Clause *Clause
}

// Handler resolves and runs a call.
type Handler interface {
	Handle(ctx context.Context, call *Call) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, call *Call) (any, error) {
	return f(ctx, call)
}

// Stats counts dispatch outcomes since the dispatcher was created.
type Stats struct {
	Invocations int64
	Matched     int64
	NoMatch     int64
	Unknown     int64
	ImplErrors  int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMiddleware adds middleware around every call.
// Middleware is applied in order: first middleware wraps outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(d *Dispatcher) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// WithMaxDepth limits nested dispatch. Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(d *Dispatcher) {
		d.maxDepth = depth
	}
}

// Dispatcher selects and runs the first clause of an operation whose patterns
// match the call's arguments.
//
// Invoke is re-entrant: an implementation may call back into the dispatcher
// for the same or another operation. Each call matches with its own bindings
// against its own registry snapshot.
type Dispatcher struct {
	registry    *Registry
	middlewares []Middleware
	handler     Handler
	maxDepth    int

	invocations atomic.Int64
	matched     atomic.Int64
	noMatch     atomic.Int64
	unknown     atomic.Int64
	implErrors  atomic.Int64
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: reg}
	for _, opt := range opts {
		opt(d)
	}
	d.handler = ChainMiddleware(HandlerFunc(d.dispatch), d.middlewares...)
	return d
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke dispatches operation name on args.
//
// It returns *UnknownOperationError when name was never registered and
// *NoMatchingClauseError when no clause matches. Errors from the selected
// implementation are returned exactly as the implementation produced them.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	call := &Call{
		ID:        uuid.NewString(),
		Operation: name,
		Args:      append([]any(nil), args...),
		Depth:     1,
		StartedAt: time.Now(),
	}
	if parent, ok := CallFromContext(ctx); ok {
		call.ParentID = parent.ID
		call.Depth = parent.Depth + 1
	}

	if d.maxDepth > 0 && call.Depth > d.maxDepth {
		log.Warn(log.CatDispatch, "dispatch depth limit reached",
			"operation", name,
			"depth", call.Depth,
			"max_depth", d.maxDepth,
		)
		return nil, fmt.Errorf("%w: %q at depth %d (limit %d)", ErrMaxDepthExceeded, name, call.Depth, d.maxDepth)
	}

	return d.handler.Handle(ctx, call)
}

// Func binds operation name to d, turning it into an ordinary Func that can be
// wrapped, passed around or registered elsewhere.
func (d *Dispatcher) Func(name string) Func {
	return func(ctx context.Context, args ...any) (any, error) {
		return d.Invoke(ctx, name, args...)
	}
}

// Resolve selects the clause Invoke would run for args, without running it.
// The returned bindings are those of the winning match attempt.
func (d *Dispatcher) Resolve(name string, args ...any) (*Clause, pattern.Bindings, error) {
	snap, ok := d.registry.Lookup(name)
	if !ok {
		return nil, nil, &UnknownOperationError{Operation: name}
	}

	for _, c := range snap.Clauses {
		if c.Arity() != len(args) {
			continue
		}
		if b, ok := c.Key.Match(args); ok {
			return c, b, nil
		}
	}

	return nil, nil, &NoMatchingClauseError{Operation: name, Args: args}
}

// Stats returns the dispatch counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Invocations: d.invocations.Load(),
		Matched:     d.matched.Load(),
		NoMatch:     d.noMatch.Load(),
		Unknown:     d.unknown.Load(),
		ImplErrors:  d.implErrors.Load(),
	}
}

// dispatch is the innermost handler: resolve, then run the clause.
func (d *Dispatcher) dispatch(ctx context.Context, call *Call) (any, error) {
	d.invocations.Add(1)

	clause, bindings, err := d.Resolve(call.Operation, call.Args...)
	if err != nil {
		switch err.(type) {
		case *UnknownOperationError:
			d.unknown.Add(1)
		case *NoMatchingClauseError:
			d.noMatch.Add(1)
		}
		return nil, err
	}

	d.matched.Add(1)
	call.Clause = clause

	log.Debug(log.CatDispatch, "clause selected",
		"call_id", call.ID,
		"operation", call.Operation,
		"clause", clause.Index,
		"key", clause.Key.String(),
		"bindings", bindings,
		"depth", call.Depth,
	)

	result, err := clause.Impl(contextWithCall(ctx, call), call.Args...)
	if err != nil {
		d.implErrors.Add(1)
	}
	return result, err
}
