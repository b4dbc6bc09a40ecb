package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/pattern"
	"github.com/zjrosen/multidispatch/internal/pubsub"
)

// Func is an operation implementation. It receives the caller's arguments
// unchanged; pattern bindings are never passed in.
type Func func(ctx context.Context, args ...any) (any, error)

// Clause is one pattern-guarded implementation of an operation.
// Clauses are immutable once registered.
type Clause struct {
	ID           string
	Operation    string
	Index        int
	Key          pattern.ClauseKey
	Impl         Func
	Description  string
	RegisteredAt time.Time
}

// Arity returns the number of arguments the clause accepts.
func (c *Clause) Arity() int {
	return c.Key.Arity()
}

// Operation is the metadata record of a named operation, fixed by its first
// registration.
type Operation struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// Snapshot is a consistent view of one operation: a registration that
// completes after the snapshot was taken is not visible in it.
type Snapshot struct {
	Operation Operation
	Clauses   []*Clause
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	description   string
	opDescription string
}

// WithDescription describes the clause being registered.
func WithDescription(description string) RegisterOption {
	return func(o *registerOptions) {
		o.description = description
	}
}

// WithOperationDescription describes the operation. It only takes effect on
// the registration that creates the operation.
func WithOperationDescription(description string) RegisterOption {
	return func(o *registerOptions) {
		o.opDescription = description
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithEventBus publishes every successful registration on bus.
func WithEventBus(bus *Bus) RegistryOption {
	return func(r *Registry) {
		r.bus = bus
	}
}

// Registry holds the clauses of every operation, in registration order.
//
// Registration is serialized by a write lock. Appends always copy the clause
// slice, so a Snapshot handed to a reader is never modified afterwards and
// dispatch can match and invoke without holding any lock.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*entry
	bus *Bus
}

type entry struct {
	op      Operation
	clauses []*Clause
	keys    map[string]*Clause // ClauseKey.Key() -> clause; touched only under the write lock
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		ops: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a clause to operation name, creating the operation on
// first use. A pattern tuple structurally identical to one already registered
// under name is rejected with a *DuplicatePatternError and leaves the registry
// unchanged.
func (r *Registry) Register(name string, key pattern.ClauseKey, impl Func, opts ...RegisterOption) (*Clause, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty operation name", ErrInvalidClause)
	}
	if impl == nil {
		return nil, fmt.Errorf("%w: %q has a nil implementation", ErrInvalidClause, name)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidClause, name, err)
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	// Own the tuple so later changes to the caller's slice cannot reorder it.
	key = append(pattern.ClauseKey(nil), key...)
	canonical := key.Key()

	r.mu.Lock()
	e, exists := r.ops[name]
	if exists {
		if existing, dup := e.keys[canonical]; dup {
			r.mu.Unlock()
			log.Debug(log.CatRegistry, "duplicate clause rejected",
				"operation", name,
				"key", key.String(),
				"existing_clause", existing.Index,
			)
			return nil, &DuplicatePatternError{Operation: name, Key: key, Existing: existing}
		}
	}

	now := time.Now()
	if !exists {
		e = &entry{
			op: Operation{
				Name:        name,
				Description: o.opDescription,
				CreatedAt:   now,
			},
			keys: make(map[string]*Clause),
		}
		r.ops[name] = e
	}

	c := &Clause{
		ID:           uuid.NewString(),
		Operation:    name,
		Index:        len(e.clauses),
		Key:          key,
		Impl:         impl,
		Description:  o.description,
		RegisteredAt: now,
	}
	// Full slice expression forces a copy so published snapshots stay intact.
	e.clauses = append(e.clauses[:len(e.clauses):len(e.clauses)], c)
	e.keys[canonical] = c
	r.mu.Unlock()

	log.Debug(log.CatRegistry, "clause registered",
		"operation", name,
		"clause_id", c.ID,
		"index", c.Index,
		"key", key.String(),
	)

	if r.bus != nil {
		r.bus.Publish(pubsub.CreatedEvent, Event{
			Kind:        EventClauseRegistered,
			Operation:   name,
			ClauseID:    c.ID,
			ClauseIndex: c.Index,
			Key:         key.String(),
		})
	}

	return c, nil
}

// Lookup returns a snapshot of operation name.
func (r *Registry) Lookup(name string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.ops[name]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{Operation: e.op, Clauses: e.clauses}, true
}

// Has reports whether anything was registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Clauses returns the clauses of name in dispatch order, or nil.
func (r *Registry) Clauses(name string) []*Clause {
	snap, _ := r.Lookup(name)
	return snap.Clauses
}

// Len returns the number of clauses registered under name.
func (r *Registry) Len(name string) int {
	return len(r.Clauses(name))
}

// Operations returns the metadata of every operation, sorted by name.
func (r *Registry) Operations() []Operation {
	r.mu.RLock()
	ops := make([]Operation, 0, len(r.ops))
	for _, e := range r.ops {
		ops = append(ops, e.op)
	}
	r.mu.RUnlock()

	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}
