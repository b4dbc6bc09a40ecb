package dispatch

import (
	"github.com/zjrosen/multidispatch/internal/pattern"
)

// Definition declares the clauses of one operation in order:
//
//	err := dispatch.Define(reg, "fact").
//		Describe("factorial").
//		Clause(one, pattern.Literal(0)).
//		Clause(step, pattern.PositiveInt).
//		Err()
//
// The first failing registration stops the definition; later Clause calls are
// ignored and Err reports the failure.
type Definition struct {
	reg         *Registry
	name        string
	description string
	clauses     []*Clause
	err         error
}

// Define starts a definition of operation name in reg.
func Define(reg *Registry, name string) *Definition {
	return &Definition{reg: reg, name: name}
}

// Describe sets the operation description used if this definition creates
// the operation.
func (d *Definition) Describe(description string) *Definition {
	d.description = description
	return d
}

// Clause registers impl guarded by patterns.
func (d *Definition) Clause(impl Func, patterns ...pattern.Pattern) *Definition {
	return d.DescribedClause("", impl, patterns...)
}

// DescribedClause registers impl guarded by patterns with a clause description.
func (d *Definition) DescribedClause(description string, impl Func, patterns ...pattern.Pattern) *Definition {
	if d.err != nil {
		return d
	}
	c, err := d.reg.Register(d.name, pattern.Tuple(patterns...), impl,
		WithDescription(description),
		WithOperationDescription(d.description),
	)
	if err != nil {
		d.err = err
		return d
	}
	d.clauses = append(d.clauses, c)
	return d
}

// Clauses returns the clauses registered by this definition.
func (d *Definition) Clauses() []*Clause {
	return d.clauses
}

// Err returns the first registration error, if any.
func (d *Definition) Err() error {
	return d.err
}
