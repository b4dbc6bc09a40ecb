// Package pattern implements the argument matchers used to guard dispatch
// clauses: wildcards, variables, predicates and literals.
//
// A Pattern matches one argument. A ClauseKey is an ordered tuple of patterns
// matched position by position against an argument tuple, sharing a single
// Bindings environment so that a variable repeated within one key must meet
// equal values at every occurrence.
//
// Every pattern has a canonical Key derived from its variant and payload, never
// from its identity. Two clause keys built independently from the same
// constructors therefore compare equal, which is what duplicate detection in the
// registry relies on.
package pattern

import (
	"fmt"
)

// Kind discriminates the closed set of pattern variants.
type Kind int

const (
	KindWildcard Kind = iota
	KindVariable
	KindPredicate
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindWildcard:
		return "wildcard"
	case KindVariable:
		return "variable"
	case KindPredicate:
		return "predicate"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Pattern matches a single argument value.
//
// Match may add to b (variables bind on first sight) but never removes or
// overwrites an existing binding.
type Pattern interface {
	Kind() Kind
	Key() string
	String() string
	Match(v any, b Bindings) bool

	sealed()
}

// Bindings maps variable names to the values they were bound to during one
// match attempt.
type Bindings map[string]any

// NewBindings returns an empty binding environment.
func NewBindings() Bindings {
	return make(Bindings)
}

// Lookup returns the value bound to name.
func (b Bindings) Lookup(name string) (any, bool) {
	v, ok := b[name]
	return v, ok
}

// Same reports whether two patterns are structurally identical.
func Same(a, b Pattern) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}

// ===========================================================================
// Wildcard
// ===========================================================================

// WildcardPattern matches any single value and binds nothing.
type WildcardPattern struct{}

// Wildcard returns the pattern that matches anything.
func Wildcard() Pattern { return WildcardPattern{} }

func (WildcardPattern) Kind() Kind               { return KindWildcard }
func (WildcardPattern) Key() string              { return "_" }
func (WildcardPattern) String() string           { return "_" }
func (WildcardPattern) Match(any, Bindings) bool { return true }
func (WildcardPattern) sealed()                  {}

// ===========================================================================
// Variable
// ===========================================================================

// VariablePattern binds Name to the first value it meets. A later occurrence of
// the same name within the same match attempt only matches an equal value.
type VariablePattern struct {
	Name string
}

// Variable returns a pattern binding name.
func Variable(name string) Pattern { return VariablePattern{Name: name} }

func (p VariablePattern) Kind() Kind     { return KindVariable }
func (p VariablePattern) Key() string    { return "var:" + p.Name }
func (p VariablePattern) String() string { return p.Name }
func (p VariablePattern) sealed()        {}

func (p VariablePattern) Match(v any, b Bindings) bool {
	if bound, ok := b[p.Name]; ok {
		return Equal(bound, v)
	}
	b[p.Name] = v
	return true
}

// ===========================================================================
// Predicate
// ===========================================================================

// PredicatePattern matches values for which Test returns true.
//
// Function values are not comparable, so a predicate's identity is its
// Description: two predicates with the same description are the same pattern.
type PredicatePattern struct {
	Description string
	Test        func(v any) bool
}

// Predicate returns a pattern guarded by test, identified by description.
func Predicate(description string, test func(v any) bool) Pattern {
	return PredicatePattern{Description: description, Test: test}
}

func (p PredicatePattern) Kind() Kind     { return KindPredicate }
func (p PredicatePattern) Key() string    { return "pred:" + p.Description }
func (p PredicatePattern) String() string { return "<" + p.Description + ">" }
func (p PredicatePattern) sealed()        {}

func (p PredicatePattern) Match(v any, _ Bindings) bool {
	if p.Test == nil {
		return false
	}
	return p.Test(v)
}

// ===========================================================================
// Literal
// ===========================================================================

// LiteralPattern matches values equal to Value, without type coercion.
type LiteralPattern struct {
	Value any
}

// Literal returns a pattern matching exactly v.
func Literal(v any) Pattern { return LiteralPattern{Value: v} }

func (p LiteralPattern) Kind() Kind { return KindLiteral }
func (p LiteralPattern) sealed()    {}

// Key folds negative zero into zero, since Equal treats them as the same value.
func (p LiteralPattern) Key() string {
	v := p.Value
	switch f := v.(type) {
	case float64:
		if f == 0 {
			v = float64(0)
		}
	case float32:
		if f == 0 {
			v = float32(0)
		}
	}
	return fmt.Sprintf("lit:%T:%#v", v, v)
}

func (p LiteralPattern) String() string {
	if r, ok := p.Value.(rune); ok {
		return fmt.Sprintf("%q", r)
	}
	if s, ok := p.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", p.Value)
}

func (p LiteralPattern) Match(v any, _ Bindings) bool {
	return Equal(p.Value, v)
}
