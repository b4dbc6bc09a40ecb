package pattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// keySep separates element keys. Literal keys quote strings with %#v, so the
// separator never appears unescaped inside an element.
const keySep = "\x1f"

// ErrInvalidPattern is returned by Validate for malformed patterns.
var ErrInvalidPattern = errors.New("invalid pattern")

// ClauseKey is the ordered tuple of patterns guarding one clause. Its length is
// the clause's arity.
type ClauseKey []Pattern

// Tuple builds a ClauseKey from patterns.
func Tuple(patterns ...Pattern) ClauseKey {
	return ClauseKey(patterns)
}

// Arity returns the number of positions in the key.
func (k ClauseKey) Arity() int {
	return len(k)
}

// Key returns the canonical form of the whole tuple. Two keys are structurally
// identical exactly when their Key strings are equal.
func (k ClauseKey) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(k)))
	b.WriteByte('|')
	for i, p := range k {
		if i > 0 {
			b.WriteString(keySep)
		}
		if p == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(p.Key())
	}
	return b.String()
}

// Equal reports whether k and other are structurally identical.
func (k ClauseKey) Equal(other ClauseKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if !Same(k[i], other[i]) {
			return false
		}
	}
	return true
}

// String renders the key as a tuple, e.g. (0) or (x, x) or (_, <positive integer>).
func (k ClauseKey) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		if p == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Variables returns the distinct variable names in k, in first-occurrence order.
func (k ClauseKey) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range k {
		if v, ok := p.(VariablePattern); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	}
	return names
}

// Validate rejects nil patterns, unnamed variables and predicates without a
// description or test.
func (k ClauseKey) Validate() error {
	for i, p := range k {
		switch p := p.(type) {
		case nil:
			return fmt.Errorf("%w: position %d is nil", ErrInvalidPattern, i)
		case VariablePattern:
			if p.Name == "" {
				return fmt.Errorf("%w: position %d: variable without a name", ErrInvalidPattern, i)
			}
		case PredicatePattern:
			if p.Description == "" {
				return fmt.Errorf("%w: position %d: predicate without a description", ErrInvalidPattern, i)
			}
			if p.Test == nil {
				return fmt.Errorf("%w: position %d: predicate %q has no test", ErrInvalidPattern, i, p.Description)
			}
		}
	}
	return nil
}

// Match matches args against k with a fresh binding environment. It fails on
// arity mismatch. The returned bindings are only meaningful when ok is true.
func (k ClauseKey) Match(args []any) (b Bindings, ok bool) {
	if len(args) != len(k) {
		return nil, false
	}
	b = NewBindings()
	for i, p := range k {
		if p == nil || !p.Match(args[i], b) {
			return nil, false
		}
	}
	return b, true
}
