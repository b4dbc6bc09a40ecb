package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/multidispatch/internal/pattern"
)

// ===========================================================================
// Registration Errors
// ===========================================================================

// ErrDuplicatePattern is returned when an operation already has a clause with a
// structurally identical pattern tuple.
var ErrDuplicatePattern = errors.New("duplicate clause pattern")

// ErrInvalidClause is returned for an empty operation name, a nil
// implementation or a malformed pattern tuple.
var ErrInvalidClause = errors.New("invalid clause")

// ===========================================================================
// Dispatch Errors
// ===========================================================================

// ErrUnknownOperation is returned when nothing was ever registered under a name.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrNoMatchingClause is returned when no clause of an operation matches the
// arguments, including when no clause has the call's arity.
var ErrNoMatchingClause = errors.New("no matching clause")

// ErrMaxDepthExceeded is returned when nested dispatch goes deeper than the
// dispatcher's configured limit.
var ErrMaxDepthExceeded = errors.New("maximum dispatch depth exceeded")

// DuplicatePatternError carries the operation and the rejected pattern tuple.
type DuplicatePatternError struct {
	Operation string
	Key       pattern.ClauseKey
	// Existing is the clause already holding the pattern tuple.
	Existing *Clause
}

func (e *DuplicatePatternError) Error() string {
	return fmt.Sprintf("multiple clauses for %q with patterns %s", e.Operation, e.Key)
}

// Is makes errors.Is(err, ErrDuplicatePattern) hold.
func (e *DuplicatePatternError) Is(target error) bool {
	return target == ErrDuplicatePattern
}

// UnknownOperationError names the operation that was never registered.
type UnknownOperationError struct {
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Operation)
}

// Is makes errors.Is(err, ErrUnknownOperation) hold.
func (e *UnknownOperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// NoMatchingClauseError carries the operation and arguments of a failed dispatch.
type NoMatchingClauseError struct {
	Operation string
	Args      []any
}

func (e *NoMatchingClauseError) Error() string {
	return fmt.Sprintf("no clause for %q matching %s", e.Operation, FormatArgs(e.Args))
}

// Is makes errors.Is(err, ErrNoMatchingClause) hold.
func (e *NoMatchingClauseError) Is(target error) bool {
	return target == ErrNoMatchingClause
}

// FormatArgs renders an argument tuple for diagnostics: (9) or ("a", 'c', 2.5).
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FormatValue renders one value the way FormatArgs renders tuple elements.
func FormatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case rune:
		return fmt.Sprintf("%q", v)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", v)
	}
}
