package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/multidispatch/internal/pattern"
)

func TestDefine_RegistersInOrder(t *testing.T) {
	reg := NewRegistry()
	def := Define(reg, "fact").
		Describe("factorial").
		DescribedClause("base case", constant(1), pattern.Literal(0)).
		Clause(constant(2), pattern.PositiveInt)

	require.NoError(t, def.Err())
	require.Len(t, def.Clauses(), 2)
	require.Equal(t, "base case", def.Clauses()[0].Description)

	snap, ok := reg.Lookup("fact")
	require.True(t, ok)
	require.Equal(t, "factorial", snap.Operation.Description)
	require.Equal(t, def.Clauses(), snap.Clauses)
}

func TestDefine_StopsAtFirstError(t *testing.T) {
	reg := NewRegistry()
	def := Define(reg, "f").
		Clause(constant(1), pattern.Wildcard()).
		Clause(constant(2), pattern.Wildcard()).
		Clause(constant(3), pattern.Literal(3))

	require.ErrorIs(t, def.Err(), ErrDuplicatePattern)
	require.Len(t, def.Clauses(), 1)
	require.Equal(t, 1, reg.Len("f"))
}
