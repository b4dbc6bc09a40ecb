package repl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "fact 9", want: []string{"fact", "9"}},
		{line: "  g\t2   5 ", want: []string{"g", "2", "5"}},
		{line: `greet "ada lovelace"`, want: []string{"greet", `"ada lovelace"`}},
		{line: "answer 'y'", want: []string{"answer", "'y'"}},
		{line: `f "it's"`, want: []string{"f", `"it's"`}},
		{line: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Tokenize(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	_, err := Tokenize("greet 'ada")
	require.EqualError(t, err, "unterminated ' quote")
}
