package repl

import (
	"fmt"
	"strings"
)

// Tokenize splits a shell line on whitespace. Quotes group words and are
// kept, so catalog.ParseArg still sees "a b" as a quoted string and 'c' as a
// character.
func Tokenize(line string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		quote  rune
		inWord bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if inWord {
				fields = append(fields, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			inWord = true
			cur.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
