package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ParseArg converts command-line text to an argument value. 'x' is a rune;
// anything else is decoded as a YAML scalar, so 3 is an int, 2.5 a float64,
// true a bool and everything else a string. Quote a number to pass it as a
// string: "3".
func ParseArg(s string) (any, error) {
	if len(s) >= 3 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		inner := s[1 : len(s)-1]
		if utf8.RuneCountInString(inner) == 1 {
			r, _ := utf8.DecodeRuneInString(inner)
			return r, nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return s, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		return nil, fmt.Errorf("argument %q: %w", s, err)
	}
	if len(node.Content) != 1 || node.Content[0].Kind != yaml.ScalarNode {
		return s, nil
	}

	var v any
	if err := node.Content[0].Decode(&v); err != nil {
		return nil, fmt.Errorf("argument %q: %w", s, err)
	}
	if v == nil {
		return s, nil
	}
	return v, nil
}

// ParseArgs applies ParseArg to every element.
func ParseArgs(ss []string) ([]any, error) {
	args := make([]any, len(ss))
	for i, s := range ss {
		v, err := ParseArg(s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
