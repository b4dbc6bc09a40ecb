// Package propcheck runs an implementation against randomly generated
// argument tuples and checks a property of every result.
package propcheck

import (
	"fmt"
	"strings"

	"pgregory.net/rapid"
)

// Kind is the type of one generated argument.
type Kind int

const (
	Int   Kind = iota // int
	Float             // float64
	Char              // rune
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "int", "float" or "char".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "char", "chr", "rune":
		return Char, nil
	default:
		return 0, fmt.Errorf("unknown argument kind %q (want int, float or char)", s)
	}
}

// ParseKinds parses a comma separated list such as "int,char".
func ParseKinds(s string) ([]Kind, error) {
	var kinds []Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Ranges bounds the generated values, inclusive.
type Ranges struct {
	IntMin, IntMax     int
	FloatMin, FloatMax float64
	CharMin, CharMax   rune
}

// DefaultRanges draws ints in [0, 100], floats in [0, 1] and chars in [0, 255].
func DefaultRanges() Ranges {
	return Ranges{
		IntMin:   0,
		IntMax:   100,
		FloatMin: 0,
		FloatMax: 1,
		CharMin:  0,
		CharMax:  255,
	}
}

// Validate rejects empty ranges.
func (r Ranges) Validate() error {
	if r.IntMin > r.IntMax {
		return fmt.Errorf("int range [%d, %d] is empty", r.IntMin, r.IntMax)
	}
	if r.FloatMin > r.FloatMax {
		return fmt.Errorf("float range [%g, %g] is empty", r.FloatMin, r.FloatMax)
	}
	if r.CharMin > r.CharMax || r.CharMin < 0 {
		return fmt.Errorf("char range [%d, %d] is invalid", r.CharMin, r.CharMax)
	}
	return nil
}

// Generator produces argument tuples with one value per kind, in order.
// It can be drawn from inside rapid.Check as well as used by Check.
func Generator(kinds []Kind, r Ranges) *rapid.Generator[[]any] {
	gens := make([]*rapid.Generator[any], len(kinds))
	for i, k := range kinds {
		switch k {
		case Float:
			gens[i] = rapid.Float64Range(r.FloatMin, r.FloatMax).AsAny()
		case Char:
			gens[i] = rapid.Int32Range(r.CharMin, r.CharMax).AsAny()
		default:
			gens[i] = rapid.IntRange(r.IntMin, r.IntMax).AsAny()
		}
	}

	return rapid.Custom(func(t *rapid.T) []any {
		args := make([]any, len(gens))
		for i, g := range gens {
			args[i] = g.Draw(t, fmt.Sprintf("arg%d", i))
		}
		return args
	})
}
