// Package catalog declares dispatch operations in YAML and registers them on a
// dispatcher's registry.
//
// A catalog lists operations, each with clauses in dispatch order:
//
//	operations:
//	  - name: fact
//	    memo: true
//	    clauses:
//	      - patterns: [{literal: 0}]
//	        impl: const
//	        value: 1
//	      - patterns: [{predicate: positive-int}]
//	        impl: mul-recurse
//
// A pattern is "_" (wildcard) or a single-key mapping: {var: x},
// {literal: 3}, {char: "a"} or {predicate: name}, where name is one of
// pattern.BuiltinNames. Implementations are looked up by name in a Library.
package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/pattern"
)

//go:embed default.yaml
var defaultCatalog []byte

// File is the root structure of a catalog file.
type File struct {
	Operations []OperationDef `yaml:"operations"`
}

// OperationDef declares one operation.
type OperationDef struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Memo        bool        `yaml:"memo"` // Results may be memoised (the operation is pure)
	Clauses     []ClauseDef `yaml:"clauses"`
}

// ClauseDef declares one clause of an operation.
type ClauseDef struct {
	Patterns    []PatternSpec `yaml:"patterns"`
	Impl        string        `yaml:"impl"`  // Library entry name
	Value       any           `yaml:"value"` // Argument for impls that need one, e.g. const
	Guard       string        `yaml:"guard"` // Optional predicate name every argument must satisfy
	Description string        `yaml:"description"`
}

// Key returns the clause's pattern tuple.
func (c ClauseDef) Key() pattern.ClauseKey {
	key := make(pattern.ClauseKey, len(c.Patterns))
	for i, p := range c.Patterns {
		key[i] = p.Pattern
	}
	return key
}

// PatternSpec is a pattern decoded from YAML.
type PatternSpec struct {
	pattern.Pattern
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *PatternSpec) UnmarshalYAML(node *yaml.Node) error {
	p, err := decodePattern(node)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	s.Pattern = p
	return nil
}

func decodePattern(node *yaml.Node) (pattern.Pattern, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "_" {
			return pattern.Wildcard(), nil
		}
		return nil, fmt.Errorf("pattern %q: want _ or a mapping such as {var: x}", node.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("pattern must be _ or a mapping")
	}

	if len(node.Content) != 2 {
		return nil, fmt.Errorf("pattern mapping must have exactly one key, got %d", len(node.Content)/2)
	}
	kind, val := node.Content[0].Value, node.Content[1]

	switch kind {
	case "var":
		if val.Kind != yaml.ScalarNode || val.Value == "" {
			return nil, fmt.Errorf("var needs a name")
		}
		return pattern.Variable(val.Value), nil

	case "literal":
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("literal must be a scalar")
		}
		var v any
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return pattern.Literal(v), nil

	case "char":
		if val.Kind != yaml.ScalarNode || utf8.RuneCountInString(val.Value) != 1 {
			return nil, fmt.Errorf("char must be a single character, got %q", val.Value)
		}
		r, _ := utf8.DecodeRuneInString(val.Value)
		return pattern.Literal(r), nil

	case "predicate":
		p, ok := pattern.Builtin(val.Value)
		if !ok {
			return nil, fmt.Errorf("unknown predicate %q (known: %v)", val.Value, pattern.BuiltinNames())
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown pattern kind %q (want var, literal, char or predicate)", kind)
	}
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the catalog at path in fsys.
func Load(fsys fs.FS, path string) (*File, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debug(log.CatCatalog, "catalog loaded",
		"path", path,
		"operations", len(f.Operations),
	)
	return f, nil
}

// Default returns the built-in demo catalog.
func Default() (*File, error) {
	return Parse(defaultCatalog)
}

// Validate checks the structure of every operation and clause. Whether an
// impl name exists is only known to a Library and is checked by Apply.
func (f *File) Validate() error {
	for i, op := range f.Operations {
		if op.Name == "" {
			return fmt.Errorf("operation %d: missing name", i)
		}
		if len(op.Clauses) == 0 {
			return fmt.Errorf("operation %q: no clauses", op.Name)
		}
		for j, c := range op.Clauses {
			if c.Impl == "" {
				return fmt.Errorf("operation %q clause %d: missing impl", op.Name, j)
			}
			if err := c.Key().Validate(); err != nil {
				return fmt.Errorf("operation %q clause %d: %w", op.Name, j, err)
			}
			if c.Guard != "" {
				if _, ok := pattern.Builtin(c.Guard); !ok {
					return fmt.Errorf("operation %q clause %d: unknown guard %q", op.Name, j, c.Guard)
				}
			}
		}
	}
	return nil
}

// MemoOperations lists the operations marked memo.
func (f *File) MemoOperations() []string {
	var names []string
	for _, op := range f.Operations {
		if op.Memo {
			names = append(names, op.Name)
		}
	}
	return names
}
