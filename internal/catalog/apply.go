package catalog

import (
	"errors"
	"fmt"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
)

// Result lists what Apply did.
type Result struct {
	Registered []*dispatch.Clause
	// Skipped holds clauses already present in the registry, when
	// duplicates are skipped.
	Skipped []*dispatch.DuplicatePatternError
}

// ApplyOption configures Apply.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	skipDuplicates bool
}

// SkipDuplicates records clauses whose pattern tuple is already registered
// in Result.Skipped instead of failing. Used when a catalog is applied again
// after it changed on disk.
func SkipDuplicates() ApplyOption {
	return func(o *applyOptions) {
		o.skipDuplicates = true
	}
}

// Apply registers every clause of f on d's registry in file order, building
// implementations from lib. It stops at the first error; clauses registered
// before it stay registered.
func (f *File) Apply(d *dispatch.Dispatcher, lib Library, opts ...ApplyOption) (Result, error) {
	var o applyOptions
	for _, opt := range opts {
		opt(&o)
	}

	var res Result
	reg := d.Registry()

	for _, op := range f.Operations {
		for i, def := range op.Clauses {
			impl, err := lib.Build(d, op.Name, def)
			if err != nil {
				return res, fmt.Errorf("operation %q clause %d: %w", op.Name, i, err)
			}

			c, err := reg.Register(op.Name, def.Key(), impl,
				dispatch.WithDescription(def.Description),
				dispatch.WithOperationDescription(op.Description),
			)
			if err != nil {
				var dup *dispatch.DuplicatePatternError
				if o.skipDuplicates && errors.As(err, &dup) {
					res.Skipped = append(res.Skipped, dup)
					continue
				}
				return res, fmt.Errorf("operation %q clause %d: %w", op.Name, i, err)
			}
			res.Registered = append(res.Registered, c)
		}
	}

	log.Info(log.CatCatalog, "catalog applied",
		"registered", len(res.Registered),
		"skipped", len(res.Skipped),
	)
	return res, nil
}
