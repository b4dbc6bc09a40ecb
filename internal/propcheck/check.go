package propcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
)

// DefaultCount is the number of tuples Check draws when no count is given.
const DefaultCount = 100

// ErrCheckFailed is returned when the property does not hold for some tuple.
var ErrCheckFailed = errors.New("check failed")

// FailedError reports the first tuple for which the property did not hold.
type FailedError struct {
	Args      []any
	Result    any
	Err       error
	Iteration int
	Seed      int
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("check failed on %s (iteration %d, seed %d)", dispatch.FormatArgs(e.Args), e.Iteration, e.Seed)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrCheckFailed) hold.
func (e *FailedError) Is(target error) bool {
	return target == ErrCheckFailed
}

// Unwrap exposes the implementation error, if any.
func (e *FailedError) Unwrap() error {
	return e.Err
}

// Predicate is the property checked for every call.
type Predicate func(args []any, result any, err error) bool

// NoError holds when the call returned no error.
func NoError() Predicate {
	return func(_ []any, _ any, err error) bool {
		return err == nil
	}
}

// ResultAtLeastArg holds when the call succeeded and its numeric result is at
// least args[i], as in fact(n) >= n.
func ResultAtLeastArg(i int) Predicate {
	return func(args []any, result any, err error) bool {
		if err != nil || i < 0 || i >= len(args) {
			return false
		}
		r, ok := number(result)
		if !ok {
			return false
		}
		a, ok := number(args[i])
		return ok && r >= a
	}
}

// And holds when every predicate holds.
func And(preds ...Predicate) Predicate {
	return func(args []any, result any, err error) bool {
		for _, p := range preds {
			if !p(args, result, err) {
				return false
			}
		}
		return true
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Report summarises a passing run.
type Report struct {
	Count    int
	Seed     int
	Duration time.Duration
}

// Option configures Check.
type Option func(*config)

type config struct {
	count    int
	seed     int
	seeded   bool
	ranges   Ranges
	observer func(args []any)
}

// WithCount sets the number of tuples drawn.
func WithCount(n int) Option {
	return func(c *config) {
		c.count = n
	}
}

// WithSeed makes the run reproducible. Without it the seed is taken from the
// clock and reported.
func WithSeed(seed int) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithRanges overrides DefaultRanges.
func WithRanges(r Ranges) Option {
	return func(c *config) {
		c.ranges = r
	}
}

// WithObserver is called with every tuple before fn runs.
func WithObserver(fn func(args []any)) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// Check calls fn on generated tuples of the given kinds and stops at the first
// one for which pred does not hold, returning a *FailedError.
func Check(ctx context.Context, fn dispatch.Func, pred Predicate, kinds []Kind, opts ...Option) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config{count: DefaultCount, ranges: DefaultRanges()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.seeded {
		cfg.seed = int(time.Now().UnixNano() & 0x7fffffff)
	}
	if fn == nil || pred == nil {
		return Report{}, errors.New("propcheck: nil function or predicate")
	}
	if cfg.count <= 0 {
		return Report{}, fmt.Errorf("propcheck: count must be positive, got %d", cfg.count)
	}
	if err := cfg.ranges.Validate(); err != nil {
		return Report{}, fmt.Errorf("propcheck: %w", err)
	}

	gen := Generator(kinds, cfg.ranges)
	start := time.Now()

	log.Debug(log.CatCheck, "check started",
		"kinds", fmt.Sprint(kinds),
		"count", cfg.count,
		"seed", cfg.seed,
	)

	for i := 0; i < cfg.count; i++ {
		if err := ctx.Err(); err != nil {
			return Report{Count: i, Seed: cfg.seed, Duration: time.Since(start)}, err
		}

		args := gen.Example(cfg.seed + i)
		if cfg.observer != nil {
			cfg.observer(args)
		}

		result, err := fn(ctx, args...)
		if !pred(args, result, err) {
			log.Warn(log.CatCheck, "check failed",
				"args", dispatch.FormatArgs(args),
				"iteration", i,
				"seed", cfg.seed,
			)
			return Report{Count: i + 1, Seed: cfg.seed, Duration: time.Since(start)},
				&FailedError{Args: args, Result: result, Err: err, Iteration: i, Seed: cfg.seed}
		}
	}

	report := Report{Count: cfg.count, Seed: cfg.seed, Duration: time.Since(start)}
	log.Debug(log.CatCheck, "check passed",
		"count", report.Count,
		"duration", report.Duration,
	)
	return report, nil
}
