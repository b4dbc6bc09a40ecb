package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/multidispatch/internal/cachemanager"
	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/pubsub"
)

// Middleware wraps a Handler to add behaviour around every call.
type Middleware func(Handler) Handler

// ChainMiddleware applies middlewares to a handler in reverse order, so the
// first middleware in the list is the outermost wrapper:
// ChainMiddleware(h, logging, memo) yields logging(memo(h)).
func ChainMiddleware(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// isEngineError reports whether err came from the dispatcher rather than from
// a clause implementation.
func isEngineError(err error) bool {
	return errors.Is(err, ErrUnknownOperation) ||
		errors.Is(err, ErrNoMatchingClause) ||
		errors.Is(err, ErrMaxDepthExceeded)
}

// ===========================================================================
// Logging Middleware
// ===========================================================================

// LoggingMiddlewareConfig configures the logging middleware.
type LoggingMiddlewareConfig struct {
	// LogArgs includes the formatted argument tuple in every entry.
	LogArgs bool
}

// NewLoggingMiddleware logs each call after it returns. Dispatch failures are
// logged at warn level, implementation errors at error level.
func NewLoggingMiddleware(cfg LoggingMiddlewareConfig) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call *Call) (any, error) {
			start := time.Now()
			result, err := next.Handle(ctx, call)
			duration := time.Since(start)

			fields := []any{
				"call_id", call.ID,
				"operation", call.Operation,
				"arity", len(call.Args),
				"depth", call.Depth,
				"duration", duration,
			}
			if cfg.LogArgs {
				fields = append(fields, "args", FormatArgs(call.Args))
			}
			if call.Clause != nil {
				fields = append(fields, "clause", call.Clause.Index)
			}

			switch {
			case err == nil:
				log.Debug(log.CatDispatch, "call completed", fields...)
			case isEngineError(err):
				log.Warn(log.CatDispatch, "call not dispatched", append(fields, "error", err.Error())...)
			default:
				log.Error(log.CatDispatch, "clause failed", append(fields, "error", err.Error())...)
			}

			return result, err
		})
	}
}

// ===========================================================================
// Slow Call Middleware
// ===========================================================================

// DefaultSlowCallThreshold is used when SlowCallMiddlewareConfig.Threshold is zero.
const DefaultSlowCallThreshold = 100 * time.Millisecond

// SlowCallMiddlewareConfig configures the slow call middleware.
type SlowCallMiddlewareConfig struct {
	Threshold time.Duration
}

// NewSlowCallMiddleware warns about calls that take longer than the threshold.
// Calls are never interrupted.
func NewSlowCallMiddleware(cfg SlowCallMiddlewareConfig) Middleware {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultSlowCallThreshold
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, call *Call) (any, error) {
			start := time.Now()
			result, err := next.Handle(ctx, call)

			if elapsed := time.Since(start); elapsed > threshold {
				log.Warn(log.CatDispatch, "slow call",
					"call_id", call.ID,
					"operation", call.Operation,
					"depth", call.Depth,
					"elapsed", elapsed,
					"threshold", threshold,
				)
			}

			return result, err
		})
	}
}

// ===========================================================================
// Event Middleware
// ===========================================================================

// EventMiddlewareConfig configures the event middleware.
type EventMiddlewareConfig struct {
	// Bus receives one Event per call. If nil, the middleware is a no-op.
	Bus pubsub.Publisher[Event]
}

// NewEventMiddleware publishes an EventCall for every call: as
// pubsub.CompletedEvent on success and as pubsub.FailedEvent on any error.
func NewEventMiddleware(cfg EventMiddlewareConfig) Middleware {
	return func(next Handler) Handler {
		if cfg.Bus == nil {
			return next
		}

		return HandlerFunc(func(ctx context.Context, call *Call) (any, error) {
			start := time.Now()
			result, err := next.Handle(ctx, call)

			event := Event{
				Kind:      EventCall,
				Operation: call.Operation,
				CallID:    call.ID,
				Args:      call.Args,
				Depth:     call.Depth,
				Duration:  time.Since(start),
				Err:       err,
			}
			if c := call.Clause; c != nil {
				event.ClauseID = c.ID
				event.ClauseIndex = c.Index
				event.Key = c.Key.String()
			}

			eventType := pubsub.CompletedEvent
			if err != nil {
				eventType = pubsub.FailedEvent
			}
			cfg.Bus.Publish(eventType, event)

			return result, err
		})
	}
}

// ===========================================================================
// Memo Middleware
// ===========================================================================

// DefaultMemoTTL is used when MemoMiddlewareConfig.TTL is zero.
const DefaultMemoTTL = cachemanager.DefaultExpiration

// MemoMiddlewareConfig configures result memoisation.
type MemoMiddlewareConfig struct {
	// Cache stores results. Required.
	Cache cachemanager.CacheManager[string, any]
	TTL   time.Duration
	// Operations lists the operations whose results may be cached. Only pure
	// operations belong here. Calls to other operations pass through.
	Operations []string
}

// NewMemoMiddleware caches results of the configured operations, keyed by the
// operation name and the dynamic type and value of each argument. Errors are
// never cached. Cached results are shared between callers and must not be
// mutated.
func NewMemoMiddleware(cfg MemoMiddlewareConfig) Middleware {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}
	pure := make(map[string]bool, len(cfg.Operations))
	for _, name := range cfg.Operations {
		pure[name] = true
	}

	return func(next Handler) Handler {
		if cfg.Cache == nil || len(pure) == 0 {
			return next
		}

		type memoInput struct {
			ctx  context.Context
			call *Call
		}
		rt := cachemanager.NewReadThroughCache[string, any, memoInput](
			cfg.Cache,
			func(_ context.Context, in memoInput) (any, error) {
				return next.Handle(in.ctx, in.call)
			},
			false,
		)

		return HandlerFunc(func(ctx context.Context, call *Call) (any, error) {
			if !pure[call.Operation] {
				return next.Handle(ctx, call)
			}

			key := MemoKey(call.Operation, call.Args)
			result, hit, err := rt.Get(ctx, key, memoInput{ctx: ctx, call: call}, ttl)
			if hit {
				log.Debug(log.CatCache, "memoised result",
					"call_id", call.ID,
					"operation", call.Operation,
					"depth", call.Depth,
				)
			}
			return result, err
		})
	}
}

// MemoKey returns the cache key for operation applied to args. Arguments of
// different dynamic types never share a key.
func MemoKey(operation string, args []any) string {
	var b strings.Builder
	b.WriteString(operation)
	b.WriteByte('|')
	for i, a := range args {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		fmt.Fprintf(&b, "%T:%#v", a, a)
	}
	return b.String()
}
