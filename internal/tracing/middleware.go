package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
)

// TracingMiddlewareConfig configures the tracing middleware.
type TracingMiddlewareConfig struct {
	// Tracer creates the spans. If nil, the middleware is a pass-through.
	Tracer trace.Tracer

	// RecordArgs adds the formatted argument tuple to every span.
	RecordArgs bool
}

// NewTracingMiddleware starts a span around every call. The span is carried
// in the context handed to the implementation, so nested calls become its
// children.
func NewTracingMiddleware(cfg TracingMiddlewareConfig) dispatch.Middleware {
	if cfg.Tracer == nil {
		return func(next dispatch.Handler) dispatch.Handler {
			return next
		}
	}

	return func(next dispatch.Handler) dispatch.Handler {
		return dispatch.HandlerFunc(func(ctx context.Context, call *dispatch.Call) (any, error) {
			ctx, span := cfg.Tracer.Start(ctx, SpanPrefixCall+call.Operation,
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String(AttrCallID, call.ID),
				attribute.String(AttrOperation, call.Operation),
				attribute.Int(AttrArity, len(call.Args)),
				attribute.Int(AttrCallDepth, call.Depth),
			)
			if call.ParentID != "" {
				span.SetAttributes(attribute.String(AttrCallParent, call.ParentID))
			}
			if cfg.RecordArgs {
				span.SetAttributes(attribute.String(AttrArgs, dispatch.FormatArgs(call.Args)))
			}

			result, err := next.Handle(ctx, call)

			if c := call.Clause; c != nil {
				span.AddEvent(EventClauseSelected, trace.WithAttributes(
					attribute.String(AttrClauseID, c.ID),
					attribute.Int(AttrClauseIndex, c.Index),
					attribute.String(AttrClauseKey, c.Key.String()),
				))
			}

			if err != nil {
				errType := errorType(err)
				if errType == ErrorTypeNoMatch {
					span.AddEvent(EventNoMatch)
				}
				span.SetAttributes(attribute.String(AttrErrorType, errType))
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				if call.Depth == 1 {
					log.Debug(log.CatTrace, "traced call failed",
						"trace_id", TraceIDFromContext(ctx),
						"operation", call.Operation,
						"error_type", errType,
					)
				}
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return result, err
		})
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrUnknownOperation):
		return ErrorTypeUnknownOperation
	case errors.Is(err, dispatch.ErrNoMatchingClause):
		return ErrorTypeNoMatch
	case errors.Is(err, dispatch.ErrMaxDepthExceeded):
		return ErrorTypeMaxDepth
	default:
		return ErrorTypeImplementation
	}
}
