package dispatch

import "context"

type contextKey string

const callKey contextKey = "dispatch_call"

// CallFromContext returns the call whose implementation is running, letting
// an implementation see its own call id and depth.
func CallFromContext(ctx context.Context) (*Call, bool) {
	if ctx == nil {
		return nil, false
	}
	call, ok := ctx.Value(callKey).(*Call)
	return call, ok
}

func contextWithCall(ctx context.Context, call *Call) context.Context {
	return context.WithValue(ctx, callKey, call)
}
