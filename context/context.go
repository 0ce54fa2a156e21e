package context

import (
	stdctx "context"
	"fmt"
)

// debugCallbackKey is the type used as a context key for storing debug callbacks.
type debugCallbackKey struct{}

// WithDebugCallback adds a debug callback to the context. Hosts use it to
// mirror request progress into a debug console.
func WithDebugCallback(ctx stdctx.Context, cb func(string)) stdctx.Context {
	return stdctx.WithValue(ctx, debugCallbackKey{}, cb)
}

// GetDebugCallback retrieves a debug callback function from the context.
// Returns the callback and a bool indicating if it was set.
func GetDebugCallback(ctx stdctx.Context) (func(string), bool) {
	cb, ok := ctx.Value(debugCallbackKey{}).(func(string))
	return cb, ok && cb != nil
}

// Debugf formats a message and hands it to the context's debug callback, if any.
func Debugf(ctx stdctx.Context, format string, args ...any) {
	if cb, ok := GetDebugCallback(ctx); ok {
		cb(fmt.Sprintf(format, args...))
	}
}
