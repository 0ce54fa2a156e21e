package llm

import (
	"context"
)

// Adapter translates canonical requests and results to and from one
// provider's wire format. Implementations are stateless and safe for
// concurrent use.
type Adapter interface {
	// Provider returns the provider kind the adapter was selected for.
	Provider() ProviderKind

	// Encode renders req as the provider-native endpoint path and JSON body.
	Encode(req *Request) (path string, body []byte, err error)

	// Decode converts a provider-native success body into a canonical result.
	// Bodies missing the expected fields yield a *MalformedResponseError.
	Decode(body []byte) (*Result, error)

	// ErrorMessage extracts the server-provided message from an error body,
	// or returns "" when the body has none.
	ErrorMessage(body []byte) string
}

// Middleware provides hooks around a gateway call.
// This allows adding cross-cutting concerns like logging and metrics.
type Middleware interface {
	// BeforeRequest is called after the canonical request is built and before
	// it is encoded. It can replace the request or return an error to abort.
	BeforeRequest(ctx context.Context, req *Request) (*Request, error)

	// AfterResponse is called with the decoded result.
	AfterResponse(ctx context.Context, req *Request, res *Result) (*Result, error)

	// OnError is called with every classified failure. It may return a
	// replacement error; a nil return keeps the original.
	OnError(ctx context.Context, req *Request, err *Error) *Error
}

// MiddlewareFunc is a function type that implements Middleware.
type MiddlewareFunc struct {
	BeforeRequestFunc func(ctx context.Context, req *Request) (*Request, error)
	AfterResponseFunc func(ctx context.Context, req *Request, res *Result) (*Result, error)
	OnErrorFunc       func(ctx context.Context, req *Request, err *Error) *Error
}

// BeforeRequest calls the BeforeRequestFunc if set.
func (f MiddlewareFunc) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	if f.BeforeRequestFunc != nil {
		return f.BeforeRequestFunc(ctx, req)
	}
	return req, nil
}

// AfterResponse calls the AfterResponseFunc if set.
func (f MiddlewareFunc) AfterResponse(ctx context.Context, req *Request, res *Result) (*Result, error) {
	if f.AfterResponseFunc != nil {
		return f.AfterResponseFunc(ctx, req, res)
	}
	return res, nil
}

// OnError calls the OnErrorFunc if set.
func (f MiddlewareFunc) OnError(ctx context.Context, req *Request, err *Error) *Error {
	if f.OnErrorFunc != nil {
		return f.OnErrorFunc(ctx, req, err)
	}
	return err
}

// Chain runs a list of middleware in order for BeforeRequest and OnError and
// in reverse order for AfterResponse.
type Chain []Middleware

// BeforeRequest applies every BeforeRequest hook.
func (c Chain) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	for _, mw := range c {
		var err error
		req, err = mw.BeforeRequest(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// AfterResponse applies every AfterResponse hook, innermost first.
func (c Chain) AfterResponse(ctx context.Context, req *Request, res *Result) (*Result, error) {
	for i := len(c) - 1; i >= 0; i-- {
		var err error
		res, err = c[i].AfterResponse(ctx, req, res)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// OnError applies every OnError hook. Errors are never dropped.
func (c Chain) OnError(ctx context.Context, req *Request, err *Error) *Error {
	for _, mw := range c {
		if replaced := mw.OnError(ctx, req, err); replaced != nil {
			err = replaced
		}
	}
	return err
}

var _ Middleware = MiddlewareFunc{}
var _ Middleware = Chain(nil)
