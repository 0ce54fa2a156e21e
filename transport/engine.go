// Package transport sends encoded LLM requests over HTTP with a per-attempt
// timeout and a bounded, fixed-delay retry on network failures.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = 2 * time.Second

	mimeJSON = "application/json"
)

// Doer is the subset of *http.Client the engine needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryFunc is called before each retry with the error that caused it, the
// number of the attempt about to run (2 for the first retry) and the wait.
type RetryFunc func(err error, attempt int, delay time.Duration)

// Call describes one logical request.
type Call struct {
	BaseURL string
	Path    string
	Body    []byte
	APIKey  string
	// Timeout bounds each attempt separately. Zero means no per-attempt limit.
	Timeout time.Duration
	OnRetry RetryFunc
}

// Response is a successful (status < 400) HTTP response.
type Response struct {
	Body       []byte
	StatusCode int
	Attempts   int
}

// Engine executes calls.
type Engine struct {
	client     Doer
	maxRetries uint64
	retryDelay time.Duration
	logger     zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient sets the HTTP client used for every attempt.
func WithHTTPClient(c Doer) Option {
	return func(e *Engine) {
		if c != nil {
			e.client = c
		}
	}
}

// WithMaxRetries sets how many times a network failure is retried.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = uint64(n)
		}
	}
}

// WithRetryDelay sets the wait between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.retryDelay = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With().Str("component", "transport").Logger()
	}
}

// NewEngine creates an Engine with the default retry policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		client:     &http.Client{},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxAttempts returns the upper bound on attempts per call.
func (e *Engine) MaxAttempts() int {
	return int(e.maxRetries) + 1
}

// Execute POSTs call.Body as JSON to BaseURL+Path.
//
// A response with status >= 400 is returned as *llm.StatusError and is never
// retried. Failures where no response arrived are retried up to the configured
// limit; the last one is returned unclassified so the caller can map it with
// llm.Classify.
func (e *Engine) Execute(ctx context.Context, call Call) (*Response, error) {
	url := strings.TrimSuffix(call.BaseURL, "/") + call.Path

	var resp *Response
	attempts := 0

	operation := func() error {
		attempts++
		r, err := e.attempt(ctx, url, call)
		if err != nil {
			if llm.IsTransient(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.retryDelay), e.maxRetries),
		ctx,
	)

	notify := func(err error, delay time.Duration) {
		e.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempts+1).
			Int("max_attempts", e.MaxAttempts()).
			Dur("delay", delay).
			Msg("Request failed without a response, retrying")
		if call.OnRetry != nil {
			call.OnRetry(err, attempts+1, delay)
		}
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		e.logger.Debug().Err(err).Str("url", url).Int("attempts", attempts).Msg("Request failed")
		return nil, &AttemptsError{Attempts: attempts, Err: err}
	}

	resp.Attempts = attempts
	return resp, nil
}

func (e *Engine) attempt(ctx context.Context, url string, call Call) (*Response, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(call.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mimeJSON)
	if call.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+call.APIKey)
	}

	httpResp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	// The body is read inside the attempt so the timeout covers it too.
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, &llm.StatusError{StatusCode: httpResp.StatusCode, Body: body}
	}

	return &Response{Body: body, StatusCode: httpResp.StatusCode}, nil
}

// AttemptsError records how many attempts were made before a call failed.
type AttemptsError struct {
	Attempts int
	Err      error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() error {
	return e.Err
}
