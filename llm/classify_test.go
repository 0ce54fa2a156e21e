package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails string
	}{
		{name: "unauthorized", status: 401, wantMessage: "authentication"},
		{name: "forbidden", status: 403, wantMessage: "forbidden"},
		{name: "not found", status: 404, wantMessage: "endpoint"},
		{name: "rate limited", status: 429, wantMessage: "rate limited"},
		{name: "internal error", status: 500, wantMessage: "(500)"},
		{name: "bad gateway", status: 502, wantMessage: "(502)"},
		{name: "http version", status: 505, wantMessage: "(505)"},
		{name: "bad request with message", status: 400, body: `{"error":{"message":"context too long"}}`, wantMessage: "context too long"},
		{name: "bad request raw body", status: 422, body: "unprocessable", wantMessage: "unprocessable"},
		{name: "empty body", status: 409, wantMessage: "Conflict"},
		{name: "server message kept in details", status: 401, body: `{"error":{"message":"bad key"}}`, wantMessage: "authentication", wantDetails: "bad key"},
	}

	messageOf := func(body []byte) string {
		const prefix = `{"error":{"message":"`
		s := string(body)
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSuffix(strings.TrimPrefix(s, prefix), `"}}`)
		}
		return ""
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&StatusError{StatusCode: tt.status, Body: []byte(tt.body)}, messageOf)
			if err.Kind != ErrorKindHTTPStatus {
				t.Fatalf("Expected http_status kind, got %v", err.Kind)
			}
			if err.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, err.StatusCode)
			}
			if err.Retryable {
				t.Error("Expected status errors to be non-retryable")
			}
			if !strings.Contains(err.Message, tt.wantMessage) {
				t.Errorf("Expected message to contain %q, got %q", tt.wantMessage, err.Message)
			}
			if tt.wantDetails != "" && err.Details != tt.wantDetails {
				t.Errorf("Expected details %q, got %q", tt.wantDetails, err.Details)
			}
		})
	}
}

func TestClassifyNetwork(t *testing.T) {
	refused := &url.Error{Op: "Post", URL: "http://localhost:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}
	dns := &url.Error{Op: "Post", URL: "http://nowhere.invalid", Err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}}}
	deadline := &url.Error{Op: "Post", URL: "http://slow", Err: context.DeadlineExceeded}
	eof := &url.Error{Op: "Post", URL: "http://flaky", Err: io.EOF}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "connection refused", err: refused, want: MsgConnectionRefused},
		{name: "dns not found", err: dns, want: MsgDNSNotFound},
		{name: "deadline", err: deadline, want: MsgTimeout},
		{name: "bare deadline", err: fmt.Errorf("attempt: %w", context.DeadlineExceeded), want: MsgTimeout},
		{name: "connection dropped", err: eof, want: MsgNoResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, nil)
			if got.Kind != ErrorKindNetwork {
				t.Fatalf("Expected network kind, got %v (%v)", got.Kind, got)
			}
			if got.Message != tt.want {
				t.Errorf("Expected message %q, got %q", tt.want, got.Message)
			}
			if !got.Retryable {
				t.Error("Expected network errors to be retryable")
			}
			if !IsTransient(tt.err) {
				t.Error("Expected IsTransient to be true")
			}
			if !errors.Is(got, tt.err) {
				t.Error("Expected classified error to wrap the cause")
			}
		})
	}
}

func TestClassifyOther(t *testing.T) {
	if Classify(nil, nil) != nil {
		t.Error("Expected nil for nil error")
	}

	malformed := Classify(NewMalformedResponseError("choices missing", nil, nil), nil)
	if malformed.Kind != ErrorKindMalformedResponse || malformed.Message != MsgMalformedResponse {
		t.Errorf("Unexpected malformed classification: %+v", malformed)
	}
	if malformed.Retryable {
		t.Error("Expected malformed response to be non-retryable")
	}

	cfg := NewConfigurationError("model not configured")
	if Classify(cfg, nil) != cfg {
		t.Error("Expected an already classified error to pass through unchanged")
	}

	cancelled := Classify(fmt.Errorf("send: %w", context.Canceled), nil)
	if cancelled.Kind != ErrorKindUnknown || cancelled.Retryable {
		t.Errorf("Expected cancellation to be unknown and not retryable, got %+v", cancelled)
	}

	scheme := &url.Error{Op: "Post", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)}
	unknown := Classify(scheme, nil)
	if unknown.Kind != ErrorKindUnknown {
		t.Errorf("Expected unknown kind for a request construction failure, got %v", unknown.Kind)
	}
	if IsTransient(scheme) {
		t.Error("Expected request construction failure not to be transient")
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if IsTransient(&StatusError{StatusCode: 503}) {
		t.Error("Expected status errors never to be transient")
	}
	if !IsTransient(&Error{Kind: ErrorKindNetwork}) {
		t.Error("Expected classified network error to be transient")
	}
	if IsTransient(errors.New("boom")) {
		t.Error("Expected plain errors not to be transient")
	}
}
