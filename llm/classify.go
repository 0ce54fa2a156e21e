package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// Display messages for classified errors.
const (
	MsgAuthentication    = "authentication failed, check the API key"
	MsgForbidden         = "access forbidden, check the API key permissions"
	MsgEndpointNotFound  = "API endpoint not found, check that the API URL is correct"
	MsgRateLimited       = "rate limited, reduce the request rate or upgrade the API plan"
	MsgServerErrorFormat = "upstream server error (%d), try again later"

	MsgTimeout           = "request timed out, the server took too long to respond"
	MsgConnectionRefused = "connection refused, the server may not be running or the address is wrong"
	MsgDNSNotFound       = "DNS lookup failed, check the API host name"
	MsgNoResponse        = "no response from the API server, check the API URL and network connection"

	MsgMalformedResponse = "the API returned an unexpected response format"
	MsgCancelled         = "request cancelled"
)

// maxDetailsLen bounds how much of a raw body is kept in Details.
const maxDetailsLen = 512

// Classify maps any failure raised while performing a call onto the closed
// ErrorKind taxonomy. messageOf extracts a server-provided error message from a
// response body and may be nil. Classify returns nil only for a nil error.
func Classify(err error, messageOf func(body []byte) string) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr, messageOf)
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return &Error{
			Kind:    ErrorKindMalformedResponse,
			Message: MsgMalformedResponse,
			Details: malformed.Reason,
			Cause:   err,
		}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrorKindUnknown, Message: MsgCancelled, Cause: err}
	}

	if msg, ok := networkMessage(err); ok {
		return &Error{
			Kind:      ErrorKindNetwork,
			Message:   msg,
			Details:   err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}

	return &Error{
		Kind:    ErrorKindUnknown,
		Message: "request error: " + err.Error(),
		Cause:   err,
	}
}

// IsTransient reports whether err means the request never got a response,
// which is the only failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind == ErrorKindNetwork
	}
	_, ok := networkMessage(err)
	return ok
}

func classifyStatus(statusErr *StatusError, messageOf func([]byte) string) *Error {
	e := &Error{
		Kind:       ErrorKindHTTPStatus,
		StatusCode: statusErr.StatusCode,
		Cause:      statusErr,
	}

	serverMsg := ""
	if messageOf != nil {
		serverMsg = strings.TrimSpace(messageOf(statusErr.Body))
	}
	if serverMsg == "" {
		serverMsg = truncate(strings.TrimSpace(string(statusErr.Body)), maxDetailsLen)
	}

	switch code := statusErr.StatusCode; {
	case code == http.StatusUnauthorized:
		e.Message = MsgAuthentication
	case code == http.StatusForbidden:
		e.Message = MsgForbidden
	case code == http.StatusNotFound:
		e.Message = MsgEndpointNotFound
	case code == http.StatusTooManyRequests:
		e.Message = MsgRateLimited
	case code >= http.StatusInternalServerError:
		e.Message = fmt.Sprintf(MsgServerErrorFormat, code)
	default:
		if serverMsg == "" {
			serverMsg = http.StatusText(code)
		}
		e.Message = serverMsg
		return e
	}

	e.Details = serverMsg
	return e
}

// networkMessage returns the display message for a no-response failure.
func networkMessage(err error) (string, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return MsgTimeout, true
		}
		return MsgDNSNotFound, true
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return MsgConnectionRefused, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return MsgTimeout, true
		}
		var urlErr *url.Error
		// *url.Error implements net.Error for every client failure, including
		// ones that never touched the network.
		if errors.As(err, &urlErr) && !isConnectionFailure(urlErr.Err) {
			return "", false
		}
		return MsgNoResponse, true
	}

	if isConnectionFailure(err) {
		return MsgNoResponse, true
	}
	return "", false
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
