package utorrent

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCode classifies a ClientError.
type ErrorCode string

const (
	// ErrorCodeNone indicates no error
	ErrorCodeNone ErrorCode = ""

	// ErrorCodeAuth indicates the token could not be obtained or Basic Auth was rejected
	ErrorCodeAuth ErrorCode = "AUTH_ERROR"

	// ErrorCodeNetwork indicates a transport failure or a non-2xx status
	ErrorCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrorCodeProtocol indicates the daemon answered with something other than the expected JSON
	ErrorCodeProtocol ErrorCode = "PROTOCOL_ERROR"
)

// Sentinels for errors.Is. Any ClientError with the same code matches.
var (
	ErrAuth     = &ClientError{Code: ErrorCodeAuth}
	ErrNetwork  = &ClientError{Code: ErrorCodeNetwork}
	ErrProtocol = &ClientError{Code: ErrorCodeProtocol}
)

// ClientError is the error type returned by every Client operation.
type ClientError struct {
	Code    ErrorCode
	Message string
	// StatusCode is set when the daemon answered with a non-2xx status.
	StatusCode int
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by code.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Code == e.Code
}

// NewClientError creates a new ClientError
func NewClientError(code ErrorCode, message string, err error) *ClientError {
	return &ClientError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func newAuthError(message string, err error) *ClientError {
	return NewClientError(ErrorCodeAuth, message, err)
}

func newProtocolError(message string, err error) *ClientError {
	return NewClientError(ErrorCodeProtocol, message, err)
}

// newStatusError reports a non-2xx answer. The body is kept short so a
// full HTML error page does not end up in logs.
func newStatusError(statusCode int, body []byte) *ClientError {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	msg := fmt.Sprintf("request failed with status %d", statusCode)
	if snippet != "" {
		msg += ": " + snippet
	}
	e := NewClientError(ErrorCodeNetwork, msg, nil)
	e.StatusCode = statusCode
	return e
}

// ClassifyError turns a transport error into a NetworkError with a
// descriptive message. ClientErrors are returned unchanged.
func ClassifyError(err error) *ClientError {
	if err == nil {
		return nil
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewClientError(ErrorCodeNetwork,
			fmt.Sprintf("failed to resolve hostname: %s", dnsErr.Name), err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return classifyOpError(opErr, err)
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return NewClientError(ErrorCodeNetwork, "SSL certificate verification failed", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return NewClientError(ErrorCodeNetwork, "request timed out", err)
	}

	return classifyByMessage(err)
}

// classifyOpError classifies net.OpError errors
func classifyOpError(opErr *net.OpError, originalErr error) *ClientError {
	if opErr.Op == "dial" {
		msg := opErr.Error()
		if strings.Contains(msg, "connection refused") {
			return NewClientError(ErrorCodeNetwork,
				"connection refused - daemon may be down or port is incorrect", originalErr)
		}
		if strings.Contains(msg, "no route to host") || strings.Contains(msg, "network is unreachable") {
			return NewClientError(ErrorCodeNetwork,
				"network unreachable - check network connectivity", originalErr)
		}
	}

	if opErr.Timeout() {
		return NewClientError(ErrorCodeNetwork, "connection timed out", originalErr)
	}

	return NewClientError(ErrorCodeNetwork, "network operation failed", originalErr)
}

// classifyByMessage falls back to matching well known error strings
func classifyByMessage(err error) *ClientError {
	lowerErr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerErr, "timeout"),
		strings.Contains(lowerErr, "deadline exceeded"):
		return NewClientError(ErrorCodeNetwork, "request timed out", err)
	case strings.Contains(lowerErr, "context canceled"):
		return NewClientError(ErrorCodeNetwork, "request canceled", err)
	case strings.Contains(lowerErr, "malformed http response"),
		strings.Contains(lowerErr, "first record does not look like a tls handshake"):
		return NewClientError(ErrorCodeNetwork, "protocol mismatch - check http vs https in the base URL", err)
	case strings.Contains(lowerErr, "x509"),
		strings.Contains(lowerErr, "certificate"),
		strings.Contains(lowerErr, "tls"):
		return NewClientError(ErrorCodeNetwork, "SSL/TLS connection failed", err)
	case strings.Contains(lowerErr, "connection refused"):
		return NewClientError(ErrorCodeNetwork, "connection refused - daemon may be down", err)
	case strings.Contains(lowerErr, "no such host"):
		return NewClientError(ErrorCodeNetwork, "DNS resolution failed - check hostname", err)
	}

	return NewClientError(ErrorCodeNetwork, "request failed", err)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return ErrorCodeNone
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool { return errors.Is(err, ErrAuth) }

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool { return errors.Is(err, ErrNetwork) }

// IsProtocolError reports whether err is a ProtocolError.
func IsProtocolError(err error) bool { return errors.Is(err, ErrProtocol) }
