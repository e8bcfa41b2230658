package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport errors and request timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents a 2xx response whose body could not be decoded.
	ErrorClassParse ErrorClass = "parse"
)

// HTTPError is returned when Roblox answers with a status outside [200,299].
type HTTPError struct {
	Status      int
	StatusText  string
	URL         string
	BodyExcerpt string
	Class       ErrorClass
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s for %s", e.Status, e.StatusText, e.URL)
	if e.BodyExcerpt != "" {
		msg += " -> " + e.BodyExcerpt
	}
	return msg
}

// ParseError is returned when a response body is not valid JSON or does not
// have the expected shape.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err carries an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// classifyStatus maps an HTTP status to an ErrorClass. 2xx/3xx map to "".
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// ClassifyError categorizes an error returned by FetchJSON or Do.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Class
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return ErrorClassParse
	}

	if errors.Is(err, context.Canceled) {
		return ""
	}

	return ErrorClassNetwork
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// 4xx and malformed bodies will not change on a second attempt
		return false
	}
}
