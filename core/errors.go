package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ApiError represents a non-2xx response returned by the Lexware Office API.
type ApiError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	// Code is the API supplied error code, if any.
	Code string
	// Message is the human readable message extracted from the response body.
	Message string
	// Details lists field level issues reported by the API.
	Details   []IssueDetail
	RequestID string
	// RetryAfter is the server supplied Retry-After hint. Zero when absent.
	RetryAfter     time.Duration
	Classification Classification

	payload Record
}

// IssueDetail is a single field level issue from an API error body.
type IssueDetail struct {
	Field   string
	Type    string
	Message string
}

// Error implements the error interface.
// The message concatenates category, advice and the original status/code.
func (e *ApiError) Error() string {
	var b strings.Builder
	b.WriteString(e.Classification.Category.Label())
	b.WriteString(": ")
	b.WriteString(e.Classification.SuggestedAction)
	b.WriteString(" [HTTP ")
	fmt.Fprintf(&b, "%d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(", code ")
		b.WriteString(e.Code)
	}
	b.WriteString("]")
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	for _, d := range e.Details {
		b.WriteString("; ")
		if d.Field != "" {
			b.WriteString(d.Field)
			b.WriteString(": ")
		}
		if d.Message != "" {
			b.WriteString(d.Message)
		} else {
			b.WriteString(d.Type)
		}
	}
	if e.Method != "" && e.URL != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.URL)
	}
	return b.String()
}

// Payload returns the parsed JSON error body. It may be empty.
func (e *ApiError) Payload() Record {
	return e.payload
}

// NetworkError is returned when no response was received from the API.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf(
		"%s: %s (%s %s): %v",
		CategoryConnection.Label(), networkAdvice, e.Method, e.URL, e.Err,
	)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UnknownError wraps failures that are neither API responses nor network failures.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: %s: %v", CategoryUnknown.Label(), unknownAdvice, e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

const (
	networkAdvice = "Unable to reach the Lexware Office API. Check the network connection and the configured resource URL"
	unknownAdvice = "An unexpected error occurred while talking to the Lexware Office API"
)

// ValidationError reports invalid input detected before a request is sent.
type ValidationError struct {
	Field  string
	Reason string
	// Missing lists required fields that were absent or blank.
	Missing []string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("%s: missing required fields: %s", CategoryValidation.Label(), strings.Join(e.Missing, ", "))
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", CategoryValidation.Label(), e.Field, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", CategoryValidation.Label(), e.Reason)
	}
}

type NotFoundError struct {
	Resource string
	Query    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource '%s' not found for params '%s'", e.Resource, e.Query)
}

// UnsupportedOperationError is returned when a resource does not offer an operation.
type UnsupportedOperationError struct {
	Resource  string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported for resource %q", e.Operation, e.Resource)
}

func IsApiError(err error) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr)
}

// AsApiError unwraps err into an *ApiError.
func AsApiError(err error) (*ApiError, bool) {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IgnoreStatusCodes(err error, codes ...int) error {
	apiErr, ok := AsApiError(err)
	if !ok {
		return err
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return nil
		}
	}
	return err
}

func ExpectStatusCodes(err error, codes ...int) bool {
	apiErr, ok := AsApiError(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

func IsNotFoundErr(err error) bool {
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return true
	}
	return ExpectStatusCodes(err, 404)
}

func IsNetworkErr(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsValidationErr(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsUnsupportedOperationErr(err error) bool {
	var opErr *UnsupportedOperationError
	return errors.As(err, &opErr)
}
