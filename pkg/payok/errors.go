package payok

import (
	"errors"
	"fmt"
)

// Error codes returned by the Payok API that the client interprets
const (
	CodeNoPayouts      = 7
	CodeNoTransactions = 10
)

// Local error codes, negative so they never collide with API codes
const (
	CodeDecodeFailed  = -2
	CodeRequestFailed = -3
	CodeEmptyResponse = -4
	CodeCircuitOpen   = -5
	CodeNoSecretKey   = -7
)

// ErrInvalidRequest is returned when request parameters are rejected locally
var ErrInvalidRequest = errors.New("invalid request")

// APIError is a structured error reported by the API
type APIError struct {
	Code int
	// RawCode is error_code as sent, for codes that are not integers
	RawCode string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError is a network or response decoding failure
type TransportError struct {
	Code int
	// StatusCode is the HTTP status when a response was received
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedFieldError reports a response field that could not be coerced
// to its declared type
type MalformedFieldError struct {
	Field string
	Value any
	Err   error
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed field %q (%v): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed field %q (%v)", e.Field, e.Value)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// ConfigurationError is raised before any network call when the client
// lacks a setting the operation needs
type ConfigurationError struct {
	Code    int
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// IsNoRecords reports whether err is one of the API's "nothing found" sentinels
func IsNoRecords(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeNoTransactions || apiErr.Code == CodeNoPayouts
}
