package cableflow

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkFailure is returned for transport errors and non-2xx responses.
// StatusCode is zero when no response was received.
type NetworkFailure struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *NetworkFailure) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("cableflow: %s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	case e.Code != "":
		return fmt.Sprintf("cableflow: %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("cableflow: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var failure *NetworkFailure
	return errors.As(err, &failure) && failure.StatusCode == http.StatusNotFound
}

// IsCode reports whether err carries the given API error code, e.g. "VALIDATION_ERROR".
func IsCode(err error, code string) bool {
	var failure *NetworkFailure
	return errors.As(err, &failure) && failure.Code == code
}
