// Package api is the typed client for the blast backend's REST endpoints.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates a request payload failed validation before or at
// the backend.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnauthorized indicates the caller lacks the privilege for an action.
type ErrUnauthorized struct {
	Action string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("not authorized: %s", e.Action)
}

// ErrNotFound indicates a referenced resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrBackend indicates the backend answered with a failure status.
type ErrBackend struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *ErrBackend) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s returned %d", e.Endpoint, e.Status)
}

// ErrUnreachable indicates the backend could not be contacted at all.
type ErrUnreachable struct {
	Endpoint string
	Cause    error
}

func (e *ErrUnreachable) Error() string {
	return fmt.Sprintf("backend %s unreachable: %v", e.Endpoint, e.Cause)
}

func (e *ErrUnreachable) Unwrap() error {
	return e.Cause
}

// Category buckets an error for reporting and retry decisions.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryAuthorization
	CategoryNotFound
	CategoryService
	CategoryNetwork
)

// Categorize returns the failure bucket for an error.
func Categorize(err error) Category {
	var (
		validation   *ErrValidation
		unauthorized *ErrUnauthorized
		notFound     *ErrNotFound
		backend      *ErrBackend
		unreachable  *ErrUnreachable
	)
	switch {
	case errors.As(err, &validation):
		return CategoryValidation
	case errors.As(err, &unauthorized):
		return CategoryAuthorization
	case errors.As(err, &notFound):
		return CategoryNotFound
	case errors.As(err, &backend):
		return CategoryService
	case errors.As(err, &unreachable):
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}

// Temporary reports whether retrying the same call later could succeed.
func Temporary(err error) bool {
	var backend *ErrBackend
	if errors.As(err, &backend) {
		return backend.Status >= 500
	}
	var unreachable *ErrUnreachable
	return errors.As(err, &unreachable)
}

// statusError maps a failure response to a typed error.
func statusError(endpoint string, status int, message string) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ErrValidation{Field: "(request)", Message: message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ErrUnauthorized{Action: endpoint}
	case http.StatusNotFound:
		return &ErrNotFound{Resource: endpoint, ID: "(request)"}
	default:
		return &ErrBackend{Endpoint: endpoint, Status: status, Message: message}
	}
}
