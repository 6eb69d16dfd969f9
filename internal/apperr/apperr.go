// Package apperr defines the sentinel errors shared by the store, auth, and
// HTTP layers. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when an operation matches no row.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers bad credentials, a missing identity, and an
	// identity acting on someone else's resource. Login failures reuse the
	// same message for unknown usernames and wrong passwords.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("already exists")

	// ErrBadRequest is returned for malformed or empty client input.
	ErrBadRequest = errors.New("bad request")

	// ErrUnavailable wraps storage faults that are not the client's doing.
	ErrUnavailable = errors.New("storage unavailable")
)

// Status maps an error to the HTTP status the transport layer should send.
// Unclassified errors are treated as internal faults.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
