package portal

import "errors"

// Errors the client maps server responses onto. Callers match with errors.Is;
// the client never retries or refreshes credentials on its own.
var (
	// ErrNoSession is returned when an operation requires a login and none exists.
	ErrNoSession = errors.New("not logged in")

	// ErrUnauthorized is returned on a rejected login or a rejected credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the session lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrServer is returned on a 5xx response.
	ErrServer = errors.New("server error")
)
