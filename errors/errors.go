package errors

import "errors"

// Failures that are about the caller's setup rather than the update itself.
var (
	// ErrNotAuthenticated indicates the access token is missing or rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the token lacks the Actions read scope.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConnectionFailed indicates the API host is unreachable.
	ErrConnectionFailed = errors.New("connection failed")
)
