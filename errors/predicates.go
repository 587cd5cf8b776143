package errors

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/randalmurphal/depsync/ci"
	dshttp "github.com/randalmurphal/depsync/http"
)

// StatusCode digs the HTTP status out of an API or listing error. It returns
// zero when no response was involved.
func StatusCode(err error) int {
	var apiErr *dshttp.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var reqErr *ci.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether the token was missing or rejected.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotAuthenticated) || dshttp.IsUnauthorized(err) ||
		StatusCode(err) == http.StatusUnauthorized
}

// IsPermissionError reports whether the token was accepted but not allowed.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPermissionDenied) || dshttp.IsForbidden(err) ||
		StatusCode(err) == http.StatusForbidden
}

// IsConnectionError reports whether a request never got a response.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectionFailed) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
