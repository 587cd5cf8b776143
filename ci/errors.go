package ci

import (
	"errors"
	"fmt"
)

// Actions API errors.
var (
	// ErrRunNotFound indicates no completed run exists inside the lookback
	// window.
	ErrRunNotFound = errors.New("no completed workflow run found")

	// ErrListingFailed indicates the API refused or failed a listing
	// request, or a run produced no artifacts.
	ErrListingFailed = errors.New("listing failed")
)

// RequestError records a failed API request. StatusCode is zero when no
// response arrived.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, ErrListingFailed, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, ErrListingFailed, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, ErrListingFailed)
}

// Unwrap exposes both the listing sentinel and the transport error.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrListingFailed}
	}
	return []error{ErrListingFailed, e.Err}
}
