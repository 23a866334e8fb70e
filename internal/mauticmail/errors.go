package mauticmail

import (
	"errors"
	"fmt"
)

// Local validation errors, returned before any network call is made.
var (
	ErrMissingUserID    = errors.New("mauticmail: user id is required")
	ErrMissingAccountID = errors.New("mauticmail: account id is required")
	ErrMissingEmailID   = errors.New("mauticmail: email id is required")
)

// APIError is a non-2xx response from the upstream metrics API, or a
// 2xx envelope with success=false. Message carries the upstream message
// when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mauticmail: API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mauticmail: API error (status %d)", e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
