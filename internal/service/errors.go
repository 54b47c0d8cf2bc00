// Package service holds the business operations behind the HTTP handlers.
// Services report "not found" with an ok flag and reserve errors for
// failures; invalid input is returned as *validation.Error.
package service

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, wrong password, inactive
	// account and any unusable refresh token.  Callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEvent is returned when the event is already in the
	// user's saved list.
	ErrDuplicateEvent = errors.New("event already saved")

	// ErrExternalService wraps every failure of the events provider.
	ErrExternalService = errors.New("external events service unavailable")
)
