package hass

import "errors"

// Domain errors for the hass package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, hass.ErrRequestFailed) {
//	    // target stays dirty, retried next tick
//	}
var (
	// ErrRequestFailed is returned when a request cannot be sent or the
	// API answers with a non-200 status.
	ErrRequestFailed = errors.New("hass: request failed")

	// ErrUnauthorized is returned when the access token is rejected.
	ErrUnauthorized = errors.New("hass: unauthorized (check access token)")

	// ErrInvalidEntity is returned when an empty entity ID is supplied.
	ErrInvalidEntity = errors.New("hass: entity id cannot be empty")
)
