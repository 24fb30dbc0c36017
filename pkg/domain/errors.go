package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownField is returned when a field name does not belong to the calculator form.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidSettings is returned when bounds or defaults are inconsistent.
var ErrInvalidSettings = errors.New("invalid settings")
