package server

import (
	"errors"
)

var (
	// Protocol-level lookup failures.
	ErrToolNotFound     = errors.New("tool not found")
	ErrResourceNotFound = errors.New("resource not found")

	// Session-related errors.
	ErrSessionNotFound  = errors.New("session not found")
	ErrMissingSessionID = errors.New("missing sessionId")

	// Request validation.
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrInvalidInput     = errors.New("invalid input")

	// Static asset handling.
	ErrPathTraversal = errors.New("path outside asset root")
)
