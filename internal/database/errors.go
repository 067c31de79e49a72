package database

import "errors"

// Sentinel errors returned by the entity access layer. Handlers map them
// onto the structured failure replies sent over the socket.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
