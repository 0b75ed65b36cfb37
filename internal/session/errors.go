package session

import "errors"

var (
	// ErrInvalidPath is returned for a field path the editor does not know.
	ErrInvalidPath = errors.New("invalid field path")
	// ErrInvalidValue is returned when the value does not fit the field type.
	ErrInvalidValue = errors.New("invalid field value")
	// ErrIndexOutOfRange is returned for a project index outside the list.
	ErrIndexOutOfRange = errors.New("project index out of range")
	// ErrCommitInFlight is reported with StatusBusy.
	ErrCommitInFlight = errors.New("a commit is already in flight")
	// ErrSessionNotFound is returned by the registry for unknown ids.
	ErrSessionNotFound = errors.New("session not found")
)
