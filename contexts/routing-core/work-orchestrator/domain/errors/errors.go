package errors

import "errors"

var (
	ErrValidation   = errors.New("work item is invalid")
	ErrItemNotFound = errors.New("work item not found")

	// ErrNotTerminal rejects a retry of an item that is still in flight.
	ErrNotTerminal = errors.New("work item has not reached a terminal state")

	// ErrAlreadyTerminal rejects a cancel of an item that already finished.
	ErrAlreadyTerminal = errors.New("work item already reached a terminal state")

	// ErrRoutingNotConfigured means no rule snapshot has ever been loaded.
	ErrRoutingNotConfigured = errors.New("no routing snapshot loaded")
)
