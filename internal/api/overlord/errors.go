package overlord

import "errors"

var (
	// ErrUnknownCommand is returned by a Device for commands it does not implement.
	ErrUnknownCommand = errors.New("no such command")
	// ErrInvalidArgs is returned by a Device for missing or malformed arguments.
	ErrInvalidArgs = errors.New("invalid arguments")
	// ErrInvalidMessage is returned for a well-formed JSON message of the wrong shape.
	ErrInvalidMessage = errors.New("invalid message")
)
