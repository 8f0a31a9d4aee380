package simmer

import (
	"errors"
	"fmt"
)

var (
	// ErrDowncast is returned when the channel stored for an identity does not
	// carry the requested message type.
	ErrDowncast = errors.New("the channel failed to downcast to the requested message type")
	// ErrShutdown is returned when shutdown was already requested.
	ErrShutdown = errors.New("failed to shutdown registry")
	// ErrSend is returned when the registry no longer accepts requests.
	ErrSend = errors.New("failed to send registry request")
	// ErrStopped is returned when the registry stopped before answering a request.
	ErrStopped = errors.New("registry stopped")
)

// GetChannelError reports that the registry went away before answering a
// channel request for Actor.
type GetChannelError struct {
	Actor string
}

func (e *GetChannelError) Error() string {
	return fmt.Sprintf("failed to get the channel %s", e.Actor)
}

// WrongSideError reports a conversion of a Channel into the wrong end.
type WrongSideError struct {
	Expected Side
	Actual   Side
}

func (e *WrongSideError) Error() string {
	return fmt.Sprintf("tried to convert to channel %s but it was %s", e.Expected, e.Actual)
}
