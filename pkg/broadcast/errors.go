package broadcast

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Recv once the channel is closed and drained.
	ErrClosed = errors.New("broadcast channel closed")
	// ErrEmpty is returned by TryRecv when no value is pending.
	ErrEmpty = errors.New("broadcast channel empty")
)

// SendError is returned by Send when no receiver could take the value.
// Value carries the unsent value back to the caller.
type SendError[T any] struct {
	Value T
}

func (e *SendError[T]) Error() string {
	return "broadcast channel has no live receivers"
}

// LaggedError reports that a receiver fell behind and Missed values were
// overwritten before it could read them. It is not fatal: keep receiving.
type LaggedError struct {
	Missed uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("broadcast receiver lagged behind, missed %d messages", e.Missed)
}
