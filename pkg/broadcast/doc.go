// Package broadcast implements a bounded, multi-subscriber broadcast channel
// with explicit lag semantics.
//
// Design decisions:
//   - Bounded ring buffer: the sender never blocks, old values are overwritten
//   - Cursor per receiver: each Receiver tracks its own read position
//   - Explicit lag: a receiver that fell behind gets a LaggedError with the
//     number of missed values instead of silently skipping them
//   - Fail on no audience: Send returns the value inside a SendError when
//     nobody is subscribed, so the caller decides whether to retry
//
// Example usage:
//
//	tx := broadcast.New[string](1)
//	rx := tx.Subscribe()
//	defer rx.Close()
//
//	if _, err := tx.Send("hello"); err != nil {
//	    // nobody is listening
//	}
//
//	msg, err := rx.Recv(ctx)
//	var lagged *broadcast.LaggedError
//	if errors.As(err, &lagged) {
//	    // missed lagged.Missed values, call Recv again
//	}
package broadcast
