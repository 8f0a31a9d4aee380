package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
)

type slot[T any] struct {
	value T
}

// Sender is the publishing side of a broadcast channel. Every value sent is
// delivered to all receivers that were subscribed at the time of the send.
//
// A Sender is safe for concurrent use and is meant to be shared: every holder
// publishes into the same ring buffer.
type Sender[T any] struct {
	mu        sync.Mutex
	buffer    []slot[T]
	tail      uint64
	closed    bool
	notify    chan struct{}
	receivers *haxmap.Map[string, *Receiver[T]]
}

// New creates a broadcast channel that retains the last capacity values.
// Receivers that fall further behind than that observe a LaggedError.
// It panics when capacity is smaller than 1.
func New[T any](capacity int) *Sender[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("broadcast: capacity must be at least 1, got %d", capacity))
	}
	return &Sender[T]{
		buffer:    make([]slot[T], capacity),
		notify:    make(chan struct{}),
		receivers: haxmap.New[string, *Receiver[T]](),
	}
}

// Capacity returns the number of values the channel retains for slow receivers.
func (s *Sender[T]) Capacity() int {
	return len(s.buffer)
}

// ReceiverCount returns the number of live receivers.
func (s *Sender[T]) ReceiverCount() int {
	return int(s.receivers.Len())
}

// Send publishes value to every live receiver and returns how many there were.
//
// When there are no live receivers, or the channel was closed, the value is
// handed back inside a *SendError so the caller can retry with it.
func (s *Sender[T]) Send(value T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ReceiverCount()
	if n == 0 || s.closed {
		return 0, &SendError[T]{Value: value}
	}

	s.buffer[s.tail%uint64(len(s.buffer))] = slot[T]{value: value}
	s.tail++
	s.wake()
	return n, nil
}

// Subscribe creates a receiver that observes every value sent from now on.
// Values sent before the call are never delivered to it.
func (s *Sender[T]) Subscribe() *Receiver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Receiver[T]{
		id:     uuid.Must(uuid.NewV7()).String(),
		sender: s,
		next:   s.tail,
	}
	s.receivers.Set(r.id, r)
	return r
}

// markClosed marks the channel as closed. Receivers drain what is still
// buffered and then get ErrClosed.
func (s *Sender[T]) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.wake()
}

// wake releases every receiver blocked in Recv. Callers hold s.mu.
func (s *Sender[T]) wake() {
	close(s.notify)
	s.notify = make(chan struct{})
}

// Receiver is one subscription cursor into a broadcast channel.
//
// A Receiver must not be used from more than one goroutine at a time. Close it
// once it is no longer read, otherwise it keeps counting as a live receiver.
type Receiver[T any] struct {
	id       string
	sender   *Sender[T]
	next     uint64
	detached bool
}

// ID returns the unique id of this subscription.
func (r *Receiver[T]) ID() string {
	return r.id
}

// Recv waits for the next value.
//
// It returns a *LaggedError when values were overwritten before this receiver
// could read them; the receiver is then positioned at the oldest retained value
// and the next call continues from there. ErrClosed is returned once the
// channel is closed and drained, or after the receiver itself was closed.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		value, wait, err := r.poll()
		if wait == nil {
			return value, err
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-wait:
		}
	}
}

// TryRecv is the non-blocking form of Recv. It returns ErrEmpty when no value
// is pending.
func (r *Receiver[T]) TryRecv() (T, error) {
	value, wait, err := r.poll()
	if wait != nil {
		return value, ErrEmpty
	}
	return value, err
}

// Resubscribe creates a new receiver on the same channel, starting at the
// current tail.
func (r *Receiver[T]) Resubscribe() *Receiver[T] {
	return r.sender.Subscribe()
}

// Close unsubscribes the receiver. It is safe to call more than once.
func (r *Receiver[T]) Close() {
	s := r.sender
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.detached {
		return
	}
	r.detached = true
	s.receivers.Del(r.id)
}

// poll returns either a result or, when nothing is pending, the channel to wait on.
func (r *Receiver[T]) poll() (T, <-chan struct{}, error) {
	s := r.sender
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if r.detached {
		return zero, nil, ErrClosed
	}

	if r.next < s.tail {
		capacity := uint64(len(s.buffer))
		if s.tail > capacity {
			if oldest := s.tail - capacity; r.next < oldest {
				missed := oldest - r.next
				r.next = oldest
				return zero, nil, &LaggedError{Missed: missed}
			}
		}

		entry := s.buffer[r.next%capacity]
		r.next++
		return entry.value, nil, nil
	}

	if s.closed {
		return zero, nil, ErrClosed
	}
	return zero, s.notify, nil
}
