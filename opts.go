package simmer

import (
	"fmt"
	"log/slog"

	"github.com/fogfish/opts"
)

const (
	// DefaultCapacity is the number of values a channel retains for slow receivers.
	DefaultCapacity = 1
	// DefaultRequestQueueSize is the buffer of the registry request queue.
	DefaultRequestQueueSize = 1
)

// WithName sets the name the registry logs under.
var WithName = opts.ForName[Registry, string]("name")

// WithLogger sets the logger used by the registry task. It defaults to slog.Default().
var WithLogger = opts.ForName[Registry, *slog.Logger]("logger")

// WithCapacity sets how many values each channel created by the registry
// retains before slow receivers start to lag.
//
// Parameters:
//   - capacity: Values retained per channel. It must be at least 1.
//
// Returns:
//   - opts.Option[Registry]: An option that fails New when capacity is invalid.
func WithCapacity(capacity int) opts.Option[Registry] {
	return opts.Type[Registry](func(r *Registry) error {
		if capacity < 1 {
			return fmt.Errorf("capacity must be at least 1, got %d", capacity)
		}
		r.capacity = capacity
		return nil
	})
}

// WithRequestQueueSize sets the buffer of the request queue feeding the
// registry task. Zero makes every request rendezvous with the task.
func WithRequestQueueSize(size int) opts.Option[Registry] {
	return opts.Type[Registry](func(r *Registry) error {
		if size < 0 {
			return fmt.Errorf("request queue size cannot be negative, got %d", size)
		}
		r.queueSize = size
		return nil
	})
}
