package simmer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/simmer/internal/directory"
	"github.com/casualjim/simmer/pkg/slogx"
	"github.com/fogfish/opts"
)

// Registry owns the channel directory. All lookups are serialized through a
// single task started by Run, so the directory itself is never locked.
type Registry struct {
	name      string
	capacity  int
	queueSize int
	logger    *slog.Logger

	requests chan<- command
	stopped  chan struct{}

	endMu sync.Mutex
	end   *endpoints

	shutdownMu sync.Mutex
	shutdown   chan<- struct{}

	once sync.Once
	task *task
}

// endpoints are the consuming sides of the registry queues. They are taken
// exactly once, by the task that runs the loop.
type endpoints struct {
	requests <-chan command
	shutdown <-chan struct{}
}

type task struct {
	done <-chan struct{}
}

// New creates a registry. The registry does nothing until Run is called.
// It panics when an option is invalid.
func New(options ...opts.Option[Registry]) *Registry {
	r := &Registry{
		name:      "simmer",
		capacity:  DefaultCapacity,
		queueSize: DefaultRequestQueueSize,
		logger:    slog.Default(),
	}
	if err := opts.Apply(r, options); err != nil {
		panic(err)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With(slogx.LoggerName("simmer.registry"), slog.String("registry", r.name))

	requests := make(chan command, r.queueSize)
	shutdown := make(chan struct{})
	r.requests = requests
	r.shutdown = shutdown
	r.stopped = make(chan struct{})
	r.end = &endpoints{requests: requests, shutdown: shutdown}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(WithName("default"))
})

// Default returns the process-wide registry used by the package level functions.
func Default() *Registry {
	return defaultRegistry()
}

// Run starts the registry task and waits until it terminates.
//
// Run is idempotent: the first caller starts the task, every other caller,
// concurrent or later, waits for that same task. Run returns nil once the task
// has stopped, or ctx.Err() when ctx is done first; the task keeps running in
// that case. Run must be called concurrently with the actors using the
// registry, not before them on the same goroutine.
func (r *Registry) Run(ctx context.Context) error {
	r.once.Do(func() {
		r.task = r.start()
	})
	if r.task == nil {
		r.logger.WarnContext(ctx, "couldn't await the registry task, setup may have failed in another caller")
		return nil
	}

	select {
	case <-r.task.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when the registry task has stopped.
func (r *Registry) Done() <-chan struct{} {
	return r.stopped
}

// Shutdown signals the registry task to stop. Only the first call succeeds;
// later or contended calls return ErrShutdown, which callers should read as
// "already shutting down".
func (r *Registry) Shutdown() error {
	if !r.shutdownMu.TryLock() {
		return ErrShutdown
	}
	defer r.shutdownMu.Unlock()

	if r.shutdown == nil {
		return ErrShutdown
	}
	close(r.shutdown)
	r.shutdown = nil
	return nil
}

func (r *Registry) start() *task {
	end := r.takeEndpoints()
	go r.loop(end)
	return &task{done: r.stopped}
}

func (r *Registry) takeEndpoints() *endpoints {
	r.endMu.Lock()
	defer r.endMu.Unlock()

	end := r.end
	if end == nil {
		panic("bug: registry endpoints were already taken, only one registry task may run")
	}
	r.end = nil
	return end
}

func (r *Registry) loop(end *endpoints) {
	defer close(r.stopped)

	channels := directory.New()
	r.logger.Debug("registry started")
	for {
		select {
		case cmd, ok := <-end.requests:
			if !ok {
				r.logger.Debug("registry request queue closed")
				return
			}
			r.handle(channels, cmd)
		case <-end.shutdown:
			r.logger.Debug("registry shutting down", slog.Int("channels", channels.Len()))
			return
		}
	}
}

func (r *Registry) handle(channels *directory.Directory, cmd command) {
	switch req := cmd.(type) {
	case *channelRequest:
		if err := req.ctx.Err(); err != nil {
			r.logger.Error("failed to get channel",
				slogx.Error(err),
				slog.String("actor", req.actor),
				slog.String("channel", req.channel),
				slogx.Type("type", req.messageType),
				slogx.Stringer("direction", req.direction),
				slogx.Stringer("side", req.side),
			)
			return
		}

		key := req.key()
		value, created := channels.GetOrCreate(key, req.create)
		if created {
			r.logger.Debug("created channel",
				slogx.Stringer("key", key),
				slogx.Stringer("direction", req.direction),
			)
		}
		req.reply <- opaqueChannel{side: req.side, value: value}

	case *listRequest:
		if err := req.ctx.Err(); err != nil {
			r.logger.Error("failed to list channels", slogx.Error(err))
			return
		}
		req.reply <- snapshot(channels)

	default:
		r.logger.Error("unknown registry command", slog.String("type", fmt.Sprintf("%T", cmd)))
	}
}

// Run starts the default registry and waits for it to stop.
func Run(ctx context.Context) error {
	return Default().Run(ctx)
}

// Shutdown stops the default registry. See (*Registry).Shutdown.
func Shutdown() error {
	return Default().Shutdown()
}
