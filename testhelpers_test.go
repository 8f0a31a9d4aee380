package simmer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/casualjim/simmer/pkg/broadcast"
	"github.com/fogfish/opts"
)

const testTimeout = 5 * time.Second

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(options ...opts.Option[Registry]) *Registry {
	return New(append([]opts.Option[Registry]{WithLogger(quietLogger())}, options...)...)
}

// startRegistry runs a fresh registry for the duration of the test.
func startRegistry(t *testing.T, options ...opts.Option[Registry]) *Registry {
	t.Helper()
	r := newTestRegistry(options...)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	t.Cleanup(func() {
		_ = r.Shutdown()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("registry returned %v", err)
			}
		case <-time.After(testTimeout):
			t.Error("timeout waiting for registry to stop")
		}
	})
	return r
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

// hello publishes "hello" to world, waiting for world to come online when
// nobody is listening yet.
func hello(ctx context.Context, r *Registry) error {
	tx, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	if err != nil {
		return err
	}

	msg := "hello"
	for {
		_, err := tx.Send(msg)
		if err == nil {
			return nil
		}
		var notListening *broadcast.SendError[string]
		if !errors.As(err, &notListening) {
			return err
		}
		msg = notListening.Value
		if err := r.WaitTillOnline(ctx, "world"); err != nil {
			return err
		}
	}
}

// world waits for a greeting, announcing readiness whenever nothing arrives
// for a while.
func world(ctx context.Context, r *Registry) (string, error) {
	rx, err := GetChannelEndOn[string](ctx, r, "world", "talk", In)
	if err != nil {
		return "", err
	}
	defer rx.Close()

	for {
		recvCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		msg, err := rx.Recv(recvCtx)
		cancel()

		var lagged *broadcast.LaggedError
		switch {
		case err == nil:
			return msg + " world", nil
		case errors.As(err, &lagged):
			continue
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			if _, err := r.AnnounceOnline(ctx, "world"); err != nil {
				return "", err
			}
		default:
			return "", err
		}
	}
}
