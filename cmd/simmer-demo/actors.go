package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casualjim/simmer"
	"github.com/casualjim/simmer/pkg/broadcast"
)

const (
	helloActor = "hello"
	worldActor = "world"
	talk       = "talk"
)

// order is one way of spawning the two actors.
type order struct {
	name       string
	worldFirst bool
	delay      time.Duration
}

func selectOrders(name string, delay time.Duration) ([]order, error) {
	all := []order{
		{name: "hello-first"},
		{name: "world-first", worldFirst: true},
		{name: "world-first-delay", worldFirst: true, delay: delay},
		{name: "hello-first-delay", delay: delay},
	}
	if name == "all" {
		return all, nil
	}
	for _, o := range all {
		if o.name == name {
			return []order{o}, nil
		}
	}
	return nil, fmt.Errorf("unknown order %q", name)
}

// run spawns both actors on r and returns world's answer.
func (o order) run(ctx context.Context, r *simmer.Registry) (string, error) {
	var wg sync.WaitGroup
	var greeting string
	var helloErr, worldErr error

	spawnHello := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			helloErr = hello(ctx, r)
		}()
	}
	spawnWorld := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			greeting, worldErr = world(ctx, r)
		}()
	}

	if o.worldFirst {
		spawnWorld()
		time.Sleep(o.delay)
		spawnHello()
	} else {
		spawnHello()
		time.Sleep(o.delay)
		spawnWorld()
	}
	wg.Wait()

	if err := errors.Join(helloErr, worldErr); err != nil {
		return "", err
	}
	return greeting, nil
}

func hello(ctx context.Context, r *simmer.Registry) error {
	tx, err := simmer.GetChannelStartOn[string](ctx, r, worldActor, talk, simmer.In)
	if err != nil {
		return err
	}

	msg := "hello"
	for {
		_, err := tx.Send(msg)
		if err == nil {
			slog.DebugContext(ctx, "greeting sent", slog.String("actor", helloActor))
			return nil
		}
		var notListening *broadcast.SendError[string]
		if !errors.As(err, &notListening) {
			return err
		}
		msg = notListening.Value
		slog.DebugContext(ctx, "world is not listening yet", slog.String("actor", helloActor))
		if err := r.WaitTillOnline(ctx, worldActor); err != nil {
			return err
		}
	}
}

func world(ctx context.Context, r *simmer.Registry) (string, error) {
	rx, err := simmer.GetChannelEndOn[string](ctx, r, worldActor, talk, simmer.In)
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
			slog.WarnContext(ctx, "world lagged", slog.Uint64("missed", lagged.Missed))
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			if _, err := r.AnnounceOnline(ctx, worldActor); err != nil {
				return "", err
			}
		default:
			return "", err
		}
	}
}
