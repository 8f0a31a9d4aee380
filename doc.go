/*
Package simmer is an in-process broker that lets independently started goroutines
("actors") find and share named, typed, multi-subscriber channels without holding
references to each other.

An actor asks for "the channel called X belonging to actor Y, carrying messages of
type T" and receives either the publishing handle or a fresh subscription. The
channel is created on first request; every later request with the same actor,
channel name and message type gets the same channel.

# Basic Usage

Run the registry concurrently with the actors, then ask it for channels:

	go simmer.Run(ctx)

	// in actor "hello"
	tx, err := simmer.GetChannelStart[string](ctx, "world", "talk", simmer.In)
	if err != nil {
		return err
	}
	msg := "hello"
	for {
		_, err := tx.Send(msg)
		var notListening *broadcast.SendError[string]
		if !errors.As(err, &notListening) {
			break
		}
		msg = notListening.Value
		if err := simmer.WaitTillOnline(ctx, "world"); err != nil {
			return err
		}
	}

	// in actor "world"
	rx, err := simmer.GetChannelEnd[string](ctx, "world", "talk", simmer.In)
	if err != nil {
		return err
	}
	defer rx.Close()
	_, _ = simmer.AnnounceOnline(ctx, "world")
	greeting, err := rx.Recv(ctx)

	// once, when the process is done
	_ = simmer.Shutdown()

# Architecture

1. Registry task (registry.go)
  - A single goroutine owns the channel directory and answers requests in order
  - The directory is never locked, it has exactly one writer
  - Run is idempotent, Shutdown succeeds at most once

2. Request protocol (request.go, channel.go)
  - Each request carries a private reply channel and a factory bound to T
  - The answer is type-erased and recovered with a checked type assertion
  - Start answers share the publishing handle, End answers subscribe anew

3. Broadcast channels (pkg/broadcast)
  - Small fixed capacity, one cursor per subscriber
  - Slow subscribers observe a LaggedError and keep receiving
  - Sending with no subscribers returns the value to the caller

4. Readiness handshake (online.go)
  - WaitTillOnline waits for an actor to publish on its Online channel
  - AnnounceOnline publishes that signal

Channel identity is (actor, channel, message type). Direction is descriptive
only: requests for In and Out with the same identity share one channel.
*/
package simmer
