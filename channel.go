package simmer

import (
	"context"
	"fmt"

	"github.com/casualjim/simmer/pkg/broadcast"
)

// Channel is the typed answer to a channel request: a publishing handle for
// Start requests, a fresh subscription for End requests.
type Channel[T any] struct {
	side     Side
	sender   *broadcast.Sender[T]
	receiver *broadcast.Receiver[T]
}

// Side reports which end of the channel this is.
func (c Channel[T]) Side() Side {
	return c.side
}

// Start returns the publishing handle. The handle is shared with every other
// requester of the same channel and owned by the registry.
func (c Channel[T]) Start() (*broadcast.Sender[T], error) {
	if c.side != Start {
		return nil, &WrongSideError{Expected: Start, Actual: c.side}
	}
	return c.sender, nil
}

// End returns the subscription. It belongs to the caller, who should Close it
// when done reading.
func (c Channel[T]) End() (*broadcast.Receiver[T], error) {
	if c.side != End {
		return nil, &WrongSideError{Expected: End, Actual: c.side}
	}
	return c.receiver, nil
}

// channelFrom recovers the static message type from a registry answer.
func channelFrom[T any](oc opaqueChannel) (Channel[T], error) {
	sender, ok := oc.value.(*broadcast.Sender[T])
	if !ok {
		return Channel[T]{}, fmt.Errorf("%w: have %T, want %T", ErrDowncast, oc.value, sender)
	}

	switch oc.side {
	case Start:
		return Channel[T]{side: Start, sender: sender}, nil
	case End:
		return Channel[T]{side: End, receiver: sender.Subscribe()}, nil
	default:
		return Channel[T]{}, fmt.Errorf("unknown channel side %s", oc.side)
	}
}

// GetChannelOn asks r for the channel called channel belonging to actor,
// carrying messages of type T. The channel is created on first request;
// every later request for the same actor, channel and T gets the same one,
// whatever direction it names.
//
// Parameters:
//   - ctx: Bounds the wait for the registry. A request abandoned before the
//     registry handles it creates nothing.
//   - r: The registry, which must be running.
//   - actor: The actor that owns the channel.
//   - channel: The channel name, unique per actor and message type.
//   - direction: Describes the channel; it does not take part in its identity.
//   - side: Start for the shared publishing handle, End for a new subscription.
//
// Returns:
//   - Channel[T]: The requested side of the channel.
//   - error: ErrSend when the registry is stopped, *GetChannelError when it
//     stopped before answering, ErrDowncast when the stored channel carries
//     another type, or ctx.Err().
func GetChannelOn[T any](ctx context.Context, r *Registry, actor, channel string, direction Direction, side Side) (Channel[T], error) {
	req := newChannelRequest[T](ctx, r, actor, channel, direction, side)
	if err := r.submit(ctx, req); err != nil {
		return Channel[T]{}, err
	}

	resp, err := awaitReply[opaqueChannel](ctx, r, req.reply, &GetChannelError{Actor: actor})
	if err != nil {
		return Channel[T]{}, err
	}
	return channelFrom[T](resp)
}

// GetChannelStartOn returns the publishing handle of a channel on r.
func GetChannelStartOn[T any](ctx context.Context, r *Registry, actor, channel string, direction Direction) (*broadcast.Sender[T], error) {
	ch, err := GetChannelOn[T](ctx, r, actor, channel, direction, Start)
	if err != nil {
		return nil, err
	}
	return ch.Start()
}

// GetChannelEndOn returns a new subscription to a channel on r.
func GetChannelEndOn[T any](ctx context.Context, r *Registry, actor, channel string, direction Direction) (*broadcast.Receiver[T], error) {
	ch, err := GetChannelOn[T](ctx, r, actor, channel, direction, End)
	if err != nil {
		return nil, err
	}
	return ch.End()
}

// GetChannel is GetChannelOn for the default registry.
func GetChannel[T any](ctx context.Context, actor, channel string, direction Direction, side Side) (Channel[T], error) {
	return GetChannelOn[T](ctx, Default(), actor, channel, direction, side)
}

// GetChannelStart is GetChannelStartOn for the default registry.
func GetChannelStart[T any](ctx context.Context, actor, channel string, direction Direction) (*broadcast.Sender[T], error) {
	return GetChannelStartOn[T](ctx, Default(), actor, channel, direction)
}

// GetChannelEnd is GetChannelEndOn for the default registry.
func GetChannelEnd[T any](ctx context.Context, actor, channel string, direction Direction) (*broadcast.Receiver[T], error) {
	return GetChannelEndOn[T](ctx, Default(), actor, channel, direction)
}
