package simmer

import (
	"context"
	"reflect"

	"github.com/casualjim/simmer/internal/directory"
	"github.com/casualjim/simmer/pkg/broadcast"
)

// command is a message handled by the registry task.
type command interface {
	registryCommand()
}

// channelRequest asks the registry for the channel identified by actor,
// channel and messageType. The reply channel is private to the requester.
type channelRequest struct {
	ctx         context.Context
	actor       string
	channel     string
	direction   Direction
	side        Side
	messageType reflect.Type
	create      directory.Factory
	reply       chan opaqueChannel
}

func (*channelRequest) registryCommand() {}

func (c *channelRequest) key() directory.Key {
	return directory.Key{
		Actor:       c.actor,
		Channel:     c.channel,
		MessageType: c.messageType,
	}
}

// listRequest asks the registry for a snapshot of its directory.
type listRequest struct {
	ctx   context.Context
	reply chan []ChannelInfo
}

func (*listRequest) registryCommand() {}

// opaqueChannel is the registry's answer before the requester recovers the
// static message type.
type opaqueChannel struct {
	side  Side
	value directory.Opaque
}

func factoryFor[T any](capacity int) directory.Factory {
	return func() directory.Opaque {
		return broadcast.New[T](capacity)
	}
}

func newChannelRequest[T any](ctx context.Context, r *Registry, actor, channel string, direction Direction, side Side) *channelRequest {
	return &channelRequest{
		ctx:         ctx,
		actor:       actor,
		channel:     channel,
		direction:   direction,
		side:        side,
		messageType: reflect.TypeFor[T](),
		create:      factoryFor[T](r.capacity),
		reply:       make(chan opaqueChannel, 1),
	}
}

// submit queues cmd for the registry task.
func (r *Registry) submit(ctx context.Context, cmd command) error {
	select {
	case <-r.stopped:
		r.logger.ErrorContext(ctx, "failed to send registry request")
		return ErrSend
	default:
	}

	select {
	case r.requests <- cmd:
		return nil
	case <-r.stopped:
		r.logger.ErrorContext(ctx, "failed to send registry request")
		return ErrSend
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitReply waits for the registry to answer on reply. A registry that stops
// without answering yields stopErr.
func awaitReply[R any](ctx context.Context, r *Registry, reply <-chan R, stopErr error) (R, error) {
	var zero R
	select {
	case resp := <-reply:
		return resp, nil
	case <-r.stopped:
		select {
		case resp := <-reply:
			return resp, nil
		default:
			return zero, stopErr
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
