package simmer

import (
	"context"
	"errors"

	"github.com/casualjim/simmer/pkg/broadcast"
)

// Online is the reserved channel name of the readiness handshake. An actor
// announces it is listening by publishing on (actor, Online, Out).
const Online = "SIMMER_CHANNEL_ONLINE"

// WaitTillOnline blocks until actor announces readiness on its Online channel.
//
// A producer whose Send failed because nobody was subscribed calls this
// before retrying. Lag signals are skipped.
func (r *Registry) WaitTillOnline(ctx context.Context, actor string) error {
	rx, err := GetChannelEndOn[struct{}](ctx, r, actor, Online, Out)
	if err != nil {
		return err
	}
	defer rx.Close()

	for {
		_, err := rx.Recv(ctx)
		var lagged *broadcast.LaggedError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &lagged):
			continue
		case errors.Is(err, broadcast.ErrClosed):
			panic("bug: channel should never be able to close after a get channel")
		default:
			return err
		}
	}
}

// AnnounceOnline publishes the readiness signal of actor. It reports whether
// anybody was waiting for it.
func (r *Registry) AnnounceOnline(ctx context.Context, actor string) (bool, error) {
	tx, err := GetChannelStartOn[struct{}](ctx, r, actor, Online, Out)
	if err != nil {
		return false, err
	}

	if _, err := tx.Send(struct{}{}); err != nil {
		var sendErr *broadcast.SendError[struct{}]
		if errors.As(err, &sendErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// WaitTillOnline waits on the default registry. See (*Registry).WaitTillOnline.
func WaitTillOnline(ctx context.Context, actor string) error {
	return Default().WaitTillOnline(ctx, actor)
}

// AnnounceOnline announces on the default registry. See (*Registry).AnnounceOnline.
func AnnounceOnline(ctx context.Context, actor string) (bool, error) {
	return Default().AnnounceOnline(ctx, actor)
}
