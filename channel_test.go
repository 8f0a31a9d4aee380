package simmer

import (
	"testing"
	"time"

	"github.com/casualjim/simmer/pkg/broadcast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityStability(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	first, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	second, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	assert.Same(t, first, second)

	rx, err := GetChannelEndOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	defer rx.Close()

	_, err = second.Send("hello")
	require.NoError(t, err)
	msg, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg)
}

func TestDirectionDoesNotSeparateChannels(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	in, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	out, err := GetChannelStartOn[string](ctx, r, "world", "talk", Out)
	require.NoError(t, err)
	assert.Same(t, in, out)

	infos, err := r.Channels(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestIdentityIncludesMessageType(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	_, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	_, err = GetChannelStartOn[int](ctx, r, "world", "talk", In)
	require.NoError(t, err)

	infos, err := r.Channels(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "string", infos[0].MessageType)
	assert.Equal(t, "int", infos[1].MessageType)
}

func TestSubscriptionIsolation(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	tx, err := GetChannelStartOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)

	rxA, err := GetChannelEndOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	defer rxA.Close()

	_, err = tx.Send("one")
	require.NoError(t, err)
	msg, err := rxA.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", msg)

	rxB, err := GetChannelEndOn[string](ctx, r, "world", "talk", In)
	require.NoError(t, err)
	defer rxB.Close()
	assert.NotEqual(t, rxA.ID(), rxB.ID())

	_, err = rxB.TryRecv()
	assert.ErrorIs(t, err, broadcast.ErrEmpty)

	n, err := tx.Send("two")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, rx := range []*broadcast.Receiver[string]{rxA, rxB} {
		msg, err := rx.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, "two", msg)
	}
}

func TestTypeSafety(t *testing.T) {
	t.Run("mismatched erased value fails to downcast", func(t *testing.T) {
		for _, side := range []Side{Start, End} {
			t.Run(side.String(), func(t *testing.T) {
				_, err := channelFrom[int](opaqueChannel{side: side, value: broadcast.New[string](1)})
				assert.ErrorIs(t, err, ErrDowncast)
			})
		}
	})

	t.Run("registry never hands out the wrong type", func(t *testing.T) {
		r := startRegistry(t)
		ctx := testContext(t)

		req := newChannelRequest[string](ctx, r, "world", "talk", In, Start)
		req.create = factoryFor[int](1)
		require.NoError(t, r.submit(ctx, req))

		resp, err := awaitReply[opaqueChannel](ctx, r, req.reply, &GetChannelError{Actor: "world"})
		require.NoError(t, err)

		_, err = channelFrom[string](resp)
		assert.ErrorIs(t, err, ErrDowncast)

		_, err = GetChannelStartOn[string](ctx, r, "world", "talk", In)
		assert.ErrorIs(t, err, ErrDowncast)
	})
}

func TestWrongSide(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	start, err := GetChannelOn[string](ctx, r, "world", "talk", In, Start)
	require.NoError(t, err)
	assert.Equal(t, Start, start.Side())

	_, err = start.End()
	var wrongSide *WrongSideError
	require.ErrorAs(t, err, &wrongSide)
	assert.Equal(t, End, wrongSide.Expected)
	assert.Equal(t, Start, wrongSide.Actual)

	end, err := GetChannelOn[string](ctx, r, "world", "talk", In, End)
	require.NoError(t, err)
	rx, err := end.End()
	require.NoError(t, err)
	defer rx.Close()

	_, err = end.Start()
	require.ErrorAs(t, err, &wrongSide)
	assert.EqualError(t, err, "tried to convert to channel Start but it was End")
}

func TestChannelCapacity(t *testing.T) {
	tests := []struct {
		name     string
		registry func(t *testing.T) *Registry
		want     int
	}{
		{"default", func(t *testing.T) *Registry { return startRegistry(t) }, DefaultCapacity},
		{"configured", func(t *testing.T) *Registry { return startRegistry(t, WithCapacity(8)) }, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.registry(t)
			tx, err := GetChannelStartOn[string](testContext(t), r, "world", "talk", In)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tx.Capacity())
		})
	}
}

func TestZeroChannelHasNoSide(t *testing.T) {
	var ch Channel[string]

	tx, err := ch.Start()
	var wrongSide *WrongSideError
	require.ErrorAs(t, err, &wrongSide)
	assert.Nil(t, tx)
	assert.Equal(t, Side(0), wrongSide.Actual)

	rx, err := ch.End()
	require.ErrorAs(t, err, &wrongSide)
	assert.Nil(t, rx)
}

func TestStartHandleCannotCloseChannel(t *testing.T) {
	r := startRegistry(t)
	ctx := testContext(t)

	tx, err := GetChannelStartOn[struct{}](ctx, r, "world", Online, Out)
	require.NoError(t, err)
	_, closable := any(tx).(interface{ Close() })
	assert.False(t, closable, "a shared publishing handle must not be closable by its holders")

	online := make(chan error, 1)
	go func() { online <- r.WaitTillOnline(ctx, "world") }()

	require.Eventually(t, func() bool {
		delivered, err := r.AnnounceOnline(ctx, "world")
		return err == nil && delivered
	}, testTimeout, 10*time.Millisecond)
	assert.NotPanics(t, func() { require.NoError(t, <-online) })

	again, err := GetChannelStartOn[struct{}](ctx, r, "world", Online, Out)
	require.NoError(t, err)
	assert.Same(t, tx, again)
}
