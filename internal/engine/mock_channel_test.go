package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

func newOrder(id string) *domain.Order {
	return &domain.Order{ID: id, Side: domain.Buy, Amount: 1, Status: domain.StatusActive}
}

func TestMockChannelConnectToggle(t *testing.T) {
	c := NewMockChannel(nopLogger{}, nil, nil)
	ctx := context.Background()

	assert.False(t, c.IsConnected())
	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.IsConnected())
	require.NoError(t, c.Connect(ctx)) // idempotent
	assert.True(t, c.IsConnected())
	require.NoError(t, c.Disconnect(ctx))
	assert.False(t, c.IsConnected())
}

func TestMockChannelRejectsWhenDisconnected(t *testing.T) {
	c := NewMockChannel(nopLogger{}, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.SendOrder(ctx, newOrder("a")), ports.ErrChannelNotConnected)
	assert.ErrorIs(t, c.SendCloseOrder(ctx, newOrder("a")), ports.ErrChannelNotConnected)
}

func TestMockChannelHooksRunBeforeAck(t *testing.T) {
	var events []string
	c := NewMockChannel(nopLogger{},
		func(ctx context.Context, o *domain.Order) { events = append(events, "open:"+o.ID) },
		func(ctx context.Context, o *domain.Order) { events = append(events, "close:"+o.ID) },
	)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	order := newOrder("a")
	require.NoError(t, c.SendOrder(ctx, order))
	assert.Equal(t, []string{"open:a"}, events, "order hook must run before SendOrder returns")

	require.NoError(t, c.SendCloseOrder(ctx, order))
	assert.Equal(t, []string{"open:a", "close:a"}, events)
}

func TestMockChannelOpenClosedBookkeeping(t *testing.T) {
	c := NewMockChannel(nopLogger{}, nil, nil)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	a, b := newOrder("a"), newOrder("b")
	require.NoError(t, c.SendOrder(ctx, a))
	require.NoError(t, c.SendOrder(ctx, b))
	assert.Len(t, c.OpenOrders(), 2)
	assert.Empty(t, c.ClosedOrders())

	require.NoError(t, c.SendCloseOrder(ctx, a))
	require.Len(t, c.OpenOrders(), 1)
	assert.Equal(t, "b", c.OpenOrders()[0].ID)
	require.Len(t, c.ClosedOrders(), 1)
	assert.Equal(t, "a", c.ClosedOrders()[0].ID)
}

func TestMockChannelCloseUnknownOrder(t *testing.T) {
	c := NewMockChannel(nopLogger{}, nil, nil)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	err := c.SendCloseOrder(ctx, newOrder("ghost"))
	assert.ErrorIs(t, err, ports.ErrOrderNotOpen)

	// Double close is equally rejected.
	order := newOrder("a")
	require.NoError(t, c.SendOrder(ctx, order))
	require.NoError(t, c.SendCloseOrder(ctx, order))
	assert.ErrorIs(t, c.SendCloseOrder(ctx, order), ports.ErrOrderNotOpen)
}

func TestMockChannelPublish(t *testing.T) {
	c := NewMockChannel(nopLogger{}, nil, nil)
	ctx := context.Background()

	// No handler subscribed: candle is dropped, not an error.
	require.NoError(t, c.Publish(ctx, &domain.Candle{Close: 100}))

	var seen []float64
	c.Subscribe(func(ctx context.Context, candle *domain.Candle) error {
		seen = append(seen, candle.Close)
		return nil
	})
	require.NoError(t, c.Publish(ctx, &domain.Candle{Close: 100}))
	require.NoError(t, c.Publish(ctx, &domain.Candle{Close: 101}))
	assert.Equal(t, []float64{100, 101}, seen)
}
