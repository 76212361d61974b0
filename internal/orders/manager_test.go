package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aizybot/internal/domain"
	"aizybot/internal/ports"
)

// nopLogger implements ports.Logger for testing.
type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(nopLogger{})
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresLogger(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
}

func TestCreateAssignsIdentity(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	first := m.Create(ctx, domain.Buy, 1.0, 50000, "BTC/USDT", domain.Market)
	second := m.Create(ctx, domain.Sell, 2.0, 51000, "BTC/USDT", domain.Limit)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusCreated, first.Status)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, 2, m.TotalCreated())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		wantOK     bool
		wantStatus domain.OrderStatus
	}{
		{name: "positive amount", amount: 1.0, wantOK: true, wantStatus: domain.StatusValidated},
		{name: "zero amount", amount: 0, wantOK: false, wantStatus: domain.StatusFailed},
		{name: "negative amount", amount: -0.5, wantOK: false, wantStatus: domain.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			ctx := context.Background()
			order := m.Create(ctx, domain.Buy, tt.amount, 100, "ETH/USDT", domain.Market)

			ok := m.Validate(ctx, order)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, order.Status)
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("market order becomes active", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, order))

		require.NoError(t, m.Execute(ctx, order))
		assert.Equal(t, domain.StatusActive, order.Status)
		assert.Len(t, m.ListActive(), 1)
	})

	t.Run("limit order becomes pending", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Sell, 1.0, 100, "ETH/USDT", domain.Limit)
		require.True(t, m.Validate(ctx, order))

		require.NoError(t, m.Execute(ctx, order))
		assert.Equal(t, domain.StatusPending, order.Status)
		assert.Len(t, m.ListPending(), 1)
		assert.Empty(t, m.ListActive())
	})

	t.Run("unvalidated order fails", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)

		err := m.Execute(ctx, order)
		assert.ErrorIs(t, err, ports.ErrOrderNotValidated)
		assert.Equal(t, domain.StatusCreated, order.Status)
	})

	t.Run("failed order cannot execute", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Buy, 0, 100, "ETH/USDT", domain.Market)
		require.False(t, m.Validate(ctx, order))

		err := m.Execute(ctx, order)
		assert.ErrorIs(t, err, ports.ErrOrderNotValidated)
		assert.Equal(t, domain.StatusFailed, order.Status)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("active order closes", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, order))
		require.NoError(t, m.Execute(ctx, order))

		require.NoError(t, m.Close(ctx, order))
		assert.Equal(t, domain.StatusClosed, order.Status)
		assert.Empty(t, m.ListActive())
	})

	t.Run("non-active orders refuse to close", func(t *testing.T) {
		m := newTestManager(t)
		for _, setup := range []func(*domain.Order){
			func(o *domain.Order) {}, // still in Created
			func(o *domain.Order) { m.Validate(ctx, o) },
			func(o *domain.Order) { o.Amount = 0; m.Validate(ctx, o) },
		} {
			order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
			setup(order)
			assert.ErrorIs(t, m.Close(ctx, order), ports.ErrOrderNotActive)
		}
	})

	t.Run("double close fails", func(t *testing.T) {
		m := newTestManager(t)
		order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, order))
		require.NoError(t, m.Execute(ctx, order))
		require.NoError(t, m.Close(ctx, order))

		assert.ErrorIs(t, m.Close(ctx, order), ports.ErrOrderNotActive)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancellable states", func(t *testing.T) {
		m := newTestManager(t)

		created := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.NoError(t, m.Cancel(ctx, created))
		assert.Equal(t, domain.StatusCancelled, created.Status)

		validated := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, validated))
		require.NoError(t, m.Cancel(ctx, validated))

		pending := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Limit)
		require.True(t, m.Validate(ctx, pending))
		require.NoError(t, m.Execute(ctx, pending))
		require.NoError(t, m.Cancel(ctx, pending))
		assert.Empty(t, m.ListPending())
	})

	t.Run("non-cancellable states", func(t *testing.T) {
		m := newTestManager(t)

		active := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, active))
		require.NoError(t, m.Execute(ctx, active))
		assert.ErrorIs(t, m.Cancel(ctx, active), ports.ErrOrderNotCancellable)

		closed := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, closed))
		require.NoError(t, m.Execute(ctx, closed))
		require.NoError(t, m.Close(ctx, closed))
		assert.ErrorIs(t, m.Cancel(ctx, closed), ports.ErrOrderNotCancellable)

		failed := m.Create(ctx, domain.Buy, 0, 100, "ETH/USDT", domain.Market)
		require.False(t, m.Validate(ctx, failed))
		assert.ErrorIs(t, m.Cancel(ctx, failed), ports.ErrOrderNotCancellable)
	})
}

func TestFind(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)

	found, err := m.Find(order.ID)
	require.NoError(t, err)
	assert.Same(t, order, found)

	_, err = m.Find("no-such-order")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestActiveIdentifiersAreUnique(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		order := m.Create(ctx, domain.Buy, 1.0, 100, "ETH/USDT", domain.Market)
		require.True(t, m.Validate(ctx, order))
		require.NoError(t, m.Execute(ctx, order))
	}

	seen := make(map[string]bool)
	for _, order := range m.ListActive() {
		assert.False(t, seen[order.ID], "duplicate active order id %s", order.ID)
		seen[order.ID] = true
	}
	assert.Equal(t, 5, m.ActiveCount())
}
