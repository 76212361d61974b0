package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"aizybot/internal/domain"
	"aizybot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Channel implements ports.NotificationChannel against Binance USD-M
// futures: candles arrive over the kline WebSocket stream, order
// announcements become real market/limit orders. Registered hooks are
// invoked before Send* acknowledges, matching the ordering the simulation
// engine relies on.
type Channel struct {
	client               *futures.Client
	logger               ports.Logger
	interval             string
	reconnectDelay       time.Duration
	maxReconnectAttempts int
	onOrder              ports.OrderHook
	onCloseOrder         ports.OrderHook

	mu        sync.Mutex
	connected bool
	handler   ports.CandleHandler
	open      map[string]*domain.Order
	stopWs    context.CancelFunc
}

// Config holds configuration specific to the Binance channel adapter.
type Config struct {
	APIKey               string
	SecretKey            string
	UseTestnet           bool
	Interval             string // Kline interval, e.g. "1m"
	Logger               ports.Logger
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	OnOrder              ports.OrderHook // Optional; invoked before SendOrder returns
	OnCloseOrder         ports.OrderHook // Optional; invoked before SendCloseOrder returns
}

// New creates a Binance-backed notification channel.
func New(cfg Config) (*Channel, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance channel")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Channel will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance channel configured", map[string]interface{}{
		"baseURL": client.BaseURL, "testnet": cfg.UseTestnet,
	})

	interval := cfg.Interval
	if interval == "" {
		interval = "1m"
	}
	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = time.Second
	}
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Channel{
		client:               client,
		logger:               cfg.Logger,
		interval:             interval,
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
		onOrder:              cfg.OnOrder,
		onCloseOrder:         cfg.OnCloseOrder,
		open:                 make(map[string]*domain.Order),
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Channel) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003:
			mappedErr = ports.ErrRateLimited
		case -1021:
			mappedErr = ports.ErrTimeout
		case -1022:
			mappedErr = ports.ErrAuthenticationFailed
		case -2010:
			mappedErr = ports.ErrOrderPlacementFailed
		case -2013:
			mappedErr = ports.ErrNotFound
		case -2014, -2015:
			mappedErr = ports.ErrInvalidAPIKeys
		case -2019, -3005:
			mappedErr = ports.ErrInsufficientFunds
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, mappedErr, "Binance API error", fields)
		return fmt.Errorf("%s: %w: %s", operation, mappedErr, apiErr.Message)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, ports.ErrContextCanceled)
	}
	c.logger.Error(ctx, err, "Binance request failed", fields)
	return fmt.Errorf("%s: %w: %v", operation, ports.ErrExchangeUnavailable, err)
}

// Connect pings the exchange, synchronizes server time and marks the channel
// connected. If a candle handler is already subscribed the kline stream
// starts. Idempotent.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.client.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, err, "Connect/Ping")
	}
	if _, err := c.client.NewSetServerTimeService().Do(ctx); err != nil {
		return c.handleError(ctx, err, "Connect/SetServerTime")
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.logger.Info(ctx, "Binance channel connected")
	return nil
}

// Disconnect stops the kline stream and marks the channel disconnected.
// Idempotent.
func (c *Channel) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWs != nil {
		c.stopWs()
		c.stopWs = nil
	}
	c.connected = false
	c.logger.Info(ctx, "Binance channel disconnected")
	return nil
}

// IsConnected reports whether the channel is currently connected.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers the candle handler.
func (c *Channel) Subscribe(handler ports.CandleHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// StreamCandles opens the kline WebSocket for the given pair and delivers
// final candles to the subscribed handler until the context is cancelled.
// Connection drops are retried with exponential backoff.
func (c *Channel) StreamCandles(ctx context.Context, pair string) error {
	c.mu.Lock()
	if c.handler == nil {
		c.mu.Unlock()
		return fmt.Errorf("stream candles: no handler subscribed: %w", ports.ErrInvalidRequest)
	}
	handler := c.handler
	wsCtx, cancel := context.WithCancel(ctx)
	c.stopWs = cancel
	c.mu.Unlock()

	symbol := toSymbol(pair)
	klineHandler := func(event *futures.WsKlineEvent) {
		if !event.Kline.IsFinal {
			return
		}
		candle, err := translateWsKline(event)
		if err != nil {
			c.logger.Error(wsCtx, err, "Failed to translate kline event", map[string]interface{}{"symbol": symbol})
			return
		}
		if err := handler(wsCtx, candle); err != nil {
			c.logger.Error(wsCtx, err, "Candle handler returned an error", map[string]interface{}{"symbol": symbol})
		}
	}
	errHandler := func(err error) {
		c.logger.Warn(wsCtx, "Kline stream error", map[string]interface{}{"symbol": symbol, "error": err.Error()})
	}

	attempt := 0
	for {
		select {
		case <-wsCtx.Done():
			return nil
		default:
		}

		doneCh, stopCh, err := futures.WsKlineServe(symbol, c.interval, klineHandler, errHandler)
		if err != nil {
			attempt++
			if attempt >= c.maxReconnectAttempts {
				return fmt.Errorf("kline stream for %s: %w", symbol, ports.ErrConnectionFailed)
			}
			delay := c.reconnectDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Warn(wsCtx, "Kline stream connection failed, retrying", map[string]interface{}{
				"symbol": symbol, "attempt": attempt, "delay": delay.String(),
			})
			select {
			case <-time.After(delay):
				continue
			case <-wsCtx.Done():
				return nil
			}
		}

		attempt = 0
		c.logger.Info(wsCtx, "Kline stream established", map[string]interface{}{"symbol": symbol, "interval": c.interval})
		select {
		case <-doneCh:
			c.logger.Warn(wsCtx, "Kline stream closed, reconnecting", map[string]interface{}{"symbol": symbol})
		case <-wsCtx.Done():
			select {
			case stopCh <- struct{}{}:
			default:
			}
			return nil
		}
	}
}

// SendOrder places the order on the exchange and invokes the order hook
// before returning.
func (c *Channel) SendOrder(ctx context.Context, order *domain.Order) error {
	if !c.IsConnected() {
		return ports.ErrChannelNotConnected
	}

	service := c.client.NewCreateOrderService().
		Symbol(toSymbol(order.Pair)).
		Side(toBinanceSide(order.Side)).
		Quantity(formatQty(order.Amount))
	if order.Kind == domain.Limit {
		service = service.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(formatQty(order.Price))
	} else {
		service = service.Type(futures.OrderTypeMarket)
	}

	if _, err := service.Do(ctx); err != nil {
		return c.handleError(ctx, err, "SendOrder")
	}

	c.mu.Lock()
	c.open[order.ID] = order
	c.mu.Unlock()

	if c.onOrder != nil {
		c.onOrder(ctx, order)
	}
	c.logger.Info(ctx, "Order sent to exchange", map[string]interface{}{
		"orderID": order.ID, "side": order.Side, "amount": order.Amount, "kind": order.Kind,
	})
	return nil
}

// SendCloseOrder flattens the position behind an order the channel opened by
// placing the opposite-side market order, then invokes the close hook before
// returning.
func (c *Channel) SendCloseOrder(ctx context.Context, order *domain.Order) error {
	if !c.IsConnected() {
		return ports.ErrChannelNotConnected
	}

	c.mu.Lock()
	_, isOpen := c.open[order.ID]
	c.mu.Unlock()
	if !isOpen {
		return fmt.Errorf("close order %s: %w", order.ID, ports.ErrOrderNotOpen)
	}

	opposite := domain.Sell
	if order.Side == domain.Sell {
		opposite = domain.Buy
	}
	_, err := c.client.NewCreateOrderService().
		Symbol(toSymbol(order.Pair)).
		Side(toBinanceSide(opposite)).
		Type(futures.OrderTypeMarket).
		Quantity(formatQty(order.Amount)).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, "SendCloseOrder")
	}

	c.mu.Lock()
	delete(c.open, order.ID)
	c.mu.Unlock()

	if c.onCloseOrder != nil {
		c.onCloseOrder(ctx, order)
	}
	c.logger.Info(ctx, "Close sent to exchange", map[string]interface{}{"orderID": order.ID})
	return nil
}

// toSymbol maps a "BTC/USDT" pair to the exchange's "BTCUSDT" form.
func toSymbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

func toBinanceSide(side domain.OrderSide) futures.SideType {
	if side == domain.Sell {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// translateWsKline converts a WebSocket kline event to a domain candle.
func translateWsKline(event *futures.WsKlineEvent) (*domain.Candle, error) {
	open, err := strconv.ParseFloat(event.Kline.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid open price %q: %w", event.Kline.Open, err)
	}
	high, err := strconv.ParseFloat(event.Kline.High, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid high price %q: %w", event.Kline.High, err)
	}
	low, err := strconv.ParseFloat(event.Kline.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid low price %q: %w", event.Kline.Low, err)
	}
	closePrice, err := strconv.ParseFloat(event.Kline.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid close price %q: %w", event.Kline.Close, err)
	}
	volume, err := strconv.ParseFloat(event.Kline.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid volume %q: %w", event.Kline.Volume, err)
	}

	return &domain.Candle{
		Timestamp: time.UnixMilli(event.Kline.StartTime),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}
