package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aizybot/internal/bot"
	"aizybot/internal/ports"
)

// StreamingChannel is a notification channel that can also pump live candles
// into the subscribed handler. The Binance adapter satisfies this.
type StreamingChannel interface {
	ports.NotificationChannel
	StreamCandles(ctx context.Context, pair string) error
}

// BotService runs a strategy against a live notification channel: it connects
// the channel, feeds incoming candles to the strategy and shuts down cleanly
// on SIGINT/SIGTERM.
type BotService struct {
	logger   ports.Logger
	channel  StreamingChannel
	trader   *bot.Bot
	strategy ports.Strategy
	pair     string
}

// NewBotService creates a new live service instance.
func NewBotService(logger ports.Logger, channel StreamingChannel, trader *bot.Bot, strat ports.Strategy, pair string) (*BotService, error) {
	if logger == nil || channel == nil || trader == nil || strat == nil {
		return nil, fmt.Errorf("missing required dependencies for BotService")
	}
	if pair == "" {
		return nil, fmt.Errorf("pair must be set")
	}
	return &BotService{
		logger:   logger,
		channel:  channel,
		trader:   trader,
		strategy: strat,
		pair:     pair,
	}, nil
}

// Start runs the service until the context is cancelled, a shutdown signal
// arrives or the candle stream stops.
func (s *BotService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting bot service", map[string]interface{}{"pair": s.pair})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.strategy.Setup(ctx); err != nil {
		return fmt.Errorf("strategy setup failed: %w", err)
	}

	if err := s.channel.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect channel: %w", err)
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := s.channel.Disconnect(dctx); err != nil {
			s.logger.Warn(dctx, "Channel disconnect failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.channel.Subscribe(s.strategy.OnCandle)

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- s.channel.StreamCandles(ctx, s.pair)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Context cancelled, shutting down")
	case err := <-streamErr:
		if err != nil {
			s.logger.Error(ctx, err, "Candle stream stopped")
			return fmt.Errorf("candle stream stopped: %w", err)
		}
		s.logger.Info(ctx, "Candle stream finished")
	}

	active := s.trader.ListActiveTrades()
	if len(active) > 0 {
		s.logger.Warn(ctx, "Shutting down with active trades still open", map[string]interface{}{"count": len(active)})
	}
	s.logger.Info(ctx, "Bot service stopped")
	return nil
}
