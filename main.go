package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"aizybot/config"
	"aizybot/internal/adapters/binanceclient"
	"aizybot/internal/adapters/logger"
	"aizybot/internal/app"
	"aizybot/internal/bot"
	"aizybot/internal/strategy/strategies"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if err := cfg.RequireAPIKeys(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Notification Channel (Binance Adapter)
	channel, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.APIKey,
		SecretKey:            cfg.SecretKey,
		UseTestnet:           cfg.IsTestnet,
		Interval:             cfg.KlineInterval,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance channel")
		log.Fatalf("FATAL: Failed to initialize Binance channel: %v", err)
	}
	appLogger.Info(context.Background(), "Binance channel initialized")

	// 4. Initialize Bot
	trader, err := bot.New(appLogger, channel)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize bot")
		log.Fatalf("FATAL: Failed to initialize bot: %v", err)
	}

	// 5. Initialize Strategy
	factory, err := strategies.Factory(cfg.Strategy, strategies.Params{
		Pair:       cfg.Pair,
		Amount:     cfg.Amount,
		FastPeriod: cfg.StrategyShortMAPeriod,
		SlowPeriod: cfg.StrategyLongMAPeriod,
		RSIPeriod:  cfg.StrategyRSIPeriod,
		Overbought: cfg.StrategyRSIOverbought,
		Oversold:   cfg.StrategyRSIOversold,
	}, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize strategy")
		log.Fatalf("FATAL: Failed to initialize strategy: %v", err)
	}
	strat := factory(trader)
	appLogger.Info(context.Background(), "Strategy initialized", map[string]interface{}{"strategy": cfg.Strategy})

	// 6. Initialize Application Service
	service, err := app.NewBotService(appLogger, channel, trader, strat, cfg.Pair)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize bot service")
		log.Fatalf("FATAL: Failed to initialize bot service: %v", err)
	}
	appLogger.Info(context.Background(), "Bot service initialized")

	// 7. Start the Service
	if err := service.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Bot service exited with error")
		log.Fatalf("FATAL: Bot service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
