package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aizybot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Binance API (only required when running against the live exchange)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Trading Parameters
	Pair     string
	Amount   float64 // Default order amount
	Strategy string  // Strategy name: trend, smacross, rsi

	// Strategy Parameters
	StrategyShortMAPeriod int     // e.g., 20
	StrategyLongMAPeriod  int     // e.g., 50
	StrategyRSIPeriod     int     // e.g., 14
	StrategyRSIOverbought float64 // e.g., 70.0
	StrategyRSIOversold   float64 // e.g., 30.0

	// Simulation Parameters
	SimDuration      int     // Number of candles to simulate
	MinutesPerCandle int     // Candle interval in minutes
	MinClose         float64 // Lower price bound for the generator
	MaxClose         float64 // Upper price bound for the generator
	UpCandlesProb    float64 // Probability of a green candle
	MaxCandleBody    float64 // Body size as a fraction of close
	MaxOutlier       float64 // Wick size as a fraction of close
	Seed             int64   // 0 means derive from the clock

	// Database
	DBPath string

	// Dashboard
	DashboardAddr string // Empty disables the dashboard

	// Logging
	LogLevel logger.LogLevel

	// Connection Settings (live Binance channel)
	KlineInterval        string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	// Trading Parameters
	cfg.Pair = getEnv("PAIR", "BTC/USDT")
	if cfg.Pair == "" {
		errs = append(errs, "PAIR must be set")
	}

	cfg.Amount, err = getEnvAsFloatRequired("AMOUNT", 1.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid AMOUNT: %v", err))
	} else if cfg.Amount <= 0 {
		errs = append(errs, "AMOUNT must be positive")
	}

	cfg.Strategy = getEnv("STRATEGY", "trend")
	if cfg.Strategy == "" {
		errs = append(errs, "STRATEGY must be set")
	}

	// Strategy Parameters (using defaults if not set)
	cfg.StrategyShortMAPeriod = getEnvAsInt("STRATEGY_SHORT_MA_PERIOD", 20)
	cfg.StrategyLongMAPeriod = getEnvAsInt("STRATEGY_LONG_MA_PERIOD", 50)
	cfg.StrategyRSIPeriod = getEnvAsInt("STRATEGY_RSI_PERIOD", 14)
	cfg.StrategyRSIOverbought = getEnvAsFloat("STRATEGY_RSI_OVERBOUGHT", 70.0)
	cfg.StrategyRSIOversold = getEnvAsFloat("STRATEGY_RSI_OVERSOLD", 30.0)

	if cfg.StrategyShortMAPeriod <= 0 || cfg.StrategyLongMAPeriod <= 0 || cfg.StrategyRSIPeriod <= 0 {
		errs = append(errs, "strategy periods (MA, RSI) must be positive")
	}
	if cfg.StrategyShortMAPeriod >= cfg.StrategyLongMAPeriod {
		errs = append(errs, "STRATEGY_SHORT_MA_PERIOD must be less than STRATEGY_LONG_MA_PERIOD")
	}
	if cfg.StrategyRSIOverbought <= cfg.StrategyRSIOversold || cfg.StrategyRSIOverbought > 100 || cfg.StrategyRSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}

	// Simulation Parameters
	cfg.SimDuration = getEnvAsInt("SIM_DURATION", 200)
	if cfg.SimDuration <= 0 {
		errs = append(errs, "SIM_DURATION must be positive")
	}

	cfg.MinutesPerCandle = getEnvAsInt("MINUTES_PER_CANDLE", 5)
	if cfg.MinutesPerCandle <= 0 {
		errs = append(errs, "MINUTES_PER_CANDLE must be positive")
	}

	cfg.MinClose, err = getEnvAsFloatRequired("MIN_CLOSE", 50.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_CLOSE: %v", err))
	}
	cfg.MaxClose, err = getEnvAsFloatRequired("MAX_CLOSE", 150.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_CLOSE: %v", err))
	}
	if cfg.MinClose <= 0 || cfg.MinClose >= cfg.MaxClose {
		errs = append(errs, "MIN_CLOSE must be positive and less than MAX_CLOSE")
	}

	cfg.UpCandlesProb = getEnvAsFloat("UP_CANDLES_PROB", 0.5)
	if cfg.UpCandlesProb < 0 || cfg.UpCandlesProb > 1 {
		errs = append(errs, "UP_CANDLES_PROB must be between 0.0 and 1.0")
	}

	cfg.MaxCandleBody = getEnvAsFloat("MAX_CANDLE_BODY", 0.01)
	cfg.MaxOutlier = getEnvAsFloat("MAX_OUTLIER", 0.005)
	if cfg.MaxCandleBody <= 0 || cfg.MaxOutlier < 0 {
		errs = append(errs, "MAX_CANDLE_BODY must be positive and MAX_OUTLIER non-negative")
	}

	cfg.Seed = int64(getEnvAsInt("SIM_SEED", 0))

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/aizybot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Dashboard (empty disables it)
	cfg.DashboardAddr = getEnv("DASHBOARD_ADDR", "")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Connection Settings
	cfg.KlineInterval = getEnv("KLINE_INTERVAL", "1m")

	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// RequireAPIKeys validates that live-exchange credentials are present. Called
// only by entry points that talk to the real exchange; the simulator never
// needs keys.
func (c *Config) RequireAPIKeys() error {
	var errs []string
	if c.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if c.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
