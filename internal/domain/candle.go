package domain

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV sample over a fixed time interval.
// Candles are immutable after creation.
type Candle struct {
	Timestamp time.Time // Start time of the interval
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume over the interval
}

// Validate checks the structural invariants every candle must satisfy:
// non-negative prices/volume, high at or above the body, low at or below it.
func (c *Candle) Validate() error {
	if c.Open < 0 || c.High < 0 || c.Low < 0 || c.Close < 0 || c.Volume < 0 {
		return fmt.Errorf("candle at %s has negative fields", c.Timestamp)
	}
	body := c.Open
	if c.Close > body {
		body = c.Close
	}
	if c.High < body {
		return fmt.Errorf("candle at %s: high %.4f below body top %.4f", c.Timestamp, c.High, body)
	}
	body = c.Open
	if c.Close < body {
		body = c.Close
	}
	if c.Low > body {
		return fmt.Errorf("candle at %s: low %.4f above body bottom %.4f", c.Timestamp, c.Low, body)
	}
	return nil
}

// IsGreen reports whether the candle closed above its open.
func (c *Candle) IsGreen() bool {
	return c.Close > c.Open
}
