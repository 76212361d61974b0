package quotes

import (
	"fmt"
	"math/rand"
	"time"

	"aizybot/internal/domain"
)

// Config holds the parameters of the synthetic price walk.
type Config struct {
	Length            int     // Number of candles to produce
	MinClose          float64 // Lower bound the walk never crosses
	MaxClose          float64 // Upper bound the walk never crosses
	UpCandlesProb     float64 // Probability of an up candle at each step
	MaxCandleBody     float64 // Absolute excess added above/below the body on outlier candles
	MaxOutlier        float64 // Probability of generating an outlier candle
	MinutesPerCandle  int     // Timestamp step between candles
	AverageVolatility float64 // Maximum open-to-close move per step
	StartTime         time.Time
	StartPrice        float64 // 0 seeds uniformly within [MinClose, MaxClose]
	Seed              int64   // 0 seeds from the wall clock
}

// DefaultConfig mirrors the generator's historical defaults.
func DefaultConfig() Config {
	return Config{
		Length:            50,
		MinClose:          1000,
		MaxClose:          10000,
		UpCandlesProb:     0.5,
		MaxCandleBody:     0.02,
		MaxOutlier:        0.03,
		MinutesPerCandle:  5,
		AverageVolatility: 100,
	}
}

// Generator produces a lazy, finite sequence of candles following a
// constrained random walk: each close stays within [MinClose, MaxClose], each
// candle opens at the previous close, and high/low are derived from the body.
// Reconstructing a generator with the same seed reproduces the sequence.
type Generator struct {
	cfg     Config
	rng     *rand.Rand
	open    float64
	current time.Time
	emitted int
}

// New validates the config and creates a generator positioned before the
// first candle.
func New(cfg Config) (*Generator, error) {
	if cfg.Length <= 0 {
		return nil, fmt.Errorf("generator length must be positive, got %d", cfg.Length)
	}
	if cfg.MinClose <= 0 || cfg.MaxClose <= cfg.MinClose {
		return nil, fmt.Errorf("invalid close bounds [%f, %f]", cfg.MinClose, cfg.MaxClose)
	}
	if cfg.UpCandlesProb < 0 || cfg.UpCandlesProb > 1 {
		return nil, fmt.Errorf("up candles probability must be within [0,1], got %f", cfg.UpCandlesProb)
	}
	if cfg.MaxOutlier < 0 || cfg.MaxOutlier > 1 {
		return nil, fmt.Errorf("outlier probability must be within [0,1], got %f", cfg.MaxOutlier)
	}
	if cfg.MinutesPerCandle <= 0 {
		return nil, fmt.Errorf("minutes per candle must be positive, got %d", cfg.MinutesPerCandle)
	}
	if cfg.AverageVolatility <= 0 {
		return nil, fmt.Errorf("average volatility must be positive, got %f", cfg.AverageVolatility)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	open := cfg.StartPrice
	if open == 0 {
		open = cfg.MinClose + rng.Float64()*(cfg.MaxClose-cfg.MinClose)
	}
	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	return &Generator{cfg: cfg, rng: rng, open: open, current: start}, nil
}

// Next produces the next candle of the walk. The second return value is false
// once Length candles have been emitted.
func (g *Generator) Next() (*domain.Candle, bool) {
	if g.emitted >= g.cfg.Length {
		return nil, false
	}

	closePrice := g.nextClose(g.open)
	high, low := g.highLow(g.open, closePrice)

	candle := &domain.Candle{
		Timestamp: g.current,
		Open:      g.open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    10 + g.rng.Float64()*90,
	}

	g.current = g.current.Add(time.Duration(g.cfg.MinutesPerCandle) * time.Minute)
	g.open = closePrice
	g.emitted++
	return candle, true
}

// All drains the remaining sequence.
func (g *Generator) All() []*domain.Candle {
	candles := make([]*domain.Candle, 0, g.cfg.Length-g.emitted)
	for {
		candle, ok := g.Next()
		if !ok {
			return candles
		}
		candles = append(candles, candle)
	}
}

// nextClose samples a close bounded inside [MinClose, MaxClose]: up candles
// move toward min(open+volatility, MaxClose), down candles toward
// max(open-volatility, MinClose).
func (g *Generator) nextClose(open float64) float64 {
	if g.rng.Float64() <= g.cfg.UpCandlesProb {
		maxPossible := open + g.cfg.AverageVolatility
		if maxPossible > g.cfg.MaxClose {
			maxPossible = g.cfg.MaxClose
		}
		return open + g.rng.Float64()*(maxPossible-open)
	}
	minPossible := open - g.cfg.AverageVolatility
	if minPossible < g.cfg.MinClose {
		minPossible = g.cfg.MinClose
	}
	return minPossible + g.rng.Float64()*(open-minPossible)
}

// highLow derives the wick extremes from the candle body. With probability
// MaxOutlier the wicks widen by an independent excess of up to MaxCandleBody;
// otherwise they stay within half the body width.
func (g *Generator) highLow(open, closePrice float64) (high, low float64) {
	top, bottom := open, closePrice
	if closePrice > open {
		top, bottom = closePrice, open
	}

	if g.rng.Float64() <= g.cfg.MaxOutlier {
		high = top + g.rng.Float64()*g.cfg.MaxCandleBody
		low = bottom - g.rng.Float64()*g.cfg.MaxCandleBody
		return high, low
	}

	halfBody := (top - bottom) / 2
	high = top + g.rng.Float64()*halfBody
	low = bottom - g.rng.Float64()*halfBody
	return high, low
}
