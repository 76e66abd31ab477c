// Package session owns the per-client simulation orchestrator: one
// SessionState wires a PriceEngine, NewsShockController, CandleManager,
// and synthetic order book together and advances them one tick at a time.
package session

import (
	"strings"

	"github.com/riverbend/marketsim/internal/market"
)

const (
	minBasePrice = 100.00
	maxBasePrice = 500.00
	minSpread    = 0.05
	maxSpread    = 0.25
	minSpeed     = 0.25
	maxSpeed     = 2.0
)

// Config is a session's immutable-after-validation starting point. Raw
// values are clamped and tick-aligned by New and by State's setters;
// callers never see an out-of-range value take effect.
type Config struct {
	Symbol    string
	BasePrice float64
	Spread    float64
	Sentiment market.Sentiment
	Intensity market.Intensity
	Speed     float64
}

// Sanitize clamps every bounded field in place and tick-aligns price
// and spread. Symbol is upper-cased and truncated to 6 characters.
func (c *Config) Sanitize() {
	c.Symbol = sanitizeSymbol(c.Symbol)
	c.BasePrice = market.RoundTick(clamp(c.BasePrice, minBasePrice, maxBasePrice))
	c.Spread = market.RoundTick(clamp(c.Spread, minSpread, maxSpread))
	c.Speed = clamp(c.Speed, minSpeed, maxSpeed)
}

func sanitizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 6 {
		s = s[:6]
	}
	if s == "" {
		s = "SIM"
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
