package engine

import (
	"math"

	"github.com/riverbend/marketsim/internal/market"
)

// truncatedNormalBound bounds the truncated-normal draw used for step
// magnitude; redraws past this are clipped rather than retried forever.
const truncatedNormalBound = 3.5

// PriceResult is the outcome of a single PriceEngine step.
type PriceResult struct {
	Price        float64
	ShockApplied bool
	ShockType    string // "bullish" or "bearish", empty when ShockApplied is false
}

// PriceEngine drives a single session's stochastic price process:
// probabilistic direction with sentiment-biased drift, forced pullbacks
// that break up monotonic runs, and a shock override supplied by a
// NewsShockController.
type PriceEngine struct {
	rng *RNG

	direction         int8
	movesInTrend      uint
	pullbackRemaining uint
	pullbackThreshold uint
}

// NewPriceEngine creates a PriceEngine seeded from rng. The first
// pullback threshold is drawn immediately so movesInTrend has a target
// from the very first tick.
func NewPriceEngine(rng *RNG) *PriceEngine {
	return &PriceEngine{
		rng:               rng,
		pullbackThreshold: uint(rng.IntRange(8, 15)),
	}
}

// Reset clears trend/pullback bookkeeping, as happens on session reset.
func (p *PriceEngine) Reset() {
	p.direction = 0
	p.movesInTrend = 0
	p.pullbackRemaining = 0
	p.pullbackThreshold = uint(p.rng.IntRange(8, 15))
}

// OnSentimentChange zeroes the trend counter, as spec'd for every
// sentiment change: a new sentiment starts a fresh trend rather than
// continuing to count moves accumulated under the old one. It does not
// touch an in-progress pullback, which runs to completion regardless.
func (p *PriceEngine) OnSentimentChange() {
	p.movesInTrend = 0
}

// shockController is the narrow interface PriceEngine needs from the
// NewsShockController, so the two can be tested independently.
type shockController interface {
	TryShock() (multiplier float64, fired bool, shockType string)
}

// NextPrice advances the price process by one tick. shockActive reflects
// whether the NewsShockController is currently in its Active state;
// shock and regular steps are mutually exclusive within one call.
func (p *PriceEngine) NextPrice(current float64, sentiment market.Sentiment, intensity market.Intensity, shockActive bool, shock shockController) PriceResult {
	if shockActive && shock != nil {
		if mult, fired, shockType := shock.TryShock(); fired {
			price := market.RoundTick(current * mult)
			if price <= 0 {
				price = market.TickSize
			}
			return PriceResult{Price: price, ShockApplied: true, ShockType: shockType}
		}
	}

	pUp := sentiment.UpProbability()
	sigma := sentiment.BaseSigma() * intensity.VolatilityMultiplier()

	inPullback := p.pullbackRemaining > 0
	if inPullback {
		pUp = 1 - pUp
		sigma *= 0.7 + p.rng.Float64()*0.2 // uniform [0.7, 0.9]
	}

	sign := 1.0
	if p.rng.Float64() >= pUp {
		sign = -1.0
	}

	magnitude := current * sigma * p.truncatedNormalAbs()
	price := current + sign*magnitude

	if inPullback {
		p.pullbackRemaining--
	} else {
		p.movesInTrend++
		if p.movesInTrend >= p.pullbackThreshold {
			p.pullbackRemaining = uint(p.rng.IntRange(2, 5))
			p.pullbackThreshold = uint(p.rng.IntRange(8, 15))
			p.movesInTrend = 0
		}
	}

	if sign > 0 {
		p.direction = 1
	} else {
		p.direction = -1
	}

	price = market.RoundTick(price)
	if price <= 0 {
		price = market.TickSize
	}

	return PriceResult{Price: price}
}

// truncatedNormalAbs draws |N| from a standard normal, clipped to
// truncatedNormalBound so a rare extreme Box-Muller draw can't produce
// an implausible single-tick jump.
func (p *PriceEngine) truncatedNormalAbs() float64 {
	v := math.Abs(p.rng.Gaussian())
	if v > truncatedNormalBound {
		v = truncatedNormalBound
	}
	return v
}

// Direction reports the sign of the most recent step (-1, 0, or +1).
func (p *PriceEngine) Direction() int8 { return p.direction }

// InPullback reports whether the engine is currently in a forced
// counter-trend run.
func (p *PriceEngine) InPullback() bool { return p.pullbackRemaining > 0 }

// MovesInTrend reports how many regular steps the current trend has run.
func (p *PriceEngine) MovesInTrend() uint { return p.movesInTrend }
