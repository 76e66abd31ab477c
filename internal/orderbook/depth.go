// Package orderbook generates the synthetic depth book shown to each
// session's client. Unlike a real matching engine's book, this is a
// transient per-tick artifact regenerated from scratch around the
// current price; no order ever rests here and no trade is ever matched
// against it.
package orderbook

import (
	"github.com/riverbend/marketsim/internal/engine"
	"github.com/riverbend/marketsim/internal/market"
)

// Levels is the fixed depth on each side of the book.
const Levels = 15

// Level is one synthetic price/quantity pair.
type Level struct {
	Price    float64
	Quantity int
}

// Snapshot is one tick's worth of generated depth.
type Snapshot struct {
	Bids    []Level
	Asks    []Level
	BestBid float64
	BestAsk float64
	Spread  float64
}

// Regenerate produces a fresh 15x15 depth snapshot around currentPrice.
// spread is the session's configured quote spread; sentiment biases the
// relative size of the bid and ask sides.
func Regenerate(rng *engine.RNG, currentPrice, spread float64, sentiment market.Sentiment) Snapshot {
	half := spread
	if half < market.TickSize {
		half = market.TickSize
	}
	half /= 2

	bestBid := market.RoundTick(currentPrice - half)
	bestAsk := market.RoundTick(currentPrice + half)
	if bestBid >= bestAsk {
		bestBid = market.RoundTick(currentPrice) - market.TickSize
		bestAsk = market.RoundTick(currentPrice) + market.TickSize
	}

	bidMult, askMult := depthBias(sentiment)

	bids := make([]Level, Levels)
	for i := 0; i < Levels; i++ {
		price := market.RoundTick(bestBid - float64(i)*market.TickSize)
		qty := levelQuantity(rng, i, bidMult)
		bids[i] = Level{Price: price, Quantity: qty}
	}

	asks := make([]Level, Levels)
	for i := 0; i < Levels; i++ {
		price := market.RoundTick(bestAsk + float64(i)*market.TickSize)
		qty := levelQuantity(rng, i, askMult)
		asks[i] = Level{Price: price, Quantity: qty}
	}

	return Snapshot{
		Bids:    bids,
		Asks:    asks,
		BestBid: bestBid,
		BestAsk: bestAsk,
		Spread:  market.RoundTick(bestAsk - bestBid),
	}
}

// levelQuantity draws a fresh base quantity for one depth level and
// tapers it toward the back of the book.
func levelQuantity(rng *engine.RNG, levelIndex int, bias float64) int {
	baseQty := float64(rng.IntRange(50, 500))
	tapered := baseQty * float64(Levels-levelIndex) / float64(Levels)
	qty := int(tapered * bias)
	if qty < 10 {
		qty = 10
	}
	return qty
}

// depthBias returns the bid/ask quantity multipliers for a sentiment.
func depthBias(sentiment market.Sentiment) (bidMult, askMult float64) {
	switch sentiment {
	case market.Bullish:
		return 1.3, 0.7
	case market.Bearish:
		return 0.7, 1.3
	default:
		return 1.0, 1.0
	}
}
