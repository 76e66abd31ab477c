package session

import (
	"math"

	"github.com/riverbend/marketsim/internal/candle"
	"github.com/riverbend/marketsim/internal/engine"
	"github.com/riverbend/marketsim/internal/market"
	"github.com/riverbend/marketsim/internal/orderbook"
)

// Stats mirrors the "stats" block of a tick frame.
type Stats struct {
	Symbol                     string
	CurrentPrice               float64
	OpenPrice                  float64
	HighPrice                  float64
	LowPrice                   float64
	TotalOrders                uint64
	TotalTrades                uint64
	TotalVolume                int64
	MarketOrderPct             float64
	Sentiment                  market.Sentiment
	Intensity                  market.Intensity
	Spread                     float64
	Speed                      float64
	Paused                     bool
	NewsShockEnabled           bool
	NewsShockCooldown          bool
	NewsShockCooldownRemaining int
	NewsShockActiveRemaining   int
}

// PricePoint mirrors the "price" block of a tick frame.
type PricePoint struct {
	TimestampMs int64
	Price       float64
	Volume      int64
}

// Frame is everything one advance() call produces, handed to the
// encoder as a consistent snapshot.
type Frame struct {
	Orderbook        orderbook.Snapshot
	Stats            Stats
	Price            PricePoint
	CurrentCandles   map[int]candle.Candle
	CompletedCandles []candle.Completed
	Trade            *TradeData
}

// State is the per-client simulation orchestrator. It owns a
// PriceEngine, NewsShockController, and CandleManager outright; the
// order book is regenerated fresh on every advance rather than owned
// as mutable state. A single scheduler tick is the only writer; command
// handlers are the only other mutator, and callers must serialize the
// two (see internal/dispatcher and internal/registry).
type State struct {
	Id     uint32
	config Config

	rng   *engine.RNG
	price *engine.PriceEngine
	shock *engine.NewsShockController
	bars  *candle.Manager

	running bool
	paused  bool

	currentPrice float64
	openPrice    float64
	highPrice    float64
	lowPrice     float64

	totalOrders  uint64
	totalTrades  uint64
	totalVolume  int64
	marketOrders uint64
	limitOrders  uint64
	tradeCounter uint64

	lastUpdateMs int64
}

// New creates a session in the stopped, unpaused state with every price
// set to the sanitized config's base price.
func New(id uint32, cfg Config, seed int64) *State {
	cfg.Sanitize()
	rng := engine.NewRNG(seed)
	s := &State{
		Id:     id,
		config: cfg,
		rng:    rng,
		price:  engine.NewPriceEngine(rng),
		shock:  engine.NewNewsShockController(rng),
		bars:   candle.NewManager(),
	}
	s.resetPrices()
	return s
}

func (s *State) resetPrices() {
	s.currentPrice = s.config.BasePrice
	s.openPrice = s.config.BasePrice
	s.highPrice = s.config.BasePrice
	s.lowPrice = s.config.BasePrice
}

// Config returns a copy of the session's current configuration.
func (s *State) Config() Config { return s.config }

// Running reports whether the session is currently eligible for
// advancement by the dispatcher.
func (s *State) Running() bool { return s.running }

// Paused reports whether advancement is currently frozen.
func (s *State) Paused() bool { return s.paused }

// LastUpdateMs is the wall-clock time of the most recent advance.
func (s *State) LastUpdateMs() int64 { return s.lastUpdateMs }

// SetLastUpdateMs records the dispatcher's bookkeeping time. Exposed so
// the dispatcher's cadence gate can live outside this package.
func (s *State) SetLastUpdateMs(ms int64) { s.lastUpdateMs = ms }

// Start applies a start command's config and marks the session running.
// The caller is responsible for merging any omitted fields from the
// prior config before calling Start; cfg is always treated as complete.
func (s *State) Start(cfg Config) {
	cfg.Sanitize()
	s.config = cfg
	s.resetPrices()
	s.running = true
}

// SetSentiment updates the sentiment used by the next price step. A
// genuine change resets the PriceEngine's trend counter, per spec: a
// new sentiment starts a fresh trend.
func (s *State) SetSentiment(v market.Sentiment) {
	if v == s.config.Sentiment {
		return
	}
	s.config.Sentiment = v
	s.price.OnSentimentChange()
}

// SetIntensity updates the intensity used by the next price step.
func (s *State) SetIntensity(v market.Intensity) { s.config.Intensity = v }

// SetSpread clamps and tick-aligns v, affecting the next book regeneration.
func (s *State) SetSpread(v float64) {
	s.config.Spread = v
	s.config.Sanitize()
}

// SetSpeed clamps v, changing the session's effective tick interval.
func (s *State) SetSpeed(v float64) {
	s.config.Speed = v
	s.config.Sanitize()
}

// SetPaused freezes or unfreezes advancement. It never touches running.
func (s *State) SetPaused(b bool) { s.paused = b }

// SetRunning flips the dispatcher-eligibility flag directly, used by
// the dispatcher on a contained panic.
func (s *State) SetRunning(b bool) { s.running = b }

// EnableNewsShock attempts the Idle->Active transition.
func (s *State) EnableNewsShock(nowMs int64) bool { return s.shock.Enable(nowMs) }

// DisableNewsShock forces an immediate exit from Active into Cooldown.
func (s *State) DisableNewsShock(nowMs int64) { s.shock.Disable(nowMs) }

// Reset clears all child state and counters, re-seating every price at
// basePrice, and leaves running untouched.
func (s *State) Reset() {
	s.price.Reset()
	s.shock.Reset()
	s.bars.Reset()
	s.resetPrices()
	s.totalOrders = 0
	s.totalTrades = 0
	s.totalVolume = 0
	s.marketOrders = 0
	s.limitOrders = 0
	s.tradeCounter = 0
	s.paused = false
}

// GenerateTrade synthesizes one trade at price, incrementing the
// session's trade counters.
func (s *State) GenerateTrade(price float64, nowMs int64) TradeData {
	side := market.Sell
	if s.rng.Float64() < s.config.Sentiment.BuyProbability() {
		side = market.Buy
	}

	slippage := 0.01 + s.rng.Float64()*0.02
	sign := 1.0
	if side == market.Sell {
		sign = -1.0
	}
	execPrice := market.RoundTick(price + sign*slippage)

	qty := int(math.Floor(float64(10+s.rng.Intn(100)) * s.config.Intensity.VolumeMultiplier()))

	s.tradeCounter++
	s.totalTrades++

	return TradeData{
		Id:          tradeId(s.Id, s.tradeCounter),
		Price:       execPrice,
		Quantity:    qty,
		Side:        side,
		TimestampMs: nowMs,
	}
}

// Advance performs one simulation step and returns the resulting frame.
// It is a no-op, returning ok=false, when the session is not running or
// is paused.
func (s *State) Advance(nowMs int64) (Frame, bool) {
	if !s.running || s.paused {
		return Frame{}, false
	}

	s.shock.Expire(nowMs)

	result := s.price.NextPrice(s.currentPrice, s.config.Sentiment, s.config.Intensity, s.shock.State() == market.Active, s.shock)
	s.currentPrice = result.Price
	if s.currentPrice > s.highPrice {
		s.highPrice = s.currentPrice
	}
	if s.currentPrice < s.lowPrice {
		s.lowPrice = s.currentPrice
	}

	tickVolume := int64(10 + s.rng.Intn(40))
	s.totalVolume += tickVolume
	s.totalOrders += uint64(s.rng.IntRange(1, 3))
	if s.rng.Float64() < 0.2 {
		s.marketOrders++
	} else {
		s.limitOrders++
	}

	var trade *TradeData
	if s.rng.Float64() < 1.0/3.0 {
		t := s.GenerateTrade(s.currentPrice, nowMs)
		trade = &t
	}

	completed := s.bars.Update(s.currentPrice, tickVolume, nowMs)
	book := orderbook.Regenerate(s.rng, s.currentPrice, s.config.Spread, s.config.Sentiment)

	frame := Frame{
		Orderbook:        book,
		Stats:            s.snapshotStats(nowMs),
		Price:            PricePoint{TimestampMs: nowMs, Price: s.currentPrice, Volume: tickVolume},
		CurrentCandles:   s.bars.CurrentCandles(),
		CompletedCandles: completed,
		Trade:            trade,
	}
	return frame, true
}

// Stats returns a point-in-time snapshot of session statistics, usable
// both by the per-tick Frame and by the read-only introspection API.
func (s *State) Stats(nowMs int64) Stats { return s.snapshotStats(nowMs) }

func (s *State) snapshotStats(nowMs int64) Stats {
	marketPct := 0.0
	if total := s.marketOrders + s.limitOrders; total > 0 {
		marketPct = float64(s.marketOrders) / float64(total) * 100
	}

	return Stats{
		Symbol:                     s.config.Symbol,
		CurrentPrice:               s.currentPrice,
		OpenPrice:                  s.openPrice,
		HighPrice:                  s.highPrice,
		LowPrice:                   s.lowPrice,
		TotalOrders:                s.totalOrders,
		TotalTrades:                s.totalTrades,
		TotalVolume:                s.totalVolume,
		MarketOrderPct:             marketPct,
		Sentiment:                  s.config.Sentiment,
		Intensity:                  s.config.Intensity,
		Spread:                     s.config.Spread,
		Speed:                      s.config.Speed,
		Paused:                     s.paused,
		NewsShockEnabled:           s.shock.State() == market.Active,
		NewsShockCooldown:          s.shock.State() == market.Cooldown,
		NewsShockCooldownRemaining: s.shock.CooldownRemainingSec(nowMs),
		NewsShockActiveRemaining:   s.shock.ActiveRemainingSec(nowMs),
	}
}

// EffectiveIntervalMs returns the dispatcher cadence implied by speed.
func (s *State) EffectiveIntervalMs() int64 {
	return int64(100.0 / s.config.Speed)
}

// CandleSnapshot exposes the candle manager for getCandles replies.
func (s *State) CandleSnapshot(tf int) (completed []candle.Candle, current *candle.Candle, ok bool) {
	return s.bars.HistorySnapshot(tf)
}
