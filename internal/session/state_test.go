package session

import (
	"testing"

	"github.com/riverbend/marketsim/internal/market"
)

func newTestSession() *State {
	cfg := Config{Symbol: "AAPL", BasePrice: 180.00, Spread: 0.10, Sentiment: market.Neutral, Intensity: market.Normal, Speed: 1.0}
	return New(1, cfg, 42)
}

func TestNewSeatsBasePrice(t *testing.T) {
	s := newTestSession()
	if s.currentPrice != 180.00 || s.openPrice != 180.00 {
		t.Fatalf("new session should start flat at basePrice, got current=%f open=%f", s.currentPrice, s.openPrice)
	}
}

func TestAdvanceNoopWhenNotRunning(t *testing.T) {
	s := newTestSession()
	_, ok := s.Advance(1000)
	if ok {
		t.Fatal("advance should be a no-op before start")
	}
}

func TestAdvanceNoopWhenPaused(t *testing.T) {
	s := newTestSession()
	s.Start(s.Config())
	s.SetPaused(true)
	_, ok := s.Advance(1000)
	if ok {
		t.Fatal("advance should be a no-op while paused")
	}
}

func TestAdvanceProducesConsistentFrame(t *testing.T) {
	s := newTestSession()
	s.Start(s.Config())
	frame, ok := s.Advance(1000)
	if !ok {
		t.Fatal("expected advance to run")
	}
	if frame.Stats.CurrentPrice != frame.Price.Price {
		t.Fatalf("stats.currentPrice %f != price.price %f", frame.Stats.CurrentPrice, frame.Price.Price)
	}
	if len(frame.Orderbook.Bids) != 15 || len(frame.Orderbook.Asks) != 15 {
		t.Fatal("expected a full 15x15 orderbook")
	}
}

func TestHighLowBoundInvariant(t *testing.T) {
	s := newTestSession()
	s.Start(s.Config())
	for i := 0; i < 500; i++ {
		s.Advance(int64(i) * 100)
		if s.lowPrice > s.currentPrice || s.currentPrice > s.highPrice {
			t.Fatalf("invariant violated at tick %d: low=%f current=%f high=%f", i, s.lowPrice, s.currentPrice, s.highPrice)
		}
	}
}

func TestResetZeroesCountersAndPrices(t *testing.T) {
	s := newTestSession()
	s.Start(s.Config())
	for i := 0; i < 50; i++ {
		s.Advance(int64(i) * 100)
	}
	wasRunning := s.Running()
	s.Reset()
	if s.currentPrice != s.config.BasePrice || s.openPrice != s.config.BasePrice {
		t.Fatal("reset should re-seat all prices at basePrice")
	}
	if s.totalTrades != 0 || s.totalOrders != 0 || s.totalVolume != 0 {
		t.Fatal("reset should zero every counter")
	}
	if s.Running() != wasRunning {
		t.Fatal("reset must not change running")
	}
}

func TestResetIdempotent(t *testing.T) {
	s := newTestSession()
	s.Start(s.Config())
	s.Advance(100)
	s.Reset()
	after1 := *s
	s.Reset()
	after2 := *s
	if after1.currentPrice != after2.currentPrice || after1.totalTrades != after2.totalTrades {
		t.Fatal("reset(); reset() should equal reset()")
	}
}

func TestSetPausedIdempotent(t *testing.T) {
	s := newTestSession()
	s.SetPaused(true)
	s.SetPaused(true)
	if !s.Paused() {
		t.Fatal("expected paused to remain true")
	}
}

func TestSetSpreadClampsAndAligns(t *testing.T) {
	s := newTestSession()
	s.SetSpread(10.0)
	if s.config.Spread != maxSpread {
		t.Fatalf("spread = %f, want clamp to %f", s.config.Spread, maxSpread)
	}
	s.SetSpread(0.0)
	if s.config.Spread != minSpread {
		t.Fatalf("spread = %f, want clamp to %f", s.config.Spread, minSpread)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	s := newTestSession()
	s.SetSpeed(100.0)
	if s.config.Speed != maxSpeed {
		t.Fatalf("speed = %f, want clamp to %f", s.config.Speed, maxSpeed)
	}
	s.SetSpeed(-1.0)
	if s.config.Speed != minSpeed {
		t.Fatalf("speed = %f, want clamp to %f", s.config.Speed, minSpeed)
	}
}

func TestEffectiveIntervalMsBoundaries(t *testing.T) {
	s := newTestSession()
	s.SetSpeed(2.0)
	if got := s.EffectiveIntervalMs(); got != 50 {
		t.Errorf("interval at speed=2.0 = %d, want 50", got)
	}
	s.SetSpeed(0.25)
	if got := s.EffectiveIntervalMs(); got != 400 {
		t.Errorf("interval at speed=0.25 = %d, want 400", got)
	}
}

func TestGenerateTradeIncrementsCounters(t *testing.T) {
	s := newTestSession()
	before := s.totalTrades
	trade := s.GenerateTrade(180.00, 1000)
	if s.totalTrades != before+1 {
		t.Fatal("expected totalTrades to increment")
	}
	if trade.Side != market.Buy && trade.Side != market.Sell {
		t.Fatal("trade side must be BUY or SELL")
	}
}

func TestTradeIdsUniqueAcrossSessions(t *testing.T) {
	a := New(1, Config{Symbol: "AAPL", BasePrice: 180, Spread: 0.1, Speed: 1.0}, 1)
	b := New(2, Config{Symbol: "MSFT", BasePrice: 180, Spread: 0.1, Speed: 1.0}, 2)
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		ta := a.GenerateTrade(100, int64(i))
		tb := b.GenerateTrade(100, int64(i))
		if seen[ta.Id] {
			t.Fatal("duplicate trade id within session A")
		}
		seen[ta.Id] = true
		if ta.Id == tb.Id {
			t.Fatal("trade ids must differ across sessions")
		}
	}
}

func TestSymbolSanitization(t *testing.T) {
	cfg := Config{Symbol: "  aapl-longname ", BasePrice: 180, Spread: 0.1, Speed: 1.0}
	s := New(1, cfg, 1)
	if s.config.Symbol != "AAPL-L" {
		t.Fatalf("symbol = %q, want truncated/upper-cased AAPL-L", s.config.Symbol)
	}
}

func TestBasePriceClampedOutsideBounds(t *testing.T) {
	cfg := Config{Symbol: "X", BasePrice: 9999, Spread: 0.1, Speed: 1.0}
	s := New(1, cfg, 1)
	if s.config.BasePrice != maxBasePrice {
		t.Fatalf("basePrice = %f, want clamp to %f", s.config.BasePrice, maxBasePrice)
	}
}

// runTrendMoves takes seven regular price steps; the first pullback
// threshold is at least 8, so the trend counter ends at exactly 7.
func runTrendMoves(s *State) {
	for i := 0; i < 7; i++ {
		s.price.NextPrice(s.currentPrice, s.config.Sentiment, s.config.Intensity, false, nil)
	}
}

func TestSetSentimentChangeResetsTrendCounter(t *testing.T) {
	s := newTestSession()
	runTrendMoves(s)

	s.SetSentiment(market.Bearish)
	if s.price.MovesInTrend() != 0 {
		t.Fatalf("movesInTrend = %d, want 0 after a sentiment change", s.price.MovesInTrend())
	}
}

func TestSetSentimentNoChangeLeavesTrendCounter(t *testing.T) {
	s := newTestSession()
	runTrendMoves(s)

	s.SetSentiment(s.config.Sentiment)
	if s.price.MovesInTrend() != 7 {
		t.Fatalf("movesInTrend = %d, want unchanged at 7 when sentiment doesn't change", s.price.MovesInTrend())
	}
}
