package candle

import "testing"

func TestFirstUpdateOpensCandle(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 10, 500)
	_, current, ok := m.HistorySnapshot(1)
	if !ok || current == nil {
		t.Fatal("expected an in-progress 1s candle")
	}
	if current.Open != 100.00 || current.High != 100.00 || current.Low != 100.00 || current.Close != 100.00 {
		t.Fatalf("fresh candle should be flat at open price, got %+v", current)
	}
}

func TestSamePeriodAccumulates(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 10, 0)
	m.Update(105.00, 20, 500)
	m.Update(95.00, 5, 900)
	_, current, _ := m.HistorySnapshot(1)
	if current.Open != 100.00 {
		t.Errorf("open = %f, want 100.00", current.Open)
	}
	if current.High != 105.00 {
		t.Errorf("high = %f, want 105.00", current.High)
	}
	if current.Low != 95.00 {
		t.Errorf("low = %f, want 95.00", current.Low)
	}
	if current.Close != 95.00 {
		t.Errorf("close = %f, want 95.00", current.Close)
	}
	if current.Volume != 35 {
		t.Errorf("volume = %d, want 35", current.Volume)
	}
}

func TestPeriodBoundaryCompletesCandle(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 10, 0)
	completed := m.Update(110.00, 10, 1000) // crosses 1s boundary

	found := false
	for _, c := range completed {
		if c.Timeframe == 1 {
			found = true
			if c.Candle.PeriodStartMs != 0 {
				t.Errorf("completed candle periodStartMs = %d, want 0", c.Candle.PeriodStartMs)
			}
		}
	}
	if !found {
		t.Fatal("expected a completed 1s candle at the boundary")
	}

	ring, current, _ := m.HistorySnapshot(1)
	if len(ring) != 1 {
		t.Fatalf("ring length = %d, want 1", len(ring))
	}
	if current.PeriodStartMs != 1000 {
		t.Errorf("new in-progress periodStartMs = %d, want 1000", current.PeriodStartMs)
	}
}

func TestPeriodStartAlignment(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 1, 5300)
	_, current, _ := m.HistorySnapshot(5)
	if current.PeriodStartMs != 5000 {
		t.Errorf("5s periodStartMs = %d, want 5000", current.PeriodStartMs)
	}
	if current.PeriodStartMs%5000 != 0 {
		t.Error("periodStartMs must be a multiple of the timeframe width")
	}
}

func TestRingCapAndEviction(t *testing.T) {
	m := NewManager()
	for i := 0; i < maxCompleted+10; i++ {
		m.Update(float64(100+i), 1, int64(i)*1000)
	}
	ring, _, _ := m.HistorySnapshot(1)
	if len(ring) != maxCompleted {
		t.Fatalf("ring length = %d, want %d", len(ring), maxCompleted)
	}
	for i := 1; i < len(ring); i++ {
		if ring[i].PeriodStartMs <= ring[i-1].PeriodStartMs {
			t.Fatal("ring must be strictly increasing in periodStartMs")
		}
	}
}

func TestInvariantLowHighBounds(t *testing.T) {
	m := NewManager()
	prices := []float64{100, 102, 98, 101, 99, 105, 97}
	for i, p := range prices {
		m.Update(p, 1, int64(i)*100)
	}
	_, current, _ := m.HistorySnapshot(1)
	lo, hi := current.Open, current.Open
	if current.Close < lo {
		lo = current.Close
	}
	if current.Close > hi {
		hi = current.Close
	}
	if current.Low > lo || current.High < hi {
		t.Fatalf("OHLC invariant violated: %+v", current)
	}
}

func TestResetClearsEverything(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 10, 0)
	m.Update(110.00, 10, 1000)
	m.Reset()
	ring, current, ok := m.HistorySnapshot(1)
	if !ok {
		t.Fatal("timeframe should still be configured after reset")
	}
	if len(ring) != 0 || current != nil {
		t.Fatal("reset should clear ring and in-progress candle")
	}
}

func TestUnknownTimeframe(t *testing.T) {
	m := NewManager()
	_, _, ok := m.HistorySnapshot(7)
	if ok {
		t.Fatal("timeframe 7 is not configured and should report ok=false")
	}
}

func TestCurrentCandlesCoversAllTimeframes(t *testing.T) {
	m := NewManager()
	m.Update(100.00, 1, 0)
	cur := m.CurrentCandles()
	for _, tf := range Timeframes {
		if _, ok := cur[tf]; !ok {
			t.Errorf("missing current candle for timeframe %d", tf)
		}
	}
}
