package persist

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

type fakeWriter struct {
	mu      sync.Mutex
	trades  []TradeRecord
	candles []CandleRecord
}

func (f *fakeWriter) WriteTrade(ctx context.Context, rec TradeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, rec)
	return nil
}

func (f *fakeWriter) WriteCandle(ctx context.Context, rec CandleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candles = append(f.candles, rec)
	return nil
}

func (f *fakeWriter) tradeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trades)
}

func TestJournalRecordsTradeAsynchronously(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 10, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.RecordTrade(1, "AAPL", 1000001, 180.05, 42, "BUY", 1000)

	deadline := time.Now().Add(time.Second)
	for w.tradeCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if w.tradeCount() != 1 {
		t.Fatal("expected the journal to write through the queued trade")
	}
}

func TestJournalDropsWhenBufferFull(t *testing.T) {
	w := &fakeWriter{}
	// Unstarted journal (no Run goroutine): buffer of 1 fills immediately.
	j := NewJournal(w, 1, log.New(io.Discard, "", 0))
	j.RecordTrade(1, "AAPL", 1, 100, 1, "BUY", 0)
	j.RecordTrade(1, "AAPL", 2, 100, 1, "BUY", 0) // dropped, buffer full
	if len(j.entries) != 1 {
		t.Fatalf("expected buffer to stay at capacity 1, got %d", len(j.entries))
	}
}
