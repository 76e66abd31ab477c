package tickencoder

import (
	"encoding/json"
	"testing"

	"github.com/riverbend/marketsim/internal/candle"
	"github.com/riverbend/marketsim/internal/market"
	"github.com/riverbend/marketsim/internal/orderbook"
	"github.com/riverbend/marketsim/internal/session"
)

func sampleFrame() session.Frame {
	bids := make([]orderbook.Level, 15)
	asks := make([]orderbook.Level, 15)
	for i := range bids {
		bids[i] = orderbook.Level{Price: 179.95 - float64(i)*0.05, Quantity: 100}
		asks[i] = orderbook.Level{Price: 180.05 + float64(i)*0.05, Quantity: 100}
	}
	return session.Frame{
		Orderbook: orderbook.Snapshot{Bids: bids, Asks: asks, BestBid: 179.95, BestAsk: 180.05, Spread: 0.10},
		Stats: session.Stats{
			Symbol: "AAPL", CurrentPrice: 180.00, OpenPrice: 180.00, HighPrice: 180.00, LowPrice: 180.00,
			Sentiment: market.Neutral, Intensity: market.Normal, Spread: 0.10, Speed: 1.0,
		},
		Price:          session.PricePoint{TimestampMs: 1000, Price: 180.00, Volume: 20},
		CurrentCandles: map[int]candle.Candle{1: {PeriodStartMs: 1000, Open: 180, High: 180, Low: 180, Close: 180, Volume: 20}},
	}
}

func TestEncodeTickEnvelope(t *testing.T) {
	b, err := EncodeTick(sampleFrame())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["type"] != "tick" {
		t.Fatalf("type = %v, want tick", out["type"])
	}
}

func TestEncodeTickNullTradeAndCompletedCandles(t *testing.T) {
	b, _ := EncodeTick(sampleFrame())
	var out map[string]any
	json.Unmarshal(b, &out)
	data := out["data"].(map[string]any)
	if data["trade"] != nil {
		t.Fatal("trade should serialize as null when absent")
	}
	if data["completedCandles"] != nil {
		t.Fatal("completedCandles should serialize as null when empty")
	}
}

func TestEncodeTickTradePresent(t *testing.T) {
	f := sampleFrame()
	trade := session.TradeData{Id: 1000001, Price: 180.05, Quantity: 42, Side: market.Buy, TimestampMs: 1000}
	f.Trade = &trade
	b, _ := EncodeTick(f)
	var out map[string]any
	json.Unmarshal(b, &out)
	data := out["data"].(map[string]any)
	tr := data["trade"].(map[string]any)
	if tr["side"] != "BUY" {
		t.Fatalf("side = %v, want BUY", tr["side"])
	}
}

func TestPriceTwoDecimalPrecision(t *testing.T) {
	b, _ := EncodeTick(sampleFrame())
	var raw map[string]json.RawMessage
	json.Unmarshal(b, &raw)
	var data map[string]json.RawMessage
	json.Unmarshal(raw["data"], &data)
	var stats map[string]json.RawMessage
	json.Unmarshal(data["stats"], &stats)
	if string(stats["currentPrice"]) != "180.00" {
		t.Fatalf("currentPrice = %s, want 180.00", stats["currentPrice"])
	}
}

func TestOrderbookLevelCounts(t *testing.T) {
	b, _ := EncodeTick(sampleFrame())
	var out map[string]any
	json.Unmarshal(b, &out)
	data := out["data"].(map[string]any)
	book := data["orderbook"].(map[string]any)
	bids := book["bids"].([]any)
	asks := book["asks"].([]any)
	if len(bids) != 15 || len(asks) != 15 {
		t.Fatalf("got %d bids, %d asks, want 15 each", len(bids), len(asks))
	}
}
