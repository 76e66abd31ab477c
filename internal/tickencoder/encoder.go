// Package tickencoder turns one session.Frame into the wire-format
// tick frame clients receive. It is pure with respect to session
// state: it only ever reads the Frame handed to it.
package tickencoder

import (
	"encoding/json"
	"fmt"

	"github.com/riverbend/marketsim/internal/candle"
	"github.com/riverbend/marketsim/internal/orderbook"
	"github.com/riverbend/marketsim/internal/session"
)

// EncodeTick builds the `{"type":"tick","data":{...}}` envelope for one
// advance() frame.
func EncodeTick(f session.Frame) ([]byte, error) {
	envelope := map[string]any{
		"type": "tick",
		"data": map[string]any{
			"orderbook":        bookToMap(f.Orderbook),
			"stats":            statsToMap(f.Stats),
			"price":            priceToMap(f.Price),
			"currentCandles":   currentCandlesToMap(f.CurrentCandles),
			"completedCandles": completedCandlesToValue(f.CompletedCandles),
			"trade":            tradeToValue(f.Trade),
		},
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode tick: %w", err)
	}
	return b, nil
}

func bookToMap(b orderbook.Snapshot) map[string]any {
	return map[string]any{
		"bids":    levelsToValue(b.Bids),
		"asks":    levelsToValue(b.Asks),
		"bestBid": price(b.BestBid),
		"bestAsk": price(b.BestAsk),
		"spread":  price(b.Spread),
	}
}

func levelsToValue(levels []orderbook.Level) []map[string]any {
	out := make([]map[string]any, len(levels))
	for i, l := range levels {
		out[i] = map[string]any{"price": price(l.Price), "quantity": l.Quantity}
	}
	return out
}

func statsToMap(s session.Stats) map[string]any {
	return map[string]any{
		"symbol":                     s.Symbol,
		"currentPrice":               price(s.CurrentPrice),
		"openPrice":                  price(s.OpenPrice),
		"highPrice":                  price(s.HighPrice),
		"lowPrice":                   price(s.LowPrice),
		"totalOrders":                s.TotalOrders,
		"totalTrades":                s.TotalTrades,
		"totalVolume":                s.TotalVolume,
		"marketOrderPct":             s.MarketOrderPct,
		"sentiment":                  s.Sentiment.String(),
		"intensity":                  s.Intensity.String(),
		"spread":                     price(s.Spread),
		"speed":                      s.Speed,
		"paused":                     s.Paused,
		"newsShockEnabled":           s.NewsShockEnabled,
		"newsShockCooldown":          s.NewsShockCooldown,
		"newsShockCooldownRemaining": s.NewsShockCooldownRemaining,
		"newsShockActiveRemaining":   s.NewsShockActiveRemaining,
	}
}

func priceToMap(p session.PricePoint) map[string]any {
	return map[string]any{
		"timestamp": p.TimestampMs,
		"price":     price(p.Price),
		"volume":    p.Volume,
	}
}

func currentCandlesToMap(candles map[int]candle.Candle) map[string]any {
	out := make(map[string]any, len(candles))
	for tf, c := range candles {
		out[fmt.Sprintf("%d", tf)] = c.ToMap()
	}
	return out
}

func completedCandlesToValue(completed []candle.Completed) any {
	if len(completed) == 0 {
		return nil
	}
	out := make([]map[string]any, len(completed))
	for i, c := range completed {
		out[i] = map[string]any{
			"timeframe": c.Timeframe,
			"candle":    c.Candle.ToMap(),
		}
	}
	return out
}

func tradeToValue(t *session.TradeData) any {
	if t == nil {
		return nil
	}
	return map[string]any{
		"id":        t.Id,
		"price":     price(t.Price),
		"quantity":  t.Quantity,
		"side":      t.Side.String(),
		"timestamp": t.TimestampMs,
	}
}

// price renders a float at fixed two-decimal precision as a JSON
// number, not a string: fmt.Sprintf avoids binary-float noise like
// 180.00000000000003 that direct float64 marshaling can produce.
func price(v float64) json.Number {
	return json.Number(fmt.Sprintf("%.2f", v))
}
