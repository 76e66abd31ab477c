// Package candle maintains multi-timeframe OHLCV aggregation with bounded
// retention, the way a real charting backend accumulates bars from a
// raw tick stream.
package candle

import (
	"encoding/json"
	"fmt"
)

// Timeframes are the fixed set of bar widths, in seconds, every session
// aggregates concurrently.
var Timeframes = []int{1, 5, 30, 60, 300}

// maxCompleted is the retention cap per timeframe; oldest bars are
// evicted first once the ring fills.
const maxCompleted = 500

// Candle is one OHLCV bar.
type Candle struct {
	PeriodStartMs int64
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        int64
}

// ToMap renders c as the lowercase wire shape shared by every reply
// that embeds a candle: the tick frame's currentCandles/
// completedCandles (internal/tickencoder) and the candleHistory reply
// (internal/command). Keeping this in one place keeps the two in sync.
func (c Candle) ToMap() map[string]any {
	return map[string]any{
		"periodStartMs": c.PeriodStartMs,
		"open":          wirePrice(c.Open),
		"high":          wirePrice(c.High),
		"low":           wirePrice(c.Low),
		"close":         wirePrice(c.Close),
		"volume":        c.Volume,
	}
}

// wirePrice renders a float at fixed two-decimal precision as a JSON
// number, not a string.
func wirePrice(v float64) json.Number {
	return json.Number(fmt.Sprintf("%.2f", v))
}

// Completed pairs a finished candle with the timeframe it belongs to.
type Completed struct {
	Timeframe int
	Candle    Candle
}

type timeframeState struct {
	current   *Candle
	completed []Candle
}

// Manager aggregates a single session's price ticks into bars across
// Timeframes, keeping a bounded history per timeframe.
type Manager struct {
	states map[int]*timeframeState
}

// NewManager creates an empty CandleManager.
func NewManager() *Manager {
	m := &Manager{states: make(map[int]*timeframeState, len(Timeframes))}
	for _, tf := range Timeframes {
		m.states[tf] = &timeframeState{}
	}
	return m
}

// Update folds one price/volume observation into every timeframe's
// in-progress candle, returning any candles that closed out as a result.
func (m *Manager) Update(price float64, volume int64, nowMs int64) []Completed {
	var out []Completed

	for _, tf := range Timeframes {
		st := m.states[tf]
		windowMs := int64(tf) * 1000
		periodStart := (nowMs / windowMs) * windowMs

		switch {
		case st.current == nil:
			st.current = &Candle{
				PeriodStartMs: periodStart,
				Open:          price,
				High:          price,
				Low:           price,
				Close:         price,
				Volume:        volume,
			}

		case st.current.PeriodStartMs == periodStart:
			if price > st.current.High {
				st.current.High = price
			}
			if price < st.current.Low {
				st.current.Low = price
			}
			st.current.Close = price
			st.current.Volume += volume

		default:
			finished := *st.current
			st.completed = appendBounded(st.completed, finished)
			out = append(out, Completed{Timeframe: tf, Candle: finished})

			st.current = &Candle{
				PeriodStartMs: periodStart,
				Open:          price,
				High:          price,
				Low:           price,
				Close:         price,
				Volume:        volume,
			}
		}
	}

	return out
}

// appendBounded appends c, evicting the oldest entry once len exceeds
// maxCompleted.
func appendBounded(ring []Candle, c Candle) []Candle {
	ring = append(ring, c)
	if len(ring) > maxCompleted {
		ring = ring[len(ring)-maxCompleted:]
	}
	return ring
}

// HistorySnapshot returns the completed ring for timeframe tf in
// chronological order, plus the in-progress candle if one is open.
// ok is false if tf is not a configured timeframe.
func (m *Manager) HistorySnapshot(tf int) (completed []Candle, current *Candle, ok bool) {
	st, found := m.states[tf]
	if !found {
		return nil, nil, false
	}
	out := make([]Candle, len(st.completed))
	copy(out, st.completed)
	if st.current == nil {
		return out, nil, true
	}
	cur := *st.current
	return out, &cur, true
}

// CurrentCandles returns a snapshot of every timeframe's in-progress
// candle, keyed by timeframe. A timeframe with no activity yet is
// omitted.
func (m *Manager) CurrentCandles() map[int]Candle {
	out := make(map[int]Candle, len(Timeframes))
	for _, tf := range Timeframes {
		if st := m.states[tf]; st.current != nil {
			out[tf] = *st.current
		}
	}
	return out
}

// Reset clears every ring and every in-progress candle.
func (m *Manager) Reset() {
	for _, tf := range Timeframes {
		m.states[tf] = &timeframeState{}
	}
}
