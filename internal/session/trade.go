package session

import "github.com/riverbend/marketsim/internal/market"

// maxTradesPerSession caps the session-local counter feeding TradeId
// generation. The spec inherits this limit from its source rather than
// widening the id; sessions are not expected to run long enough to hit it.
const maxTradesPerSession = 1_000_000

// TradeData is one synthesized trade emitted alongside a tick.
type TradeData struct {
	Id          uint64
	Price       float64
	Quantity    int
	Side        market.Side
	TimestampMs int64
}

// tradeId forms a cross-session-unique id from a session id and that
// session's local trade counter. Counters above maxTradesPerSession wrap
// and may collide, matching the limit this scheme inherits.
func tradeId(sessionId uint32, counter uint64) uint64 {
	return uint64(sessionId)*maxTradesPerSession + (counter % maxTradesPerSession)
}
