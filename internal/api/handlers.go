package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/riverbend/marketsim/internal/persist"
	"github.com/riverbend/marketsim/internal/registry"
)

// sessionSummary is the wire shape for one row of GET /api/sessions.
type sessionSummary struct {
	SessionId     uint32  `json:"sessionId"`
	Symbol        string  `json:"symbol"`
	Running       bool    `json:"running"`
	Paused        bool    `json:"paused"`
	CurrentPrice  float64 `json:"currentPrice"`
	TotalTrades   uint64  `json:"totalTrades"`
	ConnectedAtMs int64   `json:"connectedAtMs"`
	MalformedIn   uint64  `json:"malformedIn"`
}

// handleSessions lists every currently connected session.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	nowMs := time.Now().UnixMilli()

	summaries := make([]sessionSummary, 0, s.registry.Len())
	s.registry.ForEach(func(id uint32, e *registry.Entry) {
		stats := e.Session.Stats(nowMs)
		summaries = append(summaries, sessionSummary{
			SessionId:     id,
			Symbol:        stats.Symbol,
			Running:       e.Session.Running(),
			Paused:        e.Session.Paused(),
			CurrentPrice:  stats.CurrentPrice,
			TotalTrades:   stats.TotalTrades,
			ConnectedAtMs: e.ConnectedAtMs,
			MalformedIn:   e.MalformedCount(),
		})
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// tradeView is the wire shape for one row of GET /api/sessions/{id}/trades.
type tradeView struct {
	TradeId     uint64  `json:"tradeId"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Side        string  `json:"side"`
	TimestampMs int64   `json:"timestampMs"`
}

// handleSessionTrades returns recent audit-trail trades for one session,
// most recent first. Requires the audit store to be configured.
func (s *Server) handleSessionTrades(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "audit trail not configured")
		return
	}

	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	sessionId := uint32(id64)

	if _, ok := s.registry.Get(sessionId); !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	records, err := s.reader.QueryTrades(r.Context(), persist.TradeHistoryFilter{
		SessionId: sessionId,
		Limit:     parseIntParam(r, "limit", 100),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query trade history failed")
		return
	}

	trades := make([]tradeView, 0, len(records))
	for _, rec := range records {
		trades = append(trades, tradeView{
			TradeId:     rec.TradeId,
			Symbol:      rec.Symbol,
			Price:       rec.Price,
			Quantity:    rec.Quantity,
			Side:        rec.Side,
			TimestampMs: rec.TimestampMs,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionId,
		"trades":    trades,
		"count":     len(trades),
	})
}
