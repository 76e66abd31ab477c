package persist

import (
	"context"
	"log"
	"time"
)

// journalEntry is either a trade or a candle record queued for the
// audit trail; exactly one of the two pointers is set.
type journalEntry struct {
	trade  *TradeRecord
	candle *CandleRecord
}

// Recorder is the narrow write side of the audit trail the dispatcher
// depends on. Callers that may or may not have an audit store
// configured should hold a Recorder (never a *Journal) so that "no
// audit trail" is representable as a genuine nil interface rather than
// a typed nil pointer.
type Recorder interface {
	RecordTrade(sessionId uint32, symbol string, tradeId uint64, price float64, quantity int, side string, nowMs int64)
	RecordCandle(sessionId uint32, symbol string, timeframe int, periodStartMs int64, open, high, low, close float64, volume int64)
}

// Journal buffers audit-trail writes so the dispatcher's advance path
// never blocks on Mongo I/O. A full buffer drops the newest entry (the
// one being recorded); entries already queued are kept.
type Journal struct {
	writer  AuditWriter
	entries chan journalEntry
	logger  *log.Logger
}

// NewJournal creates a Journal with a bounded internal buffer.
func NewJournal(writer AuditWriter, bufferSize int, logger *log.Logger) *Journal {
	return &Journal{
		writer:  writer,
		entries: make(chan journalEntry, bufferSize),
		logger:  logger,
	}
}

// RecordTrade enqueues a trade for the audit trail, dropping it
// silently if the buffer is full.
func (j *Journal) RecordTrade(sessionId uint32, symbol string, tradeId uint64, price float64, quantity int, side string, nowMs int64) {
	rec := TradeRecord{
		SessionId: sessionId, TradeId: tradeId, Symbol: symbol,
		Price: price, Quantity: quantity, Side: side,
		TimestampMs: nowMs, RecordedAt: time.Now(),
	}
	select {
	case j.entries <- journalEntry{trade: &rec}:
	default:
	}
}

// RecordCandle enqueues a completed candle for the audit trail,
// dropping it silently if the buffer is full.
func (j *Journal) RecordCandle(sessionId uint32, symbol string, timeframe int, periodStartMs int64, open, high, low, close float64, volume int64) {
	rec := CandleRecord{
		SessionId: sessionId, Symbol: symbol, Timeframe: timeframe,
		PeriodStartMs: periodStartMs, Open: open, High: high, Low: low, Close: close,
		Volume: volume, RecordedAt: time.Now(),
	}
	select {
	case j.entries <- journalEntry{candle: &rec}:
	default:
	}
}

// Run drains the buffer, writing each entry through the AuditWriter,
// until ctx is canceled.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-j.entries:
			j.writeEntry(ctx, e)
		}
	}
}

func (j *Journal) writeEntry(ctx context.Context, e journalEntry) {
	var err error
	switch {
	case e.trade != nil:
		err = j.writer.WriteTrade(ctx, *e.trade)
	case e.candle != nil:
		err = j.writer.WriteCandle(ctx, *e.candle)
	}
	if err != nil {
		j.logger.Printf("audit journal write error: %v", err)
	}
}
