// Package dispatcher runs the single scheduler loop that advances every
// registered session at its own effective cadence and pushes the
// resulting tick frame onto its outbound queue.
package dispatcher

import (
	"context"
	"log"
	"time"

	"github.com/riverbend/marketsim/internal/command"
	"github.com/riverbend/marketsim/internal/registry"
	"github.com/riverbend/marketsim/internal/session"
	"github.com/riverbend/marketsim/internal/tickencoder"
)

// auditJournal is the narrow slice of persist.Journal the dispatcher
// needs; kept as an interface so tests can run without Mongo wired up.
type auditJournal interface {
	RecordTrade(sessionId uint32, symbol string, tradeId uint64, price float64, quantity int, side string, nowMs int64)
	RecordCandle(sessionId uint32, symbol string, timeframe int, periodStartMs int64, open, high, low, close float64, volume int64)
}

// Dispatcher wakes on a fixed base period and walks the registry,
// advancing each running, unpaused, due session exactly once per wake.
type Dispatcher struct {
	registry *registry.Registry
	period   time.Duration
	logger   *log.Logger
	journal  auditJournal

	now func() int64
}

// New creates a Dispatcher driving reg at the given base period.
// journal may be a nil interface value, in which case no audit trail
// is written; callers must hold it as an interface type (never a
// concrete *persist.Journal) so "no audit trail" is a genuine nil,
// not a non-nil interface wrapping a typed nil pointer.
func New(reg *registry.Registry, period time.Duration, logger *log.Logger, journal auditJournal) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		period:   period,
		logger:   logger,
		journal:  journal,
		now:      nowMs,
	}
}

func nowMs() int64 { return time.Now().UnixNano() / int64(time.Millisecond) }

// Run blocks, waking every period, until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Dispatcher) tick() {
	now := d.now()
	d.registry.ForEach(func(id uint32, e *registry.Entry) {
		d.advanceOne(id, e, now)
	})
}

// advanceOne advances a single session, containing any panic from
// advance() to this session alone: the dispatcher marks it stopped,
// emits a close frame, and moves on.
func (d *Dispatcher) advanceOne(id uint32, e *registry.Entry, now int64) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("session %d: advance panicked: %v", id, r)
			e.Session.SetRunning(false)
			e.Enqueue(command.TimeoutFrame("session terminated after an internal error"))
		}
	}()

	if !e.Session.Running() {
		return
	}
	if now-e.Session.LastUpdateMs() < e.Session.EffectiveIntervalMs() {
		return
	}
	e.Session.SetLastUpdateMs(now)

	frame, ok := e.Session.Advance(now)
	if !ok {
		return
	}

	encoded, err := tickencoder.EncodeTick(frame)
	if err != nil {
		d.logger.Printf("session %d: encode error: %v", id, err)
		return
	}
	e.Enqueue(encoded)

	d.recordAudit(id, frame)
}

// recordAudit pushes the frame's trade and any completed candles onto
// the audit journal. A no-op when no journal is configured.
func (d *Dispatcher) recordAudit(id uint32, frame session.Frame) {
	if d.journal == nil {
		return
	}
	symbol := frame.Stats.Symbol
	if frame.Trade != nil {
		t := frame.Trade
		d.journal.RecordTrade(id, symbol, t.Id, t.Price, t.Quantity, t.Side.String(), t.TimestampMs)
	}
	for _, c := range frame.CompletedCandles {
		bar := c.Candle
		d.journal.RecordCandle(id, symbol, c.Timeframe, bar.PeriodStartMs, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}
}
