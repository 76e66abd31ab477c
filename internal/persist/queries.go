package persist

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TradeRecord is one audit-trail entry for a synthesized trade.
type TradeRecord struct {
	SessionId   uint32    `bson:"session_id"`
	TradeId     uint64    `bson:"trade_id"`
	Symbol      string    `bson:"symbol"`
	Price       float64   `bson:"price"`
	Quantity    int       `bson:"quantity"`
	Side        string    `bson:"side"`
	TimestampMs int64     `bson:"timestamp_ms"`
	RecordedAt  time.Time `bson:"recorded_at"`
}

// CandleRecord is one audit-trail entry for a completed candle.
type CandleRecord struct {
	SessionId     uint32    `bson:"session_id"`
	Symbol        string    `bson:"symbol"`
	Timeframe     int       `bson:"timeframe"`
	PeriodStartMs int64     `bson:"period_start_ms"`
	Open          float64   `bson:"open"`
	High          float64   `bson:"high"`
	Low           float64   `bson:"low"`
	Close         float64   `bson:"close"`
	Volume        int64     `bson:"volume"`
	RecordedAt    time.Time `bson:"recorded_at"`
}

// AuditWriter is the write side of the audit trail: one insert per
// synthesized trade or completed candle. It is never read back into a
// live SessionState; see Store.
type AuditWriter interface {
	WriteTrade(ctx context.Context, rec TradeRecord) error
	WriteCandle(ctx context.Context, rec CandleRecord) error
}

// MongoAuditWriter implements AuditWriter against a mongo.Database.
type MongoAuditWriter struct {
	db *mongo.Database
}

// NewMongoAuditWriter creates a MongoAuditWriter.
func NewMongoAuditWriter(db *mongo.Database) *MongoAuditWriter {
	return &MongoAuditWriter{db: db}
}

func (w *MongoAuditWriter) WriteTrade(ctx context.Context, rec TradeRecord) error {
	if _, err := w.db.Collection("audit_trades").InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert audit trade: %w", err)
	}
	return nil
}

func (w *MongoAuditWriter) WriteCandle(ctx context.Context, rec CandleRecord) error {
	if _, err := w.db.Collection("audit_candles").InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert audit candle: %w", err)
	}
	return nil
}

// TradeHistoryFilter controls the introspection API's trade history query.
type TradeHistoryFilter struct {
	SessionId uint32
	Limit     int
}

// AuditReader is the narrow read side used only by the read-only
// introspection API (internal/api), never by a session on startup.
type AuditReader interface {
	QueryTrades(ctx context.Context, f TradeHistoryFilter) ([]TradeRecord, error)
}

// MongoAuditReader implements AuditReader against a mongo.Database.
type MongoAuditReader struct {
	db *mongo.Database
}

// NewMongoAuditReader creates a MongoAuditReader.
func NewMongoAuditReader(db *mongo.Database) *MongoAuditReader {
	return &MongoAuditReader{db: db}
}

func (r *MongoAuditReader) QueryTrades(ctx context.Context, f TradeHistoryFilter) ([]TradeRecord, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp_ms", Value: -1}}).
		SetLimit(int64(f.Limit))

	cursor, err := r.db.Collection("audit_trades").Find(ctx, bson.M{"session_id": f.SessionId}, opts)
	if err != nil {
		return nil, fmt.Errorf("query audit trades: %w", err)
	}
	defer cursor.Close(ctx)

	trades := []TradeRecord{}
	if err := cursor.All(ctx, &trades); err != nil {
		return nil, fmt.Errorf("decode audit trades: %w", err)
	}
	return trades, nil
}
