package persist

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates idempotent indexes on the audit-trail collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		collection string
		model      mongo.IndexModel
	}

	indexes := []idx{
		{
			collection: "audit_trades",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "trade_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "audit_trades",
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "timestamp_ms", Value: -1}},
			},
		},
		{
			collection: "audit_candles",
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "session_id", Value: 1},
					{Key: "timeframe", Value: 1},
					{Key: "period_start_ms", Value: 1},
				},
			},
		},
	}

	for _, i := range indexes {
		_, err := db.Collection(i.collection).Indexes().CreateOne(ctx, i.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", i.collection, err)
		}
	}

	log.Println("MongoDB audit-trail indexes ensured")
	return nil
}
