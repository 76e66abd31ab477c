package persist

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RunRetention periodically deletes audit-trail records older than the
// retention period. Blocks until ctx is cancelled. Pass retentionDays
// <= 0 to disable.
func RunRetention(ctx context.Context, store *Store, retentionDays int) {
	if retentionDays <= 0 {
		log.Println("audit retention disabled (keep forever)")
		return
	}

	interval := 1 * time.Hour
	log.Printf("audit retention: pruning records older than %d days every %v", retentionDays, interval)

	prune(ctx, store, retentionDays)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune(ctx, store, retentionDays)
		}
	}
}

func prune(ctx context.Context, store *Store, retentionDays int) {
	cutoffMs := time.Now().AddDate(0, 0, -retentionDays).UnixMilli()

	tradesResult, err := store.db.Collection("audit_trades").DeleteMany(ctx, bson.M{
		"timestamp_ms": bson.M{"$lt": cutoffMs},
	})
	if err != nil {
		log.Printf("audit retention prune error (trades): %v", err)
	} else if tradesResult.DeletedCount > 0 {
		log.Printf("audit retention: pruned %d trade records", tradesResult.DeletedCount)
	}

	candlesResult, err := store.db.Collection("audit_candles").DeleteMany(ctx, bson.M{
		"period_start_ms": bson.M{"$lt": cutoffMs},
	})
	if err != nil {
		log.Printf("audit retention prune error (candles): %v", err)
	} else if candlesResult.DeletedCount > 0 {
		log.Printf("audit retention: pruned %d candle records", candlesResult.DeletedCount)
	}
}
