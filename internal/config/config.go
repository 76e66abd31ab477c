package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all simulator configuration.
type Config struct {
	// Server
	WSPort int
	Host   string

	// Database
	MongoURI string

	// Audit trail retention
	AuditRetentionDays int

	// Simulation
	Seed              int64
	DispatcherPeriod  time.Duration
	HousekeepingEvery time.Duration
	SummaryEvery      time.Duration
	SessionTimeout    time.Duration
	SendBufferSize    int
	Subprotocol       string

	// Local gzipped-NDJSON archiver (opt-in: only active when ArchiveDir is set)
	ArchiveDir           string
	ArchiveMaxGB         int
	ArchiveIntervalHours int
	ArchiveAfterHours    int
}

func Load() *Config {
	c := &Config{}

	flag.IntVar(&c.WSPort, "port", envInt("PORT", 8080), "WebSocket server port")
	flag.StringVar(&c.Host, "host", envStr("HOST", "0.0.0.0"), "Listen host")

	flag.StringVar(&c.MongoURI, "mongo-uri", envStr("MONGO_URI", "mongodb://localhost:27017/marketsim"), "MongoDB connection URI for the audit trail")
	flag.IntVar(&c.AuditRetentionDays, "audit-retention", envInt("AUDIT_RETENTION_DAYS", 7), "Audit trail retention in days (0 = keep forever)")

	flag.StringVar(&c.ArchiveDir, "archive-dir", envStr("ARCHIVE_DIR", ""), "Local directory for gzipped audit-trail archives (empty = disabled)")
	flag.IntVar(&c.ArchiveMaxGB, "archive-max-gb", envInt("ARCHIVE_MAX_GB", 5), "Total archive size cap in GB before oldest files are rotated out")
	flag.IntVar(&c.ArchiveIntervalHours, "archive-interval", envInt("ARCHIVE_INTERVAL_HOURS", 6), "Hours between archive runs")
	flag.IntVar(&c.ArchiveAfterHours, "archive-after", envInt("ARCHIVE_AFTER_HOURS", 24), "Archive records older than this many hours")

	flag.Int64Var(&c.Seed, "seed", envInt64("MARKETSIM_SEED", 0), "PRNG seed (0 = random)")
	flag.IntVar(&c.SendBufferSize, "send-buffer", envInt("SEND_BUFFER", 100), "Per-session outbound queue size")
	flag.StringVar(&c.Subprotocol, "subprotocol", envStr("WS_SUBPROTOCOL", "lws-minimal"), "Negotiated WebSocket subprotocol")

	flag.Parse()

	c.DispatcherPeriod = 50 * time.Millisecond
	c.HousekeepingEvery = 10 * time.Second
	c.SummaryEvery = 30 * time.Second
	c.SessionTimeout = 60 * time.Minute

	return c
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
