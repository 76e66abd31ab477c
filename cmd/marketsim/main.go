// Command marketsim runs the multi-tenant real-time market simulator:
// a WebSocket server handing each connection its own SessionState,
// a single dispatcher advancing every session at its configured cadence,
// and an optional MongoDB-backed audit trail with local archival.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riverbend/marketsim/internal/api"
	"github.com/riverbend/marketsim/internal/archive"
	"github.com/riverbend/marketsim/internal/command"
	"github.com/riverbend/marketsim/internal/config"
	"github.com/riverbend/marketsim/internal/dispatcher"
	"github.com/riverbend/marketsim/internal/persist"
	"github.com/riverbend/marketsim/internal/registry"
	"github.com/riverbend/marketsim/internal/transport"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("marketsim starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Printf("PRNG seed: %d", cfg.Seed)

	reg := registry.New(cfg.SendBufferSize)

	var journal persist.Recorder
	var auditReader persist.AuditReader

	store, err := persist.NewStore(ctx, cfg.MongoURI)
	if err != nil {
		log.Printf("audit trail disabled: %v", err)
	} else {
		defer store.Close(context.Background())

		if err := store.Migrate(ctx); err != nil {
			log.Printf("audit trail disabled: migration failed: %v", err)
		} else {
			writer := persist.NewMongoAuditWriter(store.DB())
			journal = persist.NewJournal(writer, 4096, log.Default())
			go journal.Run(ctx)

			auditReader = persist.NewMongoAuditReader(store.DB())

			go persist.RunRetention(ctx, store, cfg.AuditRetentionDays)

			if cfg.ArchiveDir != "" {
				archiver := archive.New(store.DB(), cfg.ArchiveDir, cfg.ArchiveMaxGB, cfg.ArchiveIntervalHours, cfg.ArchiveAfterHours)
				go archiver.Run(ctx)
			}
		}
	}

	disp := dispatcher.New(reg, cfg.DispatcherPeriod, log.Default(), journal)
	go disp.Run(ctx)
	log.Printf("dispatcher running at period=%v", cfg.DispatcherPeriod)

	timeoutMs := cfg.SessionTimeout.Milliseconds()

	go func() {
		ticker := time.NewTicker(cfg.HousekeepingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UnixMilli()
				reg.EnforceTimeouts(now, timeoutMs, command.TimeoutFrame("session reached its maximum lifetime"))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.SummaryEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UnixMilli()
				reg.LogSummary(now, timeoutMs, log.Default())
			}
		}
	}()

	mux := http.NewServeMux()
	wsHandler := transport.Handler(reg, cfg.Subprotocol, cfg.Seed, log.Default())
	mux.HandleFunc("/ws", wsHandler)

	apiServer := api.NewServer(reg, auditReader)
	apiServer.Register(mux)

	// Any other plain HTTP request (platform idle-watchers, keep-alive
	// probes hitting "/" or an unrecognized path) gets the same 200 OK
	// health body the /ws handler returns for non-upgrade requests.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			wsHandler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.WSPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("WebSocket server listening on ws://%s/ws", addr)
	log.Printf("API: http://%s/api/sessions", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	log.Println("marketsim stopped")
}
