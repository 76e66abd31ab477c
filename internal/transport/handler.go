// Package transport adapts SessionRegistry and the command parser onto
// gorilla/websocket connections: one accept loop per connection, a
// receive loop that feeds commands to internal/command, and a send
// pump that drains the session's outbound queue.
package transport

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riverbend/marketsim/internal/command"
	"github.com/riverbend/marketsim/internal/registry"
	"github.com/riverbend/marketsim/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendPumpPeriod = 20 * time.Millisecond
)

// Handler creates the HTTP handler for WebSocket upgrades and health
// checks on the same port. A plain (non-upgrade) HTTP request gets a
// 200 OK status body, satisfying platform idle-watchers; anything else
// is treated as a WebSocket handshake.
func Handler(reg *registry.Registry, subprotocol string, seed int64, logger *log.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		Subprotocols:    []string{subprotocol},
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !websocket.IsWebSocketUpgrade(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("websocket upgrade error: %v", err)
			return
		}

		cfg := session.Config{Symbol: "SIM", Speed: 1.0}
		id := reg.NextId()
		base := seed
		if base == 0 {
			base = time.Now().UnixNano()
		}
		s := session.New(id, cfg, base+int64(id))
		e := reg.Insert(s, r.RemoteAddr, nowMs())

		go writePump(conn, e, logger)
		go readPump(conn, e, reg, logger)
	}
}

func nowMs() int64 { return time.Now().UnixNano() / int64(time.Millisecond) }

func readPump(conn *websocket.Conn, e *registry.Entry, reg *registry.Registry, logger *log.Logger) {
	defer func() {
		reg.Remove(e.Session.Id)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Printf("session %d read error: %v", e.Session.Id, err)
			}
			return
		}
		e.RecordInbound(len(message))
		command.Apply(e, message, nowMs())
	}
}

func writePump(conn *websocket.Conn, e *registry.Entry, logger *log.Logger) {
	ticker := time.NewTicker(pingPeriod)
	drain := time.NewTicker(sendPumpPeriod)
	defer func() {
		ticker.Stop()
		drain.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-drain.C:
			msgs := e.Drain()
			for _, m := range msgs {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, m); err != nil {
					return
				}
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

