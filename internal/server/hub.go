package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingEvery  = 45 * time.Second
	wsClientSize = 16
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

type wsMessage struct {
	Type string            `json:"type"`
	Data *types.ScanReport `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	out  chan wsMessage
	done chan struct{}
}

// Hub broadcasts every scan report to connected websocket clients. A client that cannot
// keep up misses reports rather than stalling the engine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	last    *types.ScanReport
}

var _ interfaces.SignalSink = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

func (h *Hub) Name() string { return "websocket" }

func (h *Hub) Publish(ctx context.Context, report *types.ScanReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = report
	dropped := 0
	for c := range h.clients {
		select {
		case c.out <- wsMessage{Type: "report", Data: report}:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		logger.Debug(ctx, "Slow websocket clients skipped a report", "dropped", dropped)
	}
	return nil
}

// Clients is the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams reports until the client goes away.
// The latest report, if any, is sent first.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	cl := &wsClient{conn: conn, out: make(chan wsMessage, wsClientSize), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	if h.last != nil {
		cl.out <- wsMessage{Type: "report", Data: h.last}
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
		close(cl.done)
	}()

	go cl.writeLoop()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (cl *wsClient) writeLoop() {
	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()
	for {
		select {
		case m := <-cl.out:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := cl.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ping.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			return
		}
	}
}
