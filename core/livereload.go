package core

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const ReloadPath = "/__dayview_reload"

const (
	reloadWriteWait  = time.Second
	reloadPingPeriod = 30 * time.Second
)

var reloadMessage = []byte("reload")

// Reloader pushes a reload message to every open dev-mode browser tab.
type Reloader interface {
	Handler(http.ResponseWriter, *http.Request)
	BroadcastReload()
	Close()
}

type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ReloadHub tracks browser connections. Each connection has one writer
// goroutine; send is closed exactly once, by remove or Close.
type ReloadHub struct {
	mu       sync.Mutex
	clients  map[*reloadClient]struct{}
	closed   bool
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

var NewReloader = func(logger *slog.Logger) Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadHub{
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *ReloadHub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("reload upgrade failed", "err", err)
		return
	}

	c := &reloadClient{conn: conn, send: make(chan []byte, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)
}

// readLoop only exists to notice the browser going away.
func (h *ReloadHub) readLoop(c *reloadClient) {
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *ReloadHub) writeLoop(c *reloadClient) {
	ticker := time.NewTicker(reloadPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(reloadWriteWait))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(reloadWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(reloadWriteWait)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *ReloadHub) remove(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// BroadcastReload never blocks: a tab that already has a reload queued
// does not need a second one.
func (h *ReloadHub) BroadcastReload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Debug("broadcasting reload", "clients", len(h.clients))
	for c := range h.clients {
		select {
		case c.send <- reloadMessage:
		default:
		}
	}
}

// Close sends a going-away frame to every tab and refuses new connections.
// Hijacked connections are invisible to http.Server.Shutdown.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *ReloadHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
