package render

import (
	"errors"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/state"
)

// ErrBroadcasterClosed is returned when a client connects after Close.
var ErrBroadcasterClosed = errors.New("broadcaster closed")

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBacklog  = 8
	maxClientBytes = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FrameMessage is the payload pushed to WebSocket clients.
type FrameMessage struct {
	Type  string      `json:"type"`
	Frame state.Frame `json:"frame"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Broadcaster pushes every rendered frame to connected WebSocket clients.
// Slow clients drop frames rather than stall the tick.
type Broadcaster struct {
	logger  *logging.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	dropped uint64
	last    []byte
}

// NewBroadcaster creates a broadcaster. logger and m may be nil.
func NewBroadcaster(logger *logging.Logger, m *metrics.Collector) *Broadcaster {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Broadcaster{
		logger:  logger,
		metrics: m,
		clients: make(map[*client]struct{}),
	}
}

// Render encodes f once and queues it for every client.
func (b *Broadcaster) Render(f state.Frame) error {
	msg, err := json.Marshal(FrameMessage{Type: "frame", Frame: f})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.last = msg
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			b.dropped++
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Dropped returns how many frames were skipped for slow clients.
func (b *Broadcaster) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBacklog)}
	if err := b.add(c); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	b.logger.Info("websocket client connected: %s", r.RemoteAddr)

	go b.writePump(c)
	b.readPump(c)
}

func (b *Broadcaster) add(c *client) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBroadcasterClosed
	}
	b.clients[c] = struct{}{}
	if b.last != nil {
		c.send <- b.last
	}
	b.metrics.AddWebsocketConnections(1)
	return nil
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	delete(b.clients, c)
	b.mu.Unlock()
	if ok {
		b.metrics.AddWebsocketConnections(-1)
	}
	c.close()
}

// readPump discards client messages and detects disconnects.
func (b *Broadcaster) readPump(c *client) {
	defer b.remove(c)
	c.conn.SetReadLimit(maxClientBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Debug("websocket read: %v", err)
			}
			return
		}
	}
}

func (b *Broadcaster) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				b.logger.Debug("websocket write: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client. Further frames are ignored.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[*client]struct{})
	b.mu.Unlock()

	for _, c := range clients {
		b.metrics.AddWebsocketConnections(-1)
		c.close()
	}
	return nil
}
