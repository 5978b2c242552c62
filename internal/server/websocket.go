package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/muurk/netscope/internal/codec"
	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Messages queued per client before it is considered too slow
	clientBuffer = 16
)

// Message types pushed to websocket clients
const (
	MessageSnapshot = "snapshot"
	MessageChange   = "change"
)

// Message is one websocket push. Every message carries a full snapshot so a
// client never has to apply deltas.
type Message struct {
	Type     string          `json:"type"`
	Change   *ChangeEvent    `json:"change,omitempty"`
	Snapshot *codec.Snapshot `json:"snapshot"`
}

// ChangeEvent is the wire form of a discovery.Change
type ChangeEvent struct {
	Kind     string              `json:"kind"`
	Identity *discovery.Identity `json:"identity,omitempty"`
	DeviceID string              `json:"device_id,omitempty"`
	Category string              `json:"category,omitempty"`
	Error    string              `json:"error,omitempty"`
	Time     time.Time           `json:"time"`
}

// NewSnapshotMessage wraps a snapshot sent on connect
func NewSnapshotMessage(snapshot *codec.Snapshot) *Message {
	return &Message{Type: MessageSnapshot, Snapshot: snapshot}
}

// NewChangeMessage wraps a change and the snapshot taken after it
func NewChangeMessage(change discovery.Change, snapshot *codec.Snapshot) *Message {
	ev := &ChangeEvent{
		Kind:     change.Kind.String(),
		Category: change.Category,
		Time:     change.Time,
	}
	if change.IsDevice() {
		id := change.Identity
		ev.Identity = &id
		if change.DeviceID != uuid.Nil {
			ev.DeviceID = change.DeviceID.String()
		}
	}
	if change.Err != nil {
		ev.Error = change.Err.Error()
	}
	return &Message{Type: MessageChange, Change: ev, Snapshot: snapshot}
}

// encodeMessage renders a message as a JSON text frame or a CBOR binary frame
func encodeMessage(msg *Message, binary bool) (int, []byte, error) {
	if binary {
		data, err := codec.MarshalCBOR(msg)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(msg)
	return websocket.TextMessage, data, err
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers on other origins may watch the feed; it is read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one websocket connection
type client struct {
	conn       *websocket.Conn
	remoteAddr string
	binary     bool
	send       chan *Message
	done       chan struct{}
	closeOnce  sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Hub tracks websocket clients and fans messages out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast queues a message for every client. A client whose queue is full
// skips the message; the next one carries a complete snapshot anyway.
func (h *Hub) Broadcast(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logging.Debug("WebSocket client is slow, skipping message",
				zap.String("remote_addr", c.remoteAddr),
			)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

// register adds the client, queueing first() as its first message. first
// runs under the hub lock, so a change is either part of that message or
// broadcast to the client after it.
func (h *Hub) register(c *client, first func() *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if first != nil {
		c.send <- first()
	}
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// handleWebSocket upgrades the request, sends the current snapshot and then
// one message per change until the client goes away
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		binary:     strings.EqualFold(r.URL.Query().Get("format"), "cbor"),
		send:       make(chan *Message, clientBuffer),
		done:       make(chan struct{}),
	}
	logging.LogConnection(c.remoteAddr, "websocket_upgraded")

	s.hub.register(c, func() *Message {
		return NewSnapshotMessage(codec.Take(s.source))
	})

	go s.readPump(c)
	s.writePump(c)
}

// readPump discards client messages and notices disconnects
func (s *Server) readPump(c *client) {
	defer s.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Connection closed or error reading frame",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		logging.LogWebSocketMessage(c.remoteAddr, "received", msgType, data)
	}
}

// writePump sends queued messages and keepalive pings
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.hub.unregister(c)
		_ = c.conn.Close()
		logging.LogConnection(c.remoteAddr, "websocket_closed")
	}()

	for {
		select {
		case msg := <-c.send:
			msgType, data, err := encodeMessage(msg, c.binary)
			if err != nil {
				logging.Error("Failed to encode websocket message", zap.Error(err))
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(msgType, data); err != nil {
				logging.Info("Failed to send websocket message",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				return
			}
			logging.LogWebSocketMessage(c.remoteAddr, "sent", msgType, data)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
