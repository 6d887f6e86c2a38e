package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/logging"
	"github.com/jakelevirne/Halloween2025/internal/show"
)

// Message types on the live event stream.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

const wsSendBufferSize = 256

// WSMessage is one frame on the event stream, in either direction.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload names the event types to start or stop receiving.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// inboundMessage defers payload decoding until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func encodeMessage(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}

// Hub fans show events out to stream clients. A client's channels are
// show event types such as prop.admitted.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one connected stream consumer.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

// CORS is enforced by middleware before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run waits for ctx and then drops every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("event stream client connected", "clients", n)
}

// Unregister removes a client. Its send channel is closed by whichever
// call actually removed it.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		close(c.send)
		h.logger.Debug("event stream client disconnected", "clients", n)
	}
}

// Record implements show.Sink.
func (h *Hub) Record(_ context.Context, ev show.Event) {
	h.Broadcast(string(ev.Type), ev)
}

// Broadcast queues payload for every client subscribed to channel. Slow
// clients lose messages rather than stall the show.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encodeMessage(WSMessage{Type: WSTypeEvent, EventType: channel, Payload: payload})
	if err != nil {
		h.logger.Error("encoding stream event", "channel", channel, "error", err)
		return
	}
	for _, c := range h.subscribers(channel) {
		c.trySend(data)
	}
}

// subscribers snapshots the clients on channel without holding the hub
// lock while client locks are taken.
func (h *Hub) subscribers(channel string) []*WSClient {
	h.mu.RLock()
	all := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	out := all[:0]
	for _, c := range all {
		if c.isSubscribed(channel) {
			out = append(out, c)
		}
	}
	return out
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
		delete(h.clients, c)
	}
}

// handleWebSocket upgrades to the event stream. ?channels=a,b subscribes
// up front.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("event stream upgrade failed", "error", err)
		return
	}

	c := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	c.subscribe(splitChannels(r.URL.Query().Get("channels")), true)
	s.hub.Register(c)

	ping, wait := streamTimings(s.wsCfg)
	go c.writeLoop(ping, wait)
	go c.readLoop(int64(s.wsCfg.MaxMessageSize), ping+wait)
}

func splitChannels(raw string) []string {
	var out []string
	for _, ch := range strings.Split(raw, ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

func streamTimings(cfg config.WebSocketConfig) (ping, wait time.Duration) {
	return time.Duration(cfg.PingInterval) * time.Second, time.Duration(cfg.PongTimeout) * time.Second
}

func (c *WSClient) readLoop(limit int64, idle time.Duration) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(idle)) }
	c.conn.SetReadLimit(limit)
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("event stream read failed", "error", err)
			}
			return
		}
		_ = extend("")
		c.handleMessage(data)
	}
}

func (c *WSClient) writeLoop(ping, wait time.Duration) {
	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ticker.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply("", WSTypeError, errorBody("invalid JSON message"))
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		var sub WSSubscribePayload
		if err := json.Unmarshal(msg.Payload, &sub); err != nil {
			c.reply(msg.ID, WSTypeError, errorBody("invalid subscription payload"))
			return
		}
		on := msg.Type == WSTypeSubscribe
		c.subscribe(sub.Channels, on)
		key := "unsubscribed"
		if on {
			key = "subscribed"
		}
		c.reply(msg.ID, WSTypeResponse, map[string][]string{key: sub.Channels})
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.reply(msg.ID, WSTypeError, errorBody("unknown message type: "+msg.Type))
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

func (c *WSClient) subscribe(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

func (c *WSClient) reply(id, typ string, payload any) {
	if data, err := encodeMessage(WSMessage{Type: typ, ID: id, Payload: payload}); err == nil {
		c.trySend(data)
	}
}

// trySend drops data if the buffer is full or the client already left.
func (c *WSClient) trySend(data []byte) {
	defer func() { _ = recover() }()
	select {
	case c.send <- data:
	default:
	}
}
