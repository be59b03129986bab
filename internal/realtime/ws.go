package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 256
)

// WSHandler upgrades /ws requests and bridges the websocket to the hub.
// Handshake parameters travel as query parameters: sessionId, role,
// joinToken. A failed handshake drops the socket without an error frame.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler returns the websocket endpoint for the hub.
func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Controllers and displays connect from arbitrary origins
			// (projector machines, phones); the join token is the gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := HandshakeParams{
		SessionID: r.URL.Query().Get("sessionId"),
		Role:      r.URL.Query().Get("role"),
		JoinToken: r.URL.Query().Get("joinToken"),
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	connID := uuid.New().String()
	client := newWSClient(connID, conn)
	go client.writePump()

	if _, err := h.hub.Connect(r.Context(), connID, client, params); err != nil {
		log.Printf("realtime: handshake refused: %v", err)
		client.close()
		return
	}

	h.readPump(r.Context(), client)
}

func (h *WSHandler) readPump(ctx context.Context, c *wsClient) {
	defer func() {
		h.hub.Disconnect(ctx, c.id)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(ctx, c, raw)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, c *wsClient, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(c, "Malformed message.")
		return
	}

	switch env.Type {
	case KindStatePatch:
		var msg StatePatchMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.sendError(c, "Malformed state patch.")
			return
		}
		h.report(c, h.hub.StatePatch(ctx, c.id, &msg))

	case KindLyricsPatch:
		var msg LyricsPatchMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.sendError(c, "Malformed lyrics patch.")
			return
		}
		h.report(c, h.hub.LyricsPatch(ctx, c.id, &msg))

	case KindHeartbeat:
		var req HeartbeatRequest
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				h.sendError(c, "Malformed heartbeat.")
				return
			}
		}
		reply, err := h.hub.Heartbeat(ctx, c.id, &req)
		if err != nil {
			h.report(c, err)
			return
		}
		_ = c.Send(KindHeartbeat, reply)

	default:
		h.sendError(c, "Unknown message type.")
	}
}

// report turns a hub error into an error frame: rejections carry their
// reason, anything else is logged and reported generically.
func (h *WSHandler) report(c *wsClient, err error) {
	if err == nil {
		return
	}
	var rej *RejectionError
	if errors.As(err, &rej) {
		h.sendError(c, rej.Reason)
		return
	}
	log.Printf("realtime: %v", err)
	h.sendError(c, "Internal server error.")
}

func (h *WSHandler) sendError(c *wsClient, reason string) {
	_ = c.Send(KindError, &ErrorPayload{Reason: reason})
}

// wsClient is one websocket connection with an ordered outbound queue. All
// writes funnel through writePump so frames never interleave.
type wsClient struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func newWSClient(id string, conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		closed: make(chan struct{}),
	}
}

// Send frames and queues one message. A full queue means the consumer
// stopped reading; the connection is closed rather than buffered without
// bound.
func (c *wsClient) Send(kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(&Envelope{Type: kind, Payload: body})
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return errors.New("connection closed")
	case c.send <- frame:
		return nil
	default:
		c.close()
		return errors.New("send queue full")
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
