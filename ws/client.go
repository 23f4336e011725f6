package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"anonchat/models"
	"anonchat/repository"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 300 * time.Second
	pingPeriod = 240 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer; accept any origin here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live WebSocket session bound to a room and username. It
// moves through connecting, active, closed; closed is entered only when
// the inbound side of the transport drops.
type Client struct {
	id       string
	hub      *Hub
	store    repository.Store
	logger   *slog.Logger
	conn     *websocket.Conn
	send     chan []byte
	room     string
	username string
}

// ServeWS upgrades the request and runs the session: register with the
// hub, replay history to this connection, announce the join to everyone
// else, then process inbound messages until the connection drops.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, store repository.Store, logger *slog.Logger, room, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "room", room, "username", username, "error", err)
		return
	}

	c := &Client{
		id:       uuid.NewString(),
		hub:      hub,
		store:    store,
		logger:   logger,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		room:     room,
		username: username,
	}

	c.hub.Register(c)
	go c.writePump()

	if err := c.replayHistory(r.Context()); err != nil {
		c.logger.Error("history replay failed", "room", room, "username", username, "error", err)
	}
	c.announce(frameUserJoined, c)

	c.readPump(r.Context())
}

// replayHistory queues the room's backlog to this connection only, as a
// single history frame, before any live traffic can be queued behind it.
func (c *Client) replayHistory(ctx context.Context) error {
	msgs, err := c.store.ListMessages(ctx, c.room)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	payload, err := json.Marshal(historyFrame{Type: frameHistory, Messages: msgs})
	if err != nil {
		return err
	}
	c.enqueue(payload)
	return nil
}

// announce broadcasts a presence frame to the room, excluding the given
// connection.
func (c *Client) announce(kind string, exclude *Client) {
	payload, err := json.Marshal(presenceFrame{Type: kind, Username: c.username, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	c.hub.Broadcast(payload, c.room, exclude)
}

// readPump processes inbound frames strictly in arrival order: persist,
// then broadcast, then read the next frame. On disconnect it unregisters
// and announces the departure to the remaining connections.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.announce(frameUserLeft, nil)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket read error", "room", c.room, "username", c.username, "error", err)
			}
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(raw, &in); err != nil {
			c.logger.Warn("discarding malformed frame", "room", c.room, "username", c.username, "error", err)
			continue
		}
		c.handleInbound(ctx, in)
	}
}

// handleInbound persists one chat message and fans it out to the whole
// room. The sender is included so it sees its own message echoed with the
// server-assigned timestamp and ID.
func (c *Client) handleInbound(ctx context.Context, in inboundFrame) {
	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	msg := &models.Message{
		RoomName:    c.room,
		Username:    c.username,
		MessageType: msgType,
		Content:     in.Content,
		Timestamp:   time.Now().UTC(),
		ReplyTo:     in.ReplyTo,
	}
	if err := c.store.InsertMessage(ctx, msg); err != nil {
		c.logger.Error("failed to persist message", "room", c.room, "username", c.username, "error", err)
		return
	}

	payload, err := json.Marshal(newMessageFrame(msg))
	if err != nil {
		c.logger.Error("failed to encode message frame", "error", err)
		return
	}
	c.hub.Broadcast(payload, c.room, nil)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn("websocket write error", "room", c.room, "username", c.username, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue hands a payload to the write pump without blocking. It reports
// false when the connection's buffer is full or its channel is already
// closed.
func (c *Client) enqueue(payload []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}
