package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"auctionhouse/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	opChanSize     = 256
	clientSendSize = 32
)

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opJoin
	opLeave
	opAuth
	opBroadcast
	opDirect
)

// hubOp is one registry or delivery operation. Every operation travels
// on the same channel, so operations issued for one connection are
// applied in the order they were enqueued; an auth or join can never
// overtake the registration that preceded it.
type hubOp struct {
	kind   opKind
	client *Client
	topic  string
	userID string
	data   []byte
}

// Hub owns every piece of connection state: the set of live clients,
// topic subscriptions (one topic per auction), and the ephemeral
// user-to-connection registry used for targeted delivery. All maps are
// touched only by the Run goroutine; the registry is not durable and a
// user with no live connection simply misses targeted events.
type Hub struct {
	clients map[*Client]bool
	topics  map[string]map[*Client]bool
	users   map[string]*Client

	ops chan hubOp

	// InboundMessages carries client frames to module handlers.
	InboundMessages chan *ClientMessage
}

// Client is one websocket connection. userID and topics are owned by
// the hub goroutine.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	ID   string

	userID string
	topics map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, clientSendSize),
		ID:     id,
		topics: make(map[string]bool),
	}
}

// ClientMessage wraps an inbound frame with its sender.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[*Client]bool),
		topics:          make(map[string]map[*Client]bool),
		users:           make(map[string]*Client),
		ops:             make(chan hubOp, opChanSize),
		InboundMessages: make(chan *ClientMessage, opChanSize),
	}
}

// Run processes hub operations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("WebSocket hub shutting down")
			return
		case op := <-h.ops:
			h.handle(op)
		}
	}
}

func (h *Hub) handle(op hubOp) {
	switch op.kind {
	case opRegister:
		h.clients[op.client] = true
		log.Info("Client registered",
			zap.String("clientID", op.client.ID),
			zap.Int("total_clients", len(h.clients)),
		)

	case opUnregister:
		h.drop(op.client)

	case opJoin:
		if !h.clients[op.client] {
			return
		}
		if _, ok := h.topics[op.topic]; !ok {
			h.topics[op.topic] = make(map[*Client]bool)
		}
		h.topics[op.topic][op.client] = true
		op.client.topics[op.topic] = true
		log.Debug("Client joined topic",
			zap.String("clientID", op.client.ID),
			zap.String("topic", op.topic),
		)

	case opLeave:
		h.removeFromTopic(op.client, op.topic)

	case opAuth:
		if !h.clients[op.client] {
			return
		}
		// Newest authenticated connection wins; one live connection
		// per user identity.
		op.client.userID = op.userID
		h.users[op.userID] = op.client
		log.Info("Client authenticated",
			zap.String("clientID", op.client.ID),
			zap.String("userID", op.userID),
		)

	case opBroadcast:
		for client := range h.topics[op.topic] {
			select {
			case client.Send <- op.data:
			default:
				// Client can't keep up, disconnect it.
				log.Warn("Client send buffer full, dropping client",
					zap.String("clientID", client.ID),
					zap.String("topic", op.topic),
				)
				h.drop(client)
			}
		}

	case opDirect:
		client, ok := h.users[op.userID]
		if !ok {
			log.Debug("No live connection for user, dropping direct message",
				zap.String("userID", op.userID),
			)
			return
		}
		select {
		case client.Send <- op.data:
		default:
			log.Warn("Client send buffer full, dropping client",
				zap.String("clientID", client.ID),
				zap.String("userID", op.userID),
			)
			h.drop(client)
		}
	}
}

// drop removes a client from every registry and closes its send
// channel. Safe to call more than once per client.
func (h *Hub) drop(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	for topic := range client.topics {
		h.removeFromTopic(client, topic)
	}
	if client.userID != "" && h.users[client.userID] == client {
		delete(h.users, client.userID)
	}
	close(client.Send)
	log.Info("Client unregistered",
		zap.String("clientID", client.ID),
		zap.Int("total_clients", len(h.clients)),
	)
}

func (h *Hub) removeFromTopic(client *Client, topic string) {
	delete(client.topics, topic)
	clients, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.topics, topic)
	}
}

func (h *Hub) enqueue(op hubOp) bool {
	select {
	case h.ops <- op:
		return true
	default:
		return false
	}
}

// RegisterClient queues a new client for registration.
func (h *Hub) RegisterClient(client *Client) {
	if !h.enqueue(hubOp{kind: opRegister, client: client}) {
		log.Error("Hub op queue full, closing client", zap.String("clientID", client.ID))
		_ = client.Conn.Close()
	}
}

// UnregisterClient queues a client for removal.
func (h *Hub) UnregisterClient(client *Client) {
	if !h.enqueue(hubOp{kind: opUnregister, client: client}) {
		log.Error("Hub op queue full, unregister lost", zap.String("clientID", client.ID))
	}
}

// JoinTopic subscribes a client to a topic.
func (h *Hub) JoinTopic(client *Client, topic string) {
	if !h.enqueue(hubOp{kind: opJoin, client: client, topic: topic}) {
		log.Error("Hub op queue full, join lost",
			zap.String("clientID", client.ID), zap.String("topic", topic))
	}
}

// LeaveTopic unsubscribes a client from a topic.
func (h *Hub) LeaveTopic(client *Client, topic string) {
	if !h.enqueue(hubOp{kind: opLeave, client: client, topic: topic}) {
		log.Error("Hub op queue full, leave lost",
			zap.String("clientID", client.ID), zap.String("topic", topic))
	}
}

// Authenticate binds a client connection to a user identity so the
// user can receive targeted events.
func (h *Hub) Authenticate(client *Client, userID string) {
	if !h.enqueue(hubOp{kind: opAuth, client: client, userID: userID}) {
		log.Error("Hub op queue full, auth lost", zap.String("clientID", client.ID))
	}
}

// BroadcastToTopic sends data to every subscriber of a topic.
func (h *Hub) BroadcastToTopic(topic string, data []byte) {
	if !h.enqueue(hubOp{kind: opBroadcast, topic: topic, data: data}) {
		log.Error("Hub op queue full, message dropped", zap.String("topic", topic))
	}
}

// SendToUser sends data to the user's live connection, best-effort.
func (h *Hub) SendToUser(userID string, data []byte) {
	if !h.enqueue(hubOp{kind: opDirect, userID: userID, data: data}) {
		log.Error("Hub op queue full, message dropped", zap.String("userID", userID))
	}
}

// ReadPump reads frames from the connection and forwards them to the
// hub's inbound channel. Runs as one goroutine per client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
			}
			return
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Inbound channel full, dropping message",
				zap.String("clientID", c.ID),
			)
		}
	}
}

// WritePump writes queued messages and keepalive pings to the
// connection. Runs as one goroutine per client; it is the only writer.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub dropped this client.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("WebSocket write error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
