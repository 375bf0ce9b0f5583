package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"auctionhouse/internal/shared/logger"
	"auctionhouse/internal/shared/websocket"
)

var log = logger.GetLogger()

// AuctionWSHandler dispatches inbound auction-module frames: AUTH
// registers the connection for targeted events, JOIN_AUCTION and
// LEAVE_AUCTION manage topic subscriptions.
type AuctionWSHandler struct {
	hub *websocket.Hub
}

func NewAuctionWSHandler(hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{hub: hub}
}

// Register mounts the websocket endpoint on the app.
func (h *AuctionWSHandler) Register(ctx context.Context, app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", fiberws.New(func(conn *fiberws.Conn) {
		client := websocket.NewClient(h.hub, conn, uuid.NewString())
		h.hub.RegisterClient(client)
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}))
}

// ListenForMessages consumes the hub's inbound channel until ctx ends.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			h.processMessage(msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(client *websocket.Client, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}

	switch base.Type {
	case MessageTypeAuth:
		var msg AuthMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Payload.UserID == uuid.Nil {
			h.sendErrorToClient(client, "invalid auth message")
			return
		}
		h.hub.Authenticate(client, msg.Payload.UserID.String())

	case MessageTypeJoinAuction:
		var msg JoinAuctionMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Payload.AuctionID == uuid.Nil {
			h.sendErrorToClient(client, "invalid join message")
			return
		}
		h.hub.JoinTopic(client, msg.Payload.AuctionID.String())

	case MessageTypeLeaveAuction:
		var msg LeaveAuctionMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Payload.AuctionID == uuid.Nil {
			h.sendErrorToClient(client, "invalid leave message")
			return
		}
		h.hub.LeaveTopic(client, msg.Payload.AuctionID.String())

	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal ServerErrorMessage", zap.Error(err))
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full, could not send error", zap.String("clientID", client.ID))
	}
}
