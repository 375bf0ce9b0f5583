package websocket

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auctionhouse/internal/auction/domain"
	"auctionhouse/internal/shared/websocket"
)

// HubBroadcaster adapts the shared hub to domain.Broadcaster. Topic
// names are auction IDs; targeted delivery goes through the hub's
// user registry.
type HubBroadcaster struct {
	hub *websocket.Hub
}

func NewHubBroadcaster(hub *websocket.Hub) *HubBroadcaster {
	return &HubBroadcaster{hub: hub}
}

func (b *HubBroadcaster) BroadcastNewBid(auctionID uuid.UUID, ev domain.NewBidEvent) {
	b.toTopic(auctionID, domain.EventNewBid, ev)
}

func (b *HubBroadcaster) NotifyOutbid(userID uuid.UUID, ev domain.OutbidEvent) {
	data, ok := b.marshal(domain.EventOutbid, ev)
	if !ok {
		return
	}
	b.hub.SendToUser(userID.String(), data)
}

func (b *HubBroadcaster) BroadcastAuctionClosed(auctionID uuid.UUID, ev domain.AuctionClosedEvent) {
	b.toTopic(auctionID, domain.EventAuctionClosed, ev)
}

func (b *HubBroadcaster) toTopic(auctionID uuid.UUID, event string, payload any) {
	data, ok := b.marshal(event, payload)
	if !ok {
		return
	}
	b.hub.BroadcastToTopic(auctionID.String(), data)
}

func (b *HubBroadcaster) marshal(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(ServerEventMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error("failed to marshal server event", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return data, true
}
