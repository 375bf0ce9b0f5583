package websocket

import "github.com/google/uuid"

// MessageType identifies a websocket frame.
type MessageType string

const (
	// Client -> server control messages.
	MessageTypeAuth         MessageType = "AUTH"
	MessageTypeJoinAuction  MessageType = "JOIN_AUCTION"
	MessageTypeLeaveAuction MessageType = "LEAVE_AUCTION"

	MessageTypeServerError MessageType = "SERVER_ERROR"
)

// BaseMessage carries the type discriminator shared by all frames.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// AuthMessage binds this connection to a user identity for targeted
// events such as OUTBID.
type AuthMessage struct {
	BaseMessage
	Payload struct {
		UserID uuid.UUID `json:"userId"`
	} `json:"payload"`
}

// JoinAuctionMessage subscribes the connection to one auction's topic.
type JoinAuctionMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID `json:"auctionId"`
	} `json:"payload"`
}

// LeaveAuctionMessage unsubscribes the connection from a topic.
type LeaveAuctionMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID `json:"auctionId"`
	} `json:"payload"`
}

// ServerEventMessage is the outbound envelope for domain events
// (NEW_BID, OUTBID, AUCTION_CLOSED) and errors.
type ServerEventMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServerErrorMessage reports a rejected client frame.
type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
