package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"auctionhouse/internal/shared/websocket"
)

func startHub(t *testing.T) *websocket.Hub {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func recvFrame(t *testing.T, c *websocket.Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed while waiting for a frame")
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func TestProcessMessageControlFlow(t *testing.T) {
	hub := startHub(t)
	h := NewAuctionWSHandler(hub)
	client := websocket.NewClient(hub, nil, "c1")
	hub.RegisterClient(client)

	userID := uuid.New()
	auctionID := uuid.New()

	auth := `{"type":"AUTH","payload":{"userId":"` + userID.String() + `"}}`
	h.processMessage(client, []byte(auth))
	hub.SendToUser(userID.String(), []byte("direct"))
	require.Equal(t, "direct", string(recvFrame(t, client)))

	join := `{"type":"JOIN_AUCTION","payload":{"auctionId":"` + auctionID.String() + `"}}`
	h.processMessage(client, []byte(join))
	hub.BroadcastToTopic(auctionID.String(), []byte("fanout"))
	require.Equal(t, "fanout", string(recvFrame(t, client)))

	leave := `{"type":"LEAVE_AUCTION","payload":{"auctionId":"` + auctionID.String() + `"}}`
	h.processMessage(client, []byte(leave))
	hub.BroadcastToTopic(auctionID.String(), []byte("missed"))
	// The fence shows the post-leave broadcast was already processed.
	hub.SendToUser(userID.String(), []byte("fence"))
	require.Equal(t, "fence", string(recvFrame(t, client)))
}

func TestProcessMessageRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{name: "malformed_json", frame: `{"type":`},
		{name: "unknown_type", frame: `{"type":"BUY_NOW","payload":{}}`},
		{name: "auth_without_user", frame: `{"type":"AUTH","payload":{}}`},
		{name: "join_without_auction", frame: `{"type":"JOIN_AUCTION","payload":{}}`},
		{name: "leave_without_auction", frame: `{"type":"LEAVE_AUCTION","payload":{}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hub := startHub(t)
			h := NewAuctionWSHandler(hub)
			client := websocket.NewClient(hub, nil, "c1")
			hub.RegisterClient(client)

			h.processMessage(client, []byte(tc.frame))

			var errMsg ServerErrorMessage
			require.NoError(t, json.Unmarshal(recvFrame(t, client), &errMsg))
			require.Equal(t, MessageTypeServerError, errMsg.Type)
			require.NotEmpty(t, errMsg.Payload.Error)
		})
	}
}

func TestListenForMessagesDispatchesInboundFrames(t *testing.T) {
	hub := startHub(t)
	h := NewAuctionWSHandler(hub)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.ListenForMessages(ctx)

	client := websocket.NewClient(hub, nil, "c1")
	hub.RegisterClient(client)

	userID := uuid.New()
	auth := `{"type":"AUTH","payload":{"userId":"` + userID.String() + `"}}`
	hub.InboundMessages <- &websocket.ClientMessage{Client: client, Data: []byte(auth)}

	require.Eventually(t, func() bool {
		hub.SendToUser(userID.String(), []byte("ping"))
		select {
		case data := <-client.Send:
			return string(data) == "ping"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
