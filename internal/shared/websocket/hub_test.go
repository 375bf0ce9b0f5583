package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func recvFrame(t *testing.T, c *Client) []byte {
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

func requireNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func TestHubAuthRightAfterRegisterIsNotLost(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, "a")
	b := NewClient(hub, nil, "b")

	// Auth follows registration with no pause in between; the hub must
	// apply them in enqueue order.
	hub.RegisterClient(a)
	hub.Authenticate(a, "user-1")
	hub.RegisterClient(b)
	hub.Authenticate(b, "user-1")

	hub.SendToUser("user-1", []byte("hello"))

	// Newest authenticated connection wins the registry slot.
	require.Equal(t, "hello", string(recvFrame(t, b)))
	requireNoFrame(t, a)
}

func TestHubDisconnectRemovesUserRegistration(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, "a")

	hub.RegisterClient(a)
	hub.Authenticate(a, "user-1")
	hub.UnregisterClient(a)
	hub.SendToUser("user-1", []byte("late"))

	// The drop closes the send channel; the late message goes nowhere.
	select {
	case _, ok := <-a.Send:
		require.False(t, ok, "send channel must be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
}

func TestHubTopicJoinLeaveFanout(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, "a")
	b := NewClient(hub, nil, "b")
	c := NewClient(hub, nil, "c")

	for _, client := range []*Client{a, b, c} {
		hub.RegisterClient(client)
	}
	hub.JoinTopic(a, "auction-1")
	hub.JoinTopic(b, "auction-1")
	hub.Authenticate(b, "user-b")

	hub.BroadcastToTopic("auction-1", []byte("first"))
	require.Equal(t, "first", string(recvFrame(t, a)))
	require.Equal(t, "first", string(recvFrame(t, b)))

	hub.LeaveTopic(b, "auction-1")
	hub.BroadcastToTopic("auction-1", []byte("second"))
	// The fence proves the post-leave broadcast was already processed
	// when b's next frame arrives.
	hub.SendToUser("user-b", []byte("fence"))

	require.Equal(t, "second", string(recvFrame(t, a)))
	require.Equal(t, "fence", string(recvFrame(t, b)))
	requireNoFrame(t, c)
}

func TestHubOpsForUnknownClientAreIgnored(t *testing.T) {
	hub := startHub(t)
	ghost := NewClient(hub, nil, "ghost")

	// Never registered: join and auth must not leak into the registry.
	hub.JoinTopic(ghost, "auction-1")
	hub.Authenticate(ghost, "user-g")

	hub.BroadcastToTopic("auction-1", []byte("topic"))
	hub.SendToUser("user-g", []byte("direct"))

	// Register a witness and fan out once more to flush the queue.
	witness := NewClient(hub, nil, "w")
	hub.RegisterClient(witness)
	hub.JoinTopic(witness, "auction-1")
	hub.BroadcastToTopic("auction-1", []byte("flush"))

	require.Equal(t, "flush", string(recvFrame(t, witness)))
	requireNoFrame(t, ghost)
}

func TestHubDropsClientThatCannotKeepUp(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, "a")
	hub.RegisterClient(a)
	hub.JoinTopic(a, "auction-1")

	// One more broadcast than the send buffer holds forces the drop.
	for i := 0; i <= clientSendSize; i++ {
		hub.BroadcastToTopic("auction-1", []byte("m"))
	}

	for i := 0; i < clientSendSize; i++ {
		recvFrame(t, a)
	}
	select {
	case _, ok := <-a.Send:
		require.False(t, ok, "send channel must be closed after the drop")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
}
