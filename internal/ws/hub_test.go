package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breakshot/backend/internal/models"
)

func testClient(roomID, playerID string, buffer int) *Client {
	return &Client{roomID: roomID, playerID: playerID, send: make(chan []byte, buffer)}
}

func recvType(t *testing.T, c *Client) models.EventType {
	t.Helper()
	select {
	case data := <-c.send:
		var ev struct {
			Type models.EventType `json:"type"`
		}
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev.Type
	default:
		t.Fatal("no message buffered")
		return ""
	}
}

func TestPublishDeliversToRoomOnly(t *testing.T) {
	hub := NewHub()
	a1 := testClient("room-a", "p1", 4)
	a2 := testClient("room-a", "p2", 4)
	b1 := testClient("room-b", "p3", 4)
	hub.Subscribe(a1)
	hub.Subscribe(a2)
	hub.Subscribe(b1)

	hub.Publish("room-a", models.NewTurnChange(models.TurnChangePayload{CurrentPlayerID: "p1", TimeLeft: 150}))

	assert.Equal(t, models.EventTurnChange, recvType(t, a1))
	assert.Equal(t, models.EventTurnChange, recvType(t, a2))
	assert.Empty(t, b1.send)
}

func TestPublishPreservesOrder(t *testing.T) {
	hub := NewHub()
	c := testClient("room-a", "p1", 8)
	hub.Subscribe(c)

	hub.Publish("room-a", models.NewPlayerJoin(models.PlayerJoinPayload{}))
	hub.Publish("room-a", models.NewGameUpdate(models.GameUpdatePayload{}))
	hub.Publish("room-a", models.NewGameEnd(models.GameEndPayload{RoomID: "room-a"}))

	assert.Equal(t, models.EventPlayerJoin, recvType(t, c))
	assert.Equal(t, models.EventGameUpdate, recvType(t, c))
	assert.Equal(t, models.EventGameEnd, recvType(t, c))
}

func TestFullBufferDropsForThatClientOnly(t *testing.T) {
	hub := NewHub()
	slow := testClient("room-a", "slow", 1)
	fast := testClient("room-a", "fast", 8)
	hub.Subscribe(slow)
	hub.Subscribe(fast)

	for i := 0; i < 3; i++ {
		hub.Publish("room-a", models.NewGameUpdate(models.GameUpdatePayload{}))
	}

	assert.Len(t, slow.send, 1)
	assert.Len(t, fast.send, 3)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := testClient("room-a", "p1", 4)
	hub.Subscribe(c)
	hub.Unsubscribe(c)

	hub.Publish("room-a", models.NewGameUpdate(models.GameUpdatePayload{}))

	// Channel is closed and drained.
	_, open := <-c.send
	assert.False(t, open)

	// A second unsubscribe is a no-op.
	hub.Unsubscribe(c)
}

func TestReconnectReplacesClient(t *testing.T) {
	hub := NewHub()
	old := testClient("room-a", "p1", 4)
	hub.Subscribe(old)

	replacement := testClient("room-a", "p1", 4)
	hub.Subscribe(replacement)

	// The old client's channel is closed and it no longer receives.
	_, open := <-old.send
	assert.False(t, open)

	hub.Publish("room-a", models.NewGameUpdate(models.GameUpdatePayload{}))
	assert.Equal(t, models.EventGameUpdate, recvType(t, replacement))
}

func TestSendErrorAfterReconnectDoesNotPanic(t *testing.T) {
	hub := NewHub()
	old := testClient("room-a", "p1", 4)
	hub.Subscribe(old)

	replacement := testClient("room-a", "p1", 4)
	hub.Subscribe(replacement)

	// The old connection's read loop may still be finishing a message when
	// the hub tears it down; the error frame must be dropped, not sent on
	// the closed channel.
	assert.NotPanics(t, func() { old.sendError("it is not your turn") })
	assert.False(t, old.trySend([]byte("late")))

	// The replacement is unaffected.
	assert.True(t, replacement.trySend([]byte("ok")))
}
