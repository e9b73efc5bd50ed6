package live

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, nil))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func waitForRoomSize(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached size %d", room, want)
}

func TestMatchRoomNaming(t *testing.T) {
	assert.Equal(t, "match_42", MatchRoom(42))
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger(t))
	go hub.Run()

	room := MatchRoom(1)
	client := NewClient("c1", hub, nil, room, 1, nil, testLogger(t))

	hub.Register <- client
	waitForRoomSize(t, hub, room, 1)

	hub.Unregister <- client
	waitForRoomSize(t, hub, room, 0)
}

func TestJoinIsSynchronous(t *testing.T) {
	// No Run loop: Join must take effect before it returns, so a broadcast
	// issued right after a join always reaches the new client.
	hub := NewHub(testLogger(t))
	room := MatchRoom(5)
	client := NewClient("c1", hub, nil, room, 5, nil, testLogger(t))

	hub.Join(client)
	require.Equal(t, 1, hub.RoomSize(room))

	hub.BroadcastToRoom(room, Message{Type: TypeMatchUpdate, RoomID: room})
	select {
	case <-client.Send:
	default:
		t.Fatal("joined client missed an immediate broadcast")
	}
}

func TestBroadcastToRoomReachesOnlyThatRoom(t *testing.T) {
	hub := NewHub(testLogger(t))
	go hub.Run()

	roomA := MatchRoom(1)
	roomB := MatchRoom(2)
	inRoom := NewClient("a", hub, nil, roomA, 1, nil, testLogger(t))
	elsewhere := NewClient("b", hub, nil, roomB, 2, nil, testLogger(t))

	hub.Register <- inRoom
	hub.Register <- elsewhere
	waitForRoomSize(t, hub, roomA, 1)
	waitForRoomSize(t, hub, roomB, 1)

	hub.BroadcastToRoom(roomA, Message{Type: TypeMatchUpdate, RoomID: roomA, Payload: "state"})

	select {
	case data := <-inRoom.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, TypeMatchUpdate, msg.Type)
		assert.Equal(t, roomA, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("room member never received the broadcast")
	}

	select {
	case <-elsewhere.Send:
		t.Fatal("client outside the room received the broadcast")
	default:
	}
}

func TestBroadcastToEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub(testLogger(t))
	go hub.Run()

	// Must not panic or block.
	hub.BroadcastToRoom(MatchRoom(99), Message{Type: TypeMatchUpdate})
}
