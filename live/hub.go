// Package live is the realtime fan-out layer: one room per match, any
// number of scorekeepers and viewers per room, match state pushed to every
// subscriber after each accepted operation.
package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is the envelope every outbound frame uses.
type Message struct {
	Type    string      `json:"type"` // MATCH_UPDATE, TIMER_UPDATE, ERROR
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

const (
	TypeMatchUpdate = "MATCH_UPDATE"
	TypeTimerUpdate = "TIMER_UPDATE"
	TypeError       = "ERROR"
)

// Broadcaster is the narrow contract the coordinator needs from the hub.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Hub owns the subscriber sets. Joins are synchronous through Join (the
// Register channel feeds it), removal goes through the Run loop; broadcasts
// take a read lock on the room map.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Join(client)

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.closeSend()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Info("client left room",
						slog.String("room", client.Room),
						slog.String("client", client.ID))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join adds client to its room before returning. The websocket handler joins
// the client first and reads the snapshot after, so a broadcast racing with
// the join is either queued for the client or superseded by the snapshot,
// never lost.
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[client.Room]; !ok {
		h.rooms[client.Room] = make(map[*Client]bool)
	}
	h.rooms[client.Room][client] = true
	h.logger.Info("client joined room",
		slog.String("room", client.Room),
		slog.String("client", client.ID),
		slog.Int("subscribers", len(h.rooms[client.Room])))
}

// BroadcastToRoom sends message to every subscriber of roomID. A subscriber
// whose send buffer is full is skipped rather than blocking the fan-out.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.trySend(messageBytes)
	}
}

// MatchRoom names the room for a match id; every layer that touches match
// rooms goes through this.
func MatchRoom(matchID int) string {
	return fmt.Sprintf("match_%d", matchID)
}

// RoomSize reports the current subscriber count of a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
