package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FedericoSorianox/TorneoBJJ/live"
	"github.com/FedericoSorianox/TorneoBJJ/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the configured client URL before exposing
	// this outside development.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	matchService services.MatchService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, matchService services.MatchService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, matchService: matchService, logger: logger}
}

// ServeMatch upgrades the connection and joins the client to a match room.
// The current match state is pushed to the new client immediately so every
// subscriber starts from the same snapshot.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Unknown matches still get a proper HTTP status before the upgrade.
	if _, err := h.matchService.GetMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}

	room := live.MatchRoom(matchID)
	client := live.NewClient(uuid.NewString(), h.hub, conn, room, matchID, h.matchService, h.logger)

	// Join before reading the snapshot. A broadcast landing between the two
	// is queued for the client, and the snapshot is taken under the match
	// lock afterwards, so it is at least as fresh as anything the client
	// may have missed.
	h.hub.Join(client)

	go client.WritePump()
	go client.ReadPump()

	snapshot, err := h.matchService.Snapshot(r.Context(), matchID)
	if err != nil {
		h.logger.Error("failed to load join snapshot",
			slog.Int("match_id", matchID), slog.Any("error", err))
		client.SendMessage(live.Message{
			Type:    live.TypeError,
			Payload: map[string]string{"message": "failed to load match state"},
		})
		return
	}

	client.SendMessage(live.Message{
		Type:    live.TypeMatchUpdate,
		RoomID:  room,
		Payload: snapshot,
	})
}
