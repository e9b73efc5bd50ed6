package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FedericoSorianox/TorneoBJJ/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	opTimeout      = 10 * time.Second
)

// Command is the inbound frame a scorekeeper sends over an established
// match connection. Joining is implicit in the connection itself.
type Command struct {
	Action string `json:"action"` // send_event | end_match | timer_action

	Event *models.MatchEvent `json:"event,omitempty"`

	WinnerID *int                 `json:"winner_id,omitempty"`
	Method   models.VictoryMethod `json:"method,omitempty"`

	TimerAction  string `json:"timer_action,omitempty"` // start | stop | sync
	TimerSeconds int    `json:"timer_seconds,omitempty"`
}

const (
	ActionSendEvent   = "send_event"
	ActionEndMatch    = "end_match"
	ActionTimerAction = "timer_action"
)

// MatchOperator executes match operations on behalf of connected clients.
// Implementations serialize per match and broadcast resulting state
// themselves; a returned error is delivered only to the issuing client.
type MatchOperator interface {
	SubmitEvent(ctx context.Context, matchID int, event models.MatchEvent) error
	EndMatch(ctx context.Context, matchID int, winnerID int, method models.VictoryMethod) error
	TimerAction(ctx context.Context, matchID int, action string, seconds int) error
}

// Client is one websocket subscriber of one match room.
type Client struct {
	ID      string
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Room    string
	MatchID int

	operator MatchOperator
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, room string, matchID int, operator MatchOperator, logger *slog.Logger) *Client {
	return &Client{
		ID:       id,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Room:     room,
		MatchID:  matchID,
		operator: operator,
		logger:   logger,
	}
}

func (c *Client) trySend(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- message:
	default:
		c.logger.Warn("client send buffer full, dropping frame",
			slog.String("room", c.Room), slog.String("client", c.ID))
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// SendMessage marshals and queues one envelope for this client only.
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal client message", slog.Any("error", err))
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(message string) {
	c.SendMessage(Message{Type: TypeError, Payload: map[string]string{"message": message}})
}

// ReadPump reads commands off the connection and dispatches them to the
// operator until the peer disconnects. Disconnection only removes the
// subscription; operations already submitted are not rolled back.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected websocket close",
					slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.sendError("malformed command")
			continue
		}
		c.dispatch(cmd)
	}
}

func (c *Client) dispatch(cmd Command) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var err error
	switch cmd.Action {
	case ActionSendEvent:
		if cmd.Event == nil {
			c.sendError("send_event requires an event")
			return
		}
		err = c.operator.SubmitEvent(ctx, c.MatchID, *cmd.Event)
	case ActionEndMatch:
		if cmd.WinnerID == nil {
			c.sendError("end_match requires winner_id")
			return
		}
		err = c.operator.EndMatch(ctx, c.MatchID, *cmd.WinnerID, cmd.Method)
	case ActionTimerAction:
		err = c.operator.TimerAction(ctx, c.MatchID, cmd.TimerAction, cmd.TimerSeconds)
	default:
		c.sendError("unknown action")
		return
	}

	if err != nil {
		c.logger.Warn("match operation rejected",
			slog.String("action", cmd.Action),
			slog.Int("match_id", c.MatchID),
			slog.Any("error", err))
		c.sendError(err.Error())
	}
}

// WritePump drains the send buffer onto the connection and keeps the peer
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything else already queued.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
