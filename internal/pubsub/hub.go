package pubsub

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

const sendBuffer = 16

type Message struct {
	PollID string
	Data   []byte
}

// one subscriber connected via websocket
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	PollID string
}

// Hub fans results snapshots out to the subscribers of each poll. All maps
// are owned by the Run goroutine.
type Hub struct {
	Clients    map[string]map[*Client]bool
	Broadcast  chan *Message
	Register   chan *Client
	Unregister chan *Client

	done   chan struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Broadcast:  make(chan *Message),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, conn := range h.Clients {
			for c := range conn {
				close(c.Send)
			}
		}
		h.Clients = make(map[string]map[*Client]bool)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			conn := h.Clients[client.PollID]
			if conn == nil {
				conn = make(map[*Client]bool)
				h.Clients[client.PollID] = conn
			}
			conn[client] = true

		case client := <-h.Unregister:
			h.remove(client)

		case message := <-h.Broadcast:
			for c := range h.Clients[message.PollID] {
				select {
				case c.Send <- message.Data:
				default:
					// slow subscriber, drop it
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	conn := h.Clients[c.PollID]
	if _, ok := conn[c]; !ok {
		return
	}
	delete(conn, c)
	close(c.Send)
	if len(conn) == 0 {
		delete(h.Clients, c.PollID)
	}
}

// Publish queues data for every subscriber of pollID. It returns false
// once the hub has stopped.
func (h *Hub) Publish(ctx context.Context, pollID string, data []byte) bool {
	select {
	case h.Broadcast <- &Message{PollID: pollID, Data: data}:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Subscribe upgrades the request to a websocket and streams snapshots of
// pollID until the peer disconnects. The subscriber is registered before
// snapshot is called, so no broadcast between the two is lost; its result,
// when non-nil, is written first.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, pollID string, snapshot func(context.Context) ([]byte, error)) error {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		PollID: pollID,
	}

	select {
	case h.Register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return nil
	}

	ctx := r.Context()
	if snapshot != nil {
		if err := c.writeSnapshot(ctx, snapshot); err != nil {
			c.leave()
			return err
		}
	}

	go c.WritePump(ctx)
	c.ReadPump(ctx)
	return nil
}

func (c *Client) writeSnapshot(ctx context.Context, snapshot func(context.Context) ([]byte, error)) error {
	data, err := snapshot(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	return c.Conn.Write(ctx, websocket.MessageText, data)
}

func (c *Client) leave() {
	select {
	case c.Hub.Unregister <- c:
	case <-c.Hub.done:
	}
	c.Conn.Close(websocket.StatusInternalError, "")
}

// WritePump sends messages from the hub to the WebSocket connection
func (c *Client) WritePump(ctx context.Context) {
	defer c.Conn.Close(websocket.StatusNormalClosure, "")

	for m := range c.Send {
		if err := c.Conn.Write(ctx, websocket.MessageText, m); err != nil {
			c.Hub.logger.Debug("write to subscriber failed", "poll_id", c.PollID, "error", err)
			return
		}
	}
}

// ReadPump waits for the peer to go away. Subscribers never send data.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, _, err := c.Conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				c.Hub.logger.Debug("subscriber disconnected", "poll_id", c.PollID)
			} else {
				c.Hub.logger.Debug("read from subscriber failed", "poll_id", c.PollID, "error", err)
			}
			return
		}
	}
}
