package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"projecthub/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Event is the change-feed record pushed to connected clients. Invalidation
// events name the exact table and entity a mutation touched so subscribers
// can refresh precisely instead of by table prefix.
type Event struct {
	Type      string `json:"type"`
	Table     string `json:"table,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Client is one websocket subscriber identified by the signed-in email.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Email string
}

// ReadPump drains the connection until it closes, then unregisters the
// client. Incoming frames are only used to keep the connection alive;
// this feed is server-to-client.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Logger.Warnf("Event ID: WS_READ_ERROR, Description: Websocket error for %s: %v", c.Email, err)
			}
			break
		}
	}
}

// WritePump forwards hub events to the connection and pings on a ticker.
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
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// Hub fans change events out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Invalidate announces that one entity in one table changed.
func (h *Hub) Invalidate(table, entityID, projectID string) {
	h.publish(Event{Type: "invalidate", Table: table, EntityID: entityID, ProjectID: projectID})
}

// Push delivers a domain payload (e.g. a chat message) alongside the
// invalidation stream.
func (h *Hub) Push(eventType, projectID string, payload any) {
	h.publish(Event{Type: eventType, ProjectID: projectID, Payload: payload})
}

func (h *Hub) publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logging.Logger.Errorf("Event ID: WS_MARSHAL_ERROR, Description: Failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logging.Logger.Warnf("Event ID: WS_BROADCAST_DROPPED, Description: Broadcast buffer full, event for table '%s' dropped", ev.Table)
	}
}

// Run owns the client set; all registration and fan-out happens on this
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logging.Logger.Infof("Event ID: WS_CLIENT_CONNECTED, Description: Client connected: %s", client.Email)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logging.Logger.Infof("Event ID: WS_CLIENT_DISCONNECTED, Description: Client disconnected: %s", client.Email)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					logging.Logger.Warnf("Event ID: WS_CLIENT_STALLED, Description: Send buffer full, removing client: %s", client.Email)
				}
			}
		}
	}
}
