package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"projecthub/logging"
	"projecthub/realtime"
	"projecthub/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ServeWS upgrades the connection and subscribes the client to the change
// feed. The token travels as a query parameter because browsers cannot set
// headers on websocket dials.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	claims, err := utils.ValidateToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Errorf("Event ID: WS_UPGRADE_FAILED, Description: Websocket upgrade failed: %v", err)
		return
	}

	client := &realtime.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Email: claims.Email,
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
