package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client is one connected websocket subscriber.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// Event is pushed to subscribers whenever a task changes.
type Event struct {
	Event  string `json:"event"`
	TaskID int    `json:"task_id"`
}

// Hub fans task events out to all connected clients.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Events is the process-wide hub the handlers publish to.
var Events = NewHub()

// Publish sends a task event to the hub. The send is non-blocking so that
// handlers are unaffected when the hub loop is not running (e.g. in tests).
func Publish(event string, taskID int) {
	payload, err := json.Marshal(Event{Event: event, TaskID: taskID})
	if err != nil {
		return
	}
	select {
	case Events.Broadcast <- payload:
	default:
	}
}

// Run manages register, unregister, and broadcast for the hub.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					h.Unregister <- client
				}
			}
		}
	}
}
