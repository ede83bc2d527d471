// Package realtime fans task change events out to every websocket a user has
// open, so other tabs and devices can refresh their task list.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"task-manager-backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client is one open websocket connection.
type Client struct {
	userID int
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps a room per user: userID -> set of clients.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[int]map[*Client]struct{})}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.userID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.userID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.userID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	c.close()
	if len(room) == 0 {
		delete(h.rooms, c.userID)
	}
}

// Connections returns the number of open connections for a user.
func (h *Hub) Connections(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Publish queues the event for every connection of userID. A client whose
// buffer is full is disconnected rather than blocking the caller.
func (h *Hub) Publish(userID int, event models.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("realtime: marshal event: %v", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.rooms[userID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("realtime: dropping slow client for user %d", userID)
		h.remove(c)
	}
}

// Serve registers conn for userID and blocks until the connection closes.
func (h *Hub) Serve(userID int, conn *websocket.Conn) {
	c := &Client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop()
	h.remove(c)
	<-done
	conn.Close()
}

// readLoop only drains control frames; clients never send task data here.
func (c *Client) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
