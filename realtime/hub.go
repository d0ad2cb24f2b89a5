package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Frame is what the hub writes to a websocket
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// command is what a client sends to the hub
type command struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// Hub keeps connected websocket clients grouped by room
type Hub struct {
	upgrader websocket.Upgrader

	// CanJoin decides whether a client may join a room it asked for. The default
	// only allows event rooms.
	CanJoin func(id Identity, room string) bool

	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	hub   *Hub
	conn  *websocket.Conn
	id    Identity
	send  chan []byte
	rooms map[string]struct{}
	once  sync.Once
}

// NewHub builds a hub that accepts upgrades from the given origins. An empty list
// accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		rooms:   map[string]map[*client]struct{}{},
		clients: map[*client]struct{}{},
		CanJoin: func(_ Identity, room string) bool { return IsEventRoom(room) },
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWS upgrades the request and registers the connection for id
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, id Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:   h,
		conn:  conn,
		id:    id,
		send:  make(chan []byte, sendBuffer),
		rooms: map[string]struct{}{},
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	zap.S().Debugw("websocket client connected", "userId", id.UserID, "department", id.Department)

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	for _, room := range c.id.Rooms() {
		h.joinLocked(c, room)
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room := range c.rooms {
			h.leaveLocked(c, room)
		}
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) joinLocked(c *client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = map[*client]struct{}{}
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(c *client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) handle(c *client, cmd command) {
	switch cmd.Action {
	case "join":
		if h.CanJoin == nil || !h.CanJoin(c.id, cmd.Room) {
			return
		}
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			h.joinLocked(c, cmd.Room)
		}
		h.mu.Unlock()
	case "leave":
		h.mu.Lock()
		h.leaveLocked(c, cmd.Room)
		h.mu.Unlock()
	}
}

// ToUser implements Publisher
func (h *Hub) ToUser(userID, event string, payload interface{}) {
	h.ToRoom(UserRoom(userID), event, payload)
}

// ToRoom implements Publisher
func (h *Hub) ToRoom(room, event string, payload interface{}) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.deliver(msg)
	}
}

// Broadcast implements Publisher
func (h *Hub) Broadcast(event string, payload interface{}) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.deliver(msg)
	}
}

// RoomSize is the number of connections currently in room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = map[*client]struct{}{}
	h.rooms = map[string]map[*client]struct{}{}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func encode(event string, payload interface{}) ([]byte, bool) {
	msg, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		zap.S().Errorw("failed to encode realtime frame", "event", event, "error", err)
		return nil, false
	}
	return msg, true
}

// deliver never blocks; a client that cannot keep up misses the frame
func (c *client) deliver(msg []byte) {
	select {
	case c.send <- msg:
	default:
		zap.S().Warnw("dropping realtime frame for slow client", "userId", c.id.UserID)
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		c.hub.handle(c, cmd)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
