package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/agrilink/agrichat-backend/internal/service"
)

// ClientConnection wraps a WebSocket connection with metadata. A user may
// hold several of these at once (phone plus browser tab); each gets its own
// id. Writes go through writeMu because fiber's websocket conn does not
// tolerate concurrent writers.
type ClientConnection struct {
	ID         string
	Conn       *websocket.Conn
	UserID     uint // zero until the connection announces its owner
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMu sync.Mutex
}

// Hub manages all active WebSocket connections. Presence and room membership
// live in the registry; the hub adds the actual sockets and write paths, and
// satisfies the broadcast, presence and activity dependencies of the service
// layer.
type Hub struct {
	registry *Registry
	activity *ActivityTracker

	clients    map[string]*ClientConnection // connection id -> socket
	clientsMux sync.RWMutex

	pingInterval time.Duration
	pongTimeout  time.Duration
}

var _ service.Broadcaster = (*Hub)(nil)
var _ service.PresenceSource = (*Hub)(nil)
var _ service.ActivitySource = (*Hub)(nil)

// NewHub creates a new Hub instance and starts its health checker.
func NewHub() *Hub {
	hub := &Hub{
		registry:     NewRegistry(),
		activity:     NewActivityTracker(),
		clients:      make(map[string]*ClientConnection),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Attach adds a raw socket to the hub and starts its ping routine. The
// connection carries no user yet; that arrives with the register event.
func (h *Hub) Attach(conn *websocket.Conn) *ClientConnection {
	client := &ClientConnection{
		ID:         uuid.NewString(),
		Conn:       conn,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	connID := client.ID
	conn.SetPongHandler(func(appData string) error {
		h.clientsMux.Lock()
		if c, exists := h.clients[connID]; exists {
			c.LastPong = time.Now()
		}
		h.clientsMux.Unlock()
		conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	h.clients[connID] = client
	count := len(h.clients)
	h.clientsMux.Unlock()

	go h.pingRoutine(client)

	log.Printf("Connection %s attached (total: %d)", connID, count)
	return client
}

// Detach removes a socket and its registry state. wentOffline reports whether
// this was the owning user's last connection; the caller broadcasts the
// offline status. Activity entries are left alone: they are advisory and
// stale ones persist until process restart.
func (h *Hub) Detach(connID string) (userID uint, wentOffline bool, lastSeen time.Time) {
	h.clientsMux.Lock()
	if client, exists := h.clients[connID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
		delete(h.clients, connID)
	}
	count := len(h.clients)
	h.clientsMux.Unlock()

	userID, wentOffline, lastSeen = h.registry.Unregister(connID)

	log.Printf("Connection %s detached (total: %d)", connID, count)
	return userID, wentOffline, lastSeen
}

// RegisterUser binds a connection to its owning user. cameOnline reports the
// user's first live connection.
func (h *Hub) RegisterUser(userID uint, connID string) (cameOnline, ok bool) {
	cameOnline, ok = h.registry.Register(userID, connID)
	if !ok {
		return false, false
	}

	h.clientsMux.Lock()
	if client, exists := h.clients[connID]; exists {
		client.UserID = userID
	}
	h.clientsMux.Unlock()

	log.Printf("User %d registered on connection %s (online edge: %v)", userID, connID, cameOnline)
	return cameOnline, true
}

// JoinConversation subscribes a connection to a conversation room.
func (h *Hub) JoinConversation(connID string, conversationID uint) bool {
	return h.registry.JoinRoom(connID, conversationID)
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	return h.registry.IsOnline(userID)
}

func (h *Hub) SetPage(userID uint, page string) {
	h.activity.SetPage(userID, page)
}

func (h *Hub) SetActiveConversation(userID, conversationID uint) {
	h.activity.SetActiveConversation(userID, conversationID)
}

// Snapshot exposes the activity tracker to the service layer.
func (h *Hub) Snapshot(userID uint) service.ActivitySnapshot {
	entry := h.activity.Snapshot(userID)
	return service.ActivitySnapshot{
		Page:                 entry.Page,
		ActiveConversationID: entry.ActiveConversationID,
	}
}

// outboundEvent is the wire envelope for server-originated events, matching
// the shape clients send.
type outboundEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func encodeEvent(event string, payload interface{}) ([]byte, bool) {
	data, err := json.Marshal(outboundEvent{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event, err)
		return nil, false
	}
	return data, true
}

// BroadcastToRoom sends an event to every connection subscribed to the
// conversation's room.
func (h *Hub) BroadcastToRoom(conversationID uint, event string, payload interface{}) {
	data, ok := encodeEvent(event, payload)
	if !ok {
		return
	}
	for _, connID := range h.registry.RoomConnections(conversationID) {
		h.writeTo(connID, data)
	}
}

// DeliverToConversation sends an event to the room plus the given user's
// connections outside the room, each connection at most once. Returns the
// number of sockets written.
func (h *Hub) DeliverToConversation(conversationID, userID uint, event string, payload interface{}) int {
	data, ok := encodeEvent(event, payload)
	if !ok {
		return 0
	}
	sent := 0
	for _, connID := range h.registry.DeliveryTargets(conversationID, userID) {
		if h.writeTo(connID, data) {
			sent++
		}
	}
	return sent
}

// SendToUser sends an event to every connection of one user.
func (h *Hub) SendToUser(userID uint, event string, payload interface{}) int {
	data, ok := encodeEvent(event, payload)
	if !ok {
		return 0
	}
	sent := 0
	for _, connID := range h.registry.UserConnections(userID) {
		if h.writeTo(connID, data) {
			sent++
		}
	}
	return sent
}

// SendToConn sends an event to a single connection, for acks and pongs.
func (h *Hub) SendToConn(connID, event string, payload interface{}) bool {
	data, ok := encodeEvent(event, payload)
	if !ok {
		return false
	}
	return h.writeTo(connID, data)
}

// SendRaw writes an already-shaped object to a single connection without the
// event envelope. Error responses carry their own type field.
func (h *Hub) SendRaw(connID string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling raw payload for connection %s: %v", connID, err)
		return false
	}
	return h.writeTo(connID, data)
}

// BroadcastAll sends an event to every attached connection, registered or
// not. Used for the global online-status feed.
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	data, ok := encodeEvent(event, payload)
	if !ok {
		return
	}

	h.clientsMux.RLock()
	targets := make([]string, 0, len(h.clients))
	for connID := range h.clients {
		targets = append(targets, connID)
	}
	h.clientsMux.RUnlock()

	for _, connID := range targets {
		h.writeTo(connID, data)
	}
}

func (h *Hub) writeTo(connID string, data []byte) bool {
	h.clientsMux.RLock()
	client, exists := h.clients[connID]
	h.clientsMux.RUnlock()
	if !exists {
		return false
	}

	client.writeMu.Lock()
	err := client.Conn.WriteMessage(websocket.TextMessage, data)
	client.writeMu.Unlock()

	if err != nil {
		log.Printf("Error writing to connection %s (user %d): %v", connID, client.UserID, err)
		return false
	}
	return true
}

// ConnectionCount returns the number of attached sockets.
func (h *Hub) ConnectionCount() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// Registry exposes the presence bookkeeping for the read-loop handler.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// pingRoutine sends periodic pings to keep the connection alive.
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic on connection %s: %v", client.ID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			h.clientsMux.RLock()
			_, exists := h.clients[client.ID]
			h.clientsMux.RUnlock()
			if !exists {
				return
			}

			client.writeMu.Lock()
			err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
			client.writeMu.Unlock()
			if err != nil {
				log.Printf("Ping failed for connection %s: %v", client.ID, err)
				client.Conn.Close()
				return
			}
		}
	}
}

// connectionHealthChecker closes sockets that stopped answering pings. The
// read loop then unwinds and runs the normal detach path, so offline
// broadcasts still fire for reaped connections.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		h.clientsMux.RLock()
		dead := make([]*ClientConnection, 0)
		for _, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				dead = append(dead, client)
			}
		}
		h.clientsMux.RUnlock()

		for _, client := range dead {
			log.Printf("Closing dead connection %s (user %d, no pong received)", client.ID, client.UserID)
			client.Conn.Close()
		}
	}
}
