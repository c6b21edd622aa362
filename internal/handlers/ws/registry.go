package ws

import (
	"sync"
	"time"
)

// Registry owns presence and room bookkeeping: which user each live
// connection belongs to and which conversation rooms it subscribed to.
// Online/offline edges are detected inside the same critical section as the
// mutation, so a burst of register/unregister calls for one user yields
// exactly one transition per edge crossing.
type Registry struct {
	mu    sync.Mutex
	conns map[string]uint              // connection id -> owning user
	users map[uint]map[string]struct{} // user -> connection ids
	rooms map[uint]map[string]struct{} // conversation id -> connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]uint),
		users: make(map[uint]map[string]struct{}),
		rooms: make(map[uint]map[string]struct{}),
	}
}

// Register binds a connection to a user. cameOnline reports the user's 0→1
// edge. A zero user id, an empty connection id, or a connection already owned
// by a different user is rejected without mutating state.
func (r *Registry) Register(userID uint, connID string) (cameOnline, ok bool) {
	if userID == 0 || connID == "" {
		return false, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, exists := r.conns[connID]; exists {
		// Re-registering the same owner is a no-op, not a transition.
		return false, owner == userID
	}

	set := r.users[userID]
	if set == nil {
		set = make(map[string]struct{})
		r.users[userID] = set
	}
	cameOnline = len(set) == 0
	set[connID] = struct{}{}
	r.conns[connID] = userID
	return cameOnline, true
}

// Unregister removes a connection and all its room subscriptions.
// wentOffline reports the owning user's 1→0 edge; lastSeen carries the
// offline timestamp. Unknown connections are a no-op.
func (r *Registry) Unregister(connID string) (userID uint, wentOffline bool, lastSeen time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for convID, room := range r.rooms {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, convID)
		}
	}

	userID, exists := r.conns[connID]
	if !exists {
		return 0, false, time.Time{}
	}
	delete(r.conns, connID)

	set := r.users[userID]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.users, userID)
		return userID, true, time.Now()
	}
	return userID, false, time.Time{}
}

func (r *Registry) IsOnline(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users[userID]) > 0
}

// JoinRoom subscribes a connection to a conversation room. Grouping is pure
// transport bookkeeping; the connection does not need a registered user yet.
func (r *Registry) JoinRoom(connID string, conversationID uint) bool {
	if connID == "" || conversationID == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[conversationID]
	if room == nil {
		room = make(map[string]struct{})
		r.rooms[conversationID] = room
	}
	room[connID] = struct{}{}
	return true
}

func (r *Registry) RoomConnections(conversationID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.rooms[conversationID]))
	for connID := range r.rooms[conversationID] {
		out = append(out, connID)
	}
	return out
}

func (r *Registry) UserConnections(userID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.users[userID]))
	for connID := range r.users[userID] {
		out = append(out, connID)
	}
	return out
}

// DeliveryTargets computes where one message goes live: every room
// subscriber, plus every connection of the given user not already reachable
// via the room. Each connection id appears at most once.
func (r *Registry) DeliveryTargets(conversationID, userID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[conversationID]
	out := make([]string, 0, len(room)+len(r.users[userID]))
	for connID := range room {
		out = append(out, connID)
	}
	for connID := range r.users[userID] {
		if _, inRoom := room[connID]; !inRoom {
			out = append(out, connID)
		}
	}
	return out
}

// ConnectionCount reports live connections, for logging.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
