package realtime

import (
	"sync"
)

// Conn is one realtime subscriber. Send must not block; implementations drop
// the event when the client cannot keep up.
type Conn interface {
	ID() string
	Send(event string, payload []byte) bool
}

// Registry tracks which connections are members of which rooms. Rooms are
// plain names: a restaurant id, restaurantID_locationID, a station id or an
// order id. All membership is process-local; the event bridge mirrors
// broadcasts across instances.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn
	// conns indexes room membership per connection so LeaveAll is cheap.
	conns map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Conn),
		conns: make(map[string]map[string]struct{}),
	}
}

func (r *Registry) Join(room string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[room] = members
	}
	members[conn.ID()] = conn

	joined, ok := r.conns[conn.ID()]
	if !ok {
		joined = make(map[string]struct{})
		r.conns[conn.ID()] = joined
	}
	joined[room] = struct{}{}
}

func (r *Registry) Leave(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, connID)
}

// LeaveAll removes the connection from every room it joined.
func (r *Registry) LeaveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.conns[connID] {
		r.leaveLocked(room, connID)
	}
}

func (r *Registry) leaveLocked(room, connID string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if joined, ok := r.conns[connID]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.conns, connID)
		}
	}
}

// Broadcast delivers the event to every member of the room and returns how
// many connections received it. Slow members are skipped, never waited on.
func (r *Registry) Broadcast(eventName, room string, payload []byte) int {
	r.mu.RLock()
	members := make([]Conn, 0, len(r.rooms[room]))
	for _, conn := range r.rooms[room] {
		members = append(members, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		if conn.Send(eventName, payload) {
			delivered++
		}
	}
	return delivered
}

// RoomSize reports the current membership of a room.
func (r *Registry) RoomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
