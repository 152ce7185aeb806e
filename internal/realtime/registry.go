package realtime

import "sync"

// RoomRegistry tracks which sessions are subscribed to which route.
// Rooms are created implicitly on first join; an empty room costs
// nothing and fan-out to it is a no-op.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[int]map[*Session]bool
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[int]map[*Session]bool),
	}
}

func (r *RoomRegistry) Join(routeID int, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[routeID]
	if !ok {
		room = make(map[*Session]bool)
		r.rooms[routeID] = room
	}
	room[session] = true
}

// Leave is idempotent: removing a session that is not in the room is a
// no-op.
func (r *RoomRegistry) Leave(routeID int, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[routeID]
	if !ok {
		return
	}
	delete(room, session)
	if len(room) == 0 {
		delete(r.rooms, routeID)
	}
}

// Members returns a snapshot of the room so callers can fan out
// without holding the lock.
func (r *RoomRegistry) Members(routeID int) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[routeID]
	if len(room) == 0 {
		return nil
	}

	members := make([]*Session, 0, len(room))
	for session := range room {
		members = append(members, session)
	}
	return members
}

func (r *RoomRegistry) Count(routeID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[routeID])
}
