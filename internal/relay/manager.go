package relay

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager owns every live room. Rooms are created on first join and torn
// down once their last member leaves; nothing about them is ambient state.
type Manager struct {
	log *zap.Logger

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager creates an empty room manager.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log, rooms: make(map[string]*Room)}
}

// Room returns the room with the given id, creating it when absent.
func (m *Manager) Room(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		room = newRoom(id, m.log)
		m.rooms[id] = room
		m.log.Info("room created", zap.String("room", id))
	}
	return room
}

// Lookup returns an existing room without creating one.
func (m *Manager) Lookup(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	return room, ok
}

// DestroyRoomIfEmpty removes the room when it has no members. Returns true
// when the room was removed.
func (m *Manager) DestroyRoomIfEmpty(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok || !room.Empty() {
		return false
	}
	delete(m.rooms, id)
	m.log.Info("room destroyed", zap.String("room", id))
	return true
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// SweepStale evicts heartbeat-expired players from every room and destroys
// rooms that end up empty.
func (m *Manager) SweepStale(now time.Time, timeout time.Duration) {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.Unlock()

	for _, room := range rooms {
		if swept := room.SweepStale(now, timeout); len(swept) > 0 {
			m.DestroyRoomIfEmpty(room.ID())
		}
	}
}

// RunLivenessSweep periodically evicts stale players until the context is
// canceled.
func (m *Manager) RunLivenessSweep(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.SweepStale(now, timeout)
		}
	}
}

// RoomDiagnostics is one room's row in /diagnostics.
type RoomDiagnostics struct {
	ID      string              `json:"id"`
	Players []PlayerDiagnostics `json:"players"`
}

// Diagnostics returns liveness data for every room.
func (m *Manager) Diagnostics() []RoomDiagnostics {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.Unlock()

	out := make([]RoomDiagnostics, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomDiagnostics{ID: room.ID(), Players: room.Diagnostics()})
	}
	return out
}
