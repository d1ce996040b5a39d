// Package client implements the engine's side of the relay protocol: the
// outbound position broadcaster and the registry of remote entities with
// render-time smoothing.
package client

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
)

// RemoteEntity is another participant's avatar as this client sees it.
// X/Y hold the latest relayed position; RenderX/RenderY trail it under
// interpolation so network-rate updates still look smooth.
type RemoteEntity struct {
	ID         string
	Name       string
	X          float64
	Y          float64
	RenderX    float64
	RenderY    float64
	AvatarData json.RawMessage
}

// Registry tracks remote entities for one room. Relay event handlers are
// the only writers; the renderer reads.
type Registry struct {
	log       *zap.Logger
	smoothing float64

	mu       sync.RWMutex
	entities map[string]*RemoteEntity
}

// NewRegistry creates a registry. Smoothing is the interpolation rate in
// 1/seconds; higher snaps faster.
func NewRegistry(smoothing float64, log *zap.Logger) *Registry {
	if smoothing <= 0 {
		smoothing = 12
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:       log,
		smoothing: smoothing,
		entities:  make(map[string]*RemoteEntity),
	}
}

// ApplySnapshot replaces the registry contents with the players from a
// world snapshot, excluding the local player by exact id comparison. New
// entities appear at their position with no interpolation.
func (r *Registry) ApplySnapshot(players []proto.PlayerInfo, selfID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities = make(map[string]*RemoteEntity, len(players))
	for _, p := range players {
		if p.ID == selfID {
			continue
		}
		r.entities[p.ID] = &RemoteEntity{
			ID:         p.ID,
			Name:       p.Name,
			X:          p.X,
			Y:          p.Y,
			RenderX:    p.X,
			RenderY:    p.Y,
			AvatarData: p.AvatarData,
		}
	}
}

// ApplyJoined adds a newly announced player at its position.
func (r *Registry) ApplyJoined(p proto.PlayerInfo, selfID string) {
	if p.ID == selfID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities[p.ID] = &RemoteEntity{
		ID:         p.ID,
		Name:       p.Name,
		X:          p.X,
		Y:          p.Y,
		RenderX:    p.X,
		RenderY:    p.Y,
		AvatarData: p.AvatarData,
	}
}

// ApplyMoved updates an entity's target position. A move for an unknown id
// means its join was lost somewhere upstream; a minimal entity is
// synthesized rather than dropping the update.
func (r *Registry) ApplyMoved(playerID string, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.entities[playerID]
	if !ok {
		r.log.Warn("move for unknown player, synthesizing entity",
			zap.String("player", playerID))
		r.entities[playerID] = &RemoteEntity{
			ID: playerID, X: x, Y: y, RenderX: x, RenderY: y,
		}
		return
	}
	ent.X = x
	ent.Y = y
}

// ApplyLeft removes an entity immediately.
func (r *Registry) ApplyLeft(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entities, playerID)
}

// Advance moves every render position toward its target. Call once per
// rendered frame with the elapsed seconds.
func (r *Registry) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	t := r.smoothing * dt
	if t > 1 {
		t = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ent := range r.entities {
		ent.RenderX += (ent.X - ent.RenderX) * t
		ent.RenderY += (ent.Y - ent.RenderY) * t
	}
}

// Get returns a copy of one entity.
func (r *Registry) Get(playerID string) (RemoteEntity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ent, ok := r.entities[playerID]
	if !ok {
		return RemoteEntity{}, false
	}
	return *ent, true
}

// Entities returns a copy of all remote entities.
func (r *Registry) Entities() []RemoteEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RemoteEntity, 0, len(r.entities))
	for _, ent := range r.entities {
		out = append(out, *ent)
	}
	return out
}

// Len returns the number of tracked entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Clear drops every entity, e.g. on room teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = make(map[string]*RemoteEntity)
}
