// Package engine drives the local entity: once per tick it proposes a move
// from directional input, gates it through collision, then feeds the result
// to the transition detector, the action dispatcher, and the position
// broadcaster, in that order.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/action"
	"github.com/c42705/stargety-oasis-sub005/internal/collision"
	"github.com/c42705/stargety-oasis-sub005/internal/transition"
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

// Input is the normalized directional intent for one tick. Components
// outside the unit circle are scaled back like any other diagonal.
type Input struct {
	DX float64
	DY float64
}

// Broadcaster receives accepted local moves. A failed send must not affect
// local movement; implementations log and drop.
type Broadcaster interface {
	Move(x, y float64) error
}

// Config sizes and paces the local entity.
type Config struct {
	ID    string
	Name  string
	X     float64
	Y     float64
	Size  float64 // bounding-box side length
	Speed float64 // units per second
}

// Player is the local entity's movement loop state.
type Player struct {
	id   string
	name string
	x, y float64
	size float64

	speed       float64
	store       *world.Store
	detector    *transition.Detector
	dispatcher  *action.Dispatcher
	broadcaster Broadcaster
	log         *zap.Logger
}

// NewPlayer composes the local movement loop. A zero ID gets a generated
// one; the starting position is clamped into bounds but not collision
// checked, matching how the map editor places spawn points.
func NewPlayer(cfg Config, store *world.Store, dispatcher *action.Dispatcher, broadcaster Broadcaster, log *zap.Logger) *Player {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Size <= 0 {
		cfg.Size = 32
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 160
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Player{
		id:          cfg.ID,
		name:        cfg.Name,
		size:        cfg.Size,
		speed:       cfg.Speed,
		store:       store,
		detector:    transition.NewDetector(),
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		log:         log,
	}
	snap := store.Snapshot()
	p.x = clamp(cfg.X, cfg.Size/2, snap.Bounds.Width-cfg.Size/2)
	p.y = clamp(cfg.Y, cfg.Size/2, snap.Bounds.Height-cfg.Size/2)
	return p
}

// ID returns the entity identifier.
func (p *Player) ID() string { return p.id }

// Position returns the current accepted position.
func (p *Player) Position() (float64, float64) { return p.x, p.y }

// Tick advances the entity by one step. One geometry snapshot serves the
// whole tick: collision gating, transition detection, and dispatch all see
// the same world. Movement degrades gracefully: a blocked diagonal falls
// back to its unblocked axis so the entity slides along walls instead of
// stopping dead.
func (p *Player) Tick(dt float64, in Input) {
	if dt <= 0 {
		return
	}

	snap := p.store.Snapshot()

	dx, dy := normalize(in.DX, in.DY)
	half := p.size / 2
	newX := clamp(p.x+dx*p.speed*dt, half, snap.Bounds.Width-half)
	newY := clamp(p.y+dy*p.speed*dt, half, snap.Bounds.Height-half)

	oldX, oldY := p.x, p.y
	switch {
	case !collision.Blocked(snap, newX, newY, p.size):
		p.x, p.y = newX, newY
	case !collision.Blocked(snap, newX, oldY, p.size):
		p.x = newX
	case !collision.Blocked(snap, oldX, newY, p.size):
		p.y = newY
	}

	if p.x == oldX && p.y == oldY {
		return
	}

	// Dispatch before the network emit so locally triggered side effects
	// never wait on transport latency.
	for _, ev := range p.detector.Advance(snap, p.id, p.x, p.y) {
		p.dispatcher.HandleTransition(snap, ev)
	}

	if p.broadcaster != nil {
		if err := p.broadcaster.Move(p.x, p.y); err != nil {
			p.log.Debug("dropping position update", zap.Error(err))
		}
	}
}

// Run drives Tick at the given rate until the context is canceled. The
// input function is polled once per tick.
func (p *Player) Run(ctx context.Context, hz int, input func() Input) {
	if hz <= 0 {
		hz = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(hz)
			}
			last = now
			p.Tick(dt, input())
		}
	}
}

func normalize(dx, dy float64) (float64, float64) {
	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}
	return dx, dy
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
