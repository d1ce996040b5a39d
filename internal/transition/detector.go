// Package transition derives enter/exit events from entity positions. Each
// entity carries a single previous-zone state; events fire exactly once per
// zone change.
package transition

import (
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

// Kind discriminates transition events.
type Kind string

const (
	Entered Kind = "entered"
	Exited  Kind = "exited"
)

// Event records one zone boundary crossing. Events are ephemeral; the
// action dispatcher consumes them within the same tick.
type Event struct {
	EntityID string
	ZoneID   string
	ZoneName string
	Kind     Kind
}

// CurrentZone returns the first interactive zone containing the point, or
// nil. Point-in-rect is inclusive on all edges. When zones overlap the
// first match in snapshot order wins; the order is deterministic but the
// tie-break itself is not a designed feature.
func CurrentZone(snap *world.Snapshot, x, y float64) *world.InteractiveZone {
	for i := range snap.Interactive {
		if snap.Interactive[i].BoundingBox.Contains(x, y) {
			return &snap.Interactive[i]
		}
	}
	return nil
}

// Detector tracks the current zone per entity and emits transitions on
// change.
type Detector struct {
	previous map[string]trackedZone
}

type trackedZone struct {
	id   string
	name string
}

// NewDetector creates an empty detector; every entity starts in no zone.
func NewDetector() *Detector {
	return &Detector{previous: make(map[string]trackedZone)}
}

// Advance evaluates the entity's position against the snapshot and returns
// the transitions it produced: nothing when the zone is unchanged, an exit
// and/or an entry otherwise. On a direct zone-to-zone move the exit is
// always first.
func (d *Detector) Advance(snap *world.Snapshot, entityID string, x, y float64) []Event {
	prev := d.previous[entityID]

	var currID, currName string
	if zone := CurrentZone(snap, x, y); zone != nil {
		currID, currName = zone.ID, zone.Name
	}

	if currID == prev.id {
		return nil
	}

	events := make([]Event, 0, 2)
	if prev.id != "" {
		events = append(events, Event{EntityID: entityID, ZoneID: prev.id, ZoneName: prev.name, Kind: Exited})
	}
	if currID != "" {
		events = append(events, Event{EntityID: entityID, ZoneID: currID, ZoneName: currName, Kind: Entered})
	}

	if currID == "" {
		delete(d.previous, entityID)
	} else {
		d.previous[entityID] = trackedZone{id: currID, name: currName}
	}
	return events
}

// Forget drops an entity's state, e.g. when it leaves the room. No exit
// event is synthesized; the entity is gone, not outside.
func (d *Detector) Forget(entityID string) {
	delete(d.previous, entityID)
}
