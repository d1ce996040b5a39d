// Package action turns zone transitions into named intents for the UI,
// video, and navigation collaborators. Dispatch failures are logged and
// swallowed; nothing here may stall the movement loop.
package action

import (
	"time"

	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/transition"
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

// Sink receives dispatched intents. Implementations must not block.
type Sink func(Intent)

// Dispatcher resolves transition events against the snapshot they were
// produced from and emits at most one intent per qualifying transition.
type Dispatcher struct {
	emit Sink
	log  *zap.Logger

	// activeVideoZone is the single video-conference zone whose call we
	// asked to join and have not yet asked to leave. Exits from any other
	// zone must not close the call.
	activeVideoZone string
}

// NewDispatcher creates a dispatcher delivering intents to sink.
func NewDispatcher(sink Sink, log *zap.Logger) *Dispatcher {
	if sink == nil {
		sink = func(Intent) {}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{emit: sink, log: log}
}

// HandleTransition dispatches one transition event. The snapshot must be
// the one the event was derived from; a zone that is gone from it was
// removed concurrently and the event is dropped with a warning.
func (d *Dispatcher) HandleTransition(snap *world.Snapshot, ev transition.Event) {
	zone, ok := snap.Zone(ev.ZoneID)
	if !ok {
		d.log.Warn("transition references a removed zone, dropping",
			zap.String("zone", ev.ZoneID),
			zap.String("entity", ev.EntityID),
			zap.String("kind", string(ev.Kind)))
		return
	}

	switch ev.Kind {
	case transition.Entered:
		d.dispatchEnter(zone)
	case transition.Exited:
		d.dispatchExit(zone)
	}
}

func (d *Dispatcher) dispatchEnter(zone world.InteractiveZone) {
	switch zone.Action {
	case world.ActionVideoConference:
		cfg, ok := zone.Config.(world.VideoConferenceConfig)
		if !ok {
			d.warnConfig(zone)
			return
		}
		if !cfg.AutoJoin() {
			return
		}
		room := cfg.RoomName
		if room == "" {
			room = zone.Name
		}
		d.activeVideoZone = zone.ID
		d.emit(VideoJoin{RoomName: room})

	case world.ActionAlert:
		cfg, ok := zone.Config.(world.AlertConfig)
		if !ok {
			d.warnConfig(zone)
			return
		}
		d.emit(AlertShow{
			Message:  cfg.Message,
			Kind:     cfg.AlertType,
			Duration: time.Duration(cfg.DurationMs) * time.Millisecond,
		})

	case world.ActionURL:
		cfg, ok := zone.Config.(world.URLConfig)
		if !ok || cfg.URL == "" {
			d.warnConfig(zone)
			return
		}
		d.emit(Navigate{URL: cfg.URL, Mode: string(cfg.OpenMode)})

	case world.ActionModal:
		cfg, ok := zone.Config.(world.ModalConfig)
		if !ok {
			d.warnConfig(zone)
			return
		}
		if !cfg.ShowOnEntry {
			return
		}
		d.emit(ModalShow{Title: cfg.Title, Content: cfg.Content})

	case world.ActionCollectible:
		cfg, ok := zone.Config.(world.CollectibleConfig)
		if !ok {
			d.warnConfig(zone)
			return
		}
		d.emit(Collected{
			ZoneID:      zone.ID,
			EffectType:  cfg.EffectType,
			EffectValue: cfg.EffectValue,
			Feedback:    cfg.Feedback,
		})

	case world.ActionSwitch:
		cfg, ok := zone.Config.(world.SwitchConfig)
		if !ok {
			d.warnConfig(zone)
			return
		}
		d.emit(SwitchToggled{TargetIDs: cfg.TargetIDs, ToggleMode: string(cfg.ToggleMode)})

	case world.ActionImpassable, world.ActionNone:
		// Impassable is the collision engine's job; none does nothing.
	}
}

func (d *Dispatcher) dispatchExit(zone world.InteractiveZone) {
	if zone.Action != world.ActionVideoConference {
		return
	}
	cfg, ok := zone.Config.(world.VideoConferenceConfig)
	if !ok {
		d.warnConfig(zone)
		return
	}
	if !cfg.AutoLeave() {
		return
	}
	if d.activeVideoZone != zone.ID {
		// Stray exit from a zone whose call we already left (or never
		// joined); closing the current call here would be wrong.
		return
	}
	d.activeVideoZone = ""
	d.emit(VideoLeave{})
}

// ActiveVideoZone exposes the tracked call zone for diagnostics and tests.
func (d *Dispatcher) ActiveVideoZone() string {
	return d.activeVideoZone
}

func (d *Dispatcher) warnConfig(zone world.InteractiveZone) {
	d.log.Warn("zone config does not match its action, skipping dispatch",
		zap.String("zone", zone.ID),
		zap.String("action", string(zone.Action)))
}
