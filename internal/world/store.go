package world

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Snapshot is one immutable, internally consistent view of the world
// geometry. The store swaps snapshots wholesale; nothing mutates a snapshot
// after it is published.
type Snapshot struct {
	Bounds      Bounds            `json:"worldBounds"`
	Impassable  []ImpassableZone  `json:"impassableZones"`
	Interactive []InteractiveZone `json:"interactiveZones"`

	// blocking is the compiled solid-geometry set: every impassable zone
	// plus interactive zones whose action is "impassable". Collision reads
	// this, never the raw slices.
	blocking []ImpassableZone
}

// Blocking returns the compiled solid-geometry set.
func (s *Snapshot) Blocking() []ImpassableZone {
	return s.blocking
}

// Zone looks up an interactive zone by id.
func (s *Snapshot) Zone(id string) (InteractiveZone, bool) {
	for _, z := range s.Interactive {
		if z.ID == id {
			return z, true
		}
	}
	return InteractiveZone{}, false
}

// Store hands out the current geometry snapshot. Writers replace the whole
// snapshot; readers grab the pointer once per tick and never observe a
// half-applied update.
type Store struct {
	snap atomic.Pointer[Snapshot]
	log  *zap.Logger
}

// NewStore creates a store seeded with the given snapshot. A nil snapshot
// yields an empty world with the given logger still attached.
func NewStore(snap *Snapshot, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{log: log}
	if snap == nil {
		snap = &Snapshot{Bounds: Bounds{Width: 1, Height: 1}}
	}
	if err := s.Replace(snap); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current geometry. The result is shared and must be
// treated as read-only.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Replace validates, normalizes, and atomically publishes a new snapshot.
// Polygon bounding boxes are recomputed from their points so the stored
// box is always the exact bound. Interactive zones whose config failed to
// decode upstream arrive already demoted; zones with the impassable action
// are compiled into the blocking set here.
func (s *Store) Replace(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("world: nil snapshot")
	}
	if snap.Bounds.Width <= 0 || snap.Bounds.Height <= 0 {
		return fmt.Errorf("world: bounds %gx%g are not positive", snap.Bounds.Width, snap.Bounds.Height)
	}

	normalized := &Snapshot{
		Bounds:      snap.Bounds,
		Impassable:  make([]ImpassableZone, len(snap.Impassable)),
		Interactive: make([]InteractiveZone, len(snap.Interactive)),
	}
	copy(normalized.Impassable, snap.Impassable)
	copy(normalized.Interactive, snap.Interactive)

	for i := range normalized.Impassable {
		z := &normalized.Impassable[i]
		if z.Kind == GeometryPolygon && len(z.Points) >= 3 {
			z.BoundingBox = polygonBounds(z.Points)
		}
		if z.Degenerate() {
			s.log.Warn("degenerate impassable zone will not block",
				zap.String("zone", z.ID),
				zap.String("kind", string(z.Kind)))
		}
	}

	normalized.blocking = append(normalized.blocking, normalized.Impassable...)
	for _, z := range normalized.Interactive {
		if z.Action != ActionImpassable {
			continue
		}
		normalized.blocking = append(normalized.blocking, ImpassableZone{
			ID:          z.ID,
			Kind:        GeometryRectangle,
			BoundingBox: z.BoundingBox,
		})
	}

	s.snap.Store(normalized)
	return nil
}

// DecodeSnapshot parses a full geometry document as produced by the map
// editor. Interactive zones whose action config does not match their action
// type are demoted to no-op zones with a warning rather than failing the
// whole document.
func DecodeSnapshot(data []byte, log *zap.Logger) (*Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var raw struct {
		Bounds      Bounds            `json:"worldBounds"`
		Impassable  []ImpassableZone  `json:"impassableZones"`
		Interactive []json.RawMessage `json:"interactiveZones"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("world: decoding snapshot: %w", err)
	}

	snap := &Snapshot{Bounds: raw.Bounds, Impassable: raw.Impassable}
	for _, entry := range raw.Interactive {
		var zone InteractiveZone
		if err := json.Unmarshal(entry, &zone); err == nil {
			snap.Interactive = append(snap.Interactive, zone)
			continue
		} else if demoted, ok := demoteZone(entry); ok {
			log.Warn("interactive zone config does not match its action, demoting to none",
				zap.String("zone", demoted.ID),
				zap.Error(err))
			snap.Interactive = append(snap.Interactive, demoted)
		} else {
			return nil, fmt.Errorf("world: undecodable interactive zone: %w", err)
		}
	}
	return snap, nil
}

// demoteZone salvages id, name, and geometry from a zone whose action
// config was rejected.
func demoteZone(entry json.RawMessage) (InteractiveZone, bool) {
	var raw interactiveZoneJSON
	if err := json.Unmarshal(entry, &raw); err != nil || raw.ID == "" {
		return InteractiveZone{}, false
	}
	return InteractiveZone{
		ID:          raw.ID,
		Name:        raw.Name,
		BoundingBox: raw.BoundingBox,
		Action:      ActionNone,
	}, true
}

// polygonBounds computes the exact axis-aligned bound of a vertex list.
func polygonBounds(points []Point) Rect {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
