// Package world holds the shared-space geometry model: world bounds,
// impassable zones, interactive zones, and the snapshot store the rest of
// the engine reads from.
package world

import "encoding/json"

// GeometryKind discriminates impassable zone shapes.
type GeometryKind string

const (
	GeometryRectangle GeometryKind = "rectangle"
	GeometryPolygon   GeometryKind = "polygon"
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the rectangle, edges
// included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Overlaps reports strict AABB overlap; rectangles that merely touch along
// an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width &&
		r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height &&
		r.Y+r.Height > o.Y
}

// Degenerate reports whether the rectangle has no area.
func (r Rect) Degenerate() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bounds is the playable world rectangle; movement is clamped against it.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImpassableZone is static geometry the collision engine treats as solid.
// Zones are immutable once constructed and replaced wholesale on snapshot
// updates.
type ImpassableZone struct {
	ID          string       `json:"id"`
	Kind        GeometryKind `json:"geometryKind"`
	BoundingBox Rect         `json:"boundingBox"`
	Points      []Point      `json:"points,omitempty"`
}

// Degenerate reports geometry the collision engine must skip rather than
// evaluate: polygons with fewer than three vertices and zero-area
// rectangles.
func (z ImpassableZone) Degenerate() bool {
	if z.Kind == GeometryPolygon {
		return len(z.Points) < 3
	}
	return z.BoundingBox.Degenerate()
}

// InteractiveZone is geometry with an associated action fired on
// enter/exit.
type InteractiveZone struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	BoundingBox Rect         `json:"boundingBox"`
	Action      ActionType   `json:"actionType"`
	Config      ActionConfig `json:"actionConfig,omitempty"`
}

// interactiveZoneJSON is the wire shape; the config payload stays raw until
// the action type is known.
type interactiveZoneJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	BoundingBox Rect            `json:"boundingBox"`
	Action      ActionType      `json:"actionType"`
	Config      json.RawMessage `json:"actionConfig,omitempty"`
}

// UnmarshalJSON decodes the zone and resolves its action config against the
// action type. A config that cannot decode for its declared type is a
// MalformedZoneConfig; the error surfaces here so the store boundary can
// demote the zone instead of letting dispatch trip over it later.
func (z *InteractiveZone) UnmarshalJSON(data []byte) error {
	var raw interactiveZoneJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := decodeActionConfig(raw.Action, raw.Config)
	if err != nil {
		return err
	}
	z.ID = raw.ID
	z.Name = raw.Name
	z.BoundingBox = raw.BoundingBox
	z.Action = raw.Action
	z.Config = cfg
	return nil
}

// MarshalJSON emits the wire shape with the config keyed by action type.
func (z InteractiveZone) MarshalJSON() ([]byte, error) {
	raw := interactiveZoneJSON{
		ID:          z.ID,
		Name:        z.Name,
		BoundingBox: z.BoundingBox,
		Action:      z.Action,
	}
	if z.Config != nil {
		data, err := json.Marshal(z.Config)
		if err != nil {
			return nil, err
		}
		raw.Config = data
	}
	return json.Marshal(raw)
}
