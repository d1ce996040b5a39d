package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshot(t *testing.T) {
	doc := []byte(`{
		"worldBounds": {"width": 800, "height": 600},
		"impassableZones": [
			{"id": "wall-1", "geometryKind": "rectangle", "boundingBox": {"x": 200, "y": 100, "width": 80, "height": 20}},
			{"id": "rock-1", "geometryKind": "polygon", "boundingBox": {"x": 0, "y": 0, "width": 0, "height": 0},
			 "points": [{"x": 10, "y": 10}, {"x": 50, "y": 20}, {"x": 30, "y": 60}]}
		],
		"interactiveZones": [
			{"id": "lobby", "name": "Lobby", "boundingBox": {"x": 0, "y": 0, "width": 100, "height": 100},
			 "actionType": "video-conference", "actionConfig": {"roomName": "lobby-call"}},
			{"id": "sign", "name": "Sign", "boundingBox": {"x": 300, "y": 300, "width": 40, "height": 40},
			 "actionType": "alert", "actionConfig": {"message": "hi", "alertType": "info", "duration": 2000}}
		]
	}`)

	snap, err := DecodeSnapshot(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, Bounds{Width: 800, Height: 600}, snap.Bounds)
	require.Len(t, snap.Impassable, 2)
	require.Len(t, snap.Interactive, 2)

	cfg, ok := snap.Interactive[0].Config.(VideoConferenceConfig)
	require.True(t, ok)
	assert.Equal(t, "lobby-call", cfg.RoomName)
	assert.True(t, cfg.AutoJoin())
	assert.True(t, cfg.AutoLeave())
}

func TestDecodeSnapshotDemotesMismatchedConfig(t *testing.T) {
	doc := []byte(`{
		"worldBounds": {"width": 800, "height": 600},
		"interactiveZones": [
			{"id": "broken", "name": "Broken", "boundingBox": {"x": 0, "y": 0, "width": 10, "height": 10},
			 "actionType": "url", "actionConfig": {"message": "not a url config"}}
		]
	}`)

	snap, err := DecodeSnapshot(doc, nil)
	require.NoError(t, err)
	require.Len(t, snap.Interactive, 1)
	assert.Equal(t, ActionNone, snap.Interactive[0].Action)
	assert.Nil(t, snap.Interactive[0].Config)
	assert.Equal(t, "broken", snap.Interactive[0].ID)
}

func TestReplaceRecomputesPolygonBounds(t *testing.T) {
	store, err := NewStore(&Snapshot{
		Bounds: Bounds{Width: 800, Height: 600},
		Impassable: []ImpassableZone{{
			ID:          "poly",
			Kind:        GeometryPolygon,
			BoundingBox: Rect{X: -1, Y: -1, Width: -1, Height: -1},
			Points:      []Point{{X: 10, Y: 20}, {X: 110, Y: 40}, {X: 60, Y: 220}},
		}},
	}, nil)
	require.NoError(t, err)

	box := store.Snapshot().Impassable[0].BoundingBox
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 100, Height: 200}, box)
}

func TestReplaceCompilesInteractiveImpassableIntoBlocking(t *testing.T) {
	store, err := NewStore(&Snapshot{
		Bounds: Bounds{Width: 800, Height: 600},
		Impassable: []ImpassableZone{
			{ID: "wall", Kind: GeometryRectangle, BoundingBox: Rect{X: 0, Y: 0, Width: 10, Height: 10}},
		},
		Interactive: []InteractiveZone{
			{ID: "gate", BoundingBox: Rect{X: 50, Y: 50, Width: 20, Height: 20}, Action: ActionImpassable},
			{ID: "lobby", BoundingBox: Rect{X: 100, Y: 100, Width: 20, Height: 20}, Action: ActionNone},
		},
	}, nil)
	require.NoError(t, err)

	blocking := store.Snapshot().Blocking()
	require.Len(t, blocking, 2)
	assert.Equal(t, "wall", blocking[0].ID)
	assert.Equal(t, "gate", blocking[1].ID)
}

func TestReplaceCopiesCallerSlices(t *testing.T) {
	impassable := []ImpassableZone{
		{ID: "wall", Kind: GeometryRectangle, BoundingBox: Rect{X: 0, Y: 0, Width: 10, Height: 10}},
	}
	interactive := []InteractiveZone{
		{ID: "lobby", Name: "Lobby", BoundingBox: Rect{X: 50, Y: 50, Width: 20, Height: 20}, Action: ActionNone},
	}
	store, err := NewStore(&Snapshot{
		Bounds:      Bounds{Width: 800, Height: 600},
		Impassable:  impassable,
		Interactive: interactive,
	}, nil)
	require.NoError(t, err)

	// Mutating the caller's slices after Replace must not reach the
	// published snapshot.
	impassable[0].BoundingBox = Rect{X: 1, Y: 1, Width: 1, Height: 1}
	interactive[0].Action = ActionImpassable
	interactive[0].Name = "changed"

	snap := store.Snapshot()
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 10}, snap.Impassable[0].BoundingBox)
	assert.Equal(t, ActionNone, snap.Interactive[0].Action)
	assert.Equal(t, "Lobby", snap.Interactive[0].Name)
}

func TestReplaceRejectsNonPositiveBounds(t *testing.T) {
	_, err := NewStore(&Snapshot{Bounds: Bounds{Width: 0, Height: 600}}, nil)
	assert.Error(t, err)
}

func TestStoreSwapIsWholesale(t *testing.T) {
	store, err := NewStore(&Snapshot{Bounds: Bounds{Width: 100, Height: 100}}, nil)
	require.NoError(t, err)

	before := store.Snapshot()
	require.NoError(t, store.Replace(&Snapshot{
		Bounds:      Bounds{Width: 200, Height: 200},
		Interactive: []InteractiveZone{{ID: "z", BoundingBox: Rect{Width: 10, Height: 10}}},
	}))
	after := store.Snapshot()

	assert.NotSame(t, before, after)
	assert.Equal(t, float64(100), before.Bounds.Width)
	assert.Equal(t, float64(200), after.Bounds.Width)
	_, ok := after.Zone("z")
	assert.True(t, ok)
	_, ok = before.Zone("z")
	assert.False(t, ok)
}

func TestActionConfigDecodeDefaults(t *testing.T) {
	cfg, err := decodeActionConfig(ActionVideoConference, json.RawMessage(`{"roomName":"r","autoJoinOnEntry":false}`))
	require.NoError(t, err)
	video := cfg.(VideoConferenceConfig)
	assert.False(t, video.AutoJoin())
	assert.True(t, video.AutoLeave())
}

func TestActionConfigDecodeRejectsPayloadOnNone(t *testing.T) {
	_, err := decodeActionConfig(ActionNone, json.RawMessage(`{"anything":1}`))
	assert.Error(t, err)

	cfg, err := decodeActionConfig(ActionNone, nil)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestActionConfigDecodeUnknownAction(t *testing.T) {
	_, err := decodeActionConfig(ActionType("teleport"), nil)
	assert.Error(t, err)
}

func TestInteractiveZoneRoundTrip(t *testing.T) {
	zone := InteractiveZone{
		ID:          "shop",
		Name:        "Shop",
		BoundingBox: Rect{X: 1, Y: 2, Width: 3, Height: 4},
		Action:      ActionSwitch,
		Config:      SwitchConfig{TargetIDs: []string{"door-1"}, ToggleMode: ToggleFlip},
	}

	data, err := json.Marshal(zone)
	require.NoError(t, err)

	var decoded InteractiveZone
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, zone, decoded)
}
