package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
)

func TestApplySnapshotExcludesSelfCaseSensitive(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplySnapshot([]proto.PlayerInfo{
		{ID: "p1", X: 1, Y: 1},
		{ID: "P1", X: 2, Y: 2},
		{ID: "p2", X: 3, Y: 3},
	}, "p1")

	assert.Equal(t, 2, r.Len())
	_, ok := r.Get("p1")
	assert.False(t, ok)
	upper, ok := r.Get("P1")
	require.True(t, ok)
	assert.Equal(t, 2.0, upper.X)
}

func TestJoinThenMovesKeepsOneEntityAtLatestPosition(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p2", X: 10, Y: 10, Name: "Lin"}, "p1")
	r.ApplyMoved("p2", 20, 10)
	r.ApplyMoved("p2", 30, 10)

	assert.Equal(t, 1, r.Len())
	ent, ok := r.Get("p2")
	require.True(t, ok)
	assert.Equal(t, 30.0, ent.X)
	assert.Equal(t, 10.0, ent.Y)
	assert.Equal(t, "Lin", ent.Name)
}

func TestJoinedEntityStartsAtTargetWithoutInterpolation(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p2", X: 50, Y: 60}, "p1")

	ent, ok := r.Get("p2")
	require.True(t, ok)
	assert.Equal(t, 50.0, ent.RenderX)
	assert.Equal(t, 60.0, ent.RenderY)
}

func TestOrphanMoveSynthesizesEntity(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyMoved("ghost", 5, 6)

	ent, ok := r.Get("ghost")
	require.True(t, ok)
	assert.Equal(t, 5.0, ent.X)
	assert.Equal(t, 5.0, ent.RenderX)
	assert.Equal(t, 6.0, ent.Y)
}

func TestAdvanceInterpolatesTowardTarget(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p2", X: 0, Y: 0}, "p1")
	r.ApplyMoved("p2", 10, 0)

	// One 60fps frame at smoothing 12: factor 0.2.
	r.Advance(1.0 / 60.0)
	ent, _ := r.Get("p2")
	assert.InDelta(t, 2.0, ent.RenderX, 1e-9)
	assert.Equal(t, 10.0, ent.X)

	// Render position converges on the target.
	for i := 0; i < 200; i++ {
		r.Advance(1.0 / 60.0)
	}
	ent, _ = r.Get("p2")
	assert.InDelta(t, 10.0, ent.RenderX, 1e-3)
}

func TestAdvanceClampsLargeSteps(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p2", X: 0, Y: 0}, "p1")
	r.ApplyMoved("p2", 10, 10)

	// A one-second frame would overshoot with factor 12; it must snap to
	// the target instead.
	r.Advance(1)
	ent, _ := r.Get("p2")
	assert.Equal(t, 10.0, ent.RenderX)
	assert.Equal(t, 10.0, ent.RenderY)
}

func TestApplyLeftRemovesImmediately(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p2"}, "p1")
	r.ApplyLeft("p2")

	assert.Equal(t, 0, r.Len())
	r.ApplyLeft("p2")
	assert.Equal(t, 0, r.Len())
}

func TestSnapshotReplacesExistingEntities(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "stale"}, "p1")
	r.ApplySnapshot([]proto.PlayerInfo{{ID: "fresh", X: 1}}, "p1")

	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("stale")
	assert.False(t, ok)
	_, ok = r.Get("fresh")
	assert.True(t, ok)
}

func TestJoinedIgnoresSelfEcho(t *testing.T) {
	r := NewRegistry(12, nil)
	r.ApplyJoined(proto.PlayerInfo{ID: "p1", X: 9}, "p1")
	assert.Equal(t, 0, r.Len())
}
