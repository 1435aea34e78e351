package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAssignsSequentialIDs(t *testing.T) {
	w := New()

	a := w.Spawn(Agent{Radius: 6})
	b := w.Spawn(Agent{Radius: 6})

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, w.Count())
}

func TestGetReturnsCopy(t *testing.T) {
	w := New()
	id := w.Spawn(Agent{Position: mgl64.Vec2{10, 20}, MaxSpeed: 50})

	got, ok := w.Get(id)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{10, 20}, got.Position)

	// Mutating the copy must not leak back.
	got.Position = mgl64.Vec2{0, 0}
	again, _ := w.Get(id)
	assert.Equal(t, mgl64.Vec2{10, 20}, again.Position)
}

func TestSettersUpdateState(t *testing.T) {
	w := New()
	id := w.Spawn(Agent{})

	w.SetPreferred(id, mgl64.Vec2{50, 0})
	w.SetVelocity(id, mgl64.Vec2{25, 0})
	w.SetPosition(id, mgl64.Vec2{1, 2})

	got, ok := w.Get(id)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{50, 0}, got.Preferred)
	assert.Equal(t, mgl64.Vec2{25, 0}, got.Velocity)
	assert.Equal(t, mgl64.Vec2{1, 2}, got.Position)
}

func TestSettersIgnoreUnknownID(t *testing.T) {
	w := New()
	w.SetVelocity(999, mgl64.Vec2{1, 1})
	assert.Equal(t, 0, w.Count())
}

func TestForEachIteratesInSpawnOrder(t *testing.T) {
	w := New()
	first := w.Spawn(Agent{})
	second := w.Spawn(Agent{})
	third := w.Spawn(Agent{})

	var seen []AgentID
	w.ForEach(func(a Agent) { seen = append(seen, a.ID) })
	assert.Equal(t, []AgentID{first, second, third}, seen)
}

func TestRemoveKeepsOrderStable(t *testing.T) {
	w := New()
	first := w.Spawn(Agent{})
	second := w.Spawn(Agent{})
	third := w.Spawn(Agent{})

	w.Remove(second)

	snapshot := w.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, first, snapshot[0].ID)
	assert.Equal(t, third, snapshot[1].ID)

	_, ok := w.Get(second)
	assert.False(t, ok)
}
