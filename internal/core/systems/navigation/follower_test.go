package navigation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathWaypointIteration(t *testing.T) {
	var path Path
	path.Set([]mgl64.Vec2{{10, 0}, {20, 0}}, mgl64.Vec2{30, 0})

	wp, ok := path.Current()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{10, 0}, wp)

	assert.True(t, path.Advance())
	wp, ok = path.Current()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{20, 0}, wp)

	assert.False(t, path.Advance())
	_, ok = path.Current()
	assert.False(t, ok)
}

func TestPathNeedsRecompute(t *testing.T) {
	var path Path
	assert.True(t, path.NeedsRecompute(mgl64.Vec2{5, 5}), "empty path always needs a plan")

	path.Set(nil, mgl64.Vec2{5, 5})
	assert.False(t, path.NeedsRecompute(mgl64.Vec2{5, 5}))
	assert.True(t, path.NeedsRecompute(mgl64.Vec2{50, 5}))

	path.Clear()
	assert.True(t, path.NeedsRecompute(mgl64.Vec2{5, 5}))
}

func TestPreferredVelocitySteersTowardWaypoint(t *testing.T) {
	follower := NewFollower()
	var path Path
	path.Set([]mgl64.Vec2{{100, 0}}, mgl64.Vec2{200, 0})

	v := follower.PreferredVelocity(mgl64.Vec2{0, 0}, &path, 50)
	assert.InDelta(t, 50.0, v.X(), 1e-9)
	assert.InDelta(t, 0.0, v.Y(), 1e-9)
}

func TestPreferredVelocityAdvancesPastReachedWaypoint(t *testing.T) {
	follower := NewFollower()
	var path Path
	path.Set([]mgl64.Vec2{{5, 0}, {0, 100}}, mgl64.Vec2{0, 200})

	// Within WaypointReachedDistance of the first waypoint: advance and
	// steer at the second.
	v := follower.PreferredVelocity(mgl64.Vec2{0, 0}, &path, 50)
	assert.Greater(t, v.Y(), 40.0, "should steer toward the second waypoint, got %v", v)

	wp, ok := path.Current()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{0, 100}, wp)
}

func TestPreferredVelocityFallsBackToDestination(t *testing.T) {
	follower := NewFollower()
	var path Path
	path.Set(nil, mgl64.Vec2{0, 60})

	v := follower.PreferredVelocity(mgl64.Vec2{0, 0}, &path, 50)
	assert.InDelta(t, 50.0, v.Y(), 1e-9)
}

func TestPreferredVelocityZeroOnArrival(t *testing.T) {
	follower := NewFollower()
	var path Path
	path.Set(nil, mgl64.Vec2{1, 1})

	v := follower.PreferredVelocity(mgl64.Vec2{0, 0}, &path, 50)
	assert.Equal(t, mgl64.Vec2{}, v)
}

func TestPreferredVelocityWithoutDestination(t *testing.T) {
	follower := NewFollower()
	var path Path

	v := follower.PreferredVelocity(mgl64.Vec2{10, 10}, &path, 50)
	assert.Equal(t, mgl64.Vec2{}, v)
}
