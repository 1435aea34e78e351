// Package navigation turns waypoint routes from an external planner into the
// per-tick preferred velocities the avoidance solver consumes. The planner
// itself (navmesh, flow field, anything that yields waypoints) stays outside
// this module.
package navigation

import "github.com/go-gl/mathgl/mgl64"

// Path is a waypoint route toward a destination. When it has remaining
// waypoints the follower steers through them; once exhausted it heads
// straight for the destination.
type Path struct {
	waypoints []mgl64.Vec2
	current   int
	dest      mgl64.Vec2
	hasDest   bool
}

// Set replaces the route with new waypoints for a new destination.
func (p *Path) Set(waypoints []mgl64.Vec2, dest mgl64.Vec2) {
	p.waypoints = waypoints
	p.current = 0
	p.dest = dest
	p.hasDest = true
}

// Clear drops the route and destination.
func (p *Path) Clear() {
	p.waypoints = nil
	p.current = 0
	p.dest = mgl64.Vec2{}
	p.hasDest = false
}

// Current returns the active waypoint, if any remain.
func (p *Path) Current() (mgl64.Vec2, bool) {
	if p.current >= len(p.waypoints) {
		return mgl64.Vec2{}, false
	}
	return p.waypoints[p.current], true
}

// Advance moves to the next waypoint and reports whether one remains.
func (p *Path) Advance() bool {
	p.current++
	return p.current < len(p.waypoints)
}

// Destination returns the route's final destination.
func (p *Path) Destination() (mgl64.Vec2, bool) {
	return p.dest, p.hasDest
}

// NeedsRecompute reports whether the route was built for a different
// destination and should be re-planned.
func (p *Path) NeedsRecompute(dest mgl64.Vec2) bool {
	if !p.hasDest {
		return true
	}
	return p.dest.Sub(dest).Len() > recomputeTolerance
}

const recomputeTolerance = 1e-3
