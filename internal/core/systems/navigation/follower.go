package navigation

import "github.com/go-gl/mathgl/mgl64"

// WaypointReachedDistance is how close (world units) an agent's center must
// get to a waypoint before the follower advances to the next one.
const WaypointReachedDistance = 8.0

// DefaultStopDistance is the arrival radius at the final destination.
const DefaultStopDistance = 4.0

const tiny = 1e-9

// Follower converts a route into one preferred velocity per tick.
type Follower struct {
	// StopDistance is the arrival radius at the final destination. An
	// agent inside it wants to be stationary.
	StopDistance float64
}

// NewFollower returns a follower with the default arrival radius.
func NewFollower() Follower {
	return Follower{StopDistance: DefaultStopDistance}
}

// PreferredVelocity returns the velocity an agent at pos wants this tick:
// full speed toward the active waypoint, advancing past waypoints as they
// are reached, straight at the destination once the route is exhausted, and
// zero on arrival. The result is the avoidance solver's input, not a final
// velocity.
func (f Follower) PreferredVelocity(pos mgl64.Vec2, path *Path, speed float64) mgl64.Vec2 {
	dest, ok := path.Destination()
	if !ok {
		return mgl64.Vec2{}
	}

	target := dest
	if waypoint, ok := path.Current(); ok {
		if pos.Sub(waypoint).Len() < WaypointReachedDistance {
			if path.Advance() {
				next, _ := path.Current()
				target = next
			}
			// Route exhausted: fall through to the destination.
		} else {
			target = waypoint
		}
	}

	diff := target.Sub(pos)
	dist := diff.Len()
	if dist <= f.StopDistance || dist < tiny {
		return mgl64.Vec2{}
	}

	return diff.Mul(speed / dist)
}
