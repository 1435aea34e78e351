// Package avoidance implements local collision avoidance between moving
// agents: an ORCA (Optimal Reciprocal Collision Avoidance) solver, the
// spatial hash it queries neighbors from, and the per-tick system driving
// both. Static obstacles are out of scope here; pathfinding routes around
// them before this package runs.
package avoidance

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/FaabB/auto-battle-1/internal/core/world"
)

// epsilon guards every division by a vector length or LP discriminant.
// Near-zero denominators are treated as "no constraint" instead of
// propagating Inf or NaN.
const epsilon = 1e-9

// OrcaLine is a half-plane constraint in velocity space. A velocity v
// satisfies the constraint iff det(Direction, Point-v) <= 0, i.e. v lies on
// or to the left of the directed boundary line.
type OrcaLine struct {
	// Point lies on the boundary line.
	Point mgl64.Vec2
	// Direction is the unit vector along the boundary line.
	Direction mgl64.Vec2
}

// AgentSnapshot is an immutable per-tick read of one agent's
// avoidance-relevant state. Constructed fresh every tick, never mutated.
type AgentSnapshot struct {
	ID       world.AgentID
	Position mgl64.Vec2
	// Velocity selected on the previous tick.
	Velocity mgl64.Vec2
	// Preferred is the desired velocity this tick, from path following.
	Preferred      mgl64.Vec2
	Radius         float64
	MaxSpeed       float64
	Responsibility float64
}

// ComputeOrcaLine builds the reciprocal velocity-obstacle half-plane for
// agent a avoiding agent b, using the truncated-cone construction from the
// RVO2 reference (Agent.cpp). The second return value is false when the pair
// contributes no constraint.
//
// Overlapping agents deliberately produce no constraint: emergency
// constraints in dense overlapping clusters collapse the feasible region and
// deadlock movement. Overlap separation belongs to the physics pushback
// layer.
func ComputeOrcaLine(a, b *AgentSnapshot, timeHorizon float64) (OrcaLine, bool) {
	relPos := b.Position.Sub(a.Position)
	relVel := a.Velocity.Sub(b.Velocity)
	combinedRadius := a.Radius + b.Radius
	distSq := relPos.Dot(relPos)
	combinedRadiusSq := combinedRadius * combinedRadius

	if distSq <= combinedRadiusSq {
		return OrcaLine{}, false
	}

	invTimeHorizon := 1.0 / timeHorizon

	// w is the vector from the truncated cone's apex to the relative
	// velocity.
	w := relVel.Sub(relPos.Mul(invTimeHorizon))
	wLenSq := w.Dot(w)
	dotWRelPos := w.Dot(relPos)

	if dotWRelPos < 0 && dotWRelPos*dotWRelPos > combinedRadiusSq*wLenSq {
		// Closest cone feature is the circular cutoff cap.
		wLen := math.Sqrt(wLenSq)
		if wLen < epsilon {
			return OrcaLine{}, false
		}
		unitW := w.Mul(1 / wLen)

		u := unitW.Mul(combinedRadius*invTimeHorizon - wLen)
		return OrcaLine{
			Point:     a.Velocity.Add(u.Mul(a.Responsibility)),
			Direction: mgl64.Vec2{unitW.Y(), -unitW.X()},
		}, true
	}

	// Closest cone feature is one of the two legs, picked by which side of
	// the center line the relative velocity sits on.
	leg := math.Sqrt(distSq - combinedRadiusSq)

	var direction mgl64.Vec2
	if det(relPos, w) > 0 {
		direction = mgl64.Vec2{
			relPos.X()*leg - relPos.Y()*combinedRadius,
			relPos.X()*combinedRadius + relPos.Y()*leg,
		}.Mul(1 / distSq)
	} else {
		direction = mgl64.Vec2{
			relPos.X()*leg + relPos.Y()*combinedRadius,
			-relPos.X()*combinedRadius + relPos.Y()*leg,
		}.Mul(-1 / distSq)
	}

	// u is the smallest change to the relative velocity that exits the cone.
	u := direction.Mul(relVel.Dot(direction)).Sub(relVel)
	return OrcaLine{
		Point:     a.Velocity.Add(u.Mul(a.Responsibility)),
		Direction: direction,
	}, true
}

// ComputeAvoidingVelocity returns the velocity within the maxSpeed disc that
// is closest to preferred while satisfying every half-plane constraint. When
// the constraint set is infeasible it falls back to the velocity minimizing
// the worst-case penetration into any forbidden half-plane. Always returns a
// finite vector with |v| <= maxSpeed.
func ComputeAvoidingVelocity(preferred mgl64.Vec2, maxSpeed float64, lines []OrcaLine) mgl64.Vec2 {
	result, failLine := linearProgram2(lines, preferred, maxSpeed, false)
	if failLine < len(lines) {
		result = linearProgram3(lines, failLine, result, maxSpeed)
	}
	return result
}

// det is the 2D cross product a.x*b.y - a.y*b.x.
func det(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

func normalizeOrZero(v mgl64.Vec2) mgl64.Vec2 {
	lenSq := v.Dot(v)
	if lenSq < epsilon*epsilon {
		return mgl64.Vec2{}
	}
	return v.Mul(1 / math.Sqrt(lenSq))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp blends linearly from a to b by t.
func lerp(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// linearProgram1 optimizes along constraint line lineIdx: it intersects the
// maxSpeed disc with the line (quadratic in the line parameter t), clips the
// resulting [tLeft, tRight] interval against every prior constraint, then
// picks the t closest to the optimization target. Returns false when the
// sub-problem is infeasible.
//
// When directionOpt is set, optVelocity is a unit direction rather than a
// point and the target projection optimizes along it.
func linearProgram1(lines []OrcaLine, lineIdx int, optVelocity mgl64.Vec2, maxSpeed float64, directionOpt bool) (mgl64.Vec2, bool) {
	line := lines[lineIdx]
	dotProduct := line.Point.Dot(line.Direction)
	discriminant := dotProduct*dotProduct + maxSpeed*maxSpeed - line.Point.Dot(line.Point)

	if discriminant < 0 {
		// The maxSpeed disc never reaches this constraint line.
		return mgl64.Vec2{}, false
	}

	sqrtDiscriminant := math.Sqrt(discriminant)
	tLeft := -dotProduct - sqrtDiscriminant
	tRight := -dotProduct + sqrtDiscriminant

	for i := 0; i < lineIdx; i++ {
		prior := lines[i]
		denominator := det(line.Direction, prior.Direction)
		numerator := det(prior.Direction, line.Point.Sub(prior.Point))

		if math.Abs(denominator) <= epsilon {
			// Near-parallel lines.
			if numerator < 0 {
				return mgl64.Vec2{}, false
			}
			continue
		}

		t := numerator / denominator
		if denominator >= 0 {
			tRight = math.Min(tRight, t)
		} else {
			tLeft = math.Max(tLeft, t)
		}

		if tLeft > tRight {
			return mgl64.Vec2{}, false
		}
	}

	var t float64
	if directionOpt {
		t = clamp(line.Direction.Dot(optVelocity), tLeft, tRight)
	} else {
		t = clamp(line.Direction.Dot(optVelocity.Sub(line.Point)), tLeft, tRight)
	}

	return line.Point.Add(line.Direction.Mul(t)), true
}

// linearProgram2 is the 2D incremental solve: seed the candidate with the
// optimization target clamped to the disc, then process constraints in
// order, re-optimizing along any violated constraint via linearProgram1.
// Returns the candidate and the index of the first infeasible constraint
// (len(lines) on full success).
func linearProgram2(lines []OrcaLine, optVelocity mgl64.Vec2, maxSpeed float64, directionOpt bool) (mgl64.Vec2, int) {
	var result mgl64.Vec2
	switch {
	case directionOpt:
		// optVelocity is a unit direction; start on the disc boundary.
		result = normalizeOrZero(optVelocity).Mul(maxSpeed)
	case optVelocity.Dot(optVelocity) > maxSpeed*maxSpeed:
		result = optVelocity.Normalize().Mul(maxSpeed)
	default:
		result = optVelocity
	}

	for i, line := range lines {
		if det(line.Direction, line.Point.Sub(result)) > 0 {
			// Candidate violates constraint i.
			newResult, ok := linearProgram1(lines, i, optVelocity, maxSpeed, directionOpt)
			if !ok {
				return result, i
			}
			result = newResult
		}
	}

	return result, len(lines)
}

// linearProgram3 handles the infeasible case by minimizing the maximum
// signed penetration across constraints. For each failing constraint it
// projects all prior constraints onto that constraint's perpendicular
// (merging near-parallel pairs), re-runs the incremental solve in
// direction-optimization mode, and keeps whichever candidate penetrates
// least. distance tracks the current worst violation.
func linearProgram3(lines []OrcaLine, failLine int, current mgl64.Vec2, maxSpeed float64) mgl64.Vec2 {
	result := current
	distance := 0.0

	for i := failLine; i < len(lines); i++ {
		if det(lines[i].Direction, lines[i].Point.Sub(result)) <= distance {
			// Already satisfied within the running tolerance.
			continue
		}

		projected := make([]OrcaLine, 0, i)
		for j := 0; j < i; j++ {
			determinant := det(lines[i].Direction, lines[j].Direction)

			if math.Abs(determinant) <= epsilon {
				if lines[i].Direction.Dot(lines[j].Direction) > 0 {
					// Same direction, constraint j is redundant here.
					continue
				}
				// Opposite direction, bisect the two boundaries.
				projected = append(projected, OrcaLine{
					Point:     lines[i].Point.Add(lines[j].Point).Mul(0.5),
					Direction: normalizeOrZero(lines[j].Direction.Sub(lines[i].Direction)),
				})
				continue
			}

			offset := det(lines[j].Direction, lines[i].Point.Sub(lines[j].Point)) / determinant
			projected = append(projected, OrcaLine{
				Point:     lines[i].Point.Add(lines[i].Direction.Mul(offset)),
				Direction: normalizeOrZero(lines[j].Direction.Sub(lines[i].Direction)),
			})
		}

		optDirection := mgl64.Vec2{-lines[i].Direction.Y(), lines[i].Direction.X()}
		newResult, _ := linearProgram2(projected, optDirection, maxSpeed, true)

		if det(lines[i].Direction, lines[i].Point.Sub(newResult)) > distance {
			result = newResult
		}
		distance = det(lines[i].Direction, lines[i].Point.Sub(result))
	}

	return result
}
