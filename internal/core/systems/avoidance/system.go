package avoidance

import (
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/FaabB/auto-battle-1/internal/core/config"
	"github.com/FaabB/auto-battle-1/internal/core/observability/log"
	"github.com/FaabB/auto-battle-1/internal/core/world"
	"github.com/FaabB/auto-battle-1/pkg/concurrent"
	"github.com/FaabB/auto-battle-1/pkg/generic"
)

// System drives one avoidance solve per tick: snapshot every agent, rebuild
// the spatial hash, solve each agent against its neighbors' constraints, and
// write the final velocities back in a separate pass.
//
// The per-agent solves are independent: each reads only the shared immutable
// snapshot and the read-only spatial hash, so they run in parallel and the
// buffered results are applied afterward. An agent's solved velocity never
// influences another agent's solve within the same tick.
type System struct {
	cfg     config.Avoidance
	hash    *SpatialHash
	log     *log.Logger
	workers int

	// Scratch buffers reused across ticks. Constraint slices are pooled
	// because solves run concurrently and each needs its own.
	snapshots []AgentSnapshot
	results   []mgl64.Vec2
	index     map[world.AgentID]int
	lines     *generic.Pool[*[]OrcaLine]
}

// NewSystem builds an avoidance system with the given tuning. The config is
// treated as read-only.
func NewSystem(cfg config.Avoidance, logger *log.Logger) *System {
	return &System{
		cfg:     cfg,
		hash:    NewSpatialHash(cfg.GridCellSize()),
		log:     logger,
		workers: runtime.GOMAXPROCS(0),
		index:   make(map[world.AgentID]int),
		lines: generic.NewPool(func() *[]OrcaLine {
			buf := make([]OrcaLine, 0, cfg.MaxNeighbors)
			return &buf
		}),
	}
}

// Step runs one tick of avoidance for every agent in the world.
func (s *System) Step(w *world.World) {
	s.snapshot(w)

	s.hash.Clear()
	for i := range s.snapshots {
		s.hash.Insert(s.snapshots[i].ID, s.snapshots[i].Position)
	}

	if cap(s.results) < len(s.snapshots) {
		s.results = make([]mgl64.Vec2, len(s.snapshots))
	}
	s.results = s.results[:len(s.snapshots)]

	_ = concurrent.ForEachIndex(len(s.snapshots), s.workers, func(i int) error {
		s.results[i] = s.solve(&s.snapshots[i])
		return nil
	})

	for i := range s.snapshots {
		w.SetVelocity(s.snapshots[i].ID, s.results[i])
	}

	s.log.Debug("avoidance step", zap.Int("agents", len(s.snapshots)))
}

// snapshot copies every agent into the scratch buffers and rebuilds the
// id -> slot index.
func (s *System) snapshot(w *world.World) {
	s.snapshots = s.snapshots[:0]
	clear(s.index)

	w.ForEach(func(a world.Agent) {
		s.index[a.ID] = len(s.snapshots)
		s.snapshots = append(s.snapshots, AgentSnapshot{
			ID:             a.ID,
			Position:       a.Position,
			Velocity:       a.Velocity,
			Preferred:      a.Preferred,
			Radius:         a.Radius,
			MaxSpeed:       a.MaxSpeed,
			Responsibility: a.Responsibility,
		})
	})
}

// solve computes one agent's velocity from the shared snapshot. Pure with
// respect to the world: reads only snapshot data and the spatial hash.
func (s *System) solve(agent *AgentSnapshot) mgl64.Vec2 {
	candidates := s.hash.QueryNeighbors(agent.Position, s.cfg.NeighborDistance)

	buf := s.lines.Get()
	defer s.lines.Put(buf)
	lines := (*buf)[:0]
	for _, id := range candidates {
		if id == agent.ID {
			continue
		}
		if len(lines) >= s.cfg.MaxNeighbors {
			break
		}
		idx, ok := s.index[id]
		if !ok {
			// Hash entry with no snapshot: the neighbor is no longer
			// relevant this tick.
			continue
		}
		line, ok := ComputeOrcaLine(agent, &s.snapshots[idx], s.cfg.TimeHorizon)
		if !ok {
			continue
		}
		lines = append(lines, line)
	}

	// No constraints means nobody is close enough to matter. This also
	// covers stationary agents: a zero preferred velocity does not skip the
	// constraint check above, so an oncoming neighbor can still displace a
	// standing agent.
	if len(lines) == 0 {
		return agent.Preferred
	}

	raw := ComputeAvoidingVelocity(agent.Preferred, agent.MaxSpeed, lines)

	// Blend against the previous velocity to damp oscillation in symmetric
	// configurations.
	return lerp(agent.Velocity, raw, s.cfg.VelocitySmoothing)
}
