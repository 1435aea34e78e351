// Command simulate runs the antipodal-ring crowd benchmark: agents spawn on
// a circle and cross to the opposite side, with pathfollowing producing
// preferred velocities and the avoidance system resolving them every tick.
// Positions are integrated locally here; in the game the physics layer owns
// that.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FaabB/auto-battle-1/internal/core/config"
	"github.com/FaabB/auto-battle-1/internal/core/observability/log"
	"github.com/FaabB/auto-battle-1/internal/core/systems/navigation"
	"github.com/FaabB/auto-battle-1/internal/core/world"
	"github.com/FaabB/auto-battle-1/internal/injector"
	"github.com/FaabB/auto-battle-1/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	agents := flag.Int("agents", 0, "override the configured agent count")
	ticks := flag.Int("ticks", -1, "override the configured tick count (0 runs until interrupted)")
	listenAddr := flag.String("listen", "", "serve the websocket state stream on this address")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}
	logger := log.New(level).With(zap.String("run_id", uuid.NewString()))
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
		cfg = loaded
	}
	if *agents > 0 {
		cfg.Simulation.Agents = *agents
	}
	if *ticks >= 0 {
		cfg.Simulation.Ticks = *ticks
	}
	if *listenAddr != "" {
		cfg.Simulation.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stopCh
		logger.Info("interrupted, stopping")
		cancel()
	}()

	run(ctx, cfg, logger)
}

// route pairs an agent with its destination and route state.
type route struct {
	id   world.AgentID
	path navigation.Path
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) {
	w := world.New()
	system := injector.ProvideAvoidance(cfg.Avoidance)
	follower := navigation.NewFollower()

	routes := spawnRing(w, cfg.Simulation)
	logger.Info("simulation starting",
		zap.Int("agents", len(routes)),
		zap.Float64("tick_rate", cfg.Simulation.TickRate),
		zap.Int("ticks", cfg.Simulation.Ticks),
	)

	var stream *server.StreamServer
	if cfg.Simulation.ListenAddr != "" {
		stream = server.NewStreamServer(cfg.Simulation.ListenAddr, logger)
		stream.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			if err := stream.Stop(shutdownCtx); err != nil {
				logger.Warn("stream shutdown", zap.Error(err))
			}
		}()
	}

	dt := 1 / cfg.Simulation.TickRate
	interval := time.Duration(float64(time.Second) / cfg.Simulation.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 0; cfg.Simulation.Ticks == 0 || tick < cfg.Simulation.Ticks; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := range routes {
			r := &routes[i]
			agent, ok := w.Get(r.id)
			if !ok {
				continue
			}
			w.SetPreferred(r.id, follower.PreferredVelocity(agent.Position, &r.path, agent.MaxSpeed))
		}

		system.Step(w)

		// Demo-local integration; the solver itself never moves agents.
		for i := range routes {
			agent, ok := w.Get(routes[i].id)
			if !ok {
				continue
			}
			w.SetPosition(routes[i].id, agent.Position.Add(agent.Velocity.Mul(dt)))
		}

		if stream != nil {
			stream.Broadcast(server.FrameFromWorld(tick, w))
		}

		if tick%int(cfg.Simulation.TickRate) == 0 {
			logger.Info("tick", zap.Int("n", tick), zap.Int("arrived", countArrived(w, routes)))
		}
	}

	logger.Info("simulation finished", zap.Int("arrived", countArrived(w, routes)))
}

// spawnRing places agents evenly on a circle, each routed to the point
// opposite its spawn.
func spawnRing(w *world.World, sim config.Simulation) []route {
	routes := make([]route, 0, sim.Agents)
	for i := 0; i < sim.Agents; i++ {
		angle := float64(i) / float64(sim.Agents) * 2 * math.Pi
		pos := mgl64.Vec2{sim.RingRadius * math.Cos(angle), sim.RingRadius * math.Sin(angle)}

		id := w.Spawn(world.Agent{
			Position:       pos,
			Radius:         sim.AgentRadius,
			MaxSpeed:       sim.MaxSpeed,
			Responsibility: 0.5,
		})

		r := route{id: id}
		r.path.Set(nil, pos.Mul(-1))
		routes = append(routes, r)
	}
	return routes
}

func countArrived(w *world.World, routes []route) int {
	arrived := 0
	for i := range routes {
		agent, ok := w.Get(routes[i].id)
		if !ok {
			continue
		}
		dest, _ := routes[i].path.Destination()
		if dest.Sub(agent.Position).Len() < 2*navigation.DefaultStopDistance {
			arrived++
		}
	}
	return arrived
}
