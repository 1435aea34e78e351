package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default avoidance tuning. NeighborDistance should stay >= the fastest
// agent's max speed times the time horizon, or fast closing neighbors are
// missed.
const (
	DefaultTimeHorizon       = 3.0
	DefaultMaxNeighbors      = 10
	DefaultNeighborDistance  = 150.0
	DefaultVelocitySmoothing = 0.85
)

// Avoidance holds the tuning parameters of the local collision-avoidance
// solver. Set once at startup and treated as read-only afterward.
type Avoidance struct {
	// TimeHorizon is how far ahead (seconds) agents predict collisions
	// with each other.
	TimeHorizon float64 `json:"time_horizon" yaml:"time_horizon"`
	// MaxNeighbors caps the number of constraints considered per agent.
	MaxNeighbors int `json:"max_neighbors" yaml:"max_neighbors"`
	// NeighborDistance is the spatial-hash query radius (world units).
	NeighborDistance float64 `json:"neighbor_distance" yaml:"neighbor_distance"`
	// CellSize is the spatial-hash cell size. Zero means NeighborDistance.
	CellSize float64 `json:"cell_size,omitempty" yaml:"cell_size,omitempty"`
	// VelocitySmoothing blends the previous velocity with the solved one
	// (0 = keep old velocity, 1 = take the raw solver output).
	VelocitySmoothing float64 `json:"velocity_smoothing" yaml:"velocity_smoothing"`
}

// DefaultAvoidance returns the tuning used by the game.
func DefaultAvoidance() Avoidance {
	return Avoidance{
		TimeHorizon:       DefaultTimeHorizon,
		MaxNeighbors:      DefaultMaxNeighbors,
		NeighborDistance:  DefaultNeighborDistance,
		CellSize:          DefaultNeighborDistance,
		VelocitySmoothing: DefaultVelocitySmoothing,
	}
}

// Validate checks the avoidance parameters.
func (a *Avoidance) Validate() error {
	if a.TimeHorizon <= 0 {
		return fmt.Errorf("time_horizon must be positive, got %v", a.TimeHorizon)
	}
	if a.MaxNeighbors <= 0 {
		return fmt.Errorf("max_neighbors must be positive, got %d", a.MaxNeighbors)
	}
	if a.NeighborDistance <= 0 {
		return fmt.Errorf("neighbor_distance must be positive, got %v", a.NeighborDistance)
	}
	if a.CellSize < 0 {
		return fmt.Errorf("cell_size must not be negative, got %v", a.CellSize)
	}
	if a.VelocitySmoothing < 0 || a.VelocitySmoothing > 1 {
		return fmt.Errorf("velocity_smoothing must be in [0,1], got %v", a.VelocitySmoothing)
	}
	return nil
}

// GridCellSize resolves the spatial-hash cell size, falling back to the
// neighbor query radius when unset.
func (a *Avoidance) GridCellSize() float64 {
	if a.CellSize > 0 {
		return a.CellSize
	}
	return a.NeighborDistance
}

// Simulation configures the demo crowd simulation binary.
type Simulation struct {
	// Agents is the number of agents placed on the spawn ring.
	Agents int `json:"agents" yaml:"agents"`
	// Ticks is how many fixed steps to run. Zero means run until stopped.
	Ticks int `json:"ticks" yaml:"ticks"`
	// TickRate is the number of fixed steps per second.
	TickRate float64 `json:"tick_rate" yaml:"tick_rate"`
	// RingRadius is the spawn circle radius (world units).
	RingRadius float64 `json:"ring_radius" yaml:"ring_radius"`
	// AgentRadius and MaxSpeed parameterize every spawned agent.
	AgentRadius float64 `json:"agent_radius" yaml:"agent_radius"`
	MaxSpeed    float64 `json:"max_speed" yaml:"max_speed"`
	// ListenAddr enables the websocket state stream when non-empty.
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

// DefaultSimulation returns the antipodal-ring benchmark setup.
func DefaultSimulation() Simulation {
	return Simulation{
		Agents:      24,
		Ticks:       600,
		TickRate:    30,
		RingRadius:  200,
		AgentRadius: 6,
		MaxSpeed:    50,
	}
}

// Validate checks the simulation parameters.
func (s *Simulation) Validate() error {
	if s.Agents <= 0 {
		return fmt.Errorf("agents must be positive, got %d", s.Agents)
	}
	if s.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative, got %d", s.Ticks)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %v", s.TickRate)
	}
	if s.RingRadius <= 0 {
		return fmt.Errorf("ring_radius must be positive, got %v", s.RingRadius)
	}
	if s.AgentRadius <= 0 {
		return fmt.Errorf("agent_radius must be positive, got %v", s.AgentRadius)
	}
	if s.MaxSpeed <= 0 {
		return fmt.Errorf("max_speed must be positive, got %v", s.MaxSpeed)
	}
	return nil
}

// Config is the root configuration document.
type Config struct {
	Avoidance  Avoidance  `json:"avoidance" yaml:"avoidance"`
	Simulation Simulation `json:"simulation" yaml:"simulation"`
}

// Default returns a fully populated configuration.
func Default() Config {
	return Config{
		Avoidance:  DefaultAvoidance(),
		Simulation: DefaultSimulation(),
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Avoidance.Validate(); err != nil {
		return fmt.Errorf("invalid avoidance config: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}
	return nil
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
