package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// AgentID identifies one moving agent.
type AgentID uint64

// Agent is the avoidance-relevant state of one moving entity. Position and
// Velocity belong to the physics layer; Preferred is written by the
// path-following layer every tick.
type Agent struct {
	ID       AgentID
	Position mgl64.Vec2
	// Velocity is the velocity committed on the previous tick.
	Velocity mgl64.Vec2
	// Preferred is the velocity the agent wants this tick. Zero means the
	// agent wants to be stationary.
	Preferred mgl64.Vec2
	Radius    float64
	MaxSpeed  float64
	// Responsibility is the share of any mutual avoidance adjustment this
	// agent absorbs: 0.5 splits it evenly, 1 fully yields, 0 never yields.
	Responsibility float64
}

// World owns the live agent set. All access is mutex-guarded; per-tick
// systems read a snapshot instead of holding the lock across a solve.
type World struct {
	mu     sync.RWMutex
	nextID AgentID
	agents map[AgentID]*Agent
	order  []AgentID
}

// New returns an empty world.
func New() *World {
	return &World{
		nextID: 1,
		agents: make(map[AgentID]*Agent),
	}
}

// Spawn inserts a copy of the agent, assigns it a fresh id and returns it.
func (w *World) Spawn(agent Agent) AgentID {
	w.mu.Lock()
	defer w.mu.Unlock()

	agent.ID = w.nextID
	w.nextID++
	w.agents[agent.ID] = &agent
	w.order = append(w.order, agent.ID)
	return agent.ID
}

// Remove deletes an agent. Unknown ids are ignored.
func (w *World) Remove(id AgentID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.agents[id]; !ok {
		return
	}
	delete(w.agents, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the agent.
func (w *World) Get(id AgentID) (Agent, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	agent, ok := w.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *agent, true
}

// Count returns the number of live agents.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.agents)
}

// ForEach calls fn with a copy of every agent in spawn order.
func (w *World) ForEach(fn func(Agent)) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, id := range w.order {
		fn(*w.agents[id])
	}
}

// Snapshot returns copies of every agent in spawn order.
func (w *World) Snapshot() []Agent {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Agent, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.agents[id])
	}
	return out
}

// SetPreferred updates an agent's preferred velocity.
func (w *World) SetPreferred(id AgentID, v mgl64.Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if agent, ok := w.agents[id]; ok {
		agent.Preferred = v
	}
}

// SetVelocity commits an agent's solved velocity.
func (w *World) SetVelocity(id AgentID, v mgl64.Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if agent, ok := w.agents[id]; ok {
		agent.Velocity = v
	}
}

// SetPosition moves an agent. Belongs to the integration step, never to the
// avoidance solve.
func (w *World) SetPosition(id AgentID, p mgl64.Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if agent, ok := w.agents[id]; ok {
		agent.Position = p
	}
}
