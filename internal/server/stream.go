// Package server exposes the simulation's per-tick state over a websocket so
// external viewers can render it. The stream is one-way: frames out, nothing
// consumed from clients.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/FaabB/auto-battle-1/internal/core/observability/log"
	"github.com/FaabB/auto-battle-1/internal/core/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// AgentFrame is one agent's state inside a Frame.
type AgentFrame struct {
	ID     world.AgentID `json:"id"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	VX     float64       `json:"vx"`
	VY     float64       `json:"vy"`
	Radius float64       `json:"radius"`
}

// Frame is one tick of world state sent to every connected viewer.
type Frame struct {
	Tick   int          `json:"tick"`
	Agents []AgentFrame `json:"agents"`
}

// FrameFromWorld snapshots the world into a broadcastable frame.
func FrameFromWorld(tick int, w *world.World) Frame {
	frame := Frame{Tick: tick, Agents: make([]AgentFrame, 0, w.Count())}
	w.ForEach(func(a world.Agent) {
		frame.Agents = append(frame.Agents, AgentFrame{
			ID:     a.ID,
			X:      a.Position.X(),
			Y:      a.Position.Y(),
			VX:     a.Velocity.X(),
			VY:     a.Velocity.Y(),
			Radius: a.Radius,
		})
	})
	return frame
}

// StreamServer broadcasts frames to every connected websocket client.
type StreamServer struct {
	log *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	httpServer *http.Server
}

// NewStreamServer builds a stream server listening on addr.
func NewStreamServer(addr string, logger *log.Logger) *StreamServer {
	s := &StreamServer{
		log:     logger,
		clients: make(map[*websocket.Conn]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

// Start serves in the background until Stop is called.
func (s *StreamServer) Start() {
	go func() {
		s.log.Info("state stream listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("state stream server failed", zap.Error(err))
		}
	}()
}

// Stop closes every client and shuts the listener down.
func (s *StreamServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		_ = conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.mu.Unlock()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown state stream: %w", err)
	}
	return nil
}

// Broadcast sends the frame to every connected client, dropping clients
// whose connection fails.
func (s *StreamServer) Broadcast(frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("marshal frame", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.log.Debug("dropping stream client", zap.Error(err))
			_ = conn.Close()
			delete(s.clients, conn)
		}
	}
}

// ClientCount returns the number of connected viewers.
func (s *StreamServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *StreamServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	s.log.Debug("stream client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain (and ignore) client messages so pings are answered and closes
	// are noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.clients, conn)
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
		}
	}()
}
