package live

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Activit123/job-matching-platform/internal/presence"
)

// EventIdentify is the inbound frame a client sends to bind its user ID to
// the connection. Until it arrives the connection is anonymous and receives
// nothing.
const EventIdentify = "identify"

// Server upgrades HTTP requests to WebSocket connections and drives the
// connection lifecycle against the presence registry:
//
//	connect    → anonymous client, pumps started
//	identify   → Registry.Register(userID, client)
//	disconnect → Registry.Unregister(client)
type Server struct {
	registry *presence.Registry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewServer returns a Server bound to registry.
// Origin checking is left permissive: the gateway in front of this service
// is responsible for origin policy.
func NewServer(registry *presence.Registry) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// HandleWS is the http.HandlerFunc for the /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := newClient(conn)
	s.track(client)
	go client.writePump()

	// The read pump runs on the request goroutine and returns on disconnect.
	// A connection binds at most one user ID: once an identify succeeds,
	// further identify frames are ignored.
	identified := false
	client.readPump(func(env envelope) {
		if identified || env.Event != EventIdentify || env.UserID == "" {
			return
		}
		if s.registry.Register(env.UserID, client) {
			identified = true
			slog.Info("user identified", "userId", env.UserID)
		}
	})

	s.registry.Unregister(client)
	s.untrack(client)
}

// Shutdown closes every open connection. Clients are expected to reconnect
// and re-identify; presence state is not preserved across restarts.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		client.closeSend()
		delete(s.clients, client)
	}
}

func (s *Server) track(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) untrack(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		c.closeSend()
		delete(s.clients, c)
	}
}
