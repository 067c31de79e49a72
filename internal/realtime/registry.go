package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Connection is the deliverable channel stored in the registry. Session
// implements it; tests substitute doubles.
type Connection interface {
	Push(event string, data interface{}) error
	Close() error
}

// Registry maps a user id to their single live connection. A user opening
// a second session evicts the first.
type Registry interface {
	Register(userID string, conn Connection)
	Lookup(userID string) (Connection, bool)
	Unregister(userID string, conn Connection)
}

type registry struct {
	mu          sync.RWMutex
	connections map[string]Connection
	log         *zap.Logger
}

func NewRegistry(log *zap.Logger) Registry {
	return &registry{
		connections: make(map[string]Connection),
		log:         log,
	}
}

// Register stores the connection, closing any previous one for the same
// user so stale handles never receive pushes.
func (r *registry) Register(userID string, conn Connection) {
	r.mu.Lock()
	previous := r.connections[userID]
	r.connections[userID] = conn
	r.mu.Unlock()

	if previous != nil && previous != conn {
		r.log.Info("evicting previous session", zap.String("user_id", userID))
		previous.Close()
	}
}

func (r *registry) Lookup(userID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[userID]
	return conn, ok
}

// Unregister removes the mapping, but only when the stored connection is
// the one disconnecting. A stale disconnect racing a fresh registration
// must not evict the new session.
func (r *registry) Unregister(userID string, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connections[userID] == conn {
		delete(r.connections, userID)
	}
}
